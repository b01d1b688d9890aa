package domain

// RoutePhase identifies which part of the two-leg journey is active.
type RoutePhase string

const (
	PhaseToPatient  RoutePhase = "to_patient"
	PhaseToHospital RoutePhase = "to_hospital"
	PhaseCompleted  RoutePhase = "completed"
)

// Leg identifies which journey leg a segment belongs to.
type Leg string

const (
	LegToPatient  Leg = "to_patient"
	LegToHospital Leg = "to_hospital"
)

// Traversal classifies a segment relative to the vehicle's progress.
type Traversal string

const (
	Traversed Traversal = "traversed"
	Remaining Traversal = "remaining"
)

// Rendering contract shared with the map collaborator. Remaining draws on
// top of traversed.
const (
	TraversedColor     = "#3B82F6"
	RemainingColor     = "#EF4444"
	TraversedDashArray = "5,10"
	TraversedZIndex    = 1
	RemainingZIndex    = 2
)

// Segment is one renderable piece of the route polyline.
type Segment struct {
	From      GeoPoint  `json:"from"`
	To        GeoPoint  `json:"to"`
	Leg       Leg       `json:"leg"`
	Traversal Traversal `json:"traversal"`
	Color     string    `json:"color"`
	DashArray string    `json:"dashArray,omitempty"`
	ZIndex    int       `json:"zIndex"`
}

// TrackingState is the full derived picture for one vehicle. It is
// recomputed wholesale on every input change, never mutated in place.
type TrackingState struct {
	Segments            []Segment `json:"segments"`
	ProgressPercent     float64   `json:"progressPercent"`
	TraversedDistanceKm float64   `json:"traversedDistanceKm"`
	RemainingDistanceKm float64   `json:"remainingDistanceKm"`
}
