package domain

// Event is the closed sum of inbound tracking events. The subscriber
// decodes each wire message into exactly one of these and the tracker
// dispatches over them with a single type switch.
type Event interface {
	trackingEvent()
}

// LocationEvent updates a tracked vehicle's position. Events for unknown
// ids are dropped; they are late updates for completed trips.
type LocationEvent struct {
	AmbulanceID string
	Position    GeoPoint
	Heading     float64
	Speed       float64
}

// StatusEvent overwrites a tracked vehicle's status.
type StatusEvent struct {
	AmbulanceID string
	Status      string
}

// DispatchEvent announces an ambulance inbound to a hospital.
type DispatchEvent struct {
	Vehicle               TrackedVehicle
	DestinationHospitalID string
}

// ArrivalEvent removes an ambulance from tracking.
type ArrivalEvent struct {
	AmbulanceID string
}

func (LocationEvent) trackingEvent() {}
func (StatusEvent) trackingEvent()   {}
func (DispatchEvent) trackingEvent() {}
func (ArrivalEvent) trackingEvent()  {}
