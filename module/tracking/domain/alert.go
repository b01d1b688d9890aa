package domain

// AlertType classifies ambulance alerts fanned out to sibling dashboard
// consumers.
type AlertType string

const (
	AlertApproaching AlertType = "ambulance_approaching"
	AlertArrived     AlertType = "ambulance_arrived"
)

// AmbulanceAlert is published when a transporting ambulance first comes
// within the arrival threshold of the hospital and when it arrives.
type AmbulanceAlert struct {
	AmbulanceID string    `json:"ambulance_id"`
	HospitalID  string    `json:"hospital_id"`
	Type        AlertType `json:"type"`
	Position    GeoPoint  `json:"position"`
	Timestamp   int64     `json:"timestamp"`
}
