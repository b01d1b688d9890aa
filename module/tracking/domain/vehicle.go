package domain

// Ambulance statuses as they appear on the wire.
const (
	StatusDispatched   = "dispatched"
	StatusEnRoute      = "en_route"
	StatusAtPatient    = "at_patient"
	StatusTransporting = "transporting"
	StatusArrived      = "arrived"
)

// Assignment describes the emergency a tracked ambulance is working.
// Origin is the vehicle position at dispatch time; it anchors the
// to-patient leg so progress along it can be measured.
type Assignment struct {
	EmergencyID      string   `json:"emergencyId"`
	Origin           GeoPoint `json:"origin"`
	PatientLocation  GeoPoint `json:"patientLocation"`
	HospitalLocation GeoPoint `json:"hospitalLocation"`
}

// TrackedVehicle is the authoritative live record for one ambulance.
// Owned exclusively by the tracker; consumers receive copies.
type TrackedVehicle struct {
	ID              string      `json:"ambulanceId"`
	HospitalID      string      `json:"hospitalId"`
	CurrentPosition GeoPoint    `json:"currentPosition"`
	Heading         float64     `json:"heading"`
	Speed           float64     `json:"speed"`
	Status          string      `json:"status"`
	Assignment      *Assignment `json:"currentAssignment,omitempty"`
}

// PhaseForStatus maps a wire status onto the route phase that drives
// segment generation. Unknown statuses render as the to-patient leg,
// which is the state a freshly dispatched vehicle is in.
func PhaseForStatus(status string) RoutePhase {
	switch status {
	case StatusTransporting:
		return PhaseToHospital
	case StatusArrived:
		return PhaseCompleted
	default:
		return PhaseToPatient
	}
}
