package domain

import "time"

// Journey is one lifecycle row per dispatch: opened when the dispatch
// event is received, closed when the ambulance arrives. Individual
// position fixes are never persisted.
type Journey struct {
	AmbulanceID  string     `json:"ambulance_id"`
	HospitalID   string     `json:"hospital_id"`
	EmergencyID  string     `json:"emergency_id"`
	DispatchedAt time.Time  `json:"dispatched_at"`
	ArrivedAt    *time.Time `json:"arrived_at,omitempty"`
}

// ArrivalReport is the payload of the user-triggered mark-arrived action
// sent to the EMS dispatch API.
type ArrivalReport struct {
	AmbulanceID string `json:"ambulanceId"`
	HospitalID  string `json:"hospitalId"`
	Timestamp   int64  `json:"timestamp"`
}
