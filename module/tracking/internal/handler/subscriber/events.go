package subscriber

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/ashharzawarsyed/alertx-sub001/module/tracking/domain"
)

// Wire event names. These are part of the contract with the dispatch
// server and must match exactly.
const (
	eventLocation   = "ambulance:location"
	eventStatus     = "ambulance:status"
	eventDispatched = "emergency:dispatched"
	eventArrived    = "ambulance:arrived"
	eventRoomJoined = "room:joined"
)

// Events that share the hospital room but belong to sibling dashboard
// widgets. They are forwarded untouched, never decoded here.
var siblingEvents = map[string]bool{
	"bed:updated":       true,
	"emergency:new":     true,
	"emergency:updated": true,
}

type tracker interface {
	Apply(ctx context.Context, ev domain.Event)
}

// SiblingHandler receives room events owned by other dashboard widgets.
type SiblingHandler func(event string, payload []byte)

// EventSubscriber decodes room-scoped wire messages into typed tracking
// events and applies them to the tracker. A malformed event is logged and
// skipped; it never tears the session down.
type EventSubscriber struct {
	tracker tracker
	sibling SiblingHandler
}

func NewEventSubscriber(t tracker) *EventSubscriber {
	return &EventSubscriber{tracker: t}
}

// SetSiblingHandler routes sibling widget events. Optional; without it
// they are dropped silently.
func (s *EventSubscriber) SetSiblingHandler(fn SiblingHandler) {
	s.sibling = fn
}

// HandleMessage is the mqtt.MessageHandler for the hospital room topic.
// The event name is the final topic segment.
func (s *EventSubscriber) HandleMessage(_ mqtt.Client, msg mqtt.Message) {
	event := msg.Topic()
	if i := strings.LastIndex(event, "/"); i >= 0 {
		event = event[i+1:]
	}

	if siblingEvents[event] {
		if s.sibling != nil {
			s.sibling(event, msg.Payload())
		}
		return
	}

	if event == eventRoomJoined {
		log.Printf("room join confirmed")
		return
	}

	ev, err := decodeEvent(event, msg.Payload())
	if err != nil {
		log.Printf("invalid %s event: %v", event, err)
		return
	}

	s.tracker.Apply(context.Background(), ev)
}

func decodeEvent(event string, payload []byte) (domain.Event, error) {
	switch event {
	case eventLocation:
		return decodeLocation(payload)
	case eventStatus:
		return decodeStatus(payload)
	case eventDispatched:
		return decodeDispatch(payload)
	case eventArrived:
		return decodeArrival(payload)
	default:
		return nil, fmt.Errorf("unknown event")
	}
}

type geoPointPayload struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (p geoPointPayload) toDomain() domain.GeoPoint {
	return domain.GeoPoint{Lat: p.Lat, Lng: p.Lng}
}

type locationPayload struct {
	AmbulanceID string          `json:"ambulanceId"`
	Location    geoPointPayload `json:"location"`
	Heading     float64         `json:"heading"`
	Speed       float64         `json:"speed"`
}

func decodeLocation(payload []byte) (domain.Event, error) {
	var raw locationPayload
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, err
	}
	if raw.AmbulanceID == "" {
		return nil, fmt.Errorf("ambulanceId: required")
	}
	if err := validateCoordinates(raw.Location); err != nil {
		return nil, err
	}
	return domain.LocationEvent{
		AmbulanceID: raw.AmbulanceID,
		Position:    raw.Location.toDomain(),
		Heading:     raw.Heading,
		Speed:       raw.Speed,
	}, nil
}

type statusPayload struct {
	AmbulanceID string `json:"ambulanceId"`
	Status      string `json:"status"`
}

func decodeStatus(payload []byte) (domain.Event, error) {
	var raw statusPayload
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, err
	}
	if raw.AmbulanceID == "" {
		return nil, fmt.Errorf("ambulanceId: required")
	}
	if raw.Status == "" {
		return nil, fmt.Errorf("status: required")
	}
	return domain.StatusEvent{AmbulanceID: raw.AmbulanceID, Status: raw.Status}, nil
}

type assignmentPayload struct {
	EmergencyID      string          `json:"emergencyId"`
	Origin           geoPointPayload `json:"origin"`
	PatientLocation  geoPointPayload `json:"patientLocation"`
	HospitalLocation geoPointPayload `json:"hospitalLocation"`
}

type ambulancePayload struct {
	AmbulanceID     string             `json:"ambulanceId"`
	HospitalID      string             `json:"hospitalId"`
	CurrentPosition geoPointPayload    `json:"currentPosition"`
	Heading         float64            `json:"heading"`
	Speed           float64            `json:"speed"`
	Status          string             `json:"status"`
	Assignment      *assignmentPayload `json:"currentAssignment"`
}

type dispatchPayload struct {
	Ambulance             ambulancePayload `json:"ambulance"`
	DestinationHospitalID string           `json:"destinationHospitalId"`
}

func decodeDispatch(payload []byte) (domain.Event, error) {
	var raw dispatchPayload
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, err
	}
	if raw.Ambulance.AmbulanceID == "" {
		return nil, fmt.Errorf("ambulance.ambulanceId: required")
	}
	if raw.DestinationHospitalID == "" {
		return nil, fmt.Errorf("destinationHospitalId: required")
	}
	if err := validateCoordinates(raw.Ambulance.CurrentPosition); err != nil {
		return nil, err
	}

	vehicle := domain.TrackedVehicle{
		ID:              raw.Ambulance.AmbulanceID,
		HospitalID:      raw.Ambulance.HospitalID,
		CurrentPosition: raw.Ambulance.CurrentPosition.toDomain(),
		Heading:         raw.Ambulance.Heading,
		Speed:           raw.Ambulance.Speed,
		Status:          raw.Ambulance.Status,
	}
	if a := raw.Ambulance.Assignment; a != nil {
		vehicle.Assignment = &domain.Assignment{
			EmergencyID:      a.EmergencyID,
			Origin:           a.Origin.toDomain(),
			PatientLocation:  a.PatientLocation.toDomain(),
			HospitalLocation: a.HospitalLocation.toDomain(),
		}
	}

	return domain.DispatchEvent{
		Vehicle:               vehicle,
		DestinationHospitalID: raw.DestinationHospitalID,
	}, nil
}

type arrivalPayload struct {
	AmbulanceID string `json:"ambulanceId"`
}

func decodeArrival(payload []byte) (domain.Event, error) {
	var raw arrivalPayload
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, err
	}
	if raw.AmbulanceID == "" {
		return nil, fmt.Errorf("ambulanceId: required")
	}
	return domain.ArrivalEvent{AmbulanceID: raw.AmbulanceID}, nil
}

func validateCoordinates(p geoPointPayload) error {
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("lat: must be between -90 and 90")
	}
	if p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("lng: must be between -180 and 180")
	}
	return nil
}
