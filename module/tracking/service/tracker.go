package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ashharzawarsyed/alertx-sub001/module/tracking/domain"
)

// ErrVehicleNotTracked is returned when an operation names an ambulance
// that is not in the tracked set.
var ErrVehicleNotTracked = errors.New("ambulance is not tracked")

type alertPublisher interface {
	PublishAlert(ctx context.Context, alert *domain.AmbulanceAlert) error
}

type journeyLog interface {
	RecordDispatch(ctx context.Context, j *domain.Journey) error
	RecordArrival(ctx context.Context, ambulanceID, hospitalID string, at time.Time) error
}

type dispatchClient interface {
	ReportArrival(ctx context.Context, report *domain.ArrivalReport) error
}

// TrackerService owns the authoritative set of ambulances inbound to one
// hospital and the derived tracking state for each. All mutation flows
// through Apply; readers get copies. The mutex exists because HTTP
// readers run concurrently with the MQTT delivery goroutine.
type TrackerService struct {
	hospitalID string
	routes     *RouteService
	alerts     alertPublisher
	journeys   journeyLog
	dispatch   dispatchClient

	mu         sync.RWMutex
	vehicles   map[string]*domain.TrackedVehicle
	states     map[string]domain.TrackingState
	order      []string
	selected   string
	approached map[string]bool

	onChange func(ambulanceID string)
}

func NewTrackerService(hospitalID string, routes *RouteService, alerts alertPublisher, journeys journeyLog, dispatch dispatchClient) *TrackerService {
	return &TrackerService{
		hospitalID: hospitalID,
		routes:     routes,
		alerts:     alerts,
		journeys:   journeys,
		dispatch:   dispatch,
		vehicles:   make(map[string]*domain.TrackedVehicle),
		states:     make(map[string]domain.TrackingState),
		approached: make(map[string]bool),
	}
}

// SetOnChange registers a callback invoked after every mutation with the
// affected ambulance id. Must be set before the session starts delivering
// events.
func (s *TrackerService) SetOnChange(fn func(ambulanceID string)) {
	s.onChange = fn
}

// Apply merges one inbound event into the tracked set and synchronously
// recomputes the affected vehicle's tracking state.
func (s *TrackerService) Apply(ctx context.Context, ev domain.Event) {
	switch e := ev.(type) {
	case domain.LocationEvent:
		s.applyLocation(ctx, e)
	case domain.StatusEvent:
		s.applyStatus(e)
	case domain.DispatchEvent:
		s.applyDispatch(ctx, e)
	case domain.ArrivalEvent:
		s.applyArrival(ctx, e)
	}
}

func (s *TrackerService) applyLocation(ctx context.Context, e domain.LocationEvent) {
	s.mu.Lock()
	v, ok := s.vehicles[e.AmbulanceID]
	if !ok {
		// late update for a vehicle that already completed its trip
		s.mu.Unlock()
		return
	}

	// last received wins, no timestamp reordering
	v.CurrentPosition = e.Position
	v.Heading = e.Heading
	v.Speed = e.Speed
	s.recomputeLocked(v)

	var alert *domain.AmbulanceAlert
	if v.Assignment != nil && !s.approached[v.ID] &&
		domain.PhaseForStatus(v.Status) == domain.PhaseToHospital &&
		domain.DistanceKm(v.CurrentPosition, v.Assignment.HospitalLocation) < s.routes.ArrivalThresholdKm {
		s.approached[v.ID] = true
		alert = &domain.AmbulanceAlert{
			AmbulanceID: v.ID,
			HospitalID:  s.hospitalID,
			Type:        domain.AlertApproaching,
			Position:    v.CurrentPosition,
			Timestamp:   time.Now().Unix(),
		}
	}
	s.mu.Unlock()

	if alert != nil {
		if err := s.alerts.PublishAlert(ctx, alert); err != nil {
			log.Printf("publish approach alert for %s: %v", e.AmbulanceID, err)
		}
	}
	s.notify(e.AmbulanceID)
}

func (s *TrackerService) applyStatus(e domain.StatusEvent) {
	s.mu.Lock()
	v, ok := s.vehicles[e.AmbulanceID]
	if !ok {
		s.mu.Unlock()
		return
	}
	v.Status = e.Status
	s.recomputeLocked(v)
	s.mu.Unlock()

	s.notify(e.AmbulanceID)
}

func (s *TrackerService) applyDispatch(ctx context.Context, e domain.DispatchEvent) {
	if e.DestinationHospitalID != s.hospitalID {
		return
	}

	v := e.Vehicle
	v.HospitalID = s.hospitalID
	if v.Assignment != nil {
		a := *v.Assignment
		if (a.Origin == domain.GeoPoint{}) {
			a.Origin = v.CurrentPosition
		}
		v.Assignment = &a
	}

	s.mu.Lock()
	if _, exists := s.vehicles[v.ID]; !exists {
		s.order = append(s.order, v.ID)
	}
	// duplicate dispatch events replace the existing entry rather than
	// producing a second tracked vehicle
	s.vehicles[v.ID] = &v
	delete(s.approached, v.ID)
	s.recomputeLocked(&v)
	s.mu.Unlock()

	j := &domain.Journey{
		AmbulanceID:  v.ID,
		HospitalID:   s.hospitalID,
		DispatchedAt: time.Now(),
	}
	if v.Assignment != nil {
		j.EmergencyID = v.Assignment.EmergencyID
	}
	if err := s.journeys.RecordDispatch(ctx, j); err != nil {
		log.Printf("record dispatch for %s: %v", v.ID, err)
	}
	s.notify(v.ID)
}

func (s *TrackerService) applyArrival(ctx context.Context, e domain.ArrivalEvent) {
	s.mu.Lock()
	v, ok := s.vehicles[e.AmbulanceID]
	if !ok {
		s.mu.Unlock()
		return
	}
	position := v.CurrentPosition

	delete(s.vehicles, e.AmbulanceID)
	delete(s.states, e.AmbulanceID)
	delete(s.approached, e.AmbulanceID)
	for i, id := range s.order {
		if id == e.AmbulanceID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.selected == e.AmbulanceID {
		s.selected = ""
	}
	s.mu.Unlock()

	now := time.Now()
	if err := s.journeys.RecordArrival(ctx, e.AmbulanceID, s.hospitalID, now); err != nil {
		log.Printf("record arrival for %s: %v", e.AmbulanceID, err)
	}
	alert := &domain.AmbulanceAlert{
		AmbulanceID: e.AmbulanceID,
		HospitalID:  s.hospitalID,
		Type:        domain.AlertArrived,
		Position:    position,
		Timestamp:   now.Unix(),
	}
	if err := s.alerts.PublishAlert(ctx, alert); err != nil {
		log.Printf("publish arrival alert for %s: %v", e.AmbulanceID, err)
	}
	s.notify(e.AmbulanceID)
}

func (s *TrackerService) recomputeLocked(v *domain.TrackedVehicle) {
	if v.Assignment == nil {
		s.states[v.ID] = domain.TrackingState{}
		return
	}
	s.states[v.ID] = s.routes.BuildState(
		v.Assignment.Origin,
		v.CurrentPosition,
		v.Assignment.PatientLocation,
		v.Assignment.HospitalLocation,
		domain.PhaseForStatus(v.Status),
	)
}

// MarkArrived reports the arrival to the EMS dispatch API and, on
// success, removes the vehicle locally ahead of the server's broadcast.
func (s *TrackerService) MarkArrived(ctx context.Context, ambulanceID string) error {
	s.mu.RLock()
	_, ok := s.vehicles[ambulanceID]
	s.mu.RUnlock()
	if !ok {
		return ErrVehicleNotTracked
	}

	report := &domain.ArrivalReport{
		AmbulanceID: ambulanceID,
		HospitalID:  s.hospitalID,
		Timestamp:   time.Now().Unix(),
	}
	if err := s.dispatch.ReportArrival(ctx, report); err != nil {
		return fmt.Errorf("report arrival: %w", err)
	}

	s.applyArrival(ctx, domain.ArrivalEvent{AmbulanceID: ambulanceID})
	return nil
}

// Snapshot returns copies of all tracked vehicles in dispatch order.
func (s *TrackerService) Snapshot() []domain.TrackedVehicle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.TrackedVehicle, 0, len(s.order))
	for _, id := range s.order {
		if v, ok := s.vehicles[id]; ok {
			out = append(out, copyVehicle(v))
		}
	}
	return out
}

// Vehicle returns a copy of one tracked vehicle.
func (s *TrackerService) Vehicle(ambulanceID string) (domain.TrackedVehicle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.vehicles[ambulanceID]
	if !ok {
		return domain.TrackedVehicle{}, false
	}
	return copyVehicle(v), true
}

// State returns the derived tracking state for one vehicle.
func (s *TrackerService) State(ambulanceID string) (domain.TrackingState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.states[ambulanceID]
	return st, ok
}

// Select marks one vehicle as the detail-view selection. The selection is
// cleared automatically when that vehicle arrives.
func (s *TrackerService) Select(ambulanceID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.vehicles[ambulanceID]; !ok {
		return false
	}
	s.selected = ambulanceID
	return true
}

// Selected returns the currently selected ambulance id, if any.
func (s *TrackerService) Selected() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// Reset tears the tracked set down. Called on clean disconnect; no
// partial state stays observable afterwards.
func (s *TrackerService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.vehicles = make(map[string]*domain.TrackedVehicle)
	s.states = make(map[string]domain.TrackingState)
	s.approached = make(map[string]bool)
	s.order = nil
	s.selected = ""
}

func (s *TrackerService) notify(ambulanceID string) {
	if s.onChange != nil {
		s.onChange(ambulanceID)
	}
}

func copyVehicle(v *domain.TrackedVehicle) domain.TrackedVehicle {
	c := *v
	if v.Assignment != nil {
		a := *v.Assignment
		c.Assignment = &a
	}
	return c
}
