package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/ashharzawarsyed/alertx-sub001/module/tracking/domain"
	"github.com/ashharzawarsyed/alertx-sub001/module/tracking/internal/handler/subscriber"
	"github.com/ashharzawarsyed/alertx-sub001/module/tracking/service"
)

type mockTracker struct {
	snapshotFn    func() []domain.TrackedVehicle
	vehicleFn     func(string) (domain.TrackedVehicle, bool)
	stateFn       func(string) (domain.TrackingState, bool)
	selectFn      func(string) bool
	markArrivedFn func(context.Context, string) error
}

func (m *mockTracker) Snapshot() []domain.TrackedVehicle {
	if m.snapshotFn != nil {
		return m.snapshotFn()
	}
	return nil
}

func (m *mockTracker) Vehicle(id string) (domain.TrackedVehicle, bool) {
	if m.vehicleFn != nil {
		return m.vehicleFn(id)
	}
	return domain.TrackedVehicle{}, false
}

func (m *mockTracker) State(id string) (domain.TrackingState, bool) {
	if m.stateFn != nil {
		return m.stateFn(id)
	}
	return domain.TrackingState{}, false
}

func (m *mockTracker) Select(id string) bool {
	if m.selectFn != nil {
		return m.selectFn(id)
	}
	return false
}

func (m *mockTracker) MarkArrived(ctx context.Context, id string) error {
	if m.markArrivedFn != nil {
		return m.markArrivedFn(ctx, id)
	}
	return nil
}

type mockJourneys struct {
	historyFn func(context.Context, string) ([]domain.Journey, error)
}

func (m *mockJourneys) History(ctx context.Context, id string) ([]domain.Journey, error) {
	if m.historyFn != nil {
		return m.historyFn(ctx, id)
	}
	return nil, nil
}

type mockSession struct {
	state       subscriber.State
	reconnectFn func() error
}

func (m *mockSession) State() subscriber.State { return m.state }

func (m *mockSession) Reconnect() error {
	if m.reconnectFn != nil {
		return m.reconnectFn()
	}
	return nil
}

func setupRouter(tracker trackerService, journeys journeyService, session trackingSession) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewTrackingHandler(tracker, journeys, session).Register(r.Group("/"))
	return r
}

func TestListAmbulances(t *testing.T) {
	tracker := &mockTracker{
		snapshotFn: func() []domain.TrackedVehicle {
			return []domain.TrackedVehicle{
				{ID: "AMB-1", HospitalID: "H1", Status: domain.StatusEnRoute},
				{ID: "AMB-2", HospitalID: "H1", Status: domain.StatusTransporting},
			}
		},
	}
	r := setupRouter(tracker, &mockJourneys{}, &mockSession{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tracking/ambulances", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var got []domain.TrackedVehicle
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 ambulances, got %d", len(got))
	}
	if got[0].ID != "AMB-1" {
		t.Errorf("expected first ambulance AMB-1, got %s", got[0].ID)
	}
}

func TestGetAmbulance(t *testing.T) {
	tracker := &mockTracker{
		vehicleFn: func(id string) (domain.TrackedVehicle, bool) {
			if id != "AMB-1" {
				return domain.TrackedVehicle{}, false
			}
			return domain.TrackedVehicle{ID: "AMB-1", Status: domain.StatusEnRoute}, true
		},
		stateFn: func(string) (domain.TrackingState, bool) {
			return domain.TrackingState{ProgressPercent: 42}, true
		},
	}
	r := setupRouter(tracker, &mockJourneys{}, &mockSession{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tracking/ambulances/AMB-1", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var got struct {
		Ambulance domain.TrackedVehicle `json:"ambulance"`
		Tracking  domain.TrackingState  `json:"tracking"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if got.Ambulance.ID != "AMB-1" {
		t.Errorf("expected ambulance AMB-1, got %s", got.Ambulance.ID)
	}
	if got.Tracking.ProgressPercent != 42 {
		t.Errorf("expected progress 42, got %v", got.Tracking.ProgressPercent)
	}
}

func TestGetAmbulanceNotFound(t *testing.T) {
	r := setupRouter(&mockTracker{}, &mockJourneys{}, &mockSession{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tracking/ambulances/UNKNOWN", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func TestGetRoute(t *testing.T) {
	tracker := &mockTracker{
		stateFn: func(id string) (domain.TrackingState, bool) {
			return domain.TrackingState{
				Segments: []domain.Segment{
					{Leg: domain.LegToPatient, Traversal: domain.Traversed},
				},
				ProgressPercent: 50,
			}, true
		},
	}
	r := setupRouter(tracker, &mockJourneys{}, &mockSession{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tracking/ambulances/AMB-1/route", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var got domain.TrackingState
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(got.Segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(got.Segments))
	}
}

func TestGetRouteNotFound(t *testing.T) {
	r := setupRouter(&mockTracker{}, &mockJourneys{}, &mockSession{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tracking/ambulances/UNKNOWN/route", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func TestMarkArrived(t *testing.T) {
	var gotID string
	tracker := &mockTracker{
		markArrivedFn: func(_ context.Context, id string) error {
			gotID = id
			return nil
		},
	}
	r := setupRouter(tracker, &mockJourneys{}, &mockSession{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tracking/ambulances/AMB-1/arrived", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if gotID != "AMB-1" {
		t.Errorf("expected AMB-1 to be marked arrived, got %q", gotID)
	}
}

func TestMarkArrivedNotTracked(t *testing.T) {
	tracker := &mockTracker{
		markArrivedFn: func(context.Context, string) error {
			return service.ErrVehicleNotTracked
		},
	}
	r := setupRouter(tracker, &mockJourneys{}, &mockSession{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tracking/ambulances/UNKNOWN/arrived", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func TestMarkArrivedUpstreamFailure(t *testing.T) {
	tracker := &mockTracker{
		markArrivedFn: func(context.Context, string) error {
			return errors.New("dispatch api unavailable")
		},
	}
	r := setupRouter(tracker, &mockJourneys{}, &mockSession{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tracking/ambulances/AMB-1/arrived", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", w.Code)
	}
}

func TestSelectAmbulance(t *testing.T) {
	tracker := &mockTracker{
		selectFn: func(id string) bool { return id == "AMB-1" },
	}
	r := setupRouter(tracker, &mockJourneys{}, &mockSession{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tracking/ambulances/AMB-1/select", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/tracking/ambulances/UNKNOWN/select", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for unknown ambulance, got %d", w.Code)
	}
}

func TestGetSession(t *testing.T) {
	r := setupRouter(&mockTracker{}, &mockJourneys{}, &mockSession{state: subscriber.StateConnected})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tracking/session", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var got struct {
		State string `json:"state"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if got.State != string(subscriber.StateConnected) {
		t.Errorf("expected state connected, got %q", got.State)
	}
}

func TestReconnect(t *testing.T) {
	called := false
	session := &mockSession{
		state:       subscriber.StateConnected,
		reconnectFn: func() error { called = true; return nil },
	}
	r := setupRouter(&mockTracker{}, &mockJourneys{}, session)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tracking/session/reconnect", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !called {
		t.Error("expected reconnect to be invoked")
	}
}

func TestReconnectFailure(t *testing.T) {
	session := &mockSession{
		state:       subscriber.StateGaveUp,
		reconnectFn: func() error { return errors.New("no attempts remaining") },
	}
	r := setupRouter(&mockTracker{}, &mockJourneys{}, session)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tracking/session/reconnect", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", w.Code)
	}
}

func TestGetJourneys(t *testing.T) {
	journeys := &mockJourneys{
		historyFn: func(_ context.Context, id string) ([]domain.Journey, error) {
			return []domain.Journey{{AmbulanceID: id, HospitalID: "H1", EmergencyID: "EM-1"}}, nil
		},
	}
	r := setupRouter(&mockTracker{}, journeys, &mockSession{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/journeys/AMB-1", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var got []domain.Journey
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(got) != 1 || got[0].AmbulanceID != "AMB-1" {
		t.Fatalf("unexpected journeys: %+v", got)
	}
}

func TestGetJourneysFailure(t *testing.T) {
	journeys := &mockJourneys{
		historyFn: func(context.Context, string) ([]domain.Journey, error) {
			return nil, errors.New("db down")
		},
	}
	r := setupRouter(&mockTracker{}, journeys, &mockSession{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/journeys/AMB-1", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", w.Code)
	}
}
