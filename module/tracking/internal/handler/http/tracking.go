package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ashharzawarsyed/alertx-sub001/module/tracking/domain"
	"github.com/ashharzawarsyed/alertx-sub001/module/tracking/internal/handler/subscriber"
	"github.com/ashharzawarsyed/alertx-sub001/module/tracking/service"
)

type trackerService interface {
	Snapshot() []domain.TrackedVehicle
	Vehicle(ambulanceID string) (domain.TrackedVehicle, bool)
	State(ambulanceID string) (domain.TrackingState, bool)
	Select(ambulanceID string) bool
	MarkArrived(ctx context.Context, ambulanceID string) error
}

type journeyService interface {
	History(ctx context.Context, ambulanceID string) ([]domain.Journey, error)
}

type trackingSession interface {
	State() subscriber.State
	Reconnect() error
}

type TrackingHandler struct {
	tracker  trackerService
	journeys journeyService
	session  trackingSession
}

func NewTrackingHandler(tracker trackerService, journeys journeyService, session trackingSession) *TrackingHandler {
	return &TrackingHandler{tracker: tracker, journeys: journeys, session: session}
}

func (h *TrackingHandler) Register(r *gin.RouterGroup) {
	r.GET("/tracking/ambulances", h.ListAmbulances)
	r.GET("/tracking/ambulances/:ambulance_id", h.GetAmbulance)
	r.GET("/tracking/ambulances/:ambulance_id/route", h.GetRoute)
	r.POST("/tracking/ambulances/:ambulance_id/arrived", h.MarkArrived)
	r.POST("/tracking/ambulances/:ambulance_id/select", h.SelectAmbulance)
	r.GET("/tracking/session", h.GetSession)
	r.POST("/tracking/session/reconnect", h.Reconnect)
	r.GET("/journeys/:ambulance_id", h.GetJourneys)
}

func (h *TrackingHandler) ListAmbulances(c *gin.Context) {
	c.JSON(http.StatusOK, h.tracker.Snapshot())
}

func (h *TrackingHandler) GetAmbulance(c *gin.Context) {
	id := c.Param("ambulance_id")

	vehicle, ok := h.tracker.Vehicle(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "ambulance not tracked"})
		return
	}
	state, _ := h.tracker.State(id)

	c.JSON(http.StatusOK, gin.H{
		"ambulance": vehicle,
		"tracking":  state,
	})
}

func (h *TrackingHandler) GetRoute(c *gin.Context) {
	id := c.Param("ambulance_id")

	state, ok := h.tracker.State(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "ambulance not tracked"})
		return
	}

	c.JSON(http.StatusOK, state)
}

func (h *TrackingHandler) MarkArrived(c *gin.Context) {
	id := c.Param("ambulance_id")

	err := h.tracker.MarkArrived(c.Request.Context(), id)
	switch {
	case errors.Is(err, service.ErrVehicleNotTracked):
		c.JSON(http.StatusNotFound, gin.H{"error": "ambulance not tracked"})
	case err != nil:
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to report arrival"})
	default:
		c.JSON(http.StatusOK, gin.H{"status": "arrived"})
	}
}

func (h *TrackingHandler) SelectAmbulance(c *gin.Context) {
	id := c.Param("ambulance_id")

	if !h.tracker.Select(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "ambulance not tracked"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"selected": id})
}

func (h *TrackingHandler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"state": h.session.State()})
}

func (h *TrackingHandler) Reconnect(c *gin.Context) {
	if err := h.session.Reconnect(); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"state": h.session.State(),
			"error": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": h.session.State()})
}

func (h *TrackingHandler) GetJourneys(c *gin.Context) {
	journeys, err := h.journeys.History(c.Request.Context(), c.Param("ambulance_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch journeys"})
		return
	}

	c.JSON(http.StatusOK, journeys)
}
