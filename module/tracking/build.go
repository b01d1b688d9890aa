package tracking

import (
	"database/sql"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"

	handler "github.com/ashharzawarsyed/alertx-sub001/module/tracking/internal/handler/http"
	"github.com/ashharzawarsyed/alertx-sub001/module/tracking/internal/handler/subscriber"
	"github.com/ashharzawarsyed/alertx-sub001/module/tracking/internal/repository/database/postgres"
	"github.com/ashharzawarsyed/alertx-sub001/module/tracking/internal/repository/dispatch"
	"github.com/ashharzawarsyed/alertx-sub001/module/tracking/internal/repository/publisher/rabbitmq"
	"github.com/ashharzawarsyed/alertx-sub001/module/tracking/service"
)

// Connection failures that callers may want to branch on.
var (
	ErrAuthRejected     = subscriber.ErrAuthRejected
	ErrRetriesExhausted = subscriber.ErrRetriesExhausted
)

type Module struct {
	TrackerSvc *service.TrackerService
	JourneySvc *service.JourneyService
	handler    *handler.TrackingHandler
	session    *subscriber.Session
}

func Build(db *sql.DB, amqpConn *amqp.Connection, mqttOpts *mqtt.ClientOptions, hospitalID, dispatchAPIURL string) (*Module, error) {
	journeyRepo := postgres.NewJourneyRepo(db)

	alertPub, err := rabbitmq.NewAlertPublisher(amqpConn)
	if err != nil {
		return nil, fmt.Errorf("alert publisher: %w", err)
	}

	dispatchClient := dispatch.NewClient(dispatchAPIURL)

	trackerSvc := service.NewTrackerService(hospitalID, service.NewRouteService(), alertPub, journeyRepo, dispatchClient)
	journeySvc := service.NewJourneyService(journeyRepo)

	events := subscriber.NewEventSubscriber(trackerSvc)
	session := subscriber.NewSession(hospitalID, events, trackerSvc, subscriber.DefaultRetryPolicy())

	mqttOpts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		session.ConnectionLost(err)
	})
	session.SetClient(mqtt.NewClient(mqttOpts))

	h := handler.NewTrackingHandler(trackerSvc, journeySvc, session)

	return &Module{
		TrackerSvc: trackerSvc,
		JourneySvc: journeySvc,
		handler:    h,
		session:    session,
	}, nil
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	m.handler.Register(r)
}

// Connect joins the hospital room and starts receiving tracking events.
func (m *Module) Connect() error {
	return m.session.Connect()
}

func (m *Module) Disconnect() {
	m.session.Disconnect()
}

// SessionState reports the live connection state for health checks.
func (m *Module) SessionState() string {
	return string(m.session.State())
}
