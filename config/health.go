package config

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
)

type HealthChecker struct {
	db           *sql.DB
	amqpConn     *amqp.Connection
	sessionState func() string
}

// NewHealthChecker takes the session state as a closure so this package
// stays decoupled from the tracking module's internals.
func NewHealthChecker(db *sql.DB, amqpConn *amqp.Connection, sessionState func() string) *HealthChecker {
	return &HealthChecker{db: db, amqpConn: amqpConn, sessionState: sessionState}
}

func (h *HealthChecker) Register(r *gin.Engine) {
	r.GET("/healthz", h.Handle)
}

func (h *HealthChecker) Handle(c *gin.Context) {
	status := http.StatusOK
	deps := gin.H{}

	if err := h.db.PingContext(c.Request.Context()); err != nil {
		deps["postgres"] = gin.H{"status": "down", "error": err.Error()}
		status = http.StatusServiceUnavailable
	} else {
		deps["postgres"] = gin.H{"status": "up"}
	}

	if h.amqpConn.IsClosed() {
		deps["rabbitmq"] = gin.H{"status": "down", "error": "connection closed"}
		status = http.StatusServiceUnavailable
	} else {
		deps["rabbitmq"] = gin.H{"status": "up"}
	}

	if state := h.sessionState(); state != "connected" {
		deps["tracking_session"] = gin.H{"status": "down", "state": state}
		status = http.StatusServiceUnavailable
	} else {
		deps["tracking_session"] = gin.H{"status": "up", "state": state}
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "unhealthy"
	}

	c.JSON(status, gin.H{
		"status":       overall,
		"dependencies": deps,
	})
}
