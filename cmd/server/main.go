package main

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/ashharzawarsyed/alertx-sub001/config"
	"github.com/ashharzawarsyed/alertx-sub001/module/tracking"
)

func main() {
	cfg := config.Load()

	db, err := config.NewPostgres(cfg)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer func() { _ = db.Close() }()

	amqpConn, err := config.NewRabbitMQ(cfg)
	if err != nil {
		log.Fatalf("rabbitmq: %v", err)
	}
	defer func() { _ = amqpConn.Close() }()

	mqttOpts := config.NewMQTTOptions(cfg)

	mod, err := tracking.Build(db, amqpConn, mqttOpts, cfg.HospitalID, cfg.DispatchAPIURL)
	if err != nil {
		log.Fatalf("tracking module: %v", err)
	}
	defer mod.Disconnect()

	if err := mod.Connect(); err != nil {
		if errors.Is(err, tracking.ErrAuthRejected) {
			log.Fatalf("tracking session: credentials rejected for hospital %s", cfg.HospitalID)
		}
		// Exhausted retries still leave a working REST surface; the session
		// can be revived via POST /tracking/session/reconnect.
		log.Printf("tracking session: %v (serving without live updates)", err)
	}

	r := gin.Default()

	health := config.NewHealthChecker(db, amqpConn, mod.SessionState)
	health.Register(r)

	mod.RegisterRoutes(&r.RouterGroup)

	log.Printf("listening on :%s", cfg.HTTPPort)
	if err := r.Run(":" + cfg.HTTPPort); err != nil {
		log.Fatalf("server: %v", err)
	}
}
