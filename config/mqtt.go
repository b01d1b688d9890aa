package config

import (
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// NewMQTTOptions builds connection options without connecting. The tracking
// session owns connect timing and retries, so automatic reconnect stays off.
// Hospital credentials ride on the CONNECT packet and are verified broker-side.
func NewMQTTOptions(cfg *Config) *mqtt.ClientOptions {
	return mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientID + "-" + uuid.NewString()[:8]).
		SetUsername(cfg.HospitalID).
		SetPassword(cfg.AuthToken).
		SetCleanSession(true).
		SetAutoReconnect(false).
		SetConnectTimeout(10 * time.Second)
}
