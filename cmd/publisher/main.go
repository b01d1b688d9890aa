package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/ashharzawarsyed/alertx-sub001/module/tracking/domain"
)

// Mock dispatch server. Simulates one ambulance driving a two-leg journey
// (station to patient, patient to hospital) and publishes the same wire
// events a real dispatch server would emit into the hospital room.

const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randomAmbulanceID() string {
	return fmt.Sprintf("AMB-%c%03d", charset[rand.Intn(26)], rand.Intn(1000))
}

type geoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func point(p domain.GeoPoint) geoPoint {
	return geoPoint{Lat: p.Lat, Lng: p.Lng}
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <interval_seconds>\n", os.Args[0])
		os.Exit(1)
	}

	intervalSec, err := strconv.Atoi(os.Args[1])
	if err != nil || intervalSec <= 0 {
		fmt.Fprintf(os.Stderr, "error: interval must be a positive integer\n")
		os.Exit(1)
	}

	broker := "tcp://localhost:1883"
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		broker = v
	}
	hospitalID := "H1"
	if v := os.Getenv("HOSPITAL_ID"); v != "" {
		hospitalID = v
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("alertx-mock-dispatch")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("mqtt connect: %v", token.Error())
	}
	defer client.Disconnect(250)

	station := domain.GeoPoint{Lat: 33.6522, Lng: 73.0366}
	patient := domain.GeoPoint{Lat: 33.6844, Lng: 73.0479}
	hospital := domain.GeoPoint{Lat: 33.7000, Lng: 73.0550}

	toPatient, err := domain.InterpolatePath(station, patient, 30)
	if err != nil {
		log.Fatalf("interpolate: %v", err)
	}
	toHospital, err := domain.InterpolatePath(patient, hospital, 30)
	if err != nil {
		log.Fatalf("interpolate: %v", err)
	}

	ambulanceID := randomAmbulanceID()
	emergencyID := uuid.NewString()

	publish := func(event string, payload any) {
		body, _ := json.Marshal(payload)
		topic := fmt.Sprintf("hospital/%s/%s", hospitalID, event)
		token := client.Publish(topic, 1, false, body)
		token.Wait()
		log.Printf("published to %s: %s", topic, body)
	}

	log.Printf("connected to %s, driving %s every %ds...", broker, ambulanceID, intervalSec)

	publish("emergency:dispatched", map[string]any{
		"ambulance": map[string]any{
			"ambulanceId":     ambulanceID,
			"hospitalId":      hospitalID,
			"currentPosition": point(station),
			"status":          domain.StatusDispatched,
			"currentAssignment": map[string]any{
				"emergencyId":      emergencyID,
				"origin":           point(station),
				"patientLocation":  point(patient),
				"hospitalLocation": point(hospital),
			},
		},
		"destinationHospitalId": hospitalID,
	})

	ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)
	defer ticker.Stop()

	drive := func(path []domain.GeoPoint) {
		for _, pos := range path {
			<-ticker.C
			publish("ambulance:location", map[string]any{
				"ambulanceId": ambulanceID,
				"location":    point(pos),
				"heading":     rand.Float64() * 360,
				"speed":       40 + rand.Float64()*30,
			})
		}
	}

	publish("ambulance:status", map[string]any{
		"ambulanceId": ambulanceID,
		"status":      domain.StatusEnRoute,
	})
	drive(toPatient)

	publish("ambulance:status", map[string]any{
		"ambulanceId": ambulanceID,
		"status":      domain.StatusAtPatient,
	})
	<-ticker.C

	publish("ambulance:status", map[string]any{
		"ambulanceId": ambulanceID,
		"status":      domain.StatusTransporting,
	})
	drive(toHospital)

	publish("ambulance:arrived", map[string]any{
		"ambulanceId": ambulanceID,
	})

	log.Printf("journey complete")
}
