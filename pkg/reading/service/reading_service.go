package service

import (
	"context"
	"time"

	"agrisense/entities"
)

type ReadingService interface {
	// Ingest stores one sample for a registered device. source labels the
	// transport it arrived on (http, mqtt).
	Ingest(ctx context.Context, mac string, in ReadingInput, source string) (*entities.Reading, error)
	Recent(ctx context.Context, mac string, limit int) ([]entities.Reading, error)
}

// ReadingInput is the body of POST /devices/:mac/readings and of the MQTT payload.
type ReadingInput struct {
	CreatedAt    *time.Time `json:"created_at"`
	Temperature  *float64   `json:"temperature"`
	Humidity     float64    `json:"humidity"`
	Pressure     float64    `json:"pressure"`
	BatteryValue int        `json:"battery_value"`
	TBU          float64    `json:"tbu"`
	State        *string    `json:"state"`
	ErrorCode    int        `json:"error_code"`
	RSSI         int        `json:"rssi"`
}

// Publisher forwards stored readings downstream.
type Publisher interface {
	Publish(ctx context.Context, r *entities.Reading) error
}

const (
	SourceHTTP = "http"
	SourceMQTT = "mqtt"
)
