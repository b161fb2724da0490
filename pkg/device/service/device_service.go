package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"agrisense/entities"
)

type DeviceService interface {
	Register(ctx context.Context, in RegisterDevice) (*entities.Device, error)
	Get(ctx context.Context, mac string) (*DeviceDetail, error)
	List(ctx context.Context) ([]entities.Device, error)
	ListByField(ctx context.Context, fieldID uuid.UUID) ([]entities.Device, error)
	Update(ctx context.Context, mac string, patch DevicePatch) (*entities.Device, error)
	Remove(ctx context.Context, mac string) (string, error)
	Liveness(ctx context.Context, mac string) (*Liveness, error)
}

type RegisterDevice struct {
	MAC            string     `json:"mac"`
	Name           string     `json:"name"`
	DeviceType     string     `json:"device_type"`
	IsActive       *bool      `json:"is_active"`
	IsSold         bool       `json:"is_sold"`
	UserID         string     `json:"user_id"`
	FieldID        *uuid.UUID `json:"field_id"`
	UpdateInterval *string    `json:"update_interval"`
	MasterMAC      *string    `json:"master_mac"`
}

// DevicePatch updates only non-nil fields. An empty string clears
// field_id or master_mac.
type DevicePatch struct {
	Name           *string `json:"name"`
	DeviceType     *string `json:"device_type"`
	IsActive       *bool   `json:"is_active"`
	IsSold         *bool   `json:"is_sold"`
	UserID         *string `json:"user_id"`
	FieldID        *string `json:"field_id"`
	UpdateInterval *string `json:"update_interval"`
	MasterMAC      *string `json:"master_mac"`
}

// DeviceDetail is a device with its field, its slaves and its latest readings.
type DeviceDetail struct {
	entities.Device
	Field    *entities.Field    `json:"field"`
	Slaves   []entities.Device  `json:"slaves"`
	Readings []entities.Reading `json:"readings"`
}

type Liveness struct {
	MAC            string                   `json:"mac"`
	UpdateInterval *entities.UpdateInterval `json:"update_interval"`
	ExpectedGapSec int                      `json:"expected_gap_sec"`
	LastReadingAt  *time.Time               `json:"last_reading_at"`
	Silent         bool                     `json:"silent"`
}

// RecentReadings is how many readings a device detail carries.
const RecentReadings = 10
