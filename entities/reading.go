package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reading is one immutable telemetry sample.
type Reading struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	DeviceMAC    string          `gorm:"column:device_mac;size:17;not null;index:idx_reading_device_time,priority:1" json:"device_mac"`
	CreatedAt    time.Time       `gorm:"index:idx_reading_device_time,priority:2" json:"created_at"`
	Temperature  float64         `json:"temperature"`
	Humidity     float64         `json:"humidity"`
	Pressure     float64         `json:"pressure"`
	BatteryValue int             `json:"battery_value"`
	TBU          float64         `gorm:"column:tbu" json:"tbu"`
	State        *UpdateInterval `gorm:"size:6" json:"state"`
	ErrorCode    int             `json:"error_code"`
	RSSI         int             `gorm:"column:rssi" json:"rssi"`
}

// ErrorLowBattery is the error_code a device reports when its battery is low.
const ErrorLowBattery = 8

func (r *Reading) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
