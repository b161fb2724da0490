package entities

import (
	"time"

	"github.com/google/uuid"
)

type DeviceType string

const (
	DeviceMaster DeviceType = "MASTER"
	DeviceSlave  DeviceType = "SLAVE"
)

func (t DeviceType) Valid() bool { return t == DeviceMaster || t == DeviceSlave }

// UpdateInterval is the reporting cadence tier of a slave.
type UpdateInterval string

const (
	IntervalLow    UpdateInterval = "LOW"
	IntervalNormal UpdateInterval = "NORMAL"
	IntervalHigh   UpdateInterval = "HIGH"
)

func (u UpdateInterval) Valid() bool {
	return u == IntervalLow || u == IntervalNormal || u == IntervalHigh
}

// Device is keyed by its MAC. Slaves point at their master through MasterMAC;
// the reverse direction is a query, never a stored list.
type Device struct {
	MAC            string          `gorm:"column:mac;primaryKey;size:17" json:"mac"`
	Name           string          `json:"name"`
	DeviceType     DeviceType      `gorm:"size:6;not null" json:"device_type"`
	IsActive       bool            `gorm:"not null" json:"is_active"`
	IsSold         bool            `gorm:"not null" json:"is_sold"`
	UserID         string          `gorm:"index" json:"user_id"`
	FieldID        *uuid.UUID      `gorm:"type:uuid;index" json:"field_id"`
	UpdateInterval *UpdateInterval `gorm:"size:6" json:"update_interval"`
	MasterMAC      *string         `gorm:"column:master_mac;size:17;index" json:"master_mac"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
