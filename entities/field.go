package entities

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"agrisense/pkg/geo"
)

type Field struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	IsBio     bool      `gorm:"not null" json:"is_bio"`
	Point     geo.Point `gorm:"column:gps_coords;not null" json:"-"`
	UserID    string    `gorm:"index;not null" json:"user_id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (f *Field) BeforeCreate(*gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// MarshalJSON flattens the point into longitude/latitude.
func (f Field) MarshalJSON() ([]byte, error) {
	type alias Field
	return json.Marshal(struct {
		alias
		Longitude float64 `json:"longitude"`
		Latitude  float64 `json:"latitude"`
	}{alias(f), f.Point.Longitude, f.Point.Latitude})
}
