package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Crop struct {
	ID                  uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	FieldID             uuid.UUID   `gorm:"type:uuid;index;not null" json:"field_id"`
	VarietyID           uuid.UUID   `gorm:"type:uuid;index;not null" json:"variety_id"`
	PlantedAt           time.Time   `gorm:"not null" json:"planted_at"`
	CurrentBloomStageID *uuid.UUID  `gorm:"type:uuid" json:"current_bloom_stage_id"`
	Field               *Field      `gorm:"foreignKey:FieldID" json:"field,omitempty"`
	Variety             *Variety    `gorm:"foreignKey:VarietyID" json:"variety,omitempty"`
	CurrentBloomStage   *BloomStage `gorm:"foreignKey:CurrentBloomStageID" json:"current_bloom_stage,omitempty"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

// StageTransition is an append-only record of a crop entering a bloom stage.
type StageTransition struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	CropID      uuid.UUID   `gorm:"type:uuid;not null;index:idx_stage_transition_crop_time,priority:1" json:"crop_id"`
	FromStageID *uuid.UUID  `gorm:"type:uuid" json:"from_stage_id"`
	ToStageID   uuid.UUID   `gorm:"type:uuid;not null" json:"to_stage_id"`
	ChangedAt   time.Time   `gorm:"not null;index:idx_stage_transition_crop_time,priority:2" json:"changed_at"`
	ToStage     *BloomStage `gorm:"foreignKey:ToStageID" json:"to_stage,omitempty"`
}

func (c *Crop) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (s *StageTransition) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
