package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Species struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CommonName     string    `gorm:"not null" json:"common_name"`
	ScientificName string    `json:"scientific_name"`
	Varieties      []Variety `gorm:"foreignKey:SpeciesID" json:"varieties,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type Variety struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	SpeciesID   uuid.UUID    `gorm:"type:uuid;index;not null" json:"species_id"`
	Name        string       `gorm:"not null" json:"name"`
	Species     *Species     `gorm:"foreignKey:SpeciesID" json:"species,omitempty"`
	BloomStages []BloomStage `gorm:"foreignKey:VarietyID" json:"bloom_stages,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// BloomStage numbers are unique per variety and define the stage order.
type BloomStage struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	VarietyID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_bloom_stage_variety_number,priority:1" json:"variety_id"`
	Number     int       `gorm:"not null;uniqueIndex:idx_bloom_stage_variety_number,priority:2" json:"number"`
	Name       string    `gorm:"not null" json:"name"`
	CritTemp10 float64   `gorm:"column:crit_temp_10" json:"crit_temp_10"` // 10% bud kill
	CritTemp90 float64   `gorm:"column:crit_temp_90" json:"crit_temp_90"` // 90% bud kill
}

func (s *Species) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (v *Variety) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

func (b *BloomStage) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
