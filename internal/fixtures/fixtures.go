// Package fixtures builds the catalog and fields tests plant crops on.
package fixtures

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"agrisense/entities"
	"agrisense/pkg/geo"
)

// GoldenDelicious is the apple stage table, keyed by stage number.
var GoldenDelicious = []entities.BloomStage{
	{Number: 1, Name: "Silver Tip", CritTemp10: -11.9, CritTemp90: -17.6},
	{Number: 2, Name: "Green Tip", CritTemp10: -7.5, CritTemp90: -15.7},
	{Number: 3, Name: "Half-Inch Green", CritTemp10: -5.0, CritTemp90: -10.2},
	{Number: 4, Name: "Tight Cluster", CritTemp10: -2.8, CritTemp90: -6.3},
	{Number: 5, Name: "First Pink", CritTemp10: -2.3, CritTemp90: -4.4},
	{Number: 6, Name: "Full Pink", CritTemp10: -2.0, CritTemp90: -4.0},
	{Number: 7, Name: "Full Bloom", CritTemp10: -2.0, CritTemp90: -3.9},
	{Number: 8, Name: "Post Bloom", CritTemp10: -1.9, CritTemp90: -3.0},
}

// Variety inserts a species with one variety carrying stages and returns the
// variety with its stages in number order.
func Variety(t *testing.T, db *gorm.DB, name string, stages []entities.BloomStage) *entities.Variety {
	t.Helper()
	sp := entities.Species{ID: uuid.New(), CommonName: name + " species"}
	v := entities.Variety{ID: uuid.New(), SpeciesID: sp.ID, Name: name}
	for _, st := range stages {
		st.ID = uuid.New()
		st.VarietyID = v.ID
		v.BloomStages = append(v.BloomStages, st)
	}
	sp.Varieties = []entities.Variety{v}
	if err := db.Create(&sp).Error; err != nil {
		t.Fatalf("create variety: %v", err)
	}
	var out entities.Variety
	if err := db.Preload("BloomStages", func(db *gorm.DB) *gorm.DB { return db.Order("number ASC") }).
		First(&out, "id = ?", v.ID).Error; err != nil {
		t.Fatalf("reload variety: %v", err)
	}
	return &out
}

func Field(t *testing.T, db *gorm.DB, name string, lon, lat float64) *entities.Field {
	t.Helper()
	pt, err := geo.NewPoint(lon, lat)
	if err != nil {
		t.Fatalf("point: %v", err)
	}
	f := &entities.Field{ID: uuid.New(), Name: name, Point: pt, UserID: "alice"}
	if err := db.Create(f).Error; err != nil {
		t.Fatalf("create field: %v", err)
	}
	return f
}

// SoldSlave registers a sold slave on field at the NORMAL tier.
func SoldSlave(t *testing.T, db *gorm.DB, mac string, fieldID uuid.UUID) *entities.Device {
	t.Helper()
	tier := entities.IntervalNormal
	d := &entities.Device{MAC: mac, Name: mac, DeviceType: entities.DeviceSlave, IsActive: true, IsSold: true, UserID: "alice", FieldID: &fieldID, UpdateInterval: &tier}
	if err := db.Create(d).Error; err != nil {
		t.Fatalf("create device: %v", err)
	}
	return d
}

func Reading(t *testing.T, db *gorm.DB, mac string, temp float64, at time.Time) *entities.Reading {
	t.Helper()
	r := &entities.Reading{DeviceMAC: mac, Temperature: temp, CreatedAt: at.UTC()}
	if err := db.Create(r).Error; err != nil {
		t.Fatalf("create reading: %v", err)
	}
	return r
}
