package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"agrisense/entities"
)

type CropService interface {
	Plant(ctx context.Context, in PlantCrop) (*entities.Crop, error)
	Get(ctx context.Context, id uuid.UUID) (*entities.Crop, error)
	List(ctx context.Context) ([]entities.Crop, error)
	ListByField(ctx context.Context, fieldID uuid.UUID) ([]entities.Crop, error)
	Update(ctx context.Context, id uuid.UUID, patch CropPatch) (*entities.Crop, error)
	Delete(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	// AdvanceStage moves the crop to stageID, or to the next stage by number when stageID is nil.
	AdvanceStage(ctx context.Context, id uuid.UUID, stageID *uuid.UUID) (*entities.Crop, error)
	History(ctx context.Context, id uuid.UUID) ([]entities.StageTransition, error)
}

type PlantCrop struct {
	FieldID             uuid.UUID  `json:"field_id"`
	VarietyID           uuid.UUID  `json:"variety_id"`
	PlantedAt           *time.Time `json:"planted_at"`
	CurrentBloomStageID *uuid.UUID `json:"current_bloom_stage_id"`
}

// CropPatch updates only non-nil fields. An empty current_bloom_stage_id
// clears the stage.
type CropPatch struct {
	FieldID             *uuid.UUID `json:"field_id"`
	VarietyID           *uuid.UUID `json:"variety_id"`
	PlantedAt           *time.Time `json:"planted_at"`
	CurrentBloomStageID *string    `json:"current_bloom_stage_id"`
}
