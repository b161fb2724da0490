package service

import (
	"context"

	"github.com/google/uuid"

	"agrisense/entities"
)

type CatalogService interface {
	CreateSpecies(ctx context.Context, in SpeciesInput) (*entities.Species, error)
	ListSpecies(ctx context.Context) ([]entities.Species, error)
	GetSpecies(ctx context.Context, id uuid.UUID) (*entities.Species, error)
	DeleteSpecies(ctx context.Context, id uuid.UUID) error

	AddVariety(ctx context.Context, speciesID uuid.UUID, in VarietyInput) (*entities.Variety, error)
	GetVariety(ctx context.Context, id uuid.UUID) (*entities.Variety, error)
	DeleteVariety(ctx context.Context, id uuid.UUID) error

	AddStages(ctx context.Context, varietyID uuid.UUID, in []StageInput) ([]entities.BloomStage, error)
	ListStages(ctx context.Context, varietyID uuid.UUID) ([]entities.BloomStage, error)
}

type StageInput struct {
	Name       string  `json:"name"`
	Number     int     `json:"number"`
	CritTemp10 float64 `json:"crit_temp_10"`
	CritTemp90 float64 `json:"crit_temp_90"`
}

type VarietyInput struct {
	Name   string       `json:"name"`
	Stages []StageInput `json:"stages"`
}

type SpeciesInput struct {
	CommonName     string         `json:"common_name"`
	ScientificName string         `json:"scientific_name"`
	Varieties      []VarietyInput `json:"varieties"`
}
