package repository

import (
	"context"

	"github.com/google/uuid"

	"agrisense/entities"
)

type CatalogRepository interface {
	CreateSpecies(ctx context.Context, s *entities.Species) error
	ListSpecies(ctx context.Context) ([]entities.Species, error)
	FindSpecies(ctx context.Context, id uuid.UUID) (*entities.Species, error)
	DeleteSpecies(ctx context.Context, id uuid.UUID) error

	CreateVariety(ctx context.Context, v *entities.Variety) error
	FindVariety(ctx context.Context, id uuid.UUID) (*entities.Variety, error)
	DeleteVariety(ctx context.Context, id uuid.UUID) error
	// CountCrops counts crops planted with any of the given varieties.
	CountCrops(ctx context.Context, varietyIDs ...uuid.UUID) (int64, error)

	CreateStages(ctx context.Context, stages []entities.BloomStage) error
	ListStages(ctx context.Context, varietyID uuid.UUID) ([]entities.BloomStage, error)
	FindStage(ctx context.Context, id uuid.UUID) (*entities.BloomStage, error)
	// NextStage is the lowest-numbered stage of the variety above number.
	NextStage(ctx context.Context, varietyID uuid.UUID, number int) (*entities.BloomStage, error)
}
