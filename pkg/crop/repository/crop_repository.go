package repository

import (
	"context"

	"github.com/google/uuid"

	"agrisense/entities"
)

type CropRepository interface {
	// Create inserts the crop and, when tr is non-nil, its first stage transition.
	Create(ctx context.Context, c *entities.Crop, tr *entities.StageTransition) error
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Crop, error)
	List(ctx context.Context) ([]entities.Crop, error)
	ListByField(ctx context.Context, fieldID uuid.UUID) ([]entities.Crop, error)
	// Update saves the crop columns and appends tr when non-nil.
	Update(ctx context.Context, c *entities.Crop, tr *entities.StageTransition) error
	Delete(ctx context.Context, id uuid.UUID) error
	Transitions(ctx context.Context, cropID uuid.UUID) ([]entities.StageTransition, error)
}
