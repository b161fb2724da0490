package repository

import (
	"context"

	"github.com/google/uuid"

	"agrisense/entities"
)

type FieldRepository interface {
	Create(ctx context.Context, f *entities.Field) error
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Field, error)
	List(ctx context.Context) ([]entities.Field, error)
	Update(ctx context.Context, f *entities.Field) error
	// Delete removes the field, its crops with their stage history, and
	// unassigns its devices, all or nothing.
	Delete(ctx context.Context, id uuid.UUID) error
}
