package service

import (
	"context"

	"github.com/google/uuid"

	"agrisense/entities"
)

type FieldService interface {
	Create(ctx context.Context, in CreateField) (*entities.Field, error)
	Get(ctx context.Context, id uuid.UUID) (*entities.Field, error)
	List(ctx context.Context) ([]entities.Field, error)
	Update(ctx context.Context, id uuid.UUID, patch FieldPatch) (*entities.Field, error)
	Delete(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// CreateField uses pointers for the coordinates so a missing value is
// distinguishable from 0.
type CreateField struct {
	Name      string   `json:"name"`
	IsBio     bool     `json:"is_bio"`
	Longitude *float64 `json:"longitude"`
	Latitude  *float64 `json:"latitude"`
	UserID    string   `json:"user_id"`
}

// FieldPatch updates only the non-nil fields. An omitted coordinate keeps its current value.
type FieldPatch struct {
	Name      *string  `json:"name"`
	IsBio     *bool    `json:"is_bio"`
	Longitude *float64 `json:"longitude"`
	Latitude  *float64 `json:"latitude"`
	UserID    *string  `json:"user_id"`
}
