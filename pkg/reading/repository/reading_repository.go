package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"agrisense/entities"
)

type ReadingRepository interface {
	Create(ctx context.Context, r *entities.Reading) error
	// Recent is the device's newest readings first.
	Recent(ctx context.Context, mac string, limit int) ([]entities.Reading, error)
	LastAt(ctx context.Context, mac string) (*time.Time, error)
	// ColdestOnField only considers readings taken in [since, until].
	ColdestOnField(ctx context.Context, fieldID uuid.UUID, since, until time.Time) (*entities.Reading, error)
}
