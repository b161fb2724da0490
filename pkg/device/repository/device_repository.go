package repository

import (
	"context"

	"github.com/google/uuid"

	"agrisense/entities"
)

type DeviceRepository interface {
	Create(ctx context.Context, d *entities.Device) error
	FindByMAC(ctx context.Context, mac string) (*entities.Device, error)
	List(ctx context.Context) ([]entities.Device, error)
	ListByField(ctx context.Context, fieldID uuid.UUID) ([]entities.Device, error)
	// Slaves is the derived master -> slaves relation, served by the master_mac index.
	Slaves(ctx context.Context, masterMAC string) ([]entities.Device, error)
	Update(ctx context.Context, d *entities.Device) error
	// Delete detaches the device's slaves and drops its readings with it.
	Delete(ctx context.Context, mac string) error
}
