package repositoryImp

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"agrisense/entities"
	"agrisense/pkg/device/repository"
)

type deviceRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.DeviceRepository { return &deviceRepo{db} }

func (r *deviceRepo) Create(ctx context.Context, d *entities.Device) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *deviceRepo) FindByMAC(ctx context.Context, mac string) (*entities.Device, error) {
	var d entities.Device
	if err := r.db.WithContext(ctx).First(&d, "mac = ?", mac).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *deviceRepo) List(ctx context.Context) ([]entities.Device, error) {
	var out []entities.Device
	err := r.db.WithContext(ctx).Order("created_at DESC, mac ASC").Find(&out).Error
	return out, err
}

func (r *deviceRepo) ListByField(ctx context.Context, fieldID uuid.UUID) ([]entities.Device, error) {
	var out []entities.Device
	err := r.db.WithContext(ctx).Where("field_id = ?", fieldID).Order("mac ASC").Find(&out).Error
	return out, err
}

func (r *deviceRepo) Slaves(ctx context.Context, masterMAC string) ([]entities.Device, error) {
	var out []entities.Device
	err := r.db.WithContext(ctx).Where("master_mac = ?", masterMAC).Order("mac ASC").Find(&out).Error
	return out, err
}

func (r *deviceRepo) Update(ctx context.Context, d *entities.Device) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *deviceRepo) Delete(ctx context.Context, mac string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entities.Device{}).Where("master_mac = ?", mac).Update("master_mac", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("device_mac = ?", mac).Delete(&entities.Reading{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&entities.Device{}, "mac = ?", mac)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
