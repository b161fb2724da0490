package repositoryImp

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"agrisense/entities"
	"agrisense/pkg/crop/repository"
)

type cropRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.CropRepository { return &cropRepo{db} }

func expanded(db *gorm.DB) *gorm.DB {
	return db.Preload("Variety.Species").Preload("Field").Preload("CurrentBloomStage")
}

func (r *cropRepo) Create(ctx context.Context, c *entities.Crop, tr *entities.StageTransition) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(c).Error; err != nil {
			return err
		}
		if tr != nil {
			return tx.Omit(clause.Associations).Create(tr).Error
		}
		return nil
	})
}

func (r *cropRepo) FindByID(ctx context.Context, id uuid.UUID) (*entities.Crop, error) {
	var c entities.Crop
	if err := expanded(r.db.WithContext(ctx)).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *cropRepo) List(ctx context.Context) ([]entities.Crop, error) {
	var out []entities.Crop
	err := expanded(r.db.WithContext(ctx)).Order("planted_at DESC, id DESC").Find(&out).Error
	return out, err
}

func (r *cropRepo) ListByField(ctx context.Context, fieldID uuid.UUID) ([]entities.Crop, error) {
	var out []entities.Crop
	err := expanded(r.db.WithContext(ctx)).Where("field_id = ?", fieldID).Order("planted_at DESC, id DESC").Find(&out).Error
	return out, err
}

func (r *cropRepo) Update(ctx context.Context, c *entities.Crop, tr *entities.StageTransition) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(c).Error; err != nil {
			return err
		}
		if tr != nil {
			return tx.Omit(clause.Associations).Create(tr).Error
		}
		return nil
	})
}

func (r *cropRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("crop_id = ?", id).Delete(&entities.StageTransition{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&entities.Crop{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *cropRepo) Transitions(ctx context.Context, cropID uuid.UUID) ([]entities.StageTransition, error) {
	var out []entities.StageTransition
	err := r.db.WithContext(ctx).Preload("ToStage").
		Where("crop_id = ?", cropID).Order("changed_at ASC, id ASC").Find(&out).Error
	return out, err
}
