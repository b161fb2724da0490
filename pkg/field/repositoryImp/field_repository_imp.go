package repositoryImp

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"agrisense/entities"
	"agrisense/pkg/field/repository"
)

type fieldRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.FieldRepository { return &fieldRepo{db} }

func (r *fieldRepo) Create(ctx context.Context, f *entities.Field) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *fieldRepo) FindByID(ctx context.Context, id uuid.UUID) (*entities.Field, error) {
	var f entities.Field
	if err := r.db.WithContext(ctx).First(&f, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

// List is newest first; id breaks ties between fields created in the same instant.
func (r *fieldRepo) List(ctx context.Context) ([]entities.Field, error) {
	var out []entities.Field
	if err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *fieldRepo) Update(ctx context.Context, f *entities.Field) error {
	return r.db.WithContext(ctx).Save(f).Error
}

func (r *fieldRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		crops := tx.Model(&entities.Crop{}).Select("id").Where("field_id = ?", id)
		if err := tx.Where("crop_id IN (?)", crops).Delete(&entities.StageTransition{}).Error; err != nil {
			return err
		}
		if err := tx.Where("field_id = ?", id).Delete(&entities.Crop{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&entities.Device{}).Where("field_id = ?", id).Update("field_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&entities.Field{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
