package repositoryImp

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"agrisense/entities"
	"agrisense/pkg/catalog/repository"
)

type catalogRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.CatalogRepository { return &catalogRepo{db} }

func stagesByNumber(db *gorm.DB) *gorm.DB { return db.Order("number ASC") }

// CreateSpecies inserts the species with its nested varieties and stages in one transaction.
func (r *catalogRepo) CreateSpecies(ctx context.Context, s *entities.Species) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(s).Error
	})
}

func (r *catalogRepo) ListSpecies(ctx context.Context) ([]entities.Species, error) {
	var out []entities.Species
	err := r.db.WithContext(ctx).
		Preload("Varieties", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Order("common_name ASC").Find(&out).Error
	return out, err
}

func (r *catalogRepo) FindSpecies(ctx context.Context, id uuid.UUID) (*entities.Species, error) {
	var s entities.Species
	err := r.db.WithContext(ctx).
		Preload("Varieties", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Preload("Varieties.BloomStages", stagesByNumber).
		First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *catalogRepo) DeleteSpecies(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		varieties := tx.Model(&entities.Variety{}).Select("id").Where("species_id = ?", id)
		if err := tx.Where("variety_id IN (?)", varieties).Delete(&entities.BloomStage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("species_id = ?", id).Delete(&entities.Variety{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&entities.Species{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *catalogRepo) CreateVariety(ctx context.Context, v *entities.Variety) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Species").Create(v).Error
	})
}

func (r *catalogRepo) FindVariety(ctx context.Context, id uuid.UUID) (*entities.Variety, error) {
	var v entities.Variety
	err := r.db.WithContext(ctx).
		Preload("Species").
		Preload("BloomStages", stagesByNumber).
		First(&v, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *catalogRepo) DeleteVariety(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("variety_id = ?", id).Delete(&entities.BloomStage{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&entities.Variety{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *catalogRepo) CountCrops(ctx context.Context, varietyIDs ...uuid.UUID) (int64, error) {
	if len(varietyIDs) == 0 {
		return 0, nil
	}
	var n int64
	err := r.db.WithContext(ctx).Model(&entities.Crop{}).Where("variety_id IN ?", varietyIDs).Count(&n).Error
	return n, err
}

func (r *catalogRepo) CreateStages(ctx context.Context, stages []entities.BloomStage) error {
	if len(stages) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&stages).Error
	})
}

func (r *catalogRepo) ListStages(ctx context.Context, varietyID uuid.UUID) ([]entities.BloomStage, error) {
	var out []entities.BloomStage
	err := r.db.WithContext(ctx).Where("variety_id = ?", varietyID).Order("number ASC").Find(&out).Error
	return out, err
}

func (r *catalogRepo) FindStage(ctx context.Context, id uuid.UUID) (*entities.BloomStage, error) {
	var b entities.BloomStage
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *catalogRepo) NextStage(ctx context.Context, varietyID uuid.UUID, number int) (*entities.BloomStage, error) {
	var b entities.BloomStage
	err := r.db.WithContext(ctx).
		Where("variety_id = ? AND number > ?", varietyID, number).
		Order("number ASC").First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}
