package repositoryImp

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"agrisense/entities"
	"agrisense/pkg/reading/repository"
)

type readingRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.ReadingRepository { return &readingRepo{db} }

func (r *readingRepo) Create(ctx context.Context, m *entities.Reading) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *readingRepo) Recent(ctx context.Context, mac string, limit int) ([]entities.Reading, error) {
	var out []entities.Reading
	err := r.db.WithContext(ctx).Where("device_mac = ?", mac).
		Order("created_at DESC, id DESC").Limit(limit).Find(&out).Error
	return out, err
}

func (r *readingRepo) LastAt(ctx context.Context, mac string) (*time.Time, error) {
	var last entities.Reading
	err := r.db.WithContext(ctx).Select("created_at").Where("device_mac = ?", mac).
		Order("created_at DESC").Take(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &last.CreatedAt, nil
}

func (r *readingRepo) ColdestOnField(ctx context.Context, fieldID uuid.UUID, since, until time.Time) (*entities.Reading, error) {
	var out entities.Reading
	err := r.db.WithContext(ctx).
		Joins("JOIN devices ON devices.mac = readings.device_mac").
		Where("devices.field_id = ? AND readings.created_at >= ? AND readings.created_at <= ?", fieldID, since.UTC(), until.UTC()).
		Order("readings.temperature ASC, readings.created_at DESC").
		Take(&out).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}
