package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sinaulab/api/internal/model"
)

// GormCallbackRecordRepository stores callback records in MySQL.
type GormCallbackRecordRepository struct {
	db *gorm.DB
}

func NewGormCallbackRecordRepository(db *gorm.DB) *GormCallbackRecordRepository {
	return &GormCallbackRecordRepository{db: db}
}

func (r *GormCallbackRecordRepository) Create(ctx context.Context, record *model.CallbackRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *GormCallbackRecordRepository) List(ctx context.Context) ([]model.CallbackRecord, error) {
	var records []model.CallbackRecord
	err := r.db.WithContext(ctx).
		Order("received_at DESC, id DESC").
		Find(&records).Error
	return records, err
}
