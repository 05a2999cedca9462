package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sinaulab/api/internal/model"
)

// GormNoteRepository stores notes in MySQL.
type GormNoteRepository struct {
	db *gorm.DB
}

func NewGormNoteRepository(db *gorm.DB) *GormNoteRepository {
	return &GormNoteRepository{db: db}
}

func (r *GormNoteRepository) Create(ctx context.Context, note *model.Note) error {
	return r.db.WithContext(ctx).Create(note).Error
}

func (r *GormNoteRepository) List(ctx context.Context) ([]model.Note, error) {
	var notes []model.Note
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&notes).Error
	return notes, err
}
