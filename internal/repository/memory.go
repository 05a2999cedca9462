package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/sinaulab/api/internal/model"
)

// In-memory repositories back the service when MySQL is not configured
// (development mode) and in tests. Same append-only contract as the
// gorm implementations.

type MemoryNoteRepository struct {
	mu    sync.RWMutex
	notes []model.Note
}

func NewMemoryNoteRepository() *MemoryNoteRepository {
	return &MemoryNoteRepository{}
}

func (r *MemoryNoteRepository) Create(ctx context.Context, note *model.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, *note)
	return nil
}

func (r *MemoryNoteRepository) List(ctx context.Context) ([]model.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Note, len(r.notes))
	// Newest insertion first, then a stable sort keeps that order for
	// equal timestamps.
	for i, n := range r.notes {
		out[len(r.notes)-1-i] = n
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

type MemoryCallbackRecordRepository struct {
	mu      sync.RWMutex
	records []model.CallbackRecord
}

func NewMemoryCallbackRecordRepository() *MemoryCallbackRecordRepository {
	return &MemoryCallbackRecordRepository{}
}

func (r *MemoryCallbackRecordRepository) Create(ctx context.Context, record *model.CallbackRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, *record)
	return nil
}

func (r *MemoryCallbackRecordRepository) List(ctx context.Context) ([]model.CallbackRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.CallbackRecord, len(r.records))
	for i, rec := range r.records {
		out[len(r.records)-1-i] = rec
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ReceivedAt.After(out[j].ReceivedAt)
	})
	return out, nil
}
