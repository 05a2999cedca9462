package repository

import (
	"context"

	"github.com/sinaulab/api/internal/model"
)

// NoteRepository persists the append-only notes collection.
type NoteRepository interface {
	Create(ctx context.Context, note *model.Note) error
	// List returns all notes ordered by creation time, newest first.
	List(ctx context.Context) ([]model.Note, error)
}

// CallbackRecordRepository persists the append-only callback records
// collection. Records are immutable once written.
type CallbackRecordRepository interface {
	Create(ctx context.Context, record *model.CallbackRecord) error
	// List returns all records ordered by receipt time, newest first.
	List(ctx context.Context) ([]model.CallbackRecord, error)
}
