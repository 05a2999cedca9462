package model

import "time"

// Note is one user-authored note. Notes are append-only: once written
// they are never updated or deleted.
type Note struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Text      string    `json:"text" gorm:"type:text"`
	ImageURL  *string   `json:"imageUrl" gorm:"size:1024"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
}

func (Note) TableName() string {
	return "notes"
}

// CreateNoteResponse is returned after a successful note append.
type CreateNoteResponse struct {
	Success bool  `json:"success"`
	Note    *Note `json:"note"`
}

// ListNotesResponse carries all notes, newest first.
type ListNotesResponse struct {
	Notes []Note `json:"notes"`
}
