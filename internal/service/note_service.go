package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sinaulab/api/internal/client"
	"github.com/sinaulab/api/internal/logger"
	"github.com/sinaulab/api/internal/model"
	"github.com/sinaulab/api/internal/repository"
	ws "github.com/sinaulab/api/internal/websocket"
)

// ErrEmptyNote is returned when a note has neither text nor an image.
var ErrEmptyNote = errors.New("note text or image is required")

// ImageUpload is an optional image attached to a note.
type ImageUpload struct {
	Reader      io.Reader
	Size        int64
	Filename    string
	ContentType string
}

// NoteService appends notes to the durable collection and pushes every
// new note to live feed subscribers. Notes are never updated or
// deleted.
type NoteService struct {
	notes   repository.NoteRepository
	storage client.StorageClient
	hub     *ws.Hub
}

func NewNoteService(notes repository.NoteRepository, storage client.StorageClient, hub *ws.Hub) *NoteService {
	return &NoteService{
		notes:   notes,
		storage: storage,
		hub:     hub,
	}
}

// Create uploads the optional image, appends one note, and broadcasts
// it. The append is a single write; there is no update-in-place.
func (s *NoteService) Create(ctx context.Context, text string, image *ImageUpload) (*model.Note, error) {
	text = strings.TrimSpace(text)
	if text == "" && image == nil {
		return nil, ErrEmptyNote
	}

	var imageURL *string
	if image != nil {
		url, err := s.uploadImage(ctx, image)
		if err != nil {
			return nil, fmt.Errorf("failed to upload image: %w", err)
		}
		imageURL = &url
	}

	note := &model.Note{
		ID:        uuid.New().String(),
		Text:      text,
		ImageURL:  imageURL,
		CreatedAt: time.Now(),
	}

	if err := s.notes.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to save note: %w", err)
	}

	if s.hub != nil {
		s.hub.BroadcastNoteCreated(note)
	}

	return note, nil
}

// List returns all notes, newest first.
func (s *NoteService) List(ctx context.Context) ([]model.Note, error) {
	return s.notes.List(ctx)
}

// uploadImage streams the image to object storage, consuming the
// upload's progress event stream until its terminal event.
func (s *NoteService) uploadImage(ctx context.Context, image *ImageUpload) (string, error) {
	key := fmt.Sprintf("images/%s%d", image.Filename, time.Now().UnixNano())

	if s.storage == nil {
		// Development fallback, mirrors the unconfigured-storage mocks
		// used elsewhere.
		return fmt.Sprintf("https://cdn.sinau.app/%s", key), nil
	}

	events := client.UploadWithProgress(ctx, s.storage, key, image.Reader, image.Size, image.ContentType)
	for event := range events {
		if event.Done {
			if event.Err != nil {
				return "", event.Err
			}
			return event.URL, nil
		}
		logger.Debug("image upload progress",
			logger.String("key", key),
			logger.Int64("transferred", event.BytesTransferred),
			logger.Int64("total", event.TotalBytes),
		)
	}

	return "", errors.New("upload ended without a result")
}
