package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sinaulab/api/internal/client"
	"github.com/sinaulab/api/internal/model"
)

// Validation and precondition failures surfaced by the music service.
var (
	ErrEmptyPrompt   = errors.New("prompt is required")
	ErrEmptyTaskID   = errors.New("taskId is required")
	ErrNotConfigured = errors.New("SUNO_API_KEY is not configured")
)

// MusicService submits generation jobs to the external API and proxies
// status reads. It writes nothing locally: the durable trace of a job
// is the callback record the receiver stores later.
type MusicService struct {
	suno client.MusicGenerator
}

func NewMusicService(suno client.MusicGenerator) *MusicService {
	return &MusicService{suno: suno}
}

// Generate forwards a prompt to the external API and returns the
// opaque task id it minted.
func (s *MusicService) Generate(ctx context.Context, prompt string) (*model.GenerateMusicResponse, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}
	if s.suno == nil || !s.suno.IsConfigured() {
		return nil, ErrNotConfigured
	}

	taskID, err := s.suno.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return &model.GenerateMusicResponse{
		Success: true,
		Message: "Task submitted to Suno API.",
		TaskID:  taskID,
	}, nil
}

// GetStatus reads the task's current state from the external API and
// returns the upstream payload verbatim. Read-through proxy only; the
// credential never reaches the client.
func (s *MusicService) GetStatus(ctx context.Context, taskID string) (*model.MusicStatusResponse, error) {
	if strings.TrimSpace(taskID) == "" {
		return nil, ErrEmptyTaskID
	}
	if s.suno == nil || !s.suno.IsConfigured() {
		return nil, ErrNotConfigured
	}

	data, err := s.suno.GetGenerationDetails(ctx, taskID)
	if err != nil {
		return nil, err
	}

	return &model.MusicStatusResponse{
		Success: true,
		Data:    data,
	}, nil
}
