package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/sinaulab/api/internal/logger"
	"github.com/sinaulab/api/internal/model"
	"github.com/sinaulab/api/internal/repository"
	ws "github.com/sinaulab/api/internal/websocket"
)

const TaskTypeArchive = "audio:archive"

// CallbackService records completion notifications from the external
// API. Every inbound body becomes exactly one immutable record, stored
// verbatim; nothing is validated and nothing is deduplicated.
type CallbackService struct {
	records     repository.CallbackRecordRepository
	hub         *ws.Hub
	asynqClient *asynq.Client
	gallery     *GalleryService
}

func NewCallbackService(records repository.CallbackRecordRepository, hub *ws.Hub, asynqClient *asynq.Client, gallery *GalleryService) *CallbackService {
	return &CallbackService{
		records:     records,
		hub:         hub,
		asynqClient: asynqClient,
		gallery:     gallery,
	}
}

// Record stores one raw callback body with a server receipt timestamp.
// The returned error is for logging only: the HTTP layer acknowledges
// the delivery regardless, since the delivering party cannot act on a
// failure and would retry-storm.
func (s *CallbackService) Record(ctx context.Context, body []byte) error {
	record := &model.CallbackRecord{
		ID:         uuid.New().String(),
		ReceivedAt: time.Now(),
		RawPayload: string(body),
	}

	if err := s.records.Create(ctx, record); err != nil {
		return err
	}

	tracks := model.ParseCallbackTracks(body)

	// Best-effort side work: cache invalidation, live feed push,
	// archive tasks. None of it affects the acknowledgment.
	if s.gallery != nil {
		s.gallery.Invalidate(ctx)
	}
	if s.hub != nil {
		s.hub.BroadcastGalleryUpdated(record.ReceivedAt, len(tracks))
	}
	s.enqueueArchives(tracks)

	return nil
}

func (s *CallbackService) enqueueArchives(tracks []model.Track) {
	if s.asynqClient == nil {
		return
	}
	for _, track := range tracks {
		if !track.Ready() {
			continue
		}
		task, err := NewArchiveTask(track)
		if err != nil {
			logger.Error("failed to build archive task", logger.Err(err))
			continue
		}
		if _, err := s.asynqClient.Enqueue(task,
			asynq.Queue("archive"),
			asynq.MaxRetry(3),
			asynq.Retention(24*time.Hour),
		); err != nil {
			logger.Error("failed to enqueue archive task",
				logger.String("trackId", track.ID), logger.Err(err))
		}
	}
}

// NewArchiveTask builds the asynq task that mirrors a ready track's
// stream audio into object storage.
func NewArchiveTask(track model.Track) (*asynq.Task, error) {
	data, err := json.Marshal(track)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeArchive, data), nil
}
