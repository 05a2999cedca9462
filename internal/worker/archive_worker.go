package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hibiken/asynq"

	"github.com/sinaulab/api/internal/client"
	"github.com/sinaulab/api/internal/logger"
	"github.com/sinaulab/api/internal/model"
)

// ArchiveWorker mirrors ready tracks' stream audio into object
// storage. The external API hosts generated audio on its own CDN with
// no retention promise; archiving keeps a durable copy without
// touching the callback record schema.
type ArchiveWorker struct {
	storage    client.StorageClient
	httpClient *http.Client
}

func NewArchiveWorker(storage client.StorageClient) *ArchiveWorker {
	return &ArchiveWorker{
		storage: storage,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

// ProcessTask downloads a track's stream audio and uploads it under
// tracks/<id>.mp3. Returning an error lets asynq retry the task.
func (w *ArchiveWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var track model.Track
	if err := json.Unmarshal(t.Payload(), &track); err != nil {
		return fmt.Errorf("failed to unmarshal archive payload: %w", err)
	}

	if track.StreamAudioURL == "" {
		logger.Warn("archive task for track without audio", logger.String("trackId", track.ID))
		return nil
	}

	if w.storage == nil {
		logger.Info("storage not configured, skipping archive", logger.String("trackId", track.ID))
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, track.StreamAudioURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("audio download failed with status %d", resp.StatusCode)
	}

	key := fmt.Sprintf("tracks/%s.mp3", track.ID)
	url, err := w.storage.Upload(ctx, key, resp.Body, "audio/mpeg")
	if err != nil {
		return fmt.Errorf("failed to archive audio: %w", err)
	}

	logger.Info("track archived",
		logger.String("trackId", track.ID),
		logger.String("url", url),
	)
	return nil
}
