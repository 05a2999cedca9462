package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sinaulab/api/internal/logger"
	"github.com/sinaulab/api/internal/model"
	"github.com/sinaulab/api/internal/repository"
)

const (
	galleryCacheKey = "gallery:tracks"
	galleryCacheTTL = 30 * time.Second
)

// GalleryService flattens stored callback records into the displayable
// track list. Tracks delivered twice (duplicate callbacks) appear
// twice; that is a documented property of the append-only design, not
// a bug to correct here.
type GalleryService struct {
	records repository.CallbackRecordRepository
	redis   *redis.Client
}

// NewGalleryService creates the reader. redisClient may be nil; the
// cache is then skipped and every read is a full re-scan.
func NewGalleryService(records repository.CallbackRecordRepository, redisClient *redis.Client) *GalleryService {
	return &GalleryService{
		records: records,
		redis:   redisClient,
	}
}

// ListTracks returns every track across all callback records, ordered
// by record receipt time descending with in-record order preserved.
func (s *GalleryService) ListTracks(ctx context.Context) ([]model.Track, error) {
	if cached := s.fromCache(ctx); cached != nil {
		return cached, nil
	}

	records, err := s.records.List(ctx)
	if err != nil {
		return nil, err
	}

	tracks := make([]model.Track, 0, len(records))
	for _, record := range records {
		tracks = append(tracks, model.ParseCallbackTracks([]byte(record.RawPayload))...)
	}

	s.toCache(ctx, tracks)
	return tracks, nil
}

// Invalidate drops the cached list. Called whenever a new callback
// record is written.
func (s *GalleryService) Invalidate(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, galleryCacheKey).Err(); err != nil {
		logger.Warn("failed to invalidate gallery cache", logger.Err(err))
	}
}

func (s *GalleryService) fromCache(ctx context.Context) []model.Track {
	if s.redis == nil {
		return nil
	}
	data, err := s.redis.Get(ctx, galleryCacheKey).Bytes()
	if err != nil {
		return nil
	}
	var tracks []model.Track
	if err := json.Unmarshal(data, &tracks); err != nil {
		return nil
	}
	return tracks
}

func (s *GalleryService) toCache(ctx context.Context, tracks []model.Track) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(tracks)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, galleryCacheKey, data, galleryCacheTTL).Err(); err != nil {
		logger.Warn("failed to cache gallery", logger.Err(err))
	}
}
