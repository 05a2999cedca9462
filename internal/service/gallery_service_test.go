package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sinaulab/api/internal/model"
	"github.com/sinaulab/api/internal/repository"
)

func storeCallback(t *testing.T, repo repository.CallbackRecordRepository, receivedAt time.Time, payload string) {
	t.Helper()
	err := repo.Create(context.Background(), &model.CallbackRecord{
		ID:         uuid.New().String(),
		ReceivedAt: receivedAt,
		RawPayload: payload,
	})
	if err != nil {
		t.Fatalf("failed to store record: %v", err)
	}
}

func trackPayload(ids ...string) string {
	items := ""
	for i, id := range ids {
		if i > 0 {
			items += ","
		}
		items += fmt.Sprintf(`{"id": "%s", "title": "T", "stream_audio_url": "https://audio/%s.mp3"}`, id, id)
	}
	return fmt.Sprintf(`{"code": 200, "msg": "ok", "data": {"task_id": "t", "data": [%s]}}`, items)
}

func TestGalleryListTracks_Ordering(t *testing.T) {
	repo := repository.NewMemoryCallbackRecordRepository()
	svc := NewGalleryService(repo, nil)

	base := time.Now()
	storeCallback(t, repo, base, trackPayload("a", "b"))
	storeCallback(t, repo, base.Add(time.Second), trackPayload("c"))

	tracks, err := svc.ListTracks(context.Background())
	if err != nil {
		t.Fatalf("ListTracks failed: %v", err)
	}

	want := []string{"c", "a", "b"}
	if len(tracks) != len(want) {
		t.Fatalf("expected %d tracks, got %d", len(want), len(tracks))
	}
	for i, id := range want {
		if tracks[i].ID != id {
			t.Errorf("track %d: expected %s, got %s", i, id, tracks[i].ID)
		}
	}
}

func TestGalleryListTracks_IgnoresUnparseable(t *testing.T) {
	repo := repository.NewMemoryCallbackRecordRepository()
	svc := NewGalleryService(repo, nil)

	now := time.Now()
	storeCallback(t, repo, now, `this is not json`)
	storeCallback(t, repo, now.Add(time.Second), trackPayload("a"))
	storeCallback(t, repo, now.Add(2*time.Second), `{"code": 500, "msg": "failed", "data": null}`)

	tracks, err := svc.ListTracks(context.Background())
	if err != nil {
		t.Fatalf("ListTracks failed: %v", err)
	}
	if len(tracks) != 1 || tracks[0].ID != "a" {
		t.Errorf("expected only the parseable record's track, got %+v", tracks)
	}
}

func TestGalleryListTracks_Empty(t *testing.T) {
	repo := repository.NewMemoryCallbackRecordRepository()
	svc := NewGalleryService(repo, nil)

	tracks, err := svc.ListTracks(context.Background())
	if err != nil {
		t.Fatalf("ListTracks failed: %v", err)
	}
	if tracks == nil {
		t.Error("expected empty slice, got nil")
	}
	if len(tracks) != 0 {
		t.Errorf("expected no tracks, got %d", len(tracks))
	}
}
