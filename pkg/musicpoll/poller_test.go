package musicpoll

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

func pendingStatus() json.RawMessage {
	return json.RawMessage(`{"taskId": "t1", "status": "PENDING", "response": {"sunoData": [{"id": "trk1", "title": "Song", "streamAudioUrl": ""}]}}`)
}

func readyStatus() json.RawMessage {
	return json.RawMessage(`{"taskId": "t1", "status": "SUCCESS", "response": {"sunoData": [{"id": "trk1", "title": "Song", "imageUrl": "https://img/1.jpg", "streamAudioUrl": "https://audio/1.mp3"}]}}`)
}

func collect(t *testing.T, updates <-chan Update, timeout time.Duration) []Update {
	t.Helper()
	var out []Update
	deadline := time.After(timeout)
	for {
		select {
		case u, ok := <-updates:
			if !ok {
				return out
			}
			out = append(out, u)
		case <-deadline:
			t.Fatalf("timed out waiting for updates, got %d so far", len(out))
		}
	}
}

func TestPoller_StopsOnFirstReadyTrack(t *testing.T) {
	var calls atomic.Int64
	status := func(ctx context.Context, taskID string) (json.RawMessage, error) {
		n := calls.Add(1)
		if n < 4 {
			return pendingStatus(), nil
		}
		return readyStatus(), nil
	}

	p := New(status, WithInterval(5*time.Millisecond))
	updates := p.Run(context.Background(), "t1")

	got := collect(t, updates, 5*time.Second)

	if calls.Load() != 4 {
		t.Errorf("expected exactly 4 polls, got %d", calls.Load())
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 updates, got %d", len(got))
	}
	for i, u := range got[:3] {
		if u.Ready {
			t.Errorf("update %d: expected not ready", i)
		}
	}
	last := got[3]
	if !last.Ready {
		t.Fatal("expected final update to be ready")
	}
	if len(last.Tracks) != 1 || last.Tracks[0].StreamAudioURL != "https://audio/1.mp3" {
		t.Errorf("expected the ready track in the final update, got %+v", last.Tracks)
	}

	// Channel must be closed, no fifth poll.
	time.Sleep(30 * time.Millisecond)
	if calls.Load() != 4 {
		t.Errorf("poller kept going after ready, %d polls", calls.Load())
	}
}

func TestPoller_FirstPollIsImmediate(t *testing.T) {
	status := func(ctx context.Context, taskID string) (json.RawMessage, error) {
		return readyStatus(), nil
	}

	// Long interval: only an immediate first poll can finish in time.
	p := New(status, WithInterval(time.Hour))
	updates := p.Run(context.Background(), "t1")

	select {
	case u := <-updates:
		if !u.Ready {
			t.Error("expected a ready update from the first poll")
		}
	case <-time.After(time.Second):
		t.Fatal("first poll did not fire immediately")
	}
}

func TestPoller_ErrorDoesNotStopLoop(t *testing.T) {
	var calls atomic.Int64
	status := func(ctx context.Context, taskID string) (json.RawMessage, error) {
		n := calls.Add(1)
		if n == 1 {
			return nil, errors.New("upstream hiccup")
		}
		return readyStatus(), nil
	}

	p := New(status, WithInterval(5*time.Millisecond))
	got := collect(t, p.Run(context.Background(), "t1"), 5*time.Second)

	if len(got) != 2 {
		t.Fatalf("expected 2 updates, got %d", len(got))
	}
	if got[0].Err == nil {
		t.Error("expected first update to carry the poll error")
	}
	if !got[1].Ready {
		t.Error("expected loop to continue and deliver the ready update")
	}
}

func TestPoller_SlowPollsNeverOverlap(t *testing.T) {
	var inFlight atomic.Int64
	var maxInFlight atomic.Int64
	var calls atomic.Int64

	status := func(ctx context.Context, taskID string) (json.RawMessage, error) {
		if n := inFlight.Add(1); n > maxInFlight.Load() {
			maxInFlight.Store(n)
		}
		defer inFlight.Add(-1)

		// Slower than the interval, so ticks elapse mid-poll.
		time.Sleep(15 * time.Millisecond)

		if calls.Add(1) >= 4 {
			return readyStatus(), nil
		}
		return pendingStatus(), nil
	}

	p := New(status, WithInterval(5*time.Millisecond))
	collect(t, p.Run(context.Background(), "t1"), 5*time.Second)

	if got := maxInFlight.Load(); got != 1 {
		t.Errorf("expected polls to run one at a time, saw %d in flight", got)
	}
}

func TestPoller_ContextCancelStops(t *testing.T) {
	var calls atomic.Int64
	status := func(ctx context.Context, taskID string) (json.RawMessage, error) {
		calls.Add(1)
		return pendingStatus(), nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := New(status, WithInterval(5*time.Millisecond))
	updates := p.Run(ctx, "t1")

	<-updates
	cancel()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-updates:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("updates channel not closed after cancel")
		}
	}
}

func TestParseTracks_CallbackShape(t *testing.T) {
	raw := json.RawMessage(`{"callbackType": "complete", "task_id": "t1", "data": [{"id": "trk1", "title": "Song", "image_url": "https://img/1.jpg", "stream_audio_url": "https://audio/1.mp3"}]}`)

	tracks := ParseTracks(raw)
	if len(tracks) != 1 {
		t.Fatalf("expected 1 track, got %d", len(tracks))
	}
	if tracks[0].ImageURL != "https://img/1.jpg" {
		t.Errorf("expected snake_case image_url accepted, got %+v", tracks[0])
	}
	if tracks[0].StreamAudioURL != "https://audio/1.mp3" {
		t.Errorf("expected snake_case stream_audio_url accepted, got %+v", tracks[0])
	}
}

func TestParseTracks_Unrecognized(t *testing.T) {
	for _, raw := range []string{`not json`, `{}`, `{"response": {}}`, `null`} {
		if tracks := ParseTracks(json.RawMessage(raw)); tracks != nil {
			t.Errorf("raw %q: expected nil, got %+v", raw, tracks)
		}
	}
}

func ExamplePoller() {
	status := func(ctx context.Context, taskID string) (json.RawMessage, error) {
		return json.RawMessage(`{"response": {"sunoData": [{"id": "trk1", "streamAudioUrl": "https://audio/1.mp3"}]}}`), nil
	}

	p := New(status, WithInterval(time.Second))
	for u := range p.Run(context.Background(), "t1") {
		if u.Ready {
			fmt.Println(u.Tracks[0].StreamAudioURL)
		}
	}
	// Output: https://audio/1.mp3
}
