// Package musicpoll implements the client-side polling loop for music
// generation jobs. Browsers and native clients alike poll the status
// endpoint until a playable track appears; this package captures that
// loop once so every Go client behaves the same way.
package musicpoll

import (
	"context"
	"encoding/json"
	"time"
)

// DefaultInterval is the delay between status polls.
const DefaultInterval = 3 * time.Second

// StatusFunc fetches the current status payload for a task. The raw
// payload is handed back to the caller untouched alongside the parsed
// view, so callers can render fields this package does not model.
type StatusFunc func(ctx context.Context, taskID string) (json.RawMessage, error)

// Track is the subset of a generated track the loop needs to decide
// readiness. Status payloads use camelCase keys while callbacks use
// snake_case, so both spellings are accepted.
type Track struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	ImageURL       string `json:"imageUrl"`
	StreamAudioURL string `json:"streamAudioUrl"`
}

type wireTrack struct {
	ID                  string `json:"id"`
	Title               string `json:"title"`
	ImageURL            string `json:"imageUrl"`
	StreamAudioURL      string `json:"streamAudioUrl"`
	ImageURLSnake       string `json:"image_url"`
	StreamAudioURLSnake string `json:"stream_audio_url"`
}

func (w wireTrack) track() Track {
	t := Track{
		ID:             w.ID,
		Title:          w.Title,
		ImageURL:       w.ImageURL,
		StreamAudioURL: w.StreamAudioURL,
	}
	if t.ImageURL == "" {
		t.ImageURL = w.ImageURLSnake
	}
	if t.StreamAudioURL == "" {
		t.StreamAudioURL = w.StreamAudioURLSnake
	}
	return t
}

// Update is one poll result. Err is set when a single poll failed; the
// loop keeps going after errors, so an Update with Err set is not
// terminal. Ready is true on the final update, after which the channel
// is closed.
type Update struct {
	Data   json.RawMessage
	Tracks []Track
	Ready  bool
	Err    error
}

// Poller drives the polling loop against a status source.
type Poller struct {
	status   StatusFunc
	interval time.Duration
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval overrides the delay between polls.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

func New(status StatusFunc, opts ...Option) *Poller {
	p := &Poller{
		status:   status,
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run polls the task until a playable track appears or ctx is
// cancelled. The first poll fires immediately. Polls never overlap:
// the loop runs them sequentially, and the ticker drops ticks beyond
// the one it buffers, so a slow upstream cannot pile up requests.
func (p *Poller) Run(ctx context.Context, taskID string) <-chan Update {
	updates := make(chan Update, 1)

	go func() {
		defer close(updates)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			if done := p.poll(ctx, taskID, updates); done {
				return
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return updates
}

// poll performs one status fetch and delivers the update. It reports
// true when polling should stop.
func (p *Poller) poll(ctx context.Context, taskID string, updates chan<- Update) bool {
	data, err := p.status(ctx, taskID)
	if err != nil {
		if ctx.Err() != nil {
			return true
		}
		select {
		case updates <- Update{Err: err}:
		case <-ctx.Done():
			return true
		}
		return false
	}

	tracks := ParseTracks(data)
	ready := false
	for _, t := range tracks {
		if t.StreamAudioURL != "" {
			ready = true
			break
		}
	}

	select {
	case updates <- Update{Data: data, Tracks: tracks, Ready: ready}:
	case <-ctx.Done():
		return true
	}
	return ready
}

// ParseTracks extracts tracks from a status or callback payload. Status
// responses nest them under response.sunoData; callbacks put them under
// data. Unrecognized shapes yield nil.
func ParseTracks(raw json.RawMessage) []Track {
	var payload struct {
		Response struct {
			SunoData []wireTrack `json:"sunoData"`
		} `json:"response"`
		Data []wireTrack `json:"data"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}

	wire := payload.Response.SunoData
	if len(wire) == 0 {
		wire = payload.Data
	}
	if len(wire) == 0 {
		return nil
	}

	tracks := make([]Track, 0, len(wire))
	for _, w := range wire {
		tracks = append(tracks, w.track())
	}
	return tracks
}
