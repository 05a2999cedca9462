package model

import (
	"encoding/json"
	"time"
)

// CallbackRecord is the durable, immutable copy of one raw completion
// notification delivered by the external music API. The body is stored
// verbatim, even when it is not valid JSON; repeated delivery of the
// same completion produces multiple records.
type CallbackRecord struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	ReceivedAt time.Time `json:"receivedAt" gorm:"index"`
	RawPayload string    `json:"rawPayload" gorm:"type:longtext"`
}

func (CallbackRecord) TableName() string {
	return "callback_records"
}

// CallbackPayload mirrors the completion body the Suno API posts to
// the callback endpoint. Track entries live under data.data.
type CallbackPayload struct {
	Code int          `json:"code"`
	Msg  string       `json:"msg"`
	Data CallbackData `json:"data"`
}

type CallbackData struct {
	CallbackType string          `json:"callbackType"`
	TaskID       string          `json:"task_id"`
	Data         []CallbackTrack `json:"data"`
}

// CallbackTrack is one track entry as delivered in a callback body.
// The callback uses snake_case item keys, unlike the fetch endpoint.
type CallbackTrack struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	ImageURL       string `json:"image_url"`
	AudioURL       string `json:"audio_url"`
	StreamAudioURL string `json:"stream_audio_url"`
	Prompt         string `json:"prompt"`
}

// Track converts a callback entry to the display shape.
func (t CallbackTrack) Track() Track {
	return Track{
		ID:             t.ID,
		Title:          t.Title,
		ImageURL:       t.ImageURL,
		StreamAudioURL: t.StreamAudioURL,
		Prompt:         t.Prompt,
	}
}

// ParseCallbackTracks extracts the track entries from a raw callback
// body. A body that is not JSON, or that has no data.data array,
// yields no tracks and no error: the receiver stores everything and
// judges nothing.
func ParseCallbackTracks(raw []byte) []Track {
	var payload CallbackPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}
	tracks := make([]Track, 0, len(payload.Data.Data))
	for _, item := range payload.Data.Data {
		tracks = append(tracks, item.Track())
	}
	return tracks
}

// CallbackAck is the unconditional acknowledgment returned to the
// delivering party.
type CallbackAck struct {
	Success bool `json:"success"`
}
