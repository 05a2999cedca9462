package model

import "encoding/json"

// Track is one generated audio result as displayed in the gallery.
// A track is display-ready only once StreamAudioURL is non-empty;
// an empty value means the job is still processing.
type Track struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	ImageURL       string `json:"imageUrl"`
	StreamAudioURL string `json:"streamAudioUrl"`
	Prompt         string `json:"prompt"`
}

// Ready reports whether the track can be played.
func (t Track) Ready() bool {
	return t.StreamAudioURL != ""
}

// GenerateMusicRequest is the client-facing generation request.
type GenerateMusicRequest struct {
	Prompt string `json:"prompt" validate:"required"`
}

// GenerateMusicResponse echoes the opaque task id minted by the
// external API. No durable record exists at this point; the durable
// trace appears later through the callback receiver.
type GenerateMusicResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	TaskID  string `json:"taskId"`
}

// MusicStatusResponse wraps the upstream status payload verbatim.
type MusicStatusResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

// GalleryResponse is the flattened track list, newest callback first.
type GalleryResponse struct {
	Tracks []Track `json:"tracks"`
}
