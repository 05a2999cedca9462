package model

import "time"

// WebSocket message types
const (
	WSMessageTypeNoteCreated    = "note.created"
	WSMessageTypeGalleryUpdated = "gallery.updated"
	WSMessageTypePing           = "ping"
	WSMessageTypePong           = "pong"
)

// WSMessage is the minimal envelope used for ping/pong.
type WSMessage struct {
	Type string `json:"type"`
}

// WSNoteMessage announces a newly appended note to feed subscribers.
type WSNoteMessage struct {
	Type string `json:"type"`
	Note *Note  `json:"note"`
}

// WSGalleryMessage announces that a new callback record was stored and
// the gallery should be re-read.
type WSGalleryMessage struct {
	Type       string    `json:"type"`
	ReceivedAt time.Time `json:"receivedAt"`
	TrackCount int       `json:"trackCount"`
}
