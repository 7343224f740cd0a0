package models

import (
	"time"

	"github.com/google/uuid"
)

// Session ties a playback channel to an uploaded video. One session is
// created per accepted upload and destroyed when the user starts a new one.
type Session struct {
	ID        string
	VideoID   string
	CreatedAt time.Time
}

func NewSession(videoID string) *Session {
	return &Session{
		ID:        uuid.New().String(),
		VideoID:   videoID,
		CreatedAt: time.Now(),
	}
}
