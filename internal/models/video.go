package models

import (
	"time"

	"github.com/google/uuid"
)

type Video struct {
	ID          string
	Title       string
	Filename    string
	ContentType string
	Size        int64
	Duration    float64
	FPS         float64
	FrameCount  int64
	UploadTime  time.Time
}

func NewVideo(title, filename, contentType string, size int64) *Video {
	return &Video{
		ID:          uuid.New().String(),
		Title:       title,
		Filename:    filename,
		ContentType: contentType,
		Size:        size,
		UploadTime:  time.Now(),
	}
}
