package database

import (
	"database/sql"
	"fmt"

	"github.com/avelkov/skipstream/internal/models"
)

type VideoRepository struct {
	db *DB
}

func NewVideoRepository(db *DB) *VideoRepository {
	return &VideoRepository{db: db}
}

func (r *VideoRepository) InsertVideo(video *models.Video) error {
	_, err := r.db.conn.Exec(
		`INSERT INTO videos (id, title, filename, content_type, size, duration, fps, frame_count, upload_time)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		video.ID, video.Title, video.Filename, video.ContentType, video.Size,
		video.Duration, video.FPS, video.FrameCount, video.UploadTime,
	)
	if err != nil {
		return fmt.Errorf("failed to insert video: %w", err)
	}
	return nil
}

func (r *VideoRepository) GetVideoByID(id string) (*models.Video, error) {
	var video models.Video
	err := r.db.conn.QueryRow(
		`SELECT id, title, filename, content_type, size, duration, fps, frame_count, upload_time
		 FROM videos WHERE id = ?`, id,
	).Scan(&video.ID, &video.Title, &video.Filename, &video.ContentType, &video.Size,
		&video.Duration, &video.FPS, &video.FrameCount, &video.UploadTime)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("video not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	return &video, nil
}

func (r *VideoRepository) ListVideos() ([]models.Video, error) {
	rows, err := r.db.conn.Query(
		`SELECT id, title, filename, content_type, size, duration, fps, frame_count, upload_time
		 FROM videos ORDER BY upload_time DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		var video models.Video
		if err := rows.Scan(&video.ID, &video.Title, &video.Filename, &video.ContentType,
			&video.Size, &video.Duration, &video.FPS, &video.FrameCount, &video.UploadTime); err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		videos = append(videos, video)
	}
	return videos, rows.Err()
}

func (r *VideoRepository) DeleteVideo(id string) error {
	result, err := r.db.conn.Exec(`DELETE FROM videos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("video not found")
	}
	return nil
}
