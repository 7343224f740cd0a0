package database

import (
	"testing"

	"github.com/avelkov/skipstream/internal/models"
)

func TestSessionRepository_InsertAndGet(t *testing.T) {
	db := setupTestDB(t)
	videoRepo := NewVideoRepository(db)
	sessionRepo := NewSessionRepository(db)

	video := models.NewVideo("Test Video", "test.mp4", "video/mp4", 1024)
	if err := videoRepo.InsertVideo(video); err != nil {
		t.Fatalf("Failed to insert video: %v", err)
	}

	session := models.NewSession(video.ID)
	if err := sessionRepo.InsertSession(session); err != nil {
		t.Fatalf("Failed to insert session: %v", err)
	}

	retrieved, err := sessionRepo.GetSessionByID(session.ID)
	if err != nil {
		t.Fatalf("Failed to retrieve session: %v", err)
	}
	if retrieved.VideoID != video.ID {
		t.Errorf("Expected video ID %s, got %s", video.ID, retrieved.VideoID)
	}
}

func TestSessionRepository_GetSessionByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepository(db)

	if _, err := repo.GetSessionByID("missing"); err == nil {
		t.Error("Expected error for non-existent session, got nil")
	}
}

func TestSessionRepository_DeleteSession(t *testing.T) {
	db := setupTestDB(t)
	videoRepo := NewVideoRepository(db)
	sessionRepo := NewSessionRepository(db)

	video := models.NewVideo("Test Video", "test.mp4", "video/mp4", 1024)
	if err := videoRepo.InsertVideo(video); err != nil {
		t.Fatalf("Failed to insert video: %v", err)
	}
	session := models.NewSession(video.ID)
	if err := sessionRepo.InsertSession(session); err != nil {
		t.Fatalf("Failed to insert session: %v", err)
	}

	if err := sessionRepo.DeleteSession(session.ID); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}
	if _, err := sessionRepo.GetSessionByID(session.ID); err == nil {
		t.Error("Expected deleted session to be gone")
	}
}
