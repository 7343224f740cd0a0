package integration

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/avelkov/skipstream/internal/api"
	"github.com/avelkov/skipstream/internal/classifier"
	"github.com/avelkov/skipstream/internal/database"
	"github.com/avelkov/skipstream/internal/storage"
)

type TestServer struct {
	Server *httptest.Server
	App    *api.App
}

func setupTestServer(t *testing.T) *TestServer {
	t.Helper()

	tempDir := t.TempDir()

	localStorage, err := storage.NewLocalStorage(tempDir + "/uploads")
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	db, err := database.NewDB(database.Config{Path: tempDir + "/test.db"})
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	app := &api.App{
		Storage:       localStorage,
		DB:            db,
		VideoRepo:     database.NewVideoRepository(db),
		SessionRepo:   database.NewSessionRepository(db),
		Classifier:    classifier.NewStubClassifier(),
		MaxUploadSize: 10 * 1024 * 1024,
		PingInterval:  50 * time.Millisecond,
		Logger:        zap.NewNop(),
	}

	ts := httptest.NewServer(api.NewRouter(app))
	t.Cleanup(ts.Close)

	return &TestServer{Server: ts, App: app}
}

type uploadResult struct {
	VideoID   string  `json:"video_id"`
	SessionID string  `json:"session_id"`
	Duration  float64 `json:"duration"`
	FPS       float64 `json:"fps"`
}

func uploadVideo(t *testing.T, ts *TestServer) uploadResult {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(map[string][]string)
	header["Content-Disposition"] = []string{`form-data; name="video"; filename="clip.mp4"`}
	header["Content-Type"] = []string{"video/mp4"}
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("Failed to create part: %v", err)
	}
	part.Write([]byte("fake video payload"))
	writer.WriteField("title", "Integration Clip")
	writer.Close()

	resp, err := http.Post(ts.Server.URL+"/videos", writer.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("Upload request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201 from upload, got %d", resp.StatusCode)
	}

	var result uploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode upload response: %v", err)
	}
	return result
}
