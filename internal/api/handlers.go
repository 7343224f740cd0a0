package api

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/avelkov/skipstream/internal/classifier"
	"github.com/avelkov/skipstream/internal/database"
	"github.com/avelkov/skipstream/internal/models"
	"github.com/avelkov/skipstream/internal/storage"
)

// supportedFormats maps accepted upload content types to a fallback
// extension.
var supportedFormats = map[string]string{
	"video/mp4":       ".mp4",
	"video/avi":       ".avi",
	"video/mov":       ".mov",
	"video/quicktime": ".mov",
	"video/x-msvideo": ".avi",
	"video/webm":      ".webm",
}

type App struct {
	Storage       storage.Storage
	DB            *database.DB
	VideoRepo     *database.VideoRepository
	SessionRepo   *database.SessionRepository
	Classifier    classifier.Classifier
	Prober        *classifier.Prober
	MaxUploadSize int64
	PingInterval  time.Duration
	Logger        *zap.Logger
}

func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

func (app *App) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":     "healthy",
		"classifier": "loaded",
	})
}

type uploadResponse struct {
	VideoID   string  `json:"video_id"`
	SessionID string  `json:"session_id"`
	Duration  float64 `json:"duration"`
	FPS       float64 `json:"fps"`
}

// UploadHandler accepts a video, stores it, and opens a playback session
// whose ID the client uses to establish its channel.
func (app *App) UploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, app.MaxUploadSize)

	if err := r.ParseMultipartForm(app.MaxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "File too large")
		return
	}

	file, header, err := r.FormFile("video")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to get file")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if _, ok := supportedFormats[contentType]; !ok {
		ext := strings.ToLower(filepath.Ext(header.Filename))
		if ext != ".mp4" {
			writeError(w, http.StatusBadRequest, "Unsupported video format")
			return
		}
		contentType = "video/mp4"
	}

	title := r.FormValue("title")
	if title == "" {
		title = header.Filename
	}

	filename, err := app.Storage.SaveFile(file, storage.FileInfo{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
	})
	if err != nil {
		app.Logger.Error("saving upload", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to save file")
		return
	}

	video := models.NewVideo(title, filename, contentType, header.Size)
	app.fillMetadata(video)

	if err := app.VideoRepo.InsertVideo(video); err != nil {
		app.Storage.DeleteFile(filename)
		app.Logger.Error("inserting video", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to save video information")
		return
	}

	session := models.NewSession(video.ID)
	if err := app.SessionRepo.InsertSession(session); err != nil {
		app.Logger.Error("inserting session", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	app.Logger.Info("video uploaded",
		zap.String("video_id", video.ID),
		zap.String("session_id", session.ID),
		zap.Int64("size", video.Size),
	)

	writeJSON(w, http.StatusCreated, uploadResponse{
		VideoID:   video.ID,
		SessionID: session.ID,
		Duration:  video.Duration,
		FPS:       video.FPS,
	})
}

// fillMetadata probes the stored file when ffprobe is available and falls
// back to the default metadata otherwise.
func (app *App) fillMetadata(video *models.Video) {
	meta := classifier.DefaultMeta()
	if app.Prober != nil {
		if path, err := app.Storage.FilePath(video.Filename); err == nil {
			if probed, err := app.Prober.Probe(path); err == nil {
				meta = probed
			} else {
				app.Logger.Warn("probing video metadata", zap.Error(err))
			}
		}
	}
	video.Duration = meta.Duration
	video.FPS = meta.FPS
	video.FrameCount = meta.FrameCount
}

func (app *App) ListVideosHandler(w http.ResponseWriter, r *http.Request) {
	videos, err := app.VideoRepo.ListVideos()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error loading videos")
		return
	}
	if videos == nil {
		videos = []models.Video{}
	}
	writeJSON(w, http.StatusOK, videos)
}

// CleanupHandler removes every stored upload.
func (app *App) CleanupHandler(w http.ResponseWriter, r *http.Request) {
	files, err := app.Storage.ListFiles()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Cleanup failed")
		return
	}

	removed := []string{}
	for _, file := range files {
		if err := app.Storage.DeleteFile(file); err != nil {
			app.Logger.Warn("cleanup: deleting file", zap.String("file", file), zap.Error(err))
			continue
		}
		removed = append(removed, file)
	}

	app.Logger.Info("cleanup complete", zap.Int("removed", len(removed)))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"removed": len(removed),
		"files":   removed,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
