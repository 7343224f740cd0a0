package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/avelkov/skipstream/internal/models"
)

const defaultPingInterval = 30 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// sessionConn serializes writes to one client connection; the ping ticker
// and the request/reply loop write concurrently.
type sessionConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *sessionConn) writeJSON(msg models.Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(msg)
}

// SessionChannelHandler upgrades a session's duplex channel and serves it:
// announce the session, push the video metadata, answer process_frame
// requests with classifications, and probe liveness periodically.
func (app *App) SessionChannelHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, err := app.SessionRepo.GetSessionByID(sessionID)
	if err != nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	video, err := app.VideoRepo.GetVideoByID(session.VideoID)
	if err != nil {
		http.Error(w, "Video not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		app.Logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	logger := app.Logger.With(zap.String("session_id", sessionID))
	sc := &sessionConn{conn: conn}

	sc.writeJSON(models.Message{
		Type:      models.TypeConnectionEstablished,
		SessionID: sessionID,
	})
	sc.writeJSON(models.Message{
		Type:       models.TypeVideoInfo,
		SessionID:  sessionID,
		Duration:   video.Duration,
		FPS:        video.FPS,
		FrameCount: video.FrameCount,
	})

	done := make(chan struct{})
	defer close(done)
	go app.pingLoop(sc, done, logger)

	logger.Info("channel opened", zap.String("video_id", video.ID))

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				logger.Info("channel closed by client")
			} else {
				logger.Warn("channel read failed", zap.Error(err))
			}
			return
		}

		var msg models.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warn("dropping malformed message", zap.Error(err))
			continue
		}

		switch msg.Type {
		case models.TypeConnect:
			if msg.SessionID != sessionID {
				sc.writeJSON(models.Message{
					Type:    models.TypeError,
					Message: "announced session does not match channel",
				})
				return
			}
			logger.Info("session announced")

		case models.TypeProcessFrame:
			result := app.Classifier.Classify(video.ID, msg.Timestamp)
			if err := sc.writeJSON(models.Message{
				Type:       models.TypeClassification,
				SessionID:  sessionID,
				Timestamp:  msg.Timestamp,
				Label:      result.Label,
				Confidence: result.Confidence,
				Flagged:    result.Flagged,
			}); err != nil {
				logger.Warn("writing classification", zap.Error(err))
				return
			}

		case models.TypePong:
			// Liveness confirmed; nothing to do.

		default:
			logger.Warn("dropping unrecognized message", zap.String("type", string(msg.Type)))
		}
	}
}

func (app *App) pingLoop(sc *sessionConn, done <-chan struct{}, logger *zap.Logger) {
	interval := app.PingInterval
	if interval <= 0 {
		interval = defaultPingInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := sc.writeJSON(models.Message{Type: models.TypePing}); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
