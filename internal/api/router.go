package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/ping", PingHandler)
	r.Get("/health", app.HealthHandler)

	r.Post("/videos", app.UploadHandler)
	r.Get("/videos", app.ListVideosHandler)
	r.Delete("/cleanup", app.CleanupHandler)

	r.Get("/ws/{sessionID}", app.SessionChannelHandler)

	return r
}
