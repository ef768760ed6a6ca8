package handlers

import (
	"encoding/json"
	"net/http"

	"shortreel/internal/creator"
	"shortreel/internal/domain"
	"shortreel/internal/infra"
	"shortreel/internal/music"
	"shortreel/internal/queue"
	"shortreel/internal/storage"
)

// App bundles the dependencies the HTTP handlers need. The HTTP surface is
// a thin shell: every decision lives in the queue and creator packages.
type App struct {
	Queue  *queue.Queue
	Videos domain.VideoRepository
	Media  domain.MediaRepository
	Store  *storage.FileStore
	Music  *music.Library
	Audio  creator.AudioToolkit
	Logger infra.Logger
}

func NewApp(
	q *queue.Queue,
	videos domain.VideoRepository,
	media domain.MediaRepository,
	store *storage.FileStore,
	musicLib *music.Library,
	audio creator.AudioToolkit,
	logger infra.Logger,
) *App {
	return &App{
		Queue:  q,
		Videos: videos,
		Media:  media,
		Store:  store,
		Music:  musicLib,
		Audio:  audio,
		Logger: logger,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, message string) {
	a.json(w, code, map[string]string{"error": kind, "message": message})
}
