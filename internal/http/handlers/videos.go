package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"shortreel/internal/domain"
	"shortreel/internal/queue"
)

type createVideoRequest struct {
	Scenes []domain.Scene      `json:"scenes"`
	Config domain.RenderConfig `json:"config"`
	Title  string              `json:"title"`
}

// CreateVideo validates the scene list and enqueues a render job.
func (a *App) CreateVideo(w http.ResponseWriter, r *http.Request) {
	var req createVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if len(req.Scenes) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "at least one scene is required")
		return
	}
	for i, scene := range req.Scenes {
		if err := scene.Validate(); err != nil {
			a.Logger.Debug().Err(err).Int("scene", i).Msg("handlers: scene rejected")
			a.error(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
	}

	id, err := a.Queue.Enqueue(r.Context(), req.Scenes, req.Config, req.Title)
	if err != nil {
		if errors.Is(err, domain.ErrQueueStopped) {
			a.error(w, http.StatusServiceUnavailable, "unavailable", "service is shutting down")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to enqueue video")
		return
	}
	a.json(w, http.StatusCreated, map[string]string{"videoId": id})
}

// VideoStatus reports the lifecycle state and progress of a job.
func (a *App) VideoStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "id required")
		return
	}
	status, progress := a.Queue.Status(r.Context(), id)
	a.json(w, http.StatusOK, map[string]any{
		"status":   status,
		"progress": progress,
	})
}

// ListVideos returns every persisted video record.
func (a *App) ListVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := a.Videos.List(r.Context())
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to list videos")
		return
	}
	out := make([]map[string]any, 0, len(videos))
	for _, v := range videos {
		out = append(out, map[string]any{
			"id":       v.ID,
			"status":   v.Status,
			"progress": v.Progress,
			"title":    v.Title,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"videos": out})
}

// DownloadVideo streams the rendered MP4.
func (a *App) DownloadVideo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	key := queue.VideoKey(id)
	if !a.Store.Exists(key) {
		a.error(w, http.StatusNotFound, "not_found", "video not found")
		return
	}
	path, err := a.Store.Path(key)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid id")
		return
	}
	w.Header().Set("Content-Type", "video/mp4")
	http.ServeFile(w, r, path)
}

// DeleteVideo removes a finished video's record and artifact.
func (a *App) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := a.Videos.Delete(r.Context(), id); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to delete record")
		return
	}
	if err := a.Store.Remove(queue.VideoKey(id)); err != nil {
		a.Logger.Warn().Err(err).Str("video_id", id).Msg("handlers: artifact removal failed")
	}
	a.json(w, http.StatusOK, map[string]string{"videoId": id})
}
