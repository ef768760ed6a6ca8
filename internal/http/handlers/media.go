package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"shortreel/internal/domain"
	"shortreel/internal/voices"
)

// audioExtensions are the upload types we probe a duration for.
var audioExtensions = map[string]bool{
	".mp3": true, ".wav": true, ".m4a": true, ".ogg": true, ".flac": true,
}

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true,
}

// UploadMedia accepts a narration audio file or a static background image
// and returns the generated id scenes reference it by.
func (a *App) UploadMedia(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "multipart field 'file' is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !audioExtensions[ext] && !imageExtensions[ext] {
		a.error(w, http.StatusBadRequest, "bad_request", "unsupported file type "+ext)
		return
	}

	id := uuid.NewString()
	key, err := a.Store.WriteFrom(r.Context(), "uploads/"+id+ext, file)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to store upload")
		return
	}

	var duration float64
	if audioExtensions[ext] {
		path, pathErr := a.Store.Path(key)
		if pathErr == nil {
			duration, err = a.Audio.Duration(r.Context(), path)
		}
		if pathErr != nil || err != nil {
			_ = a.Store.Remove(key)
			a.error(w, http.StatusBadRequest, "bad_request", "file is not decodable audio")
			return
		}
	}

	if err := a.Media.Create(r.Context(), domain.UploadedMedia{
		ID:       id,
		Filename: key,
		Duration: duration,
	}); err != nil {
		_ = a.Store.Remove(key)
		a.error(w, http.StatusInternalServerError, "internal", "failed to persist upload")
		return
	}

	a.json(w, http.StatusCreated, map[string]any{"id": id, "duration": duration})
}

// ListVoices returns the narration voices the synthesizer exposes.
func (a *App) ListVoices(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"voices": voices.All()})
}

// ListMusicTags returns the mood tags of the music library.
func (a *App) ListMusicTags(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"tags": a.Music.Tags()})
}
