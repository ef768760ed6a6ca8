package httpapi

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"shortreel/internal/http/handlers"
	"shortreel/internal/infra"
	"shortreel/internal/middleware"
)

// NewRouter wires the HTTP surface. Transport only; all pipeline logic is
// behind the App's dependencies.
func NewRouter(app *handlers.App, logger infra.Logger, corsOrigins []string) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.Logger(logger))
	if len(corsOrigins) > 0 {
		r.Use(middleware.CORS(corsOrigins))
	}

	r.Get("/health", app.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/short-video", app.CreateVideo)
		r.Get("/short-videos", app.ListVideos)
		r.Route("/short-video/{id}", func(r chi.Router) {
			r.Get("/", app.DownloadVideo)
			r.Get("/status", app.VideoStatus)
			r.Delete("/", app.DeleteVideo)
		})
		r.Post("/upload-media", app.UploadMedia)
		r.Get("/voices", app.ListVoices)
		r.Get("/music-tags", app.ListMusicTags)
	})

	return r
}
