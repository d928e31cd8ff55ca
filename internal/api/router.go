package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"filmtag/internal/pipeline"
	"filmtag/internal/storage"
)

// Options configures the API router.
type Options struct {
	Logger      *slog.Logger
	Pipeline    *pipeline.Pipeline
	Library     *storage.FS
	AuthEnabled bool
	AuthToken   string
	Events      http.Handler
}

// NewRouter builds the serve-mode API:
//
//	GET  /api/report     last run report
//	GET  /api/matches    matched rows of the last run
//	GET  /api/unmatched  unmatched rows of the last run
//	GET  /api/recipes    the configured recipes table
//	GET  /api/photos     images currently in the library
//	POST /api/run        trigger a run (?tag=true to also write keywords)
//	GET  /api/events     SSE stream of run lifecycle events
func NewRouter(opts Options) chi.Router {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &handlers{logger: logger, pipeline: opts.Pipeline, library: opts.Library}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Use(AuthMiddleware(opts.AuthEnabled, opts.AuthToken))

		r.Get("/report", h.getReport)
		r.Get("/matches", h.getMatches)
		r.Get("/unmatched", h.getUnmatched)
		r.Get("/recipes", h.getRecipes)
		r.Get("/photos", h.getPhotos)
		r.Post("/run", h.postRun)
		if opts.Events != nil {
			r.Method(http.MethodGet, "/events", opts.Events)
		}
	})

	return r
}
