package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"news_mirror/internal/service"
)

// Options configure the HTTP router.
type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration
	BasePath string // defaults to "/api"
}

// New builds the HTTP handler: middleware, health and metrics endpoints,
// and the news routes mounted under the base path.
func New(source service.ArticleSource, opts Options) http.Handler {
	root := chi.NewRouter()

	root.Use(
		middleware.RequestID,
		middleware.Recoverer,
		requestLogger(opts.Logger),
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout))
	}

	h := newHandlers(source, opts.Logger)

	root.Get("/healthz", h.Health)
	root.Handle("/metrics", promhttp.Handler())

	base := opts.BasePath
	if base == "" {
		base = "/api"
	}

	api := chi.NewRouter()
	api.Get("/news", h.ListNews)
	api.Get("/news/{id}", h.NewsByID)
	root.Mount(base, api)

	return root
}
