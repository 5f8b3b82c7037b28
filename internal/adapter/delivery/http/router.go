// Package http provides the HTTP delivery layer for the bookmarks service.
// This package contains the HTTP handlers and related types used for processing
// incoming requests, validating input, and formatting responses.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/vadimbarashkov/bookmarks/docs"
	"github.com/vadimbarashkov/bookmarks/internal/metrics"
	"github.com/vadimbarashkov/bookmarks/pkg/middleware/bearer"
	"github.com/vadimbarashkov/bookmarks/pkg/middleware/recoverer"
	"github.com/vadimbarashkov/bookmarks/pkg/sanitize"
)

// RouterOptions configures the optional surfaces of the router.
type RouterOptions struct {
	// APIToken is the bearer secret every protected route requires.
	APIToken string
	// SwaggerEnabled mounts the OpenAPI document and UI.
	SwaggerEnabled bool
}

// NewRouter initializes and returns a new Chi router configured with middleware and routes for the bookmarks API.
func NewRouter(logger *httplog.Logger, useCase bookmarkUseCase, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Accept"},
		ExposedHeaders:   []string{"Location"},
		AllowCredentials: false,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(recoverer.New(logger.Logger))
	r.Use(metrics.Middleware)

	r.NotFound(handleNotFound)
	r.MethodNotAllowed(handleMethodNotAllowed)

	r.Get("/", handleGreeting)

	if opts.SwaggerEnabled {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/docs/swagger.yml"),
		))

		r.Get("/docs/swagger.yml", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/yaml")
			w.Write(docs.SwaggerYAML)
		})
	}

	r.Group(func(r chi.Router) {
		r.Use(bearer.New(opts.APIToken))

		r.Handle("/metrics", promhttp.Handler())

		r.Route("/bookmarks", func(r chi.Router) {
			h := newBookmarkHandler(useCase, newValidator(), sanitize.Default())

			r.Get("/", h.listBookmarks)
			r.Post("/", h.createBookmark)

			r.With(h.bookmarkCtx).Get("/{id}", h.getBookmark)
			r.With(h.bookmarkCtx).Patch("/{id}", h.modifyBookmark)
			r.With(h.bookmarkCtx).Delete("/{id}", h.removeBookmark)
		})
	})

	return r
}
