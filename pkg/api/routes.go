package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// buildRouter constructs the chi router with all routes and middleware.
func (s *server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chimw.Recoverer)
	r.Use(s.requestLogger)
	r.Use(s.corsMiddleware())

	if s.cfg.RateLimit.Enabled {
		r.Use(s.rateLimitMiddleware(s.cfg.RateLimit.RequestsPerMinute))
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Read endpoints.
		r.Get("/health", s.handleHealth)
		r.Get("/tests", s.handleListTests)
		r.Get("/tests/{id}", s.handleGetTest)
		r.Get("/export", s.handleExport)

		// Mutating endpoints, behind basic auth when enabled.
		r.Group(func(r chi.Router) {
			if s.cfg.Auth.Enabled {
				r.Use(s.requireAuth)
			}

			r.Post("/tests", s.handleCreateTest)
			r.Put("/tests/{id}", s.handleUpdateTest)
			r.Delete("/tests/{id}", s.handleDeleteTest)

			r.Post("/tests/{id}/runs", s.handleAddRun)
			r.Put("/tests/{id}/runs/{runID}", s.handleUpdateRun)
			r.Delete("/tests/{id}/runs/{runID}", s.handleDeleteRun)

			r.Post("/import", s.handleImport)
		})
	})

	return r
}

// corsMiddleware returns a CORS handler configured from the server config.
func (s *server) corsMiddleware() func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedMethods:   []string{"GET", "HEAD", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}

	origins := s.cfg.CORSOrigins

	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		// Reflect the requesting origin so credentials work from any origin.
		opts.AllowOriginFunc = func(_ *http.Request, _ string) bool {
			return true
		}
	} else {
		opts.AllowedOrigins = origins
	}

	return cors.Handler(opts)
}
