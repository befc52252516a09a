package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/phrazzld/lexio-api/internal/api"
	apiMiddleware "github.com/phrazzld/lexio-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	// Rate limit per client IP
	if app.config.Server.RateLimit > 0 {
		r.Use(httprate.LimitByIP(app.config.Server.RateLimit, time.Minute))
	}

	progressHandler := api.NewProgressHandler(app.progressService, app.logger)

	// Register routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/users/{id}", func(r chi.Router) {
			r.Post("/answers", progressHandler.RecordAnswer)
			r.Get("/words/due", progressHandler.GetDueWords)
			r.Get("/streak", progressHandler.GetStreak)
			r.Get("/achievements", progressHandler.GetAchievements)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
