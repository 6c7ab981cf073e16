// Package router sets up all HTTP routes and middleware chains for
// topicpress. It organizes routes into the JSON API, the public topic pages
// and static file groups.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"topicpress/internal/handlers"
	"topicpress/internal/middleware"
	"topicpress/internal/storage"
	"topicpress/web"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. uploadLimiter throttles image uploads per
// client IP; uploads serves stored files under /uploads/.
func New(api *handlers.API, public *handlers.Public, uploads storage.Backend, uploadLimiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/data", api.Data)
		r.Get("/rules", api.Rules)
		r.Get("/stats", api.Stats)

		r.Post("/categories", api.CreateCategory)
		r.Delete("/categories/{name}", api.DeleteCategory)

		r.Get("/topics", api.ListTopics)
		r.Post("/topics", api.CreateTopic)
		r.Get("/topics/{idOrSlug}", api.GetTopic)
		r.Delete("/topics/{id}", api.DeleteTopic)

		r.With(uploadLimiter.Middleware).Post("/upload-image", api.UploadImage)
	})

	r.Get("/topic/{idOrSlug}", public.Topic)

	r.Handle("/uploads/*", http.StripPrefix("/uploads", uploads.Handler()))

	static, err := fs.Sub(web.StaticFS, "static")
	if err == nil {
		r.Handle("/static/*", http.StripPrefix("/static", http.FileServer(http.FS(static))))
	}

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
