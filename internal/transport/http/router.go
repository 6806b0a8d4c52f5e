package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"karmafeed/internal/handler"
	"karmafeed/internal/httputil"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	PostHandler        *handler.PostHandler
	CommentHandler     *handler.CommentHandler
	LikeHandler        *handler.LikeHandler
	LeaderboardHandler *handler.LeaderboardHandler
	UserHandler        *handler.UserHandler

	// Identity attaches the acting user id to every request context
	Identity func(http.Handler) http.Handler

	RequestTimeout time.Duration
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	// Reads need no identity
	r.Get("/posts", cfg.PostHandler.List)
	r.Get("/posts/{id}", cfg.PostHandler.GetByID)
	r.Get("/leaderboard", cfg.LeaderboardHandler.Top)

	// Writes act as a resolved user
	r.Group(func(r chi.Router) {
		r.Use(cfg.Identity)

		r.Get("/me", cfg.UserHandler.Me)

		r.Post("/posts", cfg.PostHandler.Create)
		r.Post("/posts/{id}/like", cfg.LikeHandler.LikePost)
		r.Post("/posts/{id}/comments", cfg.CommentHandler.Create)
		r.Post("/comments/{id}/like", cfg.LikeHandler.LikeComment)
	})

	return r
}
