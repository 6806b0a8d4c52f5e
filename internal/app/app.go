// Package app assembles stores, services, the HTTP router and background jobs
// from configuration.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"

	"karmafeed/internal/cache"
	"karmafeed/internal/config"
	"karmafeed/internal/database"
	"karmafeed/internal/handler"
	"karmafeed/internal/jobs"
	"karmafeed/internal/leaderboard"
	redisclient "karmafeed/internal/redis"
	"karmafeed/internal/repository"
	"karmafeed/internal/repository/memory"
	"karmafeed/internal/service"
	transport "karmafeed/internal/transport/http"
	"karmafeed/internal/transport/http/middleware"
)

type App struct {
	Config *config.Config
	Store  repository.Store

	Users       *service.UserService
	Tokens      *service.TokenService // nil when JWT_SECRET is empty
	Posts       *service.PostService
	Comments    *service.CommentService
	Likes       *service.LikeService
	Leaderboard *service.LeaderboardService

	db        *sqlx.DB
	redis     *redisclient.Client
	bucketed  *leaderboard.Bucketed
	scheduler *jobs.Scheduler
	handler   http.Handler
}

// New connects the configured backends and wires every component.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	switch cfg.StoreBackend {
	case config.BackendMemory:
		a.Store = memory.New().Repositories()
		log.Warn("[App] Using in-memory store; data is lost on exit")
	default:
		db, err := database.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		a.db = db
		if cfg.DBAutoMigrate {
			if err := database.Migrate(ctx, db); err != nil {
				a.Close()
				return nil, err
			}
		}
		a.Store = repository.NewPostgresStore(db)
	}

	var ranker leaderboard.Ranker = leaderboard.NewAggregator(a.Store.Ledger)
	if cfg.RedisURL != "" {
		rc, err := redisclient.Connect(ctx, cfg.RedisURL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.redis = rc
		a.bucketed = leaderboard.NewBucketed(a.Store.Ledger, cache.NewRedisBuckets(rc.Client),
			leaderboard.WithGrace(cfg.LeaderboardBucketGrace))
		ranker = a.bucketed
		a.scheduler = jobs.NewScheduler(a.bucketed, cfg.LeaderboardWarmCron, cfg.LeaderboardWindow)
	}

	a.wire(ranker)
	return a, nil
}

// NewWithStore wires an app over an existing store with full leaderboard recomputation.
// It opens no connections.
func NewWithStore(cfg *config.Config, store repository.Store, opts ...service.Option) *App {
	a := &App{Config: cfg, Store: store}
	a.wire(leaderboard.NewAggregator(store.Ledger), opts...)
	return a
}

func (a *App) wire(ranker leaderboard.Ranker, opts ...service.Option) {
	cfg, s := a.Config, a.Store

	a.Users = service.NewUserService(s.Users)
	a.Posts = service.NewPostService(s.Posts, s.Comments, s.Users)
	a.Comments = service.NewCommentService(s.Comments, s.Posts, s.Users)
	a.Likes = service.NewLikeService(s.Posts, s.Comments, s.Likes, opts...)
	a.Leaderboard = service.NewLeaderboardService(ranker, s.Users, cfg.LeaderboardWindow, cfg.LeaderboardLimit, opts...)

	// A nil *TokenService must not reach the middleware as a non-nil interface
	var tokens middleware.TokenParser
	if cfg.JWTSecret != "" {
		a.Tokens = service.NewTokenService(cfg.JWTSecret, cfg.TokenMaxAge, opts...)
		tokens = a.Tokens
	}

	a.handler = transport.NewRouter(transport.RouterConfig{
		PostHandler:        handler.NewPostHandler(a.Posts),
		CommentHandler:     handler.NewCommentHandler(a.Comments),
		LikeHandler:        handler.NewLikeHandler(a.Likes),
		LeaderboardHandler: handler.NewLeaderboardHandler(a.Leaderboard),
		UserHandler:        handler.NewUserHandler(a.Users),
		Identity:           middleware.Identity(tokens, a.Users),
		RequestTimeout:     cfg.RequestTimeout,
	})
}

// Handler returns the HTTP API.
func (a *App) Handler() http.Handler {
	return a.handler
}

// DB returns the Postgres pool, or nil for the memory backend.
func (a *App) DB() *sqlx.DB {
	return a.db
}

// Run serves HTTP and runs the scheduler until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a.scheduler != nil {
		if err := a.scheduler.Start(ctx); err != nil {
			return err
		}
		defer a.scheduler.Stop()
	}

	srv := transport.NewServer(a.Config.ServerPort, a.handler)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// WarmLeaderboard fills the bucket cache once. It is a no-op without Redis.
func (a *App) WarmLeaderboard(ctx context.Context, now time.Time) (int, error) {
	if a.bucketed == nil {
		return 0, nil
	}
	return a.bucketed.Warm(ctx, now, a.Config.LeaderboardWindow)
}

// Close releases connections.
func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.WithError(err).Warn("[App] Closing redis")
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			log.WithError(err).Warn("[App] Closing database")
		}
	}
}
