// Package app initializes and holds long-lived application services, acting
// as a dependency injection container for the commands.
package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/wartahukum/newsroom/internal/api"
	"github.com/wartahukum/newsroom/internal/auth"
	"github.com/wartahukum/newsroom/internal/clock/system"
	"github.com/wartahukum/newsroom/internal/config"
	"github.com/wartahukum/newsroom/internal/id/uuid"
	"github.com/wartahukum/newsroom/internal/ingest"
	"github.com/wartahukum/newsroom/internal/news"
	"github.com/wartahukum/newsroom/internal/newsapi"
	"github.com/wartahukum/newsroom/internal/store/postgres"
)

// App holds the shared services a command needs: the logger, the connection
// pool, and the stores built on it. It is initialized once at startup and
// must be closed when the command finishes.
type App struct {
	cfg    config.Config
	logger *zap.Logger
	pool   *pgxpool.Pool

	clock news.Clock

	users      news.UserStore
	categories news.CategoryStore
	articles   news.ArticleStore

	closeOnce sync.Once
}

// New connects to Postgres and wires the stores. It fails fast if the
// database is unreachable.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	logger.Info("connecting to postgres")
	pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
		DSN:      cfg.DB.DSN,
		MaxConns: cfg.DB.MaxConns,
		MinConns: cfg.DB.MinConns,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	ids := uuid.New()
	clk := system.New()

	return &App{
		cfg:        cfg,
		logger:     logger,
		pool:       pool,
		clock:      clk,
		users:      postgres.NewUserStore(pool, ids, clk),
		categories: postgres.NewCategoryStore(pool, ids, clk),
		articles:   postgres.NewArticleStore(pool, ids, clk),
	}, nil
}

// Logger returns the shared logger instance.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Server builds the HTTP server on top of the shared stores.
func (a *App) Server() (*api.Server, error) {
	tokens, err := auth.NewManager(a.cfg.Auth.JWTSecret, a.cfg.TokenTTL(), a.clock)
	if err != nil {
		return nil, fmt.Errorf("initialize token manager: %w", err)
	}
	return api.NewServer(a.articles, a.categories, a.users, tokens, a.clock, a.logger), nil
}

// Pipeline builds the ingestion pipeline on top of the shared stores.
func (a *App) Pipeline() (*ingest.Pipeline, error) {
	searcher, err := newsapi.NewClient(
		a.cfg.NewsAPI.BaseURL,
		a.cfg.NewsAPI.APIKey,
		a.cfg.SearchTimeout(),
		a.logger,
	)
	if err != nil {
		return nil, fmt.Errorf("initialize search client: %w", err)
	}
	return ingest.New(
		a.users,
		a.categories,
		a.articles,
		searcher,
		a.clock,
		ingest.Config{
			Keywords:   a.cfg.Ingest.Keywords,
			Language:   a.cfg.NewsAPI.Language,
			WindowDays: a.cfg.Ingest.WindowDays,
		},
		a.logger,
	), nil
}

// Close releases the connection pool and flushes the logger. Safe to call
// more than once; the pool is released exactly once.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		a.logger.Info("shutting down application services")
		a.pool.Close()
		_ = a.logger.Sync()
	})
}
