// Package api exposes the HTTP interface for the newsroom service.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/wartahukum/newsroom/internal/auth"
	"github.com/wartahukum/newsroom/internal/news"
	"github.com/wartahukum/newsroom/internal/telemetry"
)

// Server wires HTTP handlers to the stores and the token manager.
type Server struct {
	router     chi.Router
	articles   news.ArticleStore
	categories news.CategoryStore
	users      news.UserStore
	tokens     *auth.Manager
	clock      news.Clock
	validate   *validator.Validate
	logger     *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(
	articles news.ArticleStore,
	categories news.CategoryStore,
	users news.UserStore,
	tokens *auth.Manager,
	clock news.Clock,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		articles:   articles,
		categories: categories,
		users:      users,
		tokens:     tokens,
		clock:      clock,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		logger:     logger,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(timeoutMiddleware(60 * time.Second))
	r.Use(metricsMiddleware)

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Handle("/metrics", telemetry.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/register", s.register)
		r.Post("/auth/login", s.login)

		r.Get("/articles", s.listArticles)
		r.Get("/articles/{article_id}", s.getArticle)
		r.Get("/articles/{article_id}/related", s.relatedArticles)
		r.Get("/categories", s.listCategories)
		r.Get("/categories/{category_id}", s.getCategory)

		r.Group(func(r chi.Router) {
			r.Use(s.requireRole(news.RoleAdmin))
			r.Post("/articles", s.createArticle)
			r.Put("/articles/{article_id}", s.updateArticle)
			r.Delete("/articles/{article_id}", s.deleteArticle)
			r.Post("/categories", s.createCategory)
			r.Put("/categories/{category_id}", s.updateCategory)
			r.Delete("/categories/{category_id}", s.deleteCategory)
		})
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
