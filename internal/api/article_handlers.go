package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/wartahukum/newsroom/internal/news"
)

// maxPageSize caps listing requests.
const maxPageSize = 100

func intParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (s *Server) listArticles(w http.ResponseWriter, r *http.Request) {
	page := intParam(r, "page", 1)
	limit := intParam(r, "limit", 10)
	if page < 1 || limit < 1 || limit > maxPageSize {
		writeError(w, http.StatusBadRequest, "invalid pagination parameters")
		return
	}

	q := news.ArticleQuery{
		Page:       page,
		Limit:      limit,
		CategoryID: r.URL.Query().Get("categoryId"),
		Search:     r.URL.Query().Get("search"),
		SortBy:     r.URL.Query().Get("sortBy"),
		SortOrder:  r.URL.Query().Get("sortOrder"),
	}

	result, err := s.articles.List(r.Context(), q)
	if err != nil {
		s.logger.Error("list articles failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	sortBy := q.SortBy
	if _, ok := map[string]bool{
		news.SortByTitle:       true,
		news.SortByAuthor:      true,
		news.SortByPublishedAt: true,
	}[sortBy]; !ok {
		sortBy = news.SortByPublishedAt
	}
	sortOrder := "desc"
	if strings.EqualFold(q.SortOrder, "asc") {
		sortOrder = "asc"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":        result.Data,
		"totalPages":  result.TotalPages,
		"totalItems":  result.TotalItems,
		"currentPage": result.CurrentPage,
		"hasNextPage": result.CurrentPage < result.TotalPages,
		"hasPrevPage": result.CurrentPage > 1,
		"filters": map[string]any{
			"categoryId": nullable(q.CategoryID),
			"search":     nullable(q.Search),
			"sortBy":     sortBy,
			"sortOrder":  sortOrder,
		},
	})
}

func (s *Server) getArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "article_id")
	article, err := s.articles.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, news.ErrNotFound) {
			writeError(w, http.StatusNotFound, "article not found")
			return
		}
		s.logger.Error("get article failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, article)
}

func (s *Server) relatedArticles(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "article_id")
	limit := intParam(r, "limit", 6)

	related, err := s.articles.Related(r.Context(), id, limit)
	if err != nil {
		if errors.Is(err, news.ErrNotFound) {
			writeError(w, http.StatusNotFound, "article not found")
			return
		}
		s.logger.Error("related articles failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data": related,
		"meta": map[string]any{"total": len(related)},
	})
}

type articleRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Content     string  `json:"content"`
	Author      string  `json:"author"`
	ImageURL    *string `json:"imageUrl"`
	SourceURL   string  `json:"sourceUrl"`
	PublishedAt string  `json:"publishedAt"`
	CategoryID  string  `json:"categoryId"`
}

func (s *Server) createArticle(w http.ResponseWriter, r *http.Request) {
	var req articleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Content = strings.TrimSpace(req.Content)
	req.Author = strings.TrimSpace(req.Author)
	req.SourceURL = strings.TrimSpace(req.SourceURL)
	if req.Title == "" || req.Content == "" || req.SourceURL == "" || req.Author == "" || req.CategoryID == "" {
		writeError(w, http.StatusBadRequest, "missing required fields: title, content, sourceUrl, author, categoryId")
		return
	}

	if _, err := s.categories.Get(r.Context(), req.CategoryID); err != nil {
		if errors.Is(err, news.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "category not found")
			return
		}
		s.logger.Error("get category failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	publishedAt := s.clock.Now()
	if req.PublishedAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.PublishedAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "publishedAt must be RFC 3339")
			return
		}
		publishedAt = parsed
	}

	article, err := s.articles.Create(r.Context(), news.Article{
		Title:       req.Title,
		Description: strings.TrimSpace(req.Description),
		Content:     req.Content,
		Author:      &req.Author,
		ImageURL:    req.ImageURL,
		SourceURL:   req.SourceURL,
		PublishedAt: publishedAt,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		if errors.Is(err, news.ErrDuplicate) {
			writeError(w, http.StatusBadRequest, "article with this source URL already exists")
			return
		}
		s.logger.Error("create article failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if claims, ok := claimsFrom(r.Context()); ok {
		s.logger.Info("article created",
			zap.String("article_id", article.ID),
			zap.String("by", claims.Username),
		)
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"data":    article,
		"message": "article created successfully",
	})
}

func (s *Server) updateArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "article_id")
	var req articleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	article, err := s.articles.Update(r.Context(), news.Article{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		ImageURL:    req.ImageURL,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		if errors.Is(err, news.ErrNotFound) {
			writeError(w, http.StatusNotFound, "article not found")
			return
		}
		s.logger.Error("update article failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, article)
}

func (s *Server) deleteArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "article_id")
	if err := s.articles.Delete(r.Context(), id); err != nil {
		if errors.Is(err, news.ErrNotFound) {
			writeError(w, http.StatusNotFound, "article not found")
			return
		}
		s.logger.Error("delete article failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
