package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/wartahukum/newsroom/internal/news"
)

type categoryRequest struct {
	Name string `json:"name"`
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	page := intParam(r, "page", 1)
	limit := intParam(r, "limit", 10)
	if page < 1 || limit < 1 || limit > maxPageSize {
		writeError(w, http.StatusBadRequest, "invalid pagination parameters")
		return
	}

	result, err := s.categories.List(r.Context(), news.CategoryQuery{
		Page:   page,
		Limit:  limit,
		Search: r.URL.Query().Get("search"),
	})
	if err != nil {
		s.logger.Error("list categories failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"data":        result.Data,
		"totalPages":  result.TotalPages,
		"totalItems":  result.TotalItems,
		"currentPage": result.CurrentPage,
	})
}

func (s *Server) getCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "category_id")
	category, err := s.categories.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, news.ErrNotFound) {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
		s.logger.Error("get category failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": category})
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "category name must not be empty")
		return
	}

	category, err := s.categories.Create(r.Context(), name)
	if err != nil {
		if errors.Is(err, news.ErrDuplicate) {
			writeError(w, http.StatusBadRequest, "a category with this name already exists")
			return
		}
		s.logger.Error("create category failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"data":    category,
		"message": "category created successfully",
	})
}

func (s *Server) updateCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "category_id")
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "category name must not be empty")
		return
	}

	category, err := s.categories.Update(r.Context(), id, name)
	if err != nil {
		switch {
		case errors.Is(err, news.ErrNotFound):
			writeError(w, http.StatusNotFound, "category not found")
		case errors.Is(err, news.ErrDuplicate):
			writeError(w, http.StatusBadRequest, "a category with this name already exists")
		default:
			s.logger.Error("update category failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    category,
		"message": "category updated successfully",
	})
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "category_id")
	if err := s.categories.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, news.ErrNotFound):
			writeError(w, http.StatusNotFound, "category not found")
		case errors.Is(err, news.ErrCategoryInUse):
			writeError(w, http.StatusBadRequest, "cannot delete a category that still has articles")
		default:
			s.logger.Error("delete category failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "category deleted successfully",
	})
}
