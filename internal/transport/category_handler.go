package transport

import (
	"errors"
	"net/http"
	"strings"

	"product-catalog/internal/domain"
	"product-catalog/internal/middleware"
	"product-catalog/internal/repository"
	"product-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CreateCategoryRequest is the JSON payload for creating a category.
// The identifier is assigned by the store.
type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

// CategoryHandler handles HTTP requests for category operations
type CategoryHandler struct {
	catalog service.CatalogService
	logger  *zap.Logger
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(catalog service.CatalogService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// RegisterRoutes registers the category routes
func (h *CategoryHandler) RegisterRoutes(r chi.Router, base string) {
	r.Route(base, func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Post("/", h.Create)
	})
}

// List returns every stored category
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.FindAllCategories(r.Context())
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

// Get returns a single category or an empty 404
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	category, err := h.catalog.FindCategoryByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.logger.Error("Failed to get category", zap.String("id", id), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, category)
}

// Create handles category creation from a JSON body
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if fieldErrors := middleware.FormatFieldErrors(err); len(fieldErrors) > 0 {
			middleware.RespondWithFieldErrors(w, middleware.FieldErrorMessages(fieldErrors))
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	saved, err := h.catalog.SaveCategory(r.Context(), &domain.Category{Name: req.Name})
	if err != nil {
		h.logger.Error("Failed to save category", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to save category")
		return
	}

	h.logger.Info("Category created", zap.String("id", saved.ID), zap.String("name", saved.Name))
	w.Header().Set("Location", strings.TrimSuffix(r.URL.Path, "/")+"/"+saved.ID)
	middleware.RespondWithJSON(w, http.StatusCreated, saved)
}
