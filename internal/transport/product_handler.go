package transport

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"product-catalog/internal/domain"
	"product-catalog/internal/middleware"
	"product-catalog/internal/repository"
	"product-catalog/internal/service"
	"product-catalog/internal/upload"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxUploadMemory caps the in-memory portion of multipart parsing.
const maxUploadMemory = 32 << 20

// ProductHandler handles HTTP requests for product operations. The same
// handler backs every versioned base path, so both route sets behave
// identically.
type ProductHandler struct {
	catalog service.CatalogService
	uploads *upload.Store
	logger  *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalog service.CatalogService, uploads *upload.Store, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		uploads: uploads,
		logger:  logger,
	}
}

// RegisterRoutes registers the product routes under the given base path
func (h *ProductHandler) RegisterRoutes(r chi.Router, base string) {
	r.Route(base, func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/uppercase", h.ListUppercase)
		r.Get("/{id}", h.Get)
		r.Post("/", h.Create)
		r.Post("/createWithPic", h.CreateWithPicture)
		r.Post("/upload/{id}", h.UploadPicture)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// List returns every stored product
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.FindAll(r.Context())
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// ListUppercase returns every product with its name upper-cased in the view
func (h *ProductHandler) ListUppercase(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.FindAllUppercaseNames(r.Context())
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Get returns a single product or an empty 404
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.catalog.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.logger.Error("Failed to get product", zap.String("id", id), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Create handles product creation from a JSON body
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var product domain.Product

	if err := middleware.DecodeAndValidate(r, &product); err != nil {
		if fieldErrors := middleware.FormatFieldErrors(err); len(fieldErrors) > 0 {
			middleware.RespondWithFieldErrors(w, middleware.FieldErrorMessages(fieldErrors))
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if product.CreateAt.IsZero() {
		product.CreateAt = time.Now()
	}

	saved, err := h.catalog.Save(r.Context(), &product)
	if err != nil {
		h.logger.Error("Failed to save product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to save product")
		return
	}

	h.logger.Info("Product created", zap.String("id", saved.ID), zap.String("name", saved.Name))
	w.Header().Set("Location", h.location(r, saved.ID))
	middleware.RespondWithJSON(w, http.StatusCreated, saved)
}

// CreateWithPicture handles product creation from a multipart form carrying
// the product fields and an image file
func (h *ProductHandler) CreateWithPicture(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "price must be a number")
		return
	}

	category := &domain.Category{
		ID:   r.FormValue("category.id"),
		Name: r.FormValue("category.name"),
	}
	product := domain.NewProduct(r.FormValue("name"), price, category)

	if err := middleware.ValidateDocument(product); err != nil {
		if fieldErrors := middleware.FormatFieldErrors(err); len(fieldErrors) > 0 {
			middleware.RespondWithFieldErrors(w, middleware.FieldErrorMessages(fieldErrors))
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid form fields")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "missing file part")
		return
	}
	defer file.Close()

	storedName, err := h.uploads.Save(r.Context(), file, header.Filename)
	if err != nil {
		if errors.Is(err, upload.ErrInvalidFilename) {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid upload filename")
			return
		}
		h.logger.Error("Failed to store uploaded file", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to store file")
		return
	}

	product.Picture = storedName
	product.CreateAt = time.Now()

	saved, err := h.catalog.Save(r.Context(), product)
	if err != nil {
		h.logger.Error("Failed to save product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to save product")
		return
	}

	h.logger.Info("Product created with picture",
		zap.String("id", saved.ID),
		zap.String("picture", saved.Picture),
	)
	w.Header().Set("Location", h.location(r, saved.ID))
	middleware.RespondWithJSON(w, http.StatusCreated, saved)
}

// UploadPicture attaches an image file to an existing product
func (h *ProductHandler) UploadPicture(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.catalog.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.logger.Error("Failed to get product", zap.String("id", id), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "missing file part")
		return
	}
	defer file.Close()

	storedName, err := h.uploads.Save(r.Context(), file, header.Filename)
	if err != nil {
		if errors.Is(err, upload.ErrInvalidFilename) {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid upload filename")
			return
		}
		h.logger.Error("Failed to store uploaded file", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to store file")
		return
	}

	product.Picture = storedName

	saved, err := h.catalog.Save(r.Context(), product)
	if err != nil {
		h.logger.Error("Failed to save product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to save product")
		return
	}

	h.logger.Info("Product picture updated",
		zap.String("id", saved.ID),
		zap.String("picture", saved.Picture),
	)
	middleware.RespondWithJSON(w, http.StatusOK, saved)
}

// Update overwrites name, price and category of an existing product.
// Picture and creation timestamp are left untouched.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var incoming domain.Product
	if err := middleware.DecodeAndValidate(r, &incoming); err != nil {
		if fieldErrors := middleware.FormatFieldErrors(err); len(fieldErrors) > 0 {
			middleware.RespondWithFieldErrors(w, middleware.FieldErrorMessages(fieldErrors))
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	existing, err := h.catalog.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.logger.Error("Failed to get product", zap.String("id", id), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	existing.Name = incoming.Name
	existing.Price = incoming.Price
	existing.Category = incoming.Category

	saved, err := h.catalog.Save(r.Context(), existing)
	if err != nil {
		h.logger.Error("Failed to save product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to save product")
		return
	}

	h.logger.Info("Product updated", zap.String("id", saved.ID))
	middleware.RespondWithJSON(w, http.StatusOK, saved)
}

// Delete removes an existing product
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.catalog.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.logger.Error("Failed to get product", zap.String("id", id), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	if err := h.catalog.Delete(r.Context(), product); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.logger.Error("Failed to delete product", zap.String("id", id), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	h.logger.Info("Product deleted", zap.String("id", id))
	w.WriteHeader(http.StatusNoContent)
}

// location builds the Location header for a created product relative to the
// base path the request came in on.
func (h *ProductHandler) location(r *http.Request, id string) string {
	base := strings.TrimSuffix(r.URL.Path, "/")
	base = strings.TrimSuffix(base, "/createWithPic")
	return base + "/" + id
}
