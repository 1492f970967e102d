package transport

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"product-catalog/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newCategoryRouter(t *testing.T) (chi.Router, *mockCatalog) {
	t.Helper()

	catalog := newMockCatalog()
	router := chi.NewRouter()
	handler := NewCategoryHandler(catalog, zap.NewNop())
	handler.RegisterRoutes(router, "/api/categories")

	return router, catalog
}

func TestCreateCategoryThenList(t *testing.T) {
	router, _ := newCategoryRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/categories", CreateCategoryRequest{Name: "Electronic"})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var created domain.Category
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("Failed to decode category: %v", err)
	}
	if created.ID == "" {
		t.Fatal("Created category has no identifier")
	}
	if created.Name != "Electronic" {
		t.Errorf("Unexpected name: %q", created.Name)
	}

	location := w.Header().Get("Location")
	if location != "/api/categories/"+created.ID {
		t.Errorf("Unexpected Location header: %q", location)
	}

	list := doJSON(t, router, http.MethodGet, "/api/categories", nil)
	if list.Code != http.StatusOK {
		t.Fatalf("Expected 200 on list, got %d", list.Code)
	}

	var categories []domain.Category
	if err := json.Unmarshal(list.Body.Bytes(), &categories); err != nil {
		t.Fatalf("Failed to decode listing: %v", err)
	}
	if len(categories) != 1 || categories[0].ID != created.ID {
		t.Errorf("Listing does not contain the created category: %+v", categories)
	}
}

func TestCreateCategoryWithoutNameReturns400(t *testing.T) {
	router, _ := newCategoryRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/categories", CreateCategoryRequest{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}

	var body struct {
		Errors []string `json:"errors"`
		Status int      `json:"status"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode error body: %v", err)
	}
	if len(body.Errors) != 1 || !strings.Contains(body.Errors[0], "name") {
		t.Errorf("Unexpected field errors: %v", body.Errors)
	}
}

func TestGetCategoryUnknownIDReturnsEmpty404(t *testing.T) {
	router, _ := newCategoryRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/categories/"+uuid.New().String(), nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("Expected empty body, got %q", w.Body.String())
	}
}
