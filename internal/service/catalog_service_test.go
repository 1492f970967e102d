package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"product-catalog/internal/cache"
	"product-catalog/internal/domain"
	"product-catalog/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Mock repositories for testing
type mockProductRepository struct {
	products map[string]*domain.Product
	finds    int
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{
		products: make(map[string]*domain.Product),
	}
}

func (m *mockProductRepository) FindAll(ctx context.Context) ([]*domain.Product, error) {
	all := make([]*domain.Product, 0, len(m.products))
	for _, p := range m.products {
		clone := *p
		all = append(all, &clone)
	}
	return all, nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	m.finds++
	p, exists := m.products[id]
	if !exists {
		return nil, repository.ErrProductNotFound
	}
	clone := *p
	return &clone, nil
}

func (m *mockProductRepository) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	for _, p := range m.products {
		if p.Name == name {
			clone := *p
			return &clone, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *mockProductRepository) Save(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	clone := *product
	m.products[product.ID] = &clone
	return product, nil
}

func (m *mockProductRepository) Delete(ctx context.Context, product *domain.Product) error {
	if _, exists := m.products[product.ID]; !exists {
		return repository.ErrProductNotFound
	}
	delete(m.products, product.ID)
	return nil
}

type mockCategoryRepository struct {
	categories map[string]*domain.Category
}

func newMockCategoryRepository() *mockCategoryRepository {
	return &mockCategoryRepository{
		categories: make(map[string]*domain.Category),
	}
}

func (m *mockCategoryRepository) FindAll(ctx context.Context) ([]*domain.Category, error) {
	all := make([]*domain.Category, 0, len(m.categories))
	for _, c := range m.categories {
		clone := *c
		all = append(all, &clone)
	}
	return all, nil
}

func (m *mockCategoryRepository) FindByID(ctx context.Context, id string) (*domain.Category, error) {
	c, exists := m.categories[id]
	if !exists {
		return nil, repository.ErrCategoryNotFound
	}
	clone := *c
	return &clone, nil
}

func (m *mockCategoryRepository) FindByName(ctx context.Context, name string) (*domain.Category, error) {
	for _, c := range m.categories {
		if c.Name == name {
			clone := *c
			return &clone, nil
		}
	}
	return nil, repository.ErrCategoryNotFound
}

func (m *mockCategoryRepository) Save(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	clone := *category
	m.categories[category.ID] = &clone
	return category, nil
}

func (m *mockCategoryRepository) Delete(ctx context.Context, category *domain.Category) error {
	if _, exists := m.categories[category.ID]; !exists {
		return repository.ErrCategoryNotFound
	}
	delete(m.categories, category.ID)
	return nil
}

func newTestService(t *testing.T, withCache bool) (CatalogService, *mockProductRepository, *mockCategoryRepository) {
	t.Helper()

	productRepo := newMockProductRepository()
	categoryRepo := newMockCategoryRepository()

	var productCache *cache.ProductCache
	if withCache {
		mr, err := miniredis.Run()
		if err != nil {
			t.Fatalf("Failed to start miniredis: %v", err)
		}
		t.Cleanup(mr.Close)

		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { client.Close() })

		productCache = cache.NewProductCache(client, time.Minute, zap.NewNop())
	}

	return NewCatalogService(productRepo, categoryRepo, productCache), productRepo, categoryRepo
}

func TestProperty_UppercaseViewDoesNotPersist(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("uppercase listing transforms copies only", prop.ForAll(
		func(name string) bool {
			if name == "" {
				name = "tv"
			}

			svc, productRepo, _ := newTestService(t, false)
			ctx := context.Background()

			saved, err := svc.Save(ctx, &domain.Product{
				Name:     name,
				Price:    9.99,
				Category: &domain.Category{ID: "c-1", Name: "Electronic"},
			})
			if err != nil {
				t.Logf("FAIL: save: %v", err)
				return false
			}

			upper, err := svc.FindAllUppercaseNames(ctx)
			if err != nil {
				t.Logf("FAIL: uppercase listing: %v", err)
				return false
			}

			if len(upper) != 1 || upper[0].Name != strings.ToUpper(name) {
				t.Logf("FAIL: view name %q, want %q", upper[0].Name, strings.ToUpper(name))
				return false
			}

			// The stored document keeps the original casing
			stored := productRepo.products[saved.ID]
			return stored.Name == name
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func TestFindByIDReadsThroughCache(t *testing.T) {
	svc, productRepo, _ := newTestService(t, true)
	ctx := context.Background()

	saved, err := svc.Save(ctx, &domain.Product{
		Name:     "TV LG 4k 52in",
		Price:    500.99,
		Category: &domain.Category{ID: "c-1", Name: "Electronic"},
	})
	if err != nil {
		t.Fatalf("Failed to save product: %v", err)
	}

	if _, err := svc.FindByID(ctx, saved.ID); err != nil {
		t.Fatalf("First read failed: %v", err)
	}
	if _, err := svc.FindByID(ctx, saved.ID); err != nil {
		t.Fatalf("Second read failed: %v", err)
	}

	if productRepo.finds != 1 {
		t.Errorf("Expected one store read, got %d", productRepo.finds)
	}
}

func TestSaveInvalidatesCachedEntry(t *testing.T) {
	svc, _, _ := newTestService(t, true)
	ctx := context.Background()

	saved, err := svc.Save(ctx, &domain.Product{
		Name:     "Old",
		Price:    1,
		Category: &domain.Category{ID: "c-1", Name: "Electronic"},
	})
	if err != nil {
		t.Fatalf("Failed to save product: %v", err)
	}

	// Warm the cache, then update through the service
	if _, err := svc.FindByID(ctx, saved.ID); err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	saved.Name = "New"
	if _, err := svc.Save(ctx, saved); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	fresh, err := svc.FindByID(ctx, saved.ID)
	if err != nil {
		t.Fatalf("Read after update failed: %v", err)
	}
	if fresh.Name != "New" {
		t.Errorf("Stale read after update: %q", fresh.Name)
	}
}

func TestDeleteRemovesProduct(t *testing.T) {
	svc, _, _ := newTestService(t, true)
	ctx := context.Background()

	saved, err := svc.Save(ctx, &domain.Product{
		Name:     "Doomed",
		Price:    2,
		Category: &domain.Category{ID: "c-1", Name: "Electronic"},
	})
	if err != nil {
		t.Fatalf("Failed to save product: %v", err)
	}

	if err := svc.Delete(ctx, saved); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := svc.FindByID(ctx, saved.ID); !errors.Is(err, repository.ErrProductNotFound) {
		t.Errorf("Expected ErrProductNotFound after delete, got %v", err)
	}
}

func TestCategoryPassThrough(t *testing.T) {
	svc, _, _ := newTestService(t, false)
	ctx := context.Background()

	saved, err := svc.SaveCategory(ctx, &domain.Category{Name: "Electronic"})
	if err != nil {
		t.Fatalf("Failed to save category: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("SaveCategory did not assign an identifier")
	}

	byID, err := svc.FindCategoryByID(ctx, saved.ID)
	if err != nil {
		t.Fatalf("FindCategoryByID failed: %v", err)
	}
	byName, err := svc.FindCategoryByName(ctx, "Electronic")
	if err != nil {
		t.Fatalf("FindCategoryByName failed: %v", err)
	}
	if byID.ID != byName.ID {
		t.Error("Lookups by id and name disagree")
	}

	all, err := svc.FindAllCategories(ctx)
	if err != nil {
		t.Fatalf("FindAllCategories failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("Expected one category, got %d", len(all))
	}
}
