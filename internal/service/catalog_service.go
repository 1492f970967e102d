package service

import (
	"context"
	"fmt"

	"product-catalog/internal/cache"
	"product-catalog/internal/domain"
	"product-catalog/internal/repository"
)

// CatalogService defines the business-facing facade over the product and
// category document stores.
type CatalogService interface {
	FindAll(ctx context.Context) ([]*domain.Product, error)
	FindAllUppercaseNames(ctx context.Context) ([]*domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	FindByName(ctx context.Context, name string) (*domain.Product, error)
	Save(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, product *domain.Product) error

	FindAllCategories(ctx context.Context) ([]*domain.Category, error)
	FindCategoryByID(ctx context.Context, id string) (*domain.Category, error)
	FindCategoryByName(ctx context.Context, name string) (*domain.Category, error)
	SaveCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
}

type catalogService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	productCache *cache.ProductCache
}

// NewCatalogService creates a new instance of CatalogService. The cache may
// be nil, in which case every read goes straight to the store.
func NewCatalogService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	productCache *cache.ProductCache,
) CatalogService {
	return &catalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		productCache: productCache,
	}
}

// FindAll returns every stored product
func (s *catalogService) FindAll(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// FindAllUppercaseNames returns every stored product with its name
// upper-cased in the returned copy. The transformation is not persisted.
func (s *catalogService) FindAllUppercaseNames(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	upper := make([]*domain.Product, 0, len(products))
	for _, product := range products {
		upper = append(upper, product.WithUppercaseName())
	}
	return upper, nil
}

// FindByID returns the product with the given identifier, consulting the
// cache first.
func (s *catalogService) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	if product, ok := s.productCache.Get(ctx, id); ok {
		return product, nil
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.productCache.Set(ctx, product)
	return product, nil
}

// FindByName returns the first product with an exactly matching name
func (s *catalogService) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	return s.productRepo.FindByName(ctx, name)
}

// Save persists the product and invalidates any stale cache entry
func (s *catalogService) Save(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	saved, err := s.productRepo.Save(ctx, product)
	if err != nil {
		return nil, err
	}

	s.productCache.Invalidate(ctx, saved.ID)
	return saved, nil
}

// Delete removes the product and its cache entry
func (s *catalogService) Delete(ctx context.Context, product *domain.Product) error {
	if err := s.productRepo.Delete(ctx, product); err != nil {
		return err
	}

	s.productCache.Invalidate(ctx, product.ID)
	return nil
}

// FindAllCategories returns every stored category
func (s *catalogService) FindAllCategories(ctx context.Context) ([]*domain.Category, error) {
	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// FindCategoryByID returns the category with the given identifier
func (s *catalogService) FindCategoryByID(ctx context.Context, id string) (*domain.Category, error) {
	return s.categoryRepo.FindByID(ctx, id)
}

// FindCategoryByName returns the first category with an exactly matching name
func (s *catalogService) FindCategoryByName(ctx context.Context, name string) (*domain.Category, error) {
	return s.categoryRepo.FindByName(ctx, name)
}

// SaveCategory persists the category
func (s *catalogService) SaveCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	return s.categoryRepo.Save(ctx, category)
}
