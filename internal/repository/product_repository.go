package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"product-catalog/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines the document store contract for products.
// Save assigns a fresh identifier when the product has none, otherwise it
// fully replaces the stored document with the same identifier.
type ProductRepository interface {
	FindAll(ctx context.Context) ([]*domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	FindByName(ctx context.Context, name string) (*domain.Product, error)
	Save(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, product *domain.Product) error
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

// FindAll retrieves every product document in the collection
func (r *productRepository) FindAll(ctx context.Context) ([]*domain.Product, error) {
	query := `SELECT doc FROM products`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}

		product := &domain.Product{}
		if err := json.Unmarshal(doc, product); err != nil {
			return nil, fmt.Errorf("failed to decode product document: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// FindByID retrieves a single product document by identifier
func (r *productRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT doc FROM products WHERE id = $1`

	var doc []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(&doc)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	product := &domain.Product{}
	if err := json.Unmarshal(doc, product); err != nil {
		return nil, fmt.Errorf("failed to decode product document: %w", err)
	}

	return product, nil
}

// FindByName retrieves the first product whose name exactly equals the
// argument. Which document wins when several share a name is unspecified.
func (r *productRepository) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	query := `SELECT doc FROM products WHERE doc->>'name' = $1 LIMIT 1`

	var doc []byte
	err := r.db.QueryRowContext(ctx, query, name).Scan(&doc)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by name: %w", err)
	}

	product := &domain.Product{}
	if err := json.Unmarshal(doc, product); err != nil {
		return nil, fmt.Errorf("failed to decode product document: %w", err)
	}

	return product, nil
}

// Save inserts or fully replaces a product document. An empty ID means the
// product has never been persisted, so a new identifier is assigned first.
func (r *productRepository) Save(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}

	doc, err := json.Marshal(product)
	if err != nil {
		return nil, fmt.Errorf("failed to encode product document: %w", err)
	}

	query := `
		INSERT INTO products (id, doc)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc
	`

	if _, err := r.db.ExecContext(ctx, query, product.ID, doc); err != nil {
		return nil, fmt.Errorf("failed to save product: %w", err)
	}

	return product, nil
}

// Delete removes the document matching the product's identifier
func (r *productRepository) Delete(ctx context.Context, product *domain.Product) error {
	query := `DELETE FROM products WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, product.ID)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}
