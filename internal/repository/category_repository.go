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
	ErrCategoryNotFound = errors.New("category not found")
)

// CategoryRepository defines the document store contract for categories
type CategoryRepository interface {
	FindAll(ctx context.Context) ([]*domain.Category, error)
	FindByID(ctx context.Context, id string) (*domain.Category, error)
	FindByName(ctx context.Context, name string) (*domain.Category, error)
	Save(ctx context.Context, category *domain.Category) (*domain.Category, error)
	Delete(ctx context.Context, category *domain.Category) error
}

type categoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(db *sql.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// FindAll retrieves all category documents ordered by name
func (r *categoryRepository) FindAll(ctx context.Context) ([]*domain.Category, error) {
	query := `SELECT doc FROM categories ORDER BY doc->>'name' ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []*domain.Category{}
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}

		category := &domain.Category{}
		if err := json.Unmarshal(doc, category); err != nil {
			return nil, fmt.Errorf("failed to decode category document: %w", err)
		}
		categories = append(categories, category)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// FindByID retrieves a category document by identifier
func (r *categoryRepository) FindByID(ctx context.Context, id string) (*domain.Category, error) {
	query := `SELECT doc FROM categories WHERE id = $1`

	var doc []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(&doc)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category by ID: %w", err)
	}

	category := &domain.Category{}
	if err := json.Unmarshal(doc, category); err != nil {
		return nil, fmt.Errorf("failed to decode category document: %w", err)
	}

	return category, nil
}

// FindByName retrieves the first category whose name exactly matches
func (r *categoryRepository) FindByName(ctx context.Context, name string) (*domain.Category, error) {
	query := `SELECT doc FROM categories WHERE doc->>'name' = $1 LIMIT 1`

	var doc []byte
	err := r.db.QueryRowContext(ctx, query, name).Scan(&doc)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category by name: %w", err)
	}

	category := &domain.Category{}
	if err := json.Unmarshal(doc, category); err != nil {
		return nil, fmt.Errorf("failed to decode category document: %w", err)
	}

	return category, nil
}

// Save inserts or fully replaces a category document
func (r *categoryRepository) Save(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if category.ID == "" {
		category.ID = uuid.New().String()
	}

	doc, err := json.Marshal(category)
	if err != nil {
		return nil, fmt.Errorf("failed to encode category document: %w", err)
	}

	query := `
		INSERT INTO categories (id, doc)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc
	`

	if _, err := r.db.ExecContext(ctx, query, category.ID, doc); err != nil {
		return nil, fmt.Errorf("failed to save category: %w", err)
	}

	return category, nil
}

// Delete removes the document matching the category's identifier
func (r *categoryRepository) Delete(ctx context.Context, category *domain.Category) error {
	query := `DELETE FROM categories WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, category.ID)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrCategoryNotFound
	}

	return nil
}
