package domain

import (
	"strings"
	"time"
)

// Category represents a product category document
type Category struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
}

// Product represents a product document in the catalog.
// Category is embedded by value: the product carries a full copy of the
// category fields it was created with, there is no join at read time.
type Product struct {
	ID       string    `json:"id,omitempty"`
	Name     string    `json:"name" validate:"required"`
	Price    float64   `json:"price" validate:"required,gt=0"`
	CreateAt time.Time `json:"createAt,omitzero"`
	Category *Category `json:"category" validate:"required"`
	Picture  string    `json:"picture,omitempty"`
}

// NewProduct creates a product with the given name, price and category.
// The ID stays empty until the first save assigns one.
func NewProduct(name string, price float64, category *Category) *Product {
	return &Product{
		Name:     name,
		Price:    price,
		Category: category,
	}
}

// WithUppercaseName returns a copy of the product with its name upper-cased.
// The stored document is not modified.
func (p *Product) WithUppercaseName() *Product {
	clone := *p
	clone.Name = strings.ToUpper(p.Name)
	return &clone
}
