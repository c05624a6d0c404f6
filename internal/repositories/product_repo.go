package repositories

import (
	"boutique/internal/models"
)

// ProductFilter narrows catalog listings.
type ProductFilter struct {
	Category    string
	ProductCode string
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	List(filter ProductFilter) ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
	Categories() ([]string, error)
	// DecrementVariantStock atomically subtracts qty from a variant's stock,
	// refusing to take it below zero. Returns false when stock was
	// insufficient or the variant is unknown.
	DecrementVariantStock(variantID string, qty int) (bool, error)
	// DecrementProductStock is the flat-stock equivalent for products with no
	// variant list.
	DecrementProductStock(productID string, qty int) (bool, error)
}
