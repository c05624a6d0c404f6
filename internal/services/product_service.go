package services

import (
	"sort"

	"boutique/internal/models"
	"boutique/internal/repositories"
)

// ProductService handles business logic related to products.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// CatalogEntry is the storefront projection of a product: its variants plus
// the aggregates the listing pages need.
type CatalogEntry struct {
	ID               string           `json:"id"`
	ProductCode      string           `json:"product_code"`
	Name             string           `json:"product_name"`
	Material         string           `json:"material"`
	Category         string           `json:"category"`
	Featured         bool             `json:"featured"`
	Variants         []models.Variant `json:"variants"`
	AvailableSizes   []string         `json:"availableSizes"`
	AvailableColours []string         `json:"availableColors"`
	TotalStock       int              `json:"totalStock"`
	MinPrice         float64          `json:"minPrice"`
	MaxPrice         float64          `json:"maxPrice"`
	Images           []string         `json:"images"`
}

// ListCatalog returns catalog entries matching the filter.
func (s *ProductService) ListCatalog(filter repositories.ProductFilter) ([]CatalogEntry, error) {
	products, err := s.repo.List(filter)
	if err != nil {
		return nil, err
	}
	entries := make([]CatalogEntry, 0, len(products))
	for i := range products {
		entries = append(entries, buildCatalogEntry(&products[i]))
	}
	return entries, nil
}

func buildCatalogEntry(p *models.Product) CatalogEntry {
	entry := CatalogEntry{
		ID:          p.ID,
		ProductCode: p.ProductCode,
		Name:        p.Name,
		Material:    p.Material,
		Category:    p.Category,
		Featured:    p.Featured,
		Variants:    p.Variants,
		Images:      p.Images,
	}

	if !p.HasVariants() {
		// Flat products project as a single implicit variant.
		entry.TotalStock = p.Stock
		entry.MinPrice = p.Price
		entry.MaxPrice = p.Price
		return entry
	}

	sizes := make(map[string]bool)
	colours := make(map[string]bool)
	for _, v := range p.Variants {
		sizes[v.Size] = true
		colours[v.Colour] = true
		entry.TotalStock += v.Stock
		if v.Price > 0 {
			if entry.MinPrice == 0 || v.Price < entry.MinPrice {
				entry.MinPrice = v.Price
			}
			if v.Price > entry.MaxPrice {
				entry.MaxPrice = v.Price
			}
		}
		if len(entry.Images) == 0 {
			entry.Images = v.Images
		}
	}
	for size := range sizes {
		entry.AvailableSizes = append(entry.AvailableSizes, size)
	}
	for colour := range colours {
		entry.AvailableColours = append(entry.AvailableColours, colour)
	}
	sort.Strings(entry.AvailableSizes)
	sort.Strings(entry.AvailableColours)
	return entry
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// Categories lists the distinct catalog categories.
func (s *ProductService) Categories() ([]string, error) {
	return s.repo.Categories()
}

// CreateProduct creates a new product.
func (s *ProductService) CreateProduct(product *models.Product) error {
	return s.repo.Create(product)
}

// UpdateProduct updates an existing product.
func (s *ProductService) UpdateProduct(product *models.Product) error {
	return s.repo.Update(product)
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(id string) error {
	return s.repo.Delete(id)
}
