package services_test

import (
	"testing"

	"boutique/internal/apperrors"
	"boutique/internal/models"
	"boutique/internal/repositories"
	"boutique/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedKurta(t *testing.T, repo *repositories.MockProductRepository) *models.Product {
	t.Helper()
	product := &models.Product{
		ProductCode: "KUR001",
		Name:        "Chikankari Kurta",
		Material:    "Cotton",
		Category:    "kurtas",
		Featured:    true,
		Variants: []models.Variant{
			{Size: "S", Colour: "White", Stock: 5, Price: 1499, Images: []string{"kurta-white.jpg"}},
			{Size: "M", Colour: "White", Stock: 3, Price: 1499},
			{Size: "M", Colour: "Blue", Stock: 2, Price: 1599},
		},
	}
	require.NoError(t, repo.Create(product))
	return product
}

func TestProductService_ListCatalog(t *testing.T) {
	repo := repositories.NewMockProductRepository()
	service := services.NewProductService(repo)

	seedKurta(t, repo)
	require.NoError(t, repo.Create(&models.Product{
		ProductCode: "SAR001",
		Name:        "Banarasi Saree",
		Category:    "sarees",
		Price:       4999,
		Stock:       7,
		Images:      []string{"saree.jpg"},
	}))

	entries, err := service.ListCatalog(repositories.ProductFilter{})
	assert.NoError(t, err)
	assert.Len(t, entries, 2)

	kurtas, err := service.ListCatalog(repositories.ProductFilter{Category: "kurtas"})
	require.NoError(t, err)
	require.Len(t, kurtas, 1)

	entry := kurtas[0]
	assert.Equal(t, "KUR001", entry.ProductCode)
	assert.Equal(t, []string{"M", "S"}, entry.AvailableSizes)
	assert.Equal(t, []string{"Blue", "White"}, entry.AvailableColours)
	assert.Equal(t, 10, entry.TotalStock)
	assert.Equal(t, 1499.0, entry.MinPrice)
	assert.Equal(t, 1599.0, entry.MaxPrice)
	// First variant's images back the product when it has none of its own.
	assert.Equal(t, []string{"kurta-white.jpg"}, entry.Images)
}

func TestProductService_ListCatalog_FlatProduct(t *testing.T) {
	repo := repositories.NewMockProductRepository()
	service := services.NewProductService(repo)

	require.NoError(t, repo.Create(&models.Product{
		ProductCode: "SAR001",
		Name:        "Banarasi Saree",
		Category:    "sarees",
		Price:       4999,
		Stock:       7,
	}))

	entries, err := service.ListCatalog(repositories.ProductFilter{ProductCode: "SAR001"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 7, entries[0].TotalStock)
	assert.Equal(t, 4999.0, entries[0].MinPrice)
	assert.Equal(t, 4999.0, entries[0].MaxPrice)
	assert.Empty(t, entries[0].AvailableSizes)
}

func TestProductService_Categories(t *testing.T) {
	repo := repositories.NewMockProductRepository()
	service := services.NewProductService(repo)

	seedKurta(t, repo)
	require.NoError(t, repo.Create(&models.Product{ProductCode: "SAR001", Category: "sarees"}))
	require.NoError(t, repo.Create(&models.Product{ProductCode: "SAR002", Category: "sarees"}))

	categories, err := service.Categories()
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"kurtas", "sarees"}, categories)
}

func TestProductService_CRUD(t *testing.T) {
	repo := repositories.NewMockProductRepository()
	service := services.NewProductService(repo)

	product := seedKurta(t, repo)

	fetched, err := service.GetProductByID(product.ID)
	assert.NoError(t, err)
	assert.Equal(t, product.Name, fetched.Name)

	fetched.Name = "Chikankari Kurta (New)"
	assert.NoError(t, service.UpdateProduct(fetched))
	updated, err := service.GetProductByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Chikankari Kurta (New)", updated.Name)

	assert.NoError(t, service.DeleteProduct(product.ID))
	_, err = service.GetProductByID(product.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
