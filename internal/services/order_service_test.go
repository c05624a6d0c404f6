package services_test

import (
	"regexp"
	"testing"

	"boutique/internal/apperrors"
	"boutique/internal/models"
	"boutique/internal/repositories"
	"boutique/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderNumberPattern = regexp.MustCompile(`^ORD\d{12}$`)

type orderFixture struct {
	service     *services.OrderService
	orderRepo   *repositories.MockOrderRepository
	productRepo *repositories.MockProductRepository
	product     *models.Product
}

func newOrderFixture(t *testing.T, allowGuest bool) *orderFixture {
	t.Helper()
	orderRepo := repositories.NewMockOrderRepository()
	productRepo := repositories.NewMockProductRepository()
	product := seedKurta(t, productRepo)
	return &orderFixture{
		service:     services.NewOrderService(orderRepo, productRepo, nil, nil, allowGuest, "admin@example.com"),
		orderRepo:   orderRepo,
		productRepo: productRepo,
		product:     product,
	}
}

func TestOrderService_CreateOrder_GuestCheckout(t *testing.T) {
	f := newOrderFixture(t, true)

	result, err := f.service.CreateOrder(services.CreateOrderRequest{
		Items: []services.OrderItemRequest{
			{ProductID: f.product.ID, Quantity: 2, Size: "S", Colour: "White"},
		},
		CustomerName:    "Priya",
		CustomerEmail:   "priya@example.com",
		ShippingAddress: "12 MG Road, Bengaluru",
	}, nil)
	require.NoError(t, err)

	assert.Regexp(t, orderNumberPattern, result.OrderNumber)
	assert.Equal(t, 2*1499.0, result.TotalAmount)

	stored, err := f.orderRepo.GetByOrderNumber(result.OrderNumber)
	require.NoError(t, err)
	assert.Nil(t, stored.UserID)
	assert.Equal(t, models.OrderStatusPending, stored.Status)
	assert.Equal(t, models.PaymentStatusPending, stored.PaymentStatus)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "KUR001", stored.Items[0].ProductCode)
	assert.Equal(t, 1499.0, stored.Items[0].Price)

	// Stock on the S/White variant went from 5 to 3.
	product, err := f.productRepo.GetByID(f.product.ID)
	require.NoError(t, err)
	variant := product.FindVariant("S", "White")
	require.NotNil(t, variant)
	assert.Equal(t, 3, variant.Stock)
}

func TestOrderService_CreateOrder_GuestCheckoutDisabled(t *testing.T) {
	f := newOrderFixture(t, false)

	_, err := f.service.CreateOrder(services.CreateOrderRequest{
		Items: []services.OrderItemRequest{{ProductID: f.product.ID, Quantity: 1, Size: "S", Colour: "White"}},
	}, nil)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	// The same request with an identity succeeds.
	identity := &services.Identity{UserID: "user-1", Username: "priya", Email: "priya@example.com"}
	result, err := f.service.CreateOrder(services.CreateOrderRequest{
		Items: []services.OrderItemRequest{{ProductID: f.product.ID, Quantity: 1, Size: "S", Colour: "White"}},
	}, identity)
	require.NoError(t, err)

	stored, err := f.orderRepo.GetByOrderNumber(result.OrderNumber)
	require.NoError(t, err)
	require.NotNil(t, stored.UserID)
	assert.Equal(t, "user-1", *stored.UserID)
	// Contact fields default from the identity when the request leaves them blank.
	assert.Equal(t, "priya", stored.CustomerName)
	assert.Equal(t, "priya@example.com", stored.CustomerEmail)
}

func TestOrderService_CreateOrder_Validation(t *testing.T) {
	f := newOrderFixture(t, true)

	_, err := f.service.CreateOrder(services.CreateOrderRequest{}, nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRequest)

	_, err = f.service.CreateOrder(services.CreateOrderRequest{
		Items: []services.OrderItemRequest{{ProductID: f.product.ID, Quantity: 0}},
	}, nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRequest)

	_, err = f.service.CreateOrder(services.CreateOrderRequest{
		Items: []services.OrderItemRequest{{ProductID: "missing", Quantity: 1}},
	}, nil)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// A size/colour combination the product does not carry.
	_, err = f.service.CreateOrder(services.CreateOrderRequest{
		Items: []services.OrderItemRequest{{ProductID: f.product.ID, Quantity: 1, Size: "XXL", Colour: "Green"}},
	}, nil)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestOrderService_CreateOrder_CatalogPriceWins(t *testing.T) {
	f := newOrderFixture(t, true)

	// The client claims a lower unit price; the catalog price is charged.
	result, err := f.service.CreateOrder(services.CreateOrderRequest{
		Items: []services.OrderItemRequest{
			{ProductID: f.product.ID, Quantity: 1, Size: "M", Colour: "Blue", Price: 1},
		},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1599.0, result.TotalAmount)
}

func TestOrderService_CreateOrder_MultiItemTotal(t *testing.T) {
	f := newOrderFixture(t, true)
	require.NoError(t, f.productRepo.Create(&models.Product{
		ProductCode: "SAR001",
		Name:        "Banarasi Saree",
		Category:    "sarees",
		Price:       500,
		Stock:       10,
	}))
	products, err := f.productRepo.List(repositories.ProductFilter{ProductCode: "SAR001"})
	require.NoError(t, err)
	saree := products[0]

	result, err := f.service.CreateOrder(services.CreateOrderRequest{
		Items: []services.OrderItemRequest{
			{ProductID: saree.ID, Quantity: 2},
		},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, result.TotalAmount)

	// Flat-stock product decremented from 10 to 8.
	updated, err := f.productRepo.GetByID(saree.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, updated.Stock)
}

func TestOrderService_CreateOrder_InsufficientStockDoesNotFail(t *testing.T) {
	f := newOrderFixture(t, true)

	// M/Blue has only 2 in stock; ordering 5 still places the order but
	// leaves the stock untouched.
	result, err := f.service.CreateOrder(services.CreateOrderRequest{
		Items: []services.OrderItemRequest{
			{ProductID: f.product.ID, Quantity: 5, Size: "M", Colour: "Blue"},
		},
	}, nil)
	require.NoError(t, err)
	assert.Regexp(t, orderNumberPattern, result.OrderNumber)

	product, err := f.productRepo.GetByID(f.product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, product.FindVariant("M", "Blue").Stock)
}

func TestOrderService_TrackOrder(t *testing.T) {
	f := newOrderFixture(t, true)

	result, err := f.service.CreateOrder(services.CreateOrderRequest{
		Items: []services.OrderItemRequest{
			{ProductID: f.product.ID, Quantity: 2, Size: "S", Colour: "White"},
		},
		CustomerName: "Priya",
	}, nil)
	require.NoError(t, err)

	view, err := f.service.TrackOrder(result.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, result.OrderNumber, view.OrderNumber)
	assert.Equal(t, models.OrderStatusPending, view.Status)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "Chikankari Kurta", view.Items[0].Name)
	assert.Equal(t, 2*1499.0, view.Items[0].Subtotal)

	_, err = f.service.TrackOrder("ORD000000000000")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestOrderService_ListUserOrders(t *testing.T) {
	f := newOrderFixture(t, true)
	identity := &services.Identity{UserID: "user-1", Username: "priya", Email: "priya@example.com"}

	_, err := f.service.ListUserOrders(nil)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	for i := 0; i < 2; i++ {
		_, err := f.service.CreateOrder(services.CreateOrderRequest{
			Items: []services.OrderItemRequest{{ProductID: f.product.ID, Quantity: 1, Size: "S", Colour: "White"}},
		}, identity)
		require.NoError(t, err)
	}
	// A guest order that must not show up in the user's history.
	_, err = f.service.CreateOrder(services.CreateOrderRequest{
		Items: []services.OrderItemRequest{{ProductID: f.product.ID, Quantity: 1, Size: "M", Colour: "White"}},
	}, nil)
	require.NoError(t, err)

	orders, err := f.service.ListUserOrders(identity)
	assert.NoError(t, err)
	assert.Len(t, orders, 2)
}

func TestOrderService_UpdateStatus(t *testing.T) {
	f := newOrderFixture(t, true)

	result, err := f.service.CreateOrder(services.CreateOrderRequest{
		Items: []services.OrderItemRequest{{ProductID: f.product.ID, Quantity: 1, Size: "S", Colour: "White"}},
	}, nil)
	require.NoError(t, err)

	tracking := "TRK123456"
	assert.NoError(t, f.service.UpdateStatus(result.OrderNumber, models.OrderStatusShipped, &tracking))

	view, err := f.service.TrackOrder(result.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, view.Status)
	require.NotNil(t, view.TrackingNumber)
	assert.Equal(t, tracking, *view.TrackingNumber)

	assert.ErrorIs(t, f.service.UpdateStatus(result.OrderNumber, "teleported", nil), apperrors.ErrInvalidRequest)
	assert.ErrorIs(t, f.service.UpdateStatus("ORD000000000000", models.OrderStatusShipped, nil), apperrors.ErrNotFound)
}
