package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"boutique/internal/apperrors"
	"boutique/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders map[string]models.Order // keyed by order number
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
	}
}

// Create adds a new order, enforcing order-number uniqueness like the store's
// unique index would.
func (r *MockOrderRepository) Create(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[order.OrderNumber]; exists {
		return fmt.Errorf("order number %s already exists", order.OrderNumber)
	}
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
		order.Items[i].OrderID = order.ID
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()
	r.orders[order.OrderNumber] = *order
	return nil
}

// GetByOrderNumber returns an order by its order number.
func (r *MockOrderRepository) GetByOrderNumber(orderNumber string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[orderNumber]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", orderNumber, apperrors.ErrNotFound)
	}
	return &order, nil
}

// ListByUser returns a user's orders, newest first.
func (r *MockOrderRepository) ListByUser(userID string) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var orders []models.Order
	for _, order := range r.orders {
		if order.UserID != nil && *order.UserID == userID {
			orders = append(orders, order)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

// MarkPaid transitions the order to paid/confirmed.
func (r *MockOrderRepository) MarkPaid(orderNumber string, paidAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderNumber]
	if !ok {
		return fmt.Errorf("order %s: %w", orderNumber, apperrors.ErrNotFound)
	}
	order.PaymentStatus = models.PaymentStatusPaid
	order.Status = models.OrderStatusConfirmed
	order.PaidAt = &paidAt
	order.UpdatedAt = time.Now()
	r.orders[orderNumber] = order
	return nil
}

// UpdateFulfillment applies a fulfillment status change.
func (r *MockOrderRepository) UpdateFulfillment(orderNumber, status string, trackingNumber *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderNumber]
	if !ok {
		return fmt.Errorf("order %s: %w", orderNumber, apperrors.ErrNotFound)
	}
	order.Status = status
	if trackingNumber != nil {
		order.TrackingNumber = trackingNumber
	}
	order.UpdatedAt = time.Now()
	r.orders[orderNumber] = order
	return nil
}
