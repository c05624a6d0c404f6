package repositories

import (
	"time"

	"boutique/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// Create persists an order together with its items.
	Create(order *models.Order) error
	GetByOrderNumber(orderNumber string) (*models.Order, error)
	ListByUser(userID string) ([]models.Order, error)
	// MarkPaid transitions an order to payment_status=paid, status=confirmed.
	MarkPaid(orderNumber string, paidAt time.Time) error
	// UpdateFulfillment applies a fulfillment transition (shipped, delivered,
	// cancelled) and optionally a tracking number.
	UpdateFulfillment(orderNumber, status string, trackingNumber *string) error
}
