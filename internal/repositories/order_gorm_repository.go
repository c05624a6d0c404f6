package repositories

import (
	"errors"
	"fmt"
	"time"

	"boutique/internal/apperrors"
	"boutique/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// Create persists the order and its items in one insert; GORM cascades the
// association. The unique index on order_number rejects collisions.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
		order.Items[i].OrderID = order.ID
	}
	if err := r.db.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// GetByOrderNumber retrieves an order with its items.
func (r *GORMOrderRepository) GetByOrderNumber(orderNumber string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").First(&order, "order_number = ?", orderNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %s: %w", orderNumber, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order %s: %w", orderNumber, err)
	}
	return &order, nil
}

// ListByUser returns a user's orders, newest first.
func (r *GORMOrderRepository) ListByUser(userID string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Preload("Items").Where("user_id = ?", userID).
		Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders for user %s: %w", userID, err)
	}
	return orders, nil
}

// MarkPaid transitions the order to paid/confirmed and stamps paid_at.
func (r *GORMOrderRepository) MarkPaid(orderNumber string, paidAt time.Time) error {
	res := r.db.Model(&models.Order{}).Where("order_number = ?", orderNumber).
		Updates(map[string]interface{}{
			"payment_status": models.PaymentStatusPaid,
			"status":         models.OrderStatusConfirmed,
			"paid_at":        paidAt,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to mark order %s paid: %w", orderNumber, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order %s: %w", orderNumber, apperrors.ErrNotFound)
	}
	return nil
}

// UpdateFulfillment applies a fulfillment status change and, when given, a
// tracking number.
func (r *GORMOrderRepository) UpdateFulfillment(orderNumber, status string, trackingNumber *string) error {
	updates := map[string]interface{}{"status": status}
	if trackingNumber != nil {
		updates["tracking_number"] = *trackingNumber
	}
	res := r.db.Model(&models.Order{}).Where("order_number = ?", orderNumber).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update order %s status: %w", orderNumber, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order %s: %w", orderNumber, apperrors.ErrNotFound)
	}
	return nil
}
