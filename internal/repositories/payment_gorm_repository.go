package repositories

import (
	"fmt"

	"boutique/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMPaymentRepository is a GORM implementation of PaymentRepository.
type GORMPaymentRepository struct {
	db *gorm.DB
}

// NewGORMPaymentRepository creates a new instance of GORMPaymentRepository.
func NewGORMPaymentRepository(db *gorm.DB) *GORMPaymentRepository {
	return &GORMPaymentRepository{
		db: db,
	}
}

// Create persists a payment record. The unique index on gateway_payment_id
// rejects a second captured row for the same payment.
func (r *GORMPaymentRepository) Create(payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	if err := r.db.Create(payment).Error; err != nil {
		return fmt.Errorf("failed to create payment record: %w", err)
	}
	return nil
}

// CapturedExists reports whether a captured record for the gateway payment id
// is already on file.
func (r *GORMPaymentRepository) CapturedExists(gatewayPaymentID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Payment{}).
		Where("gateway_payment_id = ? AND status = ?", gatewayPaymentID, models.PaymentRecordCaptured).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check payment %s: %w", gatewayPaymentID, err)
	}
	return count > 0, nil
}

// ListByOrderNumber returns all payment records tied to an order.
func (r *GORMPaymentRepository) ListByOrderNumber(orderNumber string) ([]models.Payment, error) {
	var payments []models.Payment
	if err := r.db.Where("order_number = ?", orderNumber).Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("failed to list payments for order %s: %w", orderNumber, err)
	}
	return payments, nil
}
