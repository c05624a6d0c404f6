package repositories

import "boutique/internal/models"

// PaymentRepository defines the interface for payment record access.
type PaymentRepository interface {
	Create(payment *models.Payment) error
	// CapturedExists reports whether a captured record already exists for the
	// gateway payment id. It is the dedupe check for repeated callbacks.
	CapturedExists(gatewayPaymentID string) (bool, error)
	ListByOrderNumber(orderNumber string) ([]models.Payment, error)
}
