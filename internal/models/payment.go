package models

import "time"

// Payment record states. A "created" row is written when a gateway order is
// opened and a "captured" row when a verified callback lands; they are two
// independent facts, not updates of one row.
const (
	PaymentRecordCreated  = "created"
	PaymentRecordCaptured = "captured"
	PaymentRecordFailed   = "failed"
)

// Payment is the audit record of an interaction with the payment gateway.
// GatewayPaymentID is nil until the gateway assigns one (capture time); the
// unique index on it is the dedupe ledger for repeated callbacks.
type Payment struct {
	ID               string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	GatewayPaymentID *string   `json:"razorpay_payment_id" gorm:"uniqueIndex;type:varchar(100)"`
	GatewayOrderID   string    `json:"razorpay_order_id" gorm:"index;type:varchar(100)"`
	Amount           float64   `json:"amount"`
	Currency         string    `json:"currency" gorm:"type:varchar(10);default:INR"`
	Status           string    `json:"status" gorm:"type:varchar(20)"`
	Method           string    `json:"payment_method" gorm:"type:varchar(50)"`
	OrderNumber      string    `json:"order_number" gorm:"index;type:varchar(20)"`
	UserEmail        string    `json:"user_email" gorm:"type:varchar(255)"`
	CreatedAt        time.Time `json:"created_at"`
}
