package models

import (
	"time"

	"gorm.io/gorm"
)

// Order lifecycle states.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// Payment states carried on the order itself.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// ValidOrderStatuses lists the accepted values for Order.Status.
var ValidOrderStatuses = map[string]bool{
	OrderStatusPending:   true,
	OrderStatusConfirmed: true,
	OrderStatusShipped:   true,
	OrderStatusDelivered: true,
	OrderStatusCancelled: true,
}

// Order represents a customer order. UserID is nil for guest checkouts.
type Order struct {
	ID              string      `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	OrderNumber     string      `json:"order_number" gorm:"uniqueIndex;type:varchar(20)"`
	UserID          *string     `json:"user_id" gorm:"index;type:varchar(36)"`
	CustomerName    string      `json:"customer_name" gorm:"type:varchar(100)"`
	CustomerEmail   string      `json:"customer_email" gorm:"type:varchar(255)"`
	CustomerPhone   string      `json:"customer_phone" gorm:"type:varchar(20)"`
	ShippingAddress string      `json:"shipping_address" gorm:"type:text"`
	Status          string      `json:"status" gorm:"type:varchar(20);default:pending"`
	PaymentStatus   string      `json:"payment_status" gorm:"type:varchar(20);default:pending"`
	TrackingNumber  *string     `json:"tracking_number" gorm:"type:varchar(50)"`
	TotalAmount     float64     `json:"total_amount"`
	PaidAt          *time.Time  `json:"paid_at"`
	Items           []OrderItem `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	gorm.Model                  // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// OrderItem is a single line of an order. Price is the unit price captured at
// order time, not a live reference to the catalog.
type OrderItem struct {
	ID          string  `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID     string  `json:"order_id" gorm:"index;type:varchar(36)"`
	ProductID   string  `json:"product_id" gorm:"type:varchar(36)"`
	VariantID   *string `json:"variant_id" gorm:"type:varchar(36)"`
	ProductCode string  `json:"product_code" gorm:"type:varchar(50)"`
	Quantity    int     `json:"quantity"`
	Size        string  `json:"size" gorm:"type:varchar(20)"`
	Colour      string  `json:"colour" gorm:"type:varchar(50)"`
	Price       float64 `json:"price"`
}

// Subtotal returns quantity times the captured unit price.
func (i OrderItem) Subtotal() float64 {
	return float64(i.Quantity) * i.Price
}
