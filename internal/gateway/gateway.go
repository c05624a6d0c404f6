// Package gateway wraps the external payment provider behind a small
// interface so services receive it by injection and tests can stand in a
// fake.
package gateway

// Order is a remote payment intent created with the provider; distinct from
// the store's own Order.
type Order struct {
	ID       string
	Amount   int64 // minor currency unit (paise)
	Currency string
}

// PaymentDetails are the canonical settlement facts fetched from the
// provider after capture.
type PaymentDetails struct {
	Amount   int64 // minor currency unit (paise)
	Currency string
	Method   string
}

// Gateway is the payment provider surface the services depend on.
type Gateway interface {
	// CreateOrder opens a payment intent for the given minor-unit amount.
	CreateOrder(amount int64, currency, receipt string, notes map[string]interface{}) (*Order, error)
	// VerifySignature checks the provider's HMAC over (order id, payment id).
	VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool
	// FetchPayment retrieves settlement details for a captured payment.
	FetchPayment(gatewayPaymentID string) (*PaymentDetails, error)
	// KeyID returns the public key the browser checkout widget needs.
	KeyID() string
}
