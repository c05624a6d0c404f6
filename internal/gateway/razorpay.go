package gateway

import (
	"encoding/json"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
)

// RazorpayGateway implements Gateway on the Razorpay SDK.
type RazorpayGateway struct {
	client    *razorpay.Client
	keyID     string
	keySecret string
}

// NewRazorpayGateway creates a gateway from API credentials.
func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{
		client:    razorpay.NewClient(keyID, keySecret),
		keyID:     keyID,
		keySecret: keySecret,
	}
}

// CreateOrder opens a Razorpay order with immediate capture.
func (g *RazorpayGateway) CreateOrder(amount int64, currency, receipt string, notes map[string]interface{}) (*Order, error) {
	data := map[string]interface{}{
		"amount":          amount,
		"currency":        currency,
		"payment_capture": 1,
	}
	if receipt != "" {
		data["receipt"] = receipt
	}
	if len(notes) > 0 {
		data["notes"] = notes
	}

	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay order creation failed: %w", err)
	}

	id, _ := body["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("razorpay order response missing id")
	}
	return &Order{
		ID:       id,
		Amount:   toInt64(body["amount"], amount),
		Currency: toString(body["currency"], currency),
	}, nil
}

// VerifySignature checks the callback HMAC with the shared secret.
func (g *RazorpayGateway) VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool {
	params := map[string]interface{}{
		"razorpay_order_id":   gatewayOrderID,
		"razorpay_payment_id": gatewayPaymentID,
	}
	return utils.VerifyPaymentSignature(params, signature, g.keySecret)
}

// FetchPayment retrieves the captured payment from Razorpay.
func (g *RazorpayGateway) FetchPayment(gatewayPaymentID string) (*PaymentDetails, error) {
	body, err := g.client.Payment.Fetch(gatewayPaymentID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay payment fetch failed: %w", err)
	}
	return &PaymentDetails{
		Amount:   toInt64(body["amount"], 0),
		Currency: toString(body["currency"], "INR"),
		Method:   toString(body["method"], "unknown"),
	}, nil
}

// KeyID returns the public API key.
func (g *RazorpayGateway) KeyID() string {
	return g.keyID
}

// The SDK decodes JSON into map[string]interface{}, so numbers arrive as
// float64 or json.Number depending on the decoder path.
func toInt64(v interface{}, fallback int64) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
	}
	return fallback
}

func toString(v interface{}, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}
