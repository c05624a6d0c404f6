package services

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"boutique/internal/apperrors"
	"boutique/internal/gateway"
	"boutique/internal/models"
	"boutique/internal/repositories"
	"boutique/pkg/mailer"
	"boutique/pkg/rabbitmq"
)

// PaymentService wraps the payment gateway: it opens payment intents,
// verifies signed callbacks and records the resulting state transitions.
type PaymentService struct {
	gw          gateway.Gateway
	paymentRepo repositories.PaymentRepository
	orderRepo   repositories.OrderRepository
	mqClient    EventPublisher
	dispatcher  *mailer.Dispatcher
	allowGuest  bool
	adminEmail  string
	paymentsDir string
}

// NewPaymentService creates a new PaymentService. gw is nil when the gateway
// is not configured; both operations then fail with ErrServiceUnavailable.
func NewPaymentService(
	gw gateway.Gateway,
	paymentRepo repositories.PaymentRepository,
	orderRepo repositories.OrderRepository,
	mqClient EventPublisher,
	dispatcher *mailer.Dispatcher,
	allowGuest bool,
	adminEmail string,
	paymentsDir string,
) *PaymentService {
	return &PaymentService{
		gw:          gw,
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		mqClient:    mqClient,
		dispatcher:  dispatcher,
		allowGuest:  allowGuest,
		adminEmail:  adminEmail,
		paymentsDir: paymentsDir,
	}
}

// CreatePaymentRequest asks for a gateway payment intent. Amount is in major
// currency units (rupees).
type CreatePaymentRequest struct {
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	OrderNumber string  `json:"order_number"`
	Purpose     string  `json:"purpose"`
}

// PaymentIntent is the client-facing handle for the checkout widget.
type PaymentIntent struct {
	GatewayOrderID string `json:"order_id"`
	Amount         int64  `json:"amount"` // minor units (paise)
	Currency       string `json:"currency"`
	Key            string `json:"key"`
}

// CreatePaymentIntent opens a gateway order for the amount, converting to
// paise. A created-status payment record and a JSON audit snapshot are
// written best-effort.
func (s *PaymentService) CreatePaymentIntent(req CreatePaymentRequest, identity *Identity) (*PaymentIntent, error) {
	if s.gw == nil {
		return nil, fmt.Errorf("payment gateway not configured: %w", apperrors.ErrServiceUnavailable)
	}
	if !s.allowGuest && identity == nil {
		return nil, fmt.Errorf("guest checkout disabled: %w", apperrors.ErrUnauthorized)
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("amount required (INR): %w", apperrors.ErrInvalidRequest)
	}

	purpose := req.Purpose
	if purpose == "" {
		purpose = "Product Purchase"
	}
	notes := map[string]interface{}{
		"order_number": req.OrderNumber,
		"purpose":      purpose,
	}
	var userEmail string
	if identity != nil {
		notes["user_id"] = identity.UserID
		notes["user_email"] = identity.Email
		userEmail = identity.Email
	}

	paise := int64(math.Round(req.Amount * 100))
	gwOrder, err := s.gw.CreateOrder(paise, "INR", req.OrderNumber, notes)
	if err != nil {
		return nil, fmt.Errorf("payment creation failed: %w", err)
	}

	// Audit trail, non-fatal on failure.
	if err := s.paymentRepo.Create(&models.Payment{
		GatewayOrderID: gwOrder.ID,
		Amount:         req.Amount,
		Currency:       gwOrder.Currency,
		Status:         models.PaymentRecordCreated,
		OrderNumber:    req.OrderNumber,
		UserEmail:      userEmail,
	}); err != nil {
		log.Printf("Saving created payment record failed: %v", err)
	}
	s.writeAuditSnapshot(gwOrder.ID, map[string]interface{}{
		"razorpay_order_id": gwOrder.ID,
		"amount":            req.Amount,
		"currency":          gwOrder.Currency,
		"order_number":      req.OrderNumber,
		"user_email":        userEmail,
		"status":            models.PaymentRecordCreated,
		"created_at":        time.Now().UTC().Format(time.RFC3339),
	})

	return &PaymentIntent{
		GatewayOrderID: gwOrder.ID,
		Amount:         gwOrder.Amount,
		Currency:       gwOrder.Currency,
		Key:            s.gw.KeyID(),
	}, nil
}

// VerifyPaymentRequest is the signed callback payload.
type VerifyPaymentRequest struct {
	GatewayPaymentID string  `json:"razorpay_payment_id"`
	GatewayOrderID   string  `json:"razorpay_order_id"`
	Signature        string  `json:"razorpay_signature"`
	OrderNumber      string  `json:"order_number"`
	Amount           float64 `json:"amount"`
	CustomerEmail    string  `json:"customer_email"`
}

// CaptureResult reports the outcome of a verified callback.
type CaptureResult struct {
	GatewayPaymentID string `json:"payment_id"`
	GatewayOrderID   string `json:"order_id"`
	AlreadyProcessed bool   `json:"already_processed"`
}

// VerifyAndCapture checks the callback signature, records the capture and
// transitions the order to paid/confirmed. The signature check is the single
// authoritative trust gate. Repeated callbacks for the same gateway payment
// id are no-ops after the first successful capture.
func (s *PaymentService) VerifyAndCapture(req VerifyPaymentRequest, identity *Identity) (*CaptureResult, error) {
	if s.gw == nil {
		return nil, fmt.Errorf("payment service not configured: %w", apperrors.ErrServiceUnavailable)
	}
	if !s.allowGuest && identity == nil {
		return nil, fmt.Errorf("guest checkout disabled: %w", apperrors.ErrUnauthorized)
	}
	if req.GatewayPaymentID == "" || req.GatewayOrderID == "" || req.Signature == "" {
		return nil, fmt.Errorf("missing payment details: %w", apperrors.ErrInvalidRequest)
	}

	// Dedupe ledger: a captured record for this payment id means the
	// transition already happened; do not re-apply it or resend mail.
	if exists, err := s.paymentRepo.CapturedExists(req.GatewayPaymentID); err != nil {
		log.Printf("Dedupe check failed for payment %s: %v", req.GatewayPaymentID, err)
	} else if exists {
		return &CaptureResult{
			GatewayPaymentID: req.GatewayPaymentID,
			GatewayOrderID:   req.GatewayOrderID,
			AlreadyProcessed: true,
		}, nil
	}

	if !s.gw.VerifySignature(req.GatewayOrderID, req.GatewayPaymentID, req.Signature) {
		return nil, fmt.Errorf("signature mismatch for payment %s: %w", req.GatewayPaymentID, apperrors.ErrVerificationFailed)
	}

	// Fetch canonical settlement details; fall back to the caller's amount
	// when the gateway lookup fails.
	amountPaid := req.Amount
	currency := "INR"
	method := "unknown"
	if details, err := s.gw.FetchPayment(req.GatewayPaymentID); err != nil {
		log.Printf("Fetching payment %s from gateway failed: %v", req.GatewayPaymentID, err)
	} else {
		amountPaid = float64(details.Amount) / 100
		currency = details.Currency
		method = details.Method
	}

	paymentID := req.GatewayPaymentID
	if err := s.paymentRepo.Create(&models.Payment{
		GatewayPaymentID: &paymentID,
		GatewayOrderID:   req.GatewayOrderID,
		Amount:           amountPaid,
		Currency:         currency,
		Status:           models.PaymentRecordCaptured,
		Method:           method,
		OrderNumber:      req.OrderNumber,
		UserEmail:        s.customerEmail(req, identity),
	}); err != nil {
		// The unique index rejects a concurrent duplicate capture.
		log.Printf("Saving captured payment record failed: %v", err)
		if exists, checkErr := s.paymentRepo.CapturedExists(req.GatewayPaymentID); checkErr == nil && exists {
			return &CaptureResult{
				GatewayPaymentID: req.GatewayPaymentID,
				GatewayOrderID:   req.GatewayOrderID,
				AlreadyProcessed: true,
			}, nil
		}
	}

	s.writeAuditSnapshot(req.GatewayPaymentID, map[string]interface{}{
		"razorpay_payment_id": req.GatewayPaymentID,
		"razorpay_order_id":   req.GatewayOrderID,
		"amount":              amountPaid,
		"currency":            currency,
		"payment_method":      method,
		"order_number":        req.OrderNumber,
		"status":              models.PaymentRecordCaptured,
		"payment_date":        time.Now().UTC().Format(time.RFC3339),
	})

	if req.OrderNumber != "" {
		if order, err := s.orderRepo.GetByOrderNumber(req.OrderNumber); err == nil {
			if math.Abs(order.TotalAmount-amountPaid) > 0.01 {
				log.Printf("Captured amount %.2f differs from order %s total %.2f",
					amountPaid, req.OrderNumber, order.TotalAmount)
			}
		}
		if err := s.orderRepo.MarkPaid(req.OrderNumber, time.Now().UTC()); err != nil {
			log.Printf("Marking order %s paid failed: %v", req.OrderNumber, err)
		}
	}

	s.sendReceiptEmails(req, identity, amountPaid, method)
	s.publishPaymentCaptured(req, amountPaid, currency, method)

	return &CaptureResult{
		GatewayPaymentID: req.GatewayPaymentID,
		GatewayOrderID:   req.GatewayOrderID,
	}, nil
}

func (s *PaymentService) customerEmail(req VerifyPaymentRequest, identity *Identity) string {
	if identity != nil && identity.Email != "" {
		return identity.Email
	}
	return req.CustomerEmail
}

func (s *PaymentService) sendReceiptEmails(req VerifyPaymentRequest, identity *Identity, amount float64, method string) {
	if s.dispatcher == nil {
		return
	}
	if email := s.customerEmail(req, identity); email != "" {
		s.dispatcher.Enqueue(mailer.KindPaymentReceipt, email, mailer.Data{
			Subject:   fmt.Sprintf("Payment Receipt - %s", req.GatewayPaymentID),
			Amount:    amount,
			PaymentID: req.GatewayPaymentID,
		})
	}
	s.dispatcher.Enqueue(mailer.KindAdminNotice, s.adminEmail, mailer.Data{
		Subject: fmt.Sprintf("Payment Captured: %s", req.OrderNumber),
		Body: fmt.Sprintf("Order: %s\nPayment ID: %s\nAmount: %.2f\nMethod: %s",
			req.OrderNumber, req.GatewayPaymentID, amount, method),
	})
}

func (s *PaymentService) publishPaymentCaptured(req VerifyPaymentRequest, amount float64, currency, method string) {
	if s.mqClient == nil {
		return
	}
	event := map[string]interface{}{
		"razorpay_payment_id": req.GatewayPaymentID,
		"razorpay_order_id":   req.GatewayOrderID,
		"order_number":        req.OrderNumber,
		"amount":              amount,
		"currency":            currency,
		"method":              method,
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal payment event: %v", err)
		return
	}
	if err := s.mqClient.Publish(rabbitmq.PaymentQueue, body); err != nil {
		log.Printf("Warning: Failed to publish payment captured event for %s: %v", req.GatewayPaymentID, err)
	}
}

// writeAuditSnapshot drops a JSON snapshot of a payment event into the
// payments directory, keyed by gateway payment id and a timestamp. Purely an
// audit trail; nothing reads these back.
func (s *PaymentService) writeAuditSnapshot(paymentID string, data map[string]interface{}) {
	if s.paymentsDir == "" {
		return
	}
	if err := os.MkdirAll(s.paymentsDir, 0o755); err != nil {
		log.Printf("Creating payments dir failed: %v", err)
		return
	}
	body, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		log.Printf("Marshalling payment snapshot failed: %v", err)
		return
	}
	filename := fmt.Sprintf("payment_%s_%s.json", paymentID, time.Now().Format("20060102_150405"))
	if err := os.WriteFile(filepath.Join(s.paymentsDir, filename), body, 0o644); err != nil {
		log.Printf("Saving payment snapshot failed: %v", err)
	}
}
