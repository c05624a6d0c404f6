package handlers

import (
	"log"

	"boutique/internal/middleware"
	"boutique/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// PaymentHandler handles HTTP requests for payment intents and callbacks.
type PaymentHandler struct {
	service  *services.PaymentService
	validate *validator.Validate
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the payment routes under optional auth.
func (h *PaymentHandler) RegisterRoutes(router fiber.Router) {
	paymentRoutes := router.Group("/payments")
	paymentRoutes.Post("/create", h.HandleCreatePayment)
	paymentRoutes.Post("/verify", h.HandleVerifyPayment)
}

// HandleCreatePayment opens a gateway payment intent.
func (h *PaymentHandler) HandleCreatePayment(c *fiber.Ctx) error {
	var req services.CreatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing payment request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return validationFail(c, err)
	}

	identity := middleware.IdentityFromContext(c)
	intent, err := h.service.CreatePaymentIntent(req, identity)
	if err != nil {
		log.Printf("Error creating payment intent: %v", err)
		return fail(c, "Payment creation failed", err)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"order_id": intent.GatewayOrderID,
		"amount":   intent.Amount,
		"currency": intent.Currency,
		"key":      intent.Key,
	})
}

// HandleVerifyPayment processes a signed payment callback.
func (h *PaymentHandler) HandleVerifyPayment(c *fiber.Ctx) error {
	var req services.VerifyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing payment callback body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	identity := middleware.IdentityFromContext(c)
	result, err := h.service.VerifyAndCapture(req, identity)
	if err != nil {
		log.Printf("Error verifying payment %s: %v", req.GatewayPaymentID, err)
		return fail(c, "Payment verification failed", err)
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"message":    "Payment verified successfully",
		"payment_id": result.GatewayPaymentID,
		"order_id":   result.GatewayOrderID,
	})
}
