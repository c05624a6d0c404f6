package handlers

import (
	"log"

	"boutique/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// NewsletterHandler handles newsletter subscription requests.
type NewsletterHandler struct {
	service  *services.NewsletterService
	validate *validator.Validate
}

// NewNewsletterHandler creates a new NewsletterHandler.
func NewNewsletterHandler(service *services.NewsletterService) *NewsletterHandler {
	return &NewsletterHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the newsletter routes.
func (h *NewsletterHandler) RegisterRoutes(router fiber.Router) {
	newsletterRoutes := router.Group("/newsletter")
	newsletterRoutes.Post("/subscribe", h.HandleSubscribe)
	newsletterRoutes.Post("/unsubscribe", h.HandleUnsubscribe)
}

// SubscribeRequest carries the subscriber's email.
type SubscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// HandleSubscribe signs an email up for the newsletter.
func (h *NewsletterHandler) HandleSubscribe(c *fiber.Ctx) error {
	var req SubscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFail(c, err)
	}

	if err := h.service.Subscribe(req.Email); err != nil {
		log.Printf("Error subscribing %s: %v", req.Email, err)
		return fail(c, "Subscription failed", err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Subscribed successfully",
	})
}

// HandleUnsubscribe deactivates a subscription.
func (h *NewsletterHandler) HandleUnsubscribe(c *fiber.Ctx) error {
	var req SubscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFail(c, err)
	}

	if err := h.service.Unsubscribe(req.Email); err != nil {
		log.Printf("Error unsubscribing %s: %v", req.Email, err)
		return fail(c, "Unsubscribe failed", err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Unsubscribed successfully",
	})
}
