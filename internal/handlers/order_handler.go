package handlers

import (
	"log"

	"boutique/internal/middleware"
	"boutique/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the order routes. Checkout and tracking run under
// optional auth so guests can order when guest checkout is enabled.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Get("/track/:orderNumber", h.HandleTrackOrder)
}

// RegisterProtectedRoutes registers the routes that require authentication.
func (h *OrderHandler) RegisterProtectedRoutes(router fiber.Router) {
	router.Get("/user/orders", h.HandleListUserOrders)
}

// RegisterAdminRoutes registers the fulfillment routes.
func (h *OrderHandler) RegisterAdminRoutes(router fiber.Router) {
	router.Patch("/orders/:orderNumber/status", h.HandleUpdateOrderStatus)
}

// HandleCreateOrder places an order from a checkout submission.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req services.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return validationFail(c, err)
	}

	identity := middleware.IdentityFromContext(c)
	result, err := h.service.CreateOrder(req, identity)
	if err != nil {
		log.Printf("Error creating order: %v", err)
		return fail(c, "Could not create order", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":      "Order created",
		"order_number": result.OrderNumber,
		"order_id":     result.OrderID,
		"total_amount": result.TotalAmount,
	})
}

// HandleTrackOrder returns the tracking projection for an order number.
func (h *OrderHandler) HandleTrackOrder(c *fiber.Ctx) error {
	orderNumber := c.Params("orderNumber")
	view, err := h.service.TrackOrder(orderNumber)
	if err != nil {
		log.Printf("Error tracking order %s: %v", orderNumber, err)
		return fail(c, "Could not retrieve order", err)
	}
	return c.JSON(view)
}

// HandleListUserOrders returns the caller's orders, newest first.
func (h *OrderHandler) HandleListUserOrders(c *fiber.Ctx) error {
	identity := middleware.IdentityFromContext(c)
	orders, err := h.service.ListUserOrders(identity)
	if err != nil {
		log.Printf("Error listing user orders: %v", err)
		return fail(c, "Could not retrieve orders", err)
	}
	return c.JSON(orders)
}

// UpdateOrderStatusRequest is a fulfillment transition.
type UpdateOrderStatusRequest struct {
	Status         string  `json:"status" validate:"required"`
	TrackingNumber *string `json:"tracking_number"`
}

// HandleUpdateOrderStatus applies a fulfillment transition (admin).
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	orderNumber := c.Params("orderNumber")
	var req UpdateOrderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body for status update",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFail(c, err)
	}

	if err := h.service.UpdateStatus(orderNumber, req.Status, req.TrackingNumber); err != nil {
		log.Printf("Error updating order status for %s: %v", orderNumber, err)
		return fail(c, "Could not update order status", err)
	}

	return c.JSON(fiber.Map{
		"message": "Order " + orderNumber + " status updated to " + req.Status,
	})
}
