package services

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"boutique/internal/apperrors"
	"boutique/internal/models"
	"boutique/internal/repositories"
	"boutique/pkg/mailer"
	"boutique/pkg/rabbitmq"
)

// EventPublisher is the message-broker surface the services need.
type EventPublisher interface {
	Publish(queue string, body []byte) error
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	mqClient    EventPublisher
	dispatcher  *mailer.Dispatcher
	allowGuest  bool
	adminEmail  string
}

// NewOrderService creates a new OrderService. mqClient and dispatcher may be
// nil; the corresponding side effects are then skipped.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	productRepo repositories.ProductRepository,
	mqClient EventPublisher,
	dispatcher *mailer.Dispatcher,
	allowGuest bool,
	adminEmail string,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		mqClient:    mqClient,
		dispatcher:  dispatcher,
		allowGuest:  allowGuest,
		adminEmail:  adminEmail,
	}
}

// OrderItemRequest is one checkout line. Price is what the client believes
// the unit costs; the authoritative price is re-resolved from the catalog.
type OrderItemRequest struct {
	ProductID   string  `json:"product_id" validate:"required"`
	VariantID   string  `json:"variant_id"`
	ProductCode string  `json:"product_code"`
	Quantity    int     `json:"quantity" validate:"required,gt=0"`
	Price       float64 `json:"price"`
	Size        string  `json:"size"`
	Colour      string  `json:"color"`
}

// CreateOrderRequest is the checkout submission.
type CreateOrderRequest struct {
	Items           []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	CustomerName    string             `json:"customer_name"`
	CustomerEmail   string             `json:"customer_email" validate:"omitempty,email"`
	CustomerPhone   string             `json:"customer_phone"`
	ShippingAddress string             `json:"shipping_address"`
}

// CreateOrderResult is what checkout returns to the caller.
type CreateOrderResult struct {
	OrderNumber string  `json:"order_number"`
	OrderID     string  `json:"order_id"`
	TotalAmount float64 `json:"total_amount"`
}

// CreateOrder places an order. Identity is nil for guest checkout, which is
// only allowed when enabled by configuration. Unit prices are resolved from
// the catalog, the order and its items are persisted, stock is decremented
// per item with a floor guard, and confirmation emails plus an order.created
// event go out best-effort.
func (s *OrderService) CreateOrder(req CreateOrderRequest, identity *Identity) (*CreateOrderResult, error) {
	if !s.allowGuest && identity == nil {
		return nil, fmt.Errorf("guest checkout disabled: %w", apperrors.ErrUnauthorized)
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("order items required: %w", apperrors.ErrInvalidRequest)
	}

	// 1. Resolve items against the catalog and compute the total.
	var totalAmount float64
	processedItems := make([]models.OrderItem, 0, len(req.Items))
	type decrement struct {
		productID string
		variantID string
		quantity  int
	}
	decrements := make([]decrement, 0, len(req.Items))

	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("item quantity must be positive: %w", apperrors.ErrInvalidRequest)
		}
		product, err := s.productRepo.GetByID(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("product %s not found: %w", item.ProductID, err)
		}

		var variant *models.Variant
		if item.VariantID != "" {
			for i := range product.Variants {
				if product.Variants[i].ID == item.VariantID {
					variant = &product.Variants[i]
					break
				}
			}
			if variant == nil {
				return nil, fmt.Errorf("variant %s of product %s: %w", item.VariantID, product.ID, apperrors.ErrNotFound)
			}
		} else if product.HasVariants() {
			variant = product.FindVariant(item.Size, item.Colour)
			if variant == nil {
				return nil, fmt.Errorf("no %s/%s variant of product %s: %w", item.Size, item.Colour, product.ID, apperrors.ErrNotFound)
			}
		}

		// Unit price comes from the catalog, never from the client.
		unitPrice := product.Price
		variantID := (*string)(nil)
		if variant != nil {
			unitPrice = variant.Price
			variantID = &variant.ID
			decrements = append(decrements, decrement{variantID: variant.ID, quantity: item.Quantity})
		} else {
			decrements = append(decrements, decrement{productID: product.ID, quantity: item.Quantity})
		}
		if item.Price != 0 && item.Price != unitPrice {
			log.Printf("Client price %.2f for product %s differs from catalog price %.2f", item.Price, product.ID, unitPrice)
		}

		processedItems = append(processedItems, models.OrderItem{
			ProductID:   product.ID,
			VariantID:   variantID,
			ProductCode: product.ProductCode,
			Quantity:    item.Quantity,
			Size:        item.Size,
			Colour:      item.Colour,
			Price:       unitPrice,
		})
		totalAmount += unitPrice * float64(item.Quantity)
	}

	// 2. Persist the order with its items.
	newOrder := &models.Order{
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		ShippingAddress: req.ShippingAddress,
		Status:          models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatusPending,
		TotalAmount:     totalAmount,
		Items:           processedItems,
	}
	if identity != nil {
		userID := identity.UserID
		newOrder.UserID = &userID
		if newOrder.CustomerName == "" {
			newOrder.CustomerName = identity.Username
		}
		if newOrder.CustomerEmail == "" {
			newOrder.CustomerEmail = identity.Email
		}
	}
	if newOrder.CustomerName == "" {
		newOrder.CustomerName = "Guest"
	}

	if err := s.createWithUniqueNumber(newOrder); err != nil {
		return nil, err
	}

	// 3. Decrement stock per item. The conditional decrement refuses to go
	// below zero; a refused decrement is logged and does not fail the order.
	for _, d := range decrements {
		var ok bool
		var err error
		if d.variantID != "" {
			ok, err = s.productRepo.DecrementVariantStock(d.variantID, d.quantity)
		} else {
			ok, err = s.productRepo.DecrementProductStock(d.productID, d.quantity)
		}
		if err != nil {
			log.Printf("Stock update failed for order %s: %v", newOrder.OrderNumber, err)
		} else if !ok {
			log.Printf("Insufficient stock while decrementing for order %s (product %s, variant %s)",
				newOrder.OrderNumber, d.productID, d.variantID)
		}
	}

	// 4. Notify customer and admin, best-effort.
	s.sendOrderEmails(newOrder)

	// 5. Publish an order.created event.
	s.publishOrderCreated(newOrder)

	return &CreateOrderResult{
		OrderNumber: newOrder.OrderNumber,
		OrderID:     newOrder.ID,
		TotalAmount: newOrder.TotalAmount,
	}, nil
}

// createWithUniqueNumber assigns a fresh order number and persists the order,
// retrying on the unlikely collision. The store's unique index is the final
// arbiter.
func (s *OrderService) createWithUniqueNumber(order *models.Order) error {
	const maxAttempts = 5
	for attempt := 0; attempt < maxAttempts; attempt++ {
		number, err := generateOrderNumber()
		if err != nil {
			return fmt.Errorf("failed to generate order number: %w", err)
		}
		if _, err := s.orderRepo.GetByOrderNumber(number); err == nil {
			continue // taken, try another
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		order.OrderNumber = number
		if err := s.orderRepo.Create(order); err != nil {
			if attempt < maxAttempts-1 {
				continue // lost the race on the unique index
			}
			return err
		}
		return nil
	}
	return fmt.Errorf("could not allocate a unique order number after %d attempts", maxAttempts)
}

// generateOrderNumber returns ORD followed by 12 random digits.
func generateOrderNumber() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] = '0' + buf[i]%10
	}
	return "ORD" + string(buf), nil
}

func (s *OrderService) sendOrderEmails(order *models.Order) {
	if s.dispatcher == nil {
		return
	}
	if order.CustomerEmail != "" {
		s.dispatcher.Enqueue(mailer.KindOrderConfirmation, order.CustomerEmail, mailer.Data{
			Subject:      fmt.Sprintf("Order Confirmation - %s", order.OrderNumber),
			CustomerName: order.CustomerName,
			OrderNumber:  order.OrderNumber,
			TotalAmount:  order.TotalAmount,
		})
	}
	s.dispatcher.Enqueue(mailer.KindAdminNotice, s.adminEmail, mailer.Data{
		Subject: fmt.Sprintf("New Order: %s", order.OrderNumber),
		Body: fmt.Sprintf(
			"Order Number: %s\nCustomer: %s\nPhone: %s\nEmail: %s\nAddress: %s\nTotal: %.2f\nStatus: %s",
			order.OrderNumber, order.CustomerName, order.CustomerPhone,
			order.CustomerEmail, order.ShippingAddress, order.TotalAmount, order.Status),
	})
}

func (s *OrderService) publishOrderCreated(order *models.Order) {
	if s.mqClient == nil {
		log.Println("RabbitMQ client is not initialized. Skipping message publication.")
		return
	}
	event := map[string]interface{}{
		"order_number": order.OrderNumber,
		"order_id":     order.ID,
		"status":       order.Status,
		"total":        order.TotalAmount,
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal order event: %v", err)
		return
	}
	if err := s.mqClient.Publish(rabbitmq.OrderQueue, body); err != nil {
		log.Printf("Warning: Failed to publish order created event for order %s: %v", order.OrderNumber, err)
	}
}

// TrackedItem is an order line joined with current catalog display fields.
// Name and image are not snapshotted, so they can drift from the order-time
// catalog state.
type TrackedItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"product_name"`
	Image     string  `json:"image"`
	Size      string  `json:"size"`
	Colour    string  `json:"colour"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Subtotal  float64 `json:"subtotal"`
}

// OrderStatusView is the read-only tracking projection.
type OrderStatusView struct {
	OrderNumber    string        `json:"order_number"`
	Status         string        `json:"status"`
	PaymentStatus  string        `json:"payment_status"`
	TrackingNumber *string       `json:"tracking_number"`
	CustomerName   string        `json:"customer_name"`
	TotalAmount    float64       `json:"total_amount"`
	CreatedAt      time.Time     `json:"created_at"`
	Items          []TrackedItem `json:"items"`
}

// TrackOrder returns the tracking projection for an order number.
func (s *OrderService) TrackOrder(orderNumber string) (*OrderStatusView, error) {
	order, err := s.orderRepo.GetByOrderNumber(orderNumber)
	if err != nil {
		return nil, err
	}

	view := &OrderStatusView{
		OrderNumber:    order.OrderNumber,
		Status:         order.Status,
		PaymentStatus:  order.PaymentStatus,
		TrackingNumber: order.TrackingNumber,
		CustomerName:   order.CustomerName,
		TotalAmount:    order.TotalAmount,
		CreatedAt:      order.CreatedAt,
		Items:          make([]TrackedItem, 0, len(order.Items)),
	}
	for _, item := range order.Items {
		tracked := TrackedItem{
			ProductID: item.ProductID,
			Size:      item.Size,
			Colour:    item.Colour,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Subtotal:  item.Subtotal(),
		}
		if product, err := s.productRepo.GetByID(item.ProductID); err == nil {
			tracked.Name = product.Name
			if len(product.Images) > 0 {
				tracked.Image = product.Images[0]
			}
		}
		view.Items = append(view.Items, tracked)
	}
	return view, nil
}

// ListUserOrders returns the caller's orders, newest first.
func (s *OrderService) ListUserOrders(identity *Identity) ([]models.Order, error) {
	if identity == nil {
		return nil, fmt.Errorf("authentication required: %w", apperrors.ErrUnauthorized)
	}
	return s.orderRepo.ListByUser(identity.UserID)
}

// UpdateStatus applies a fulfillment transition (admin operation).
func (s *OrderService) UpdateStatus(orderNumber, status string, trackingNumber *string) error {
	if !models.ValidOrderStatuses[status] {
		return fmt.Errorf("invalid order status %q: %w", status, apperrors.ErrInvalidRequest)
	}
	return s.orderRepo.UpdateFulfillment(orderNumber, status, trackingNumber)
}
