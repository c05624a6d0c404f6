package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"boutique/internal/config"
	"boutique/internal/gateway"
	"boutique/internal/handlers"
	"boutique/internal/middleware"
	"boutique/internal/models"
	"boutique/internal/repositories"
	"boutique/internal/services"
	"boutique/pkg/mailer"
	"boutique/pkg/rabbitmq"
)

func main() {
	cfg := config.Load()

	// --- Database ---
	db, err := openDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Product{}, &models.Variant{}, &models.User{},
		&models.Order{}, &models.OrderItem{}, &models.Payment{},
		&models.Subscription{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- RabbitMQ (optional) ---
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close() // Ensure the connection is closed on exit
	} else {
		log.Println("RABBITMQ_URL not set, event publishing disabled")
	}

	// --- Mail relay (optional) ---
	var sender mailer.EmailSender
	if cfg.SMTPHost != "" {
		smtpSender, err := mailer.NewSMTPSender(mailer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
		})
		if err != nil {
			log.Fatalf("Failed to initialize SMTP sender: %v", err)
		}
		sender = smtpSender
	} else {
		log.Println("SMTP_HOST not set, transactional email disabled")
	}
	dispatcher := mailer.NewDispatcher(sender, 64)
	defer dispatcher.Close()

	// --- Payment gateway (optional) ---
	var gw gateway.Gateway
	if cfg.RazorpayKeyID != "" && cfg.RazorpayKeySecret != "" {
		gw = gateway.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	} else {
		log.Println("Razorpay credentials not set, payment endpoints will report service unavailable")
	}

	// --- Repositories ---
	productRepo := repositories.NewGORMProductRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	paymentRepo := repositories.NewGORMPaymentRepository(db)
	subscriptionRepo := repositories.NewGORMSubscriptionRepository(db)

	// --- Services ---
	var publisher services.EventPublisher
	if mqClient != nil {
		publisher = mqClient
	}
	authService := services.NewAuthService(userRepo, cfg.JWTSecret, dispatcher, cfg.AppBaseURL)
	productService := services.NewProductService(productRepo)
	orderService := services.NewOrderService(orderRepo, productRepo, publisher, dispatcher, cfg.AllowGuestCheckout, cfg.AdminEmail)
	paymentService := services.NewPaymentService(gw, paymentRepo, orderRepo, publisher, dispatcher, cfg.AllowGuestCheckout, cfg.AdminEmail, cfg.PaymentsDir)
	newsletterService := services.NewNewsletterService(subscriptionRepo, dispatcher)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService)
	orderHandler := handlers.NewOrderHandler(orderService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	newsletterHandler := handlers.NewNewsletterHandler(newsletterService)

	// --- Fiber app ---
	app := fiber.New()
	app.Use(logger.New()) // Request logger
	app.Use(middleware.Prometheus())

	apiV1 := app.Group("/api/v1")

	// Public routes
	authHandler.RegisterRoutes(apiV1)
	productHandler.RegisterRoutes(apiV1)
	newsletterHandler.RegisterRoutes(apiV1)

	// Checkout and payments run under optional auth: guests pass through,
	// tokens still resolve to an identity.
	checkoutRoutes := apiV1.Group("", middleware.OptionalAuth(authService))
	orderHandler.RegisterRoutes(checkoutRoutes)
	paymentHandler.RegisterRoutes(checkoutRoutes)

	// Authenticated routes
	protectedRoutes := apiV1.Group("", middleware.AuthRequired(authService))
	authHandler.RegisterProtectedRoutes(protectedRoutes)
	orderHandler.RegisterProtectedRoutes(protectedRoutes)

	// Admin routes
	adminRoutes := apiV1.Group("/admin", middleware.AuthRequired(authService), middleware.AdminRequired())
	productHandler.RegisterAdminRoutes(adminRoutes)
	orderHandler.RegisterAdminRoutes(adminRoutes)

	// --- Operational endpoints ---
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Event consumers ---
	if mqClient != nil {
		startEventConsumers(mqClient)
	}

	// --- Start HTTP server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}

// openDatabase connects GORM with the configured driver. sqlite keeps local
// development dependency-free; postgres is the deployment target.
func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	switch cfg.DatabaseDriver {
	case "postgres":
		return gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	default:
		return gorm.Open(sqlite.Open(cfg.DatabaseDSN), &gorm.Config{})
	}
}

// startEventConsumers attaches logging consumers to the event queues. Order
// and payment events currently feed operational logs; downstream systems can
// bind their own consumers to the same queues.
func startEventConsumers(mqClient *rabbitmq.Client) {
	if err := mqClient.Consume(rabbitmq.OrderQueue, func(msg amqp.Delivery) error {
		log.Printf("Received order event (tag %d): %s", msg.DeliveryTag, string(msg.Body))
		return nil
	}); err != nil {
		log.Printf("Failed to start order event consumer: %v", err)
	}
	if err := mqClient.Consume(rabbitmq.PaymentQueue, func(msg amqp.Delivery) error {
		log.Printf("Received payment event (tag %d): %s", msg.DeliveryTag, string(msg.Body))
		return nil
	}); err != nil {
		log.Printf("Failed to start payment event consumer: %v", err)
	}
}
