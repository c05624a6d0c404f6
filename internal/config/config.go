package config

import "github.com/spf13/viper"

// Config holds every runtime setting. Values come from environment variables
// with sensible defaults for local development.
type Config struct {
	AppPort            string
	AppBaseURL         string
	DatabaseDriver     string // "postgres" or "sqlite"
	DatabaseDSN        string
	JWTSecret          string
	RabbitMQURL        string
	AllowGuestCheckout bool
	AdminEmail         string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string

	RazorpayKeyID     string
	RazorpayKeySecret string
	PaymentsDir       string
}

// Load reads configuration through Viper from the environment.
func Load() *Config {
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("APP_BASE_URL", "http://localhost:8080")
	viper.SetDefault("DATABASE_DRIVER", "sqlite")
	viper.SetDefault("DATABASE_DSN", "boutique.db")
	viper.SetDefault("JWT_SECRET", "boutique-secret-key")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("ALLOW_GUEST_CHECKOUT", true)
	viper.SetDefault("ADMIN_EMAIL", "admin@boutique.local")
	viper.SetDefault("SMTP_HOST", "")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_USERNAME", "")
	viper.SetDefault("SMTP_PASSWORD", "")
	viper.SetDefault("RAZORPAY_KEY_ID", "")
	viper.SetDefault("RAZORPAY_KEY_SECRET", "")
	viper.SetDefault("PAYMENTS_DIR", "payments")
	viper.AutomaticEnv() // Load environment variables

	return &Config{
		AppPort:            viper.GetString("APP_PORT"),
		AppBaseURL:         viper.GetString("APP_BASE_URL"),
		DatabaseDriver:     viper.GetString("DATABASE_DRIVER"),
		DatabaseDSN:        viper.GetString("DATABASE_DSN"),
		JWTSecret:          viper.GetString("JWT_SECRET"),
		RabbitMQURL:        viper.GetString("RABBITMQ_URL"),
		AllowGuestCheckout: viper.GetBool("ALLOW_GUEST_CHECKOUT"),
		AdminEmail:         viper.GetString("ADMIN_EMAIL"),
		SMTPHost:           viper.GetString("SMTP_HOST"),
		SMTPPort:           viper.GetInt("SMTP_PORT"),
		SMTPUsername:       viper.GetString("SMTP_USERNAME"),
		SMTPPassword:       viper.GetString("SMTP_PASSWORD"),
		RazorpayKeyID:      viper.GetString("RAZORPAY_KEY_ID"),
		RazorpayKeySecret:  viper.GetString("RAZORPAY_KEY_SECRET"),
		PaymentsDir:        viper.GetString("PAYMENTS_DIR"),
	}
}
