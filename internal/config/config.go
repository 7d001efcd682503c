package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/Rishabhostwal48/Manglanam-Naturals-sub000/pkg/config"
)

// Config holds all configuration for the storefront server.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"storefront"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"storefront_secret"`
	PostgresDB   string `env:"POSTGRES_DB_NAME" envDefault:"storefront_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Redis (cart storage)
	RedisHost string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Cart lifetime before Redis expires an untouched cart.
	CartTTL time.Duration `env:"CART_TTL" envDefault:"720h"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// JWT
	JWTSecret   string        `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`
	JWTIssuer   string        `env:"JWT_ISSUER" envDefault:"storefront"`
	JWTLifetime time.Duration `env:"JWT_LIFETIME" envDefault:"24h"`

	// Payment provider
	RazorpayBaseURL   string `env:"RAZORPAY_BASE_URL" envDefault:"https://api.razorpay.com"`
	RazorpayKeyID     string `env:"RAZORPAY_KEY_ID" envDefault:""`
	RazorpayKeySecret string `env:"RAZORPAY_KEY_SECRET" envDefault:""`

	// Pricing policy. Amounts are in paise.
	TaxRate               float64 `env:"TAX_RATE" envDefault:"0.10"`
	FreeShippingThreshold int64   `env:"FREE_SHIPPING_THRESHOLD" envDefault:"100000"`
	FlatShippingRate      int64   `env:"FLAT_SHIPPING_RATE" envDefault:"10000"`
	Currency              string  `env:"CURRENCY" envDefault:"INR"`

	// Notifications
	AdminRecipients []string `env:"ADMIN_RECIPIENTS" envDefault:"ops@manglanamnaturals.in" envSeparator:","`

	// Rate limiting
	RateLimitRPS   int `env:"RATE_LIMIT_RPS" envDefault:"50"`
	RateLimitBurst int `env:"RATE_LIMIT_BURST" envDefault:"100"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if cfg.TaxRate < 0 || cfg.TaxRate >= 1 {
		return nil, fmt.Errorf("TAX_RATE must be in [0, 1), got %v", cfg.TaxRate)
	}
	return cfg, nil
}

// PostgresDSN returns the PostgreSQL connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.PostgresUser, c.PostgresPass, c.PostgresHost, c.PostgresPort, c.PostgresDB, c.PostgresSSL,
	)
}

// RedisAddr returns the Redis host:port address.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}
