// Package config loads application configuration from environment
// variables.  A .env file, when present, is read by the entry point before
// Load is called.
package config

import (
	"fmt"
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Booking write strategies.
const (
	BookingWritesTx           = "tx"
	BookingWritesCompensating = "compensating"
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable named in its tag.
type Config struct {
	Env      string `envconfig:"APP_ENV" default:"dev"`    // dev, test or prod
	Port     string `envconfig:"APP_PORT" default:"8080"`  // HTTP port to listen on
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"` // debug, info, warn, error

	DBUser string `envconfig:"DB_USER" required:"true"`
	DBPass string `envconfig:"DB_PASS"` // empty allowed
	DBHost string `envconfig:"DB_HOST" default:"127.0.0.1"`
	DBPort string `envconfig:"DB_PORT" default:"3306"`
	DBName string `envconfig:"DB_NAME" required:"true"`

	// DBMigrate applies the embedded migrations at startup.
	DBMigrate bool `envconfig:"DB_MIGRATE" default:"true"`

	// JWTSecret verifies the HS256 session tokens of the auth backend.
	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	RabbitURL       string `envconfig:"RABBITMQ_URL"` // empty disables the change feed
	ChangesExchange string `envconfig:"CHANGES_EXCHANGE" default:"site.changes"`
	ChangesQueue    string `envconfig:"CHANGES_QUEUE" default:"yacht-charter.changes"`

	TelegramToken  string `envconfig:"TELEGRAM_BOT_TOKEN"` // empty disables notifications
	TelegramChatID int64  `envconfig:"TELEGRAM_ADMIN_CHAT_ID"`

	VATPercent float64 `envconfig:"VAT_PERCENT" default:"5"`
	Currency   string  `envconfig:"CURRENCY" default:"AED"`

	CORSOrigins    []string      `envconfig:"CORS_ORIGINS" default:"*"`
	CartTTL        time.Duration `envconfig:"CART_TTL" default:"720h"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"5s"`

	// BookingWrites selects how a booking and its options are written:
	// one transaction, or two statements with a compensating delete.
	BookingWrites string `envconfig:"BOOKING_WRITES" default:"tx"`
}

// Load reads the configuration.  A missing required variable or a
// malformed value logs a fatal error and exits.
func Load() Config {
	c, err := load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return c
}

func load() (Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, err
	}
	// envconfig accepts a variable that is set but empty.
	for k, v := range map[string]string{"DB_USER": c.DBUser, "DB_NAME": c.DBName, "JWT_SECRET": c.JWTSecret} {
		if v == "" {
			return Config{}, fmt.Errorf("missing required env var: %s", k)
		}
	}
	switch c.BookingWrites {
	case BookingWritesTx, BookingWritesCompensating:
	default:
		return Config{}, fmt.Errorf("BOOKING_WRITES must be %q or %q, got %q", BookingWritesTx, BookingWritesCompensating, c.BookingWrites)
	}
	if c.VATPercent < 0 || c.VATPercent > 100 {
		return Config{}, fmt.Errorf("VAT_PERCENT out of range: %v", c.VATPercent)
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 5 * time.Second
	}
	return c, nil
}
