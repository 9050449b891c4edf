package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

// EnvPrefix namespaces every environment variable consumed by the service.
const EnvPrefix = "NEVBIRD"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Canonical env var names, used by tests and deploy tooling.
const (
	EnvAppEnv   = "NEVBIRD_APP_ENV"
	EnvPort     = "NEVBIRD_APP_PORT"
	EnvRedisURL = "NEVBIRD_REDIS_URL"
)

type Config struct {
	App      AppConfig
	Redis    RedisConfig
	Catalog  CatalogConfig
	Cart     CartConfig
	Checkout CheckoutConfig
	Payments PaymentsConfig
	CORS     CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Checkout.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"NEVBIRD_APP_ENV" required:"true"`
	Port         string `envconfig:"NEVBIRD_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"NEVBIRD_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"NEVBIRD_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// RedisConfig configures the durable cart slot backend. An empty URL and
// Address switch the service to in-process slots.
type RedisConfig struct {
	URL          string        `envconfig:"NEVBIRD_REDIS_URL"`
	Address      string        `envconfig:"NEVBIRD_REDIS_ADDR"`
	Password     string        `envconfig:"NEVBIRD_REDIS_PASSWORD"`
	DB           int           `envconfig:"NEVBIRD_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"NEVBIRD_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"NEVBIRD_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"NEVBIRD_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"NEVBIRD_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"NEVBIRD_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// CatalogConfig points the service at the static product dataset. When Path
// is empty, the embedded seed catalog is used.
type CatalogConfig struct {
	Path string `envconfig:"NEVBIRD_CATALOG_PATH"`
}

type CartConfig struct {
	SessionCookie string        `envconfig:"NEVBIRD_CART_SESSION_COOKIE" default:"nevbird_session"`
	SlotTTL       time.Duration `envconfig:"NEVBIRD_CART_SLOT_TTL" default:"720h"`
}

type CheckoutConfig struct {
	FreeShippingMinCents int    `envconfig:"NEVBIRD_CHECKOUT_FREE_SHIPPING_MIN_CENTS" default:"10000"`
	ShippingFlatCents    int    `envconfig:"NEVBIRD_CHECKOUT_SHIPPING_FLAT_CENTS" default:"650"`
	TaxRate              string `envconfig:"NEVBIRD_CHECKOUT_TAX_RATE" default:"0.07"`
}

// TaxRateDecimal parses the configured tax rate. validate() guarantees the
// string parses, so errors here mean Load was bypassed.
func (c CheckoutConfig) TaxRateDecimal() decimal.Decimal {
	rate, err := decimal.NewFromString(c.TaxRate)
	if err != nil {
		return decimal.Zero
	}
	return rate
}

func (c CheckoutConfig) validate() error {
	rate, err := decimal.NewFromString(c.TaxRate)
	if err != nil {
		return fmt.Errorf("parsing tax rate %q: %w", c.TaxRate, err)
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("tax rate %q must be in [0, 1)", c.TaxRate)
	}
	if c.ShippingFlatCents < 0 || c.FreeShippingMinCents < 0 {
		return fmt.Errorf("shipping thresholds must be non-negative")
	}
	return nil
}

// PaymentsConfig describes the external payment-session service. An empty
// Endpoint switches checkout submit into mock mode.
type PaymentsConfig struct {
	Endpoint   string        `envconfig:"NEVBIRD_PAYMENTS_ENDPOINT"`
	SuccessURL string        `envconfig:"NEVBIRD_PAYMENTS_SUCCESS_URL" default:"/thank-you"`
	Timeout    time.Duration `envconfig:"NEVBIRD_PAYMENTS_TIMEOUT" default:"10s"`
	MaxRetries uint64        `envconfig:"NEVBIRD_PAYMENTS_MAX_RETRIES" default:"2"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"NEVBIRD_CORS_ALLOWED_ORIGINS" default:"*"`
}
