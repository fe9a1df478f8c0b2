package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App      AppConfig
	Gateway  GatewayConfig
	API      APIConfig
	Storage  StorageConfig
	DB       DBConfig
	Redis    RedisConfig
	Checkout CheckoutConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.API.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Checkout.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"STOREFRONT_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type GatewayConfig struct {
	Port        string   `envconfig:"STOREFRONT_GATEWAY_PORT" default:"3001"`
	CORSOrigins []string `envconfig:"STOREFRONT_GATEWAY_CORS_ORIGINS" default:"http://localhost:3000"`
}

// APIConfig describes the remote REST backend.
type APIConfig struct {
	BaseURL string        `envconfig:"STOREFRONT_API_BASE_URL" default:"http://localhost:8080/CarAccessories"`
	Timeout time.Duration `envconfig:"STOREFRONT_API_TIMEOUT" default:"15s"`

	// The upstream has shipped two spellings of these routes; see DESIGN.md.
	OrdersAllPath     string `envconfig:"STOREFRONT_API_ORDERS_ALL_PATH" default:"/order/all"`
	OrdersByBuyerPath string `envconfig:"STOREFRONT_API_ORDERS_BY_BUYER_PATH" default:"/order/buyer/{id}"`
}

func (a APIConfig) validate() error {
	parsed, err := url.Parse(a.BaseURL)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", EnvAPIBaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) url", EnvAPIBaseURL)
	}
	if !strings.Contains(a.OrdersByBuyerPath, "{id}") {
		return fmt.Errorf("%s must contain {id}", EnvAPIOrdersByBuyer)
	}
	return nil
}

type StorageConfig struct {
	Driver    string `envconfig:"STOREFRONT_STORAGE_DRIVER" default:"file"`
	Dir       string `envconfig:"STOREFRONT_STORAGE_DIR" default:".storefront"`
	KeyPrefix string `envconfig:"STOREFRONT_STORAGE_KEY_PREFIX" default:"default"`
}

func (s StorageConfig) validate() error {
	switch s.Driver {
	case StorageDriverFile, StorageDriverMemory, StorageDriverRedis, StorageDriverSQLite, StorageDriverPostgres:
		return nil
	default:
		return fmt.Errorf("%s: unsupported driver %q", EnvStorageDriver, s.Driver)
	}
}

type DBConfig struct {
	DSN string `envconfig:"STOREFRONT_DB_DSN" default:"file:.storefront/storefront.db"`

	MaxOpenConns    int           `envconfig:"STOREFRONT_DB_MAX_OPEN_CONNS" default:"4"`
	MaxIdleConns    int           `envconfig:"STOREFRONT_DB_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_LIFETIME" default:"1h"`
	AutoMigrate     bool          `envconfig:"STOREFRONT_DB_AUTO_MIGRATE" default:"true"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR" default:"localhost:6379"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"4"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"3s"`
}

type CheckoutConfig struct {
	DeliveryFee       string `envconfig:"STOREFRONT_CHECKOUT_DELIVERY_FEE" default:"50"`
	VATRate           string `envconfig:"STOREFRONT_CHECKOUT_VAT_RATE" default:"0.15"`
	OrderNumberPrefix string `envconfig:"STOREFRONT_CHECKOUT_ORDER_PREFIX" default:"ORD"`
}

// Fee returns the flat delivery fee.
func (c CheckoutConfig) Fee() decimal.Decimal {
	return decimal.RequireFromString(c.DeliveryFee)
}

// Rate returns the VAT rate as a fraction.
func (c CheckoutConfig) Rate() decimal.Decimal {
	return decimal.RequireFromString(c.VATRate)
}

func (c CheckoutConfig) validate() error {
	fee, err := decimal.NewFromString(c.DeliveryFee)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", EnvCheckoutFee, err)
	}
	if fee.IsNegative() {
		return fmt.Errorf("%s must not be negative", EnvCheckoutFee)
	}
	rate, err := decimal.NewFromString(c.VATRate)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", EnvCheckoutVAT, err)
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("%s must be a fraction in [0,1)", EnvCheckoutVAT)
	}
	return nil
}
