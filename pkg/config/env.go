package config

// EnvPrefix is passed to envconfig; every field also carries an explicit name.
const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	StorageDriverFile     = "file"
	StorageDriverMemory   = "memory"
	StorageDriverRedis    = "redis"
	StorageDriverSQLite   = "sqlite"
	StorageDriverPostgres = "postgres"
)

const (
	EnvAppEnv           = "STOREFRONT_APP_ENV"
	EnvLogLevel         = "STOREFRONT_LOG_LEVEL"
	EnvAPIBaseURL       = "STOREFRONT_API_BASE_URL"
	EnvAPITimeout       = "STOREFRONT_API_TIMEOUT"
	EnvAPIOrdersByBuyer = "STOREFRONT_API_ORDERS_BY_BUYER_PATH"
	EnvStorageDriver    = "STOREFRONT_STORAGE_DRIVER"
	EnvStorageDir       = "STOREFRONT_STORAGE_DIR"
	EnvRedisURL         = "STOREFRONT_REDIS_URL"
	EnvDBDSN            = "STOREFRONT_DB_DSN"
	EnvCheckoutFee      = "STOREFRONT_CHECKOUT_DELIVERY_FEE"
	EnvCheckoutVAT      = "STOREFRONT_CHECKOUT_VAT_RATE"
	EnvGatewayPort      = "STOREFRONT_GATEWAY_PORT"
)
