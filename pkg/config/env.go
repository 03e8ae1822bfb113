package config

// EnvPrefix is passed to envconfig; every field carries its full variable name.
const EnvPrefix = "VENDORCART"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv             = "VENDORCART_APP_ENV"
	EnvPort               = "VENDORCART_APP_PORT"
	EnvDBDSN              = "VENDORCART_DB_DSN"
	EnvDBHost             = "VENDORCART_DB_HOST"
	EnvDBUser             = "VENDORCART_DB_USER"
	EnvDBName             = "VENDORCART_DB_NAME"
	EnvRedisURL           = "VENDORCART_REDIS_URL"
	EnvOrderServiceURL    = "VENDORCART_ORDER_SERVICE_URL"
	EnvCheckoutCurrency   = "VENDORCART_CHECKOUT_CURRENCY"
	EnvCheckoutSessionTTL = "VENDORCART_CHECKOUT_SESSION_TTL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
