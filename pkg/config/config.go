package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/angelmondragon/vendorcart-backend/pkg/enums"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	OrderService OrderServiceConfig
	Checkout     CheckoutConfig
	Metrics      MetricsConfig
	Cron         CronConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Checkout.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"VENDORCART_APP_ENV" required:"true"`
	Port         string   `envconfig:"VENDORCART_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"VENDORCART_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"VENDORCART_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"VENDORCART_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"VENDORCART_DB_DSN"`
	Driver string `envconfig:"VENDORCART_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"VENDORCART_DB_HOST"`
	LegacyPort     int    `envconfig:"VENDORCART_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"VENDORCART_DB_USER"`
	LegacyPassword string `envconfig:"VENDORCART_DB_PASSWORD"`
	LegacyName     string `envconfig:"VENDORCART_DB_NAME"`
	LegacySSLMode  string `envconfig:"VENDORCART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"VENDORCART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"VENDORCART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"VENDORCART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VENDORCART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	// SlowQuery is the duration above which a statement is logged at warn.
	SlowQuery time.Duration `envconfig:"VENDORCART_DB_SLOW_QUERY" default:"200ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"VENDORCART_REDIS_URL" required:"true"`
	Address      string        `envconfig:"VENDORCART_REDIS_ADDR"`
	Password     string        `envconfig:"VENDORCART_REDIS_PASSWORD"`
	DB           int           `envconfig:"VENDORCART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VENDORCART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VENDORCART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VENDORCART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VENDORCART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VENDORCART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// OrderServiceConfig points at the remote commerce API that owns previews, wallets and orders.
type OrderServiceConfig struct {
	BaseURL string        `envconfig:"VENDORCART_ORDER_SERVICE_URL" required:"true"`
	APIKey  string        `envconfig:"VENDORCART_ORDER_SERVICE_API_KEY"`
	Timeout time.Duration `envconfig:"VENDORCART_ORDER_SERVICE_TIMEOUT" default:"10s"`
}

type CheckoutConfig struct {
	Currency      string        `envconfig:"VENDORCART_CHECKOUT_CURRENCY" default:"VND"`
	SessionTTL    time.Duration `envconfig:"VENDORCART_CHECKOUT_SESSION_TTL" default:"30m"`
	MaxNoteLength int           `envconfig:"VENDORCART_CHECKOUT_MAX_NOTE_LENGTH" default:"500"`
}

// CurrencyCode returns the parsed checkout currency. Load has already validated it.
func (c CheckoutConfig) CurrencyCode() enums.Currency {
	currency, err := enums.ParseCurrency(c.Currency)
	if err != nil {
		return enums.CurrencyVND
	}
	return currency
}

func (c CheckoutConfig) validate() error {
	if _, err := enums.ParseCurrency(c.Currency); err != nil {
		return fmt.Errorf("%s: %w", EnvCheckoutCurrency, err)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("%s must be positive", EnvCheckoutSessionTTL)
	}
	return nil
}

type MetricsConfig struct {
	Enabled bool   `envconfig:"VENDORCART_METRICS_ENABLED" default:"true"`
	Path    string `envconfig:"VENDORCART_METRICS_PATH" default:"/metrics"`
}

// CronConfig tunes the maintenance jobs that keep pending top-ups moving.
type CronConfig struct {
	Interval          time.Duration `envconfig:"VENDORCART_CRON_INTERVAL" default:"5m"`
	TopUpClaimTimeout time.Duration `envconfig:"VENDORCART_TOPUP_CLAIM_TIMEOUT" default:"10m"`
	TopUpWindow       time.Duration `envconfig:"VENDORCART_TOPUP_WINDOW" default:"72h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"VENDORCART_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
