package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix scopes every environment variable the loader reads.
	EnvPrefix = "PACKWISE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "PACKWISE_APP_ENV"
	EnvDBDSN    = "PACKWISE_DB_DSN"
	EnvDBHost   = "PACKWISE_DB_HOST"
	EnvDBUser   = "PACKWISE_DB_USER"
	EnvDBName   = "PACKWISE_DB_NAME"
	EnvRedisURL = "PACKWISE_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Promotions   PromotionsConfig
	Inventory    InventoryConfig
	FeatureFlags FeatureFlagsConfig
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PACKWISE_FEATURE_AUTO_MIGRATE" default:"false"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PACKWISE_APP_ENV" required:"true"`
	LogLevel     string `envconfig:"PACKWISE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PACKWISE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PACKWISE_DB_DSN"`
	Driver string `envconfig:"PACKWISE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PACKWISE_DB_HOST"`
	LegacyPort     int    `envconfig:"PACKWISE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PACKWISE_DB_USER"`
	LegacyPassword string `envconfig:"PACKWISE_DB_PASSWORD"`
	LegacyName     string `envconfig:"PACKWISE_DB_NAME"`
	LegacySSLMode  string `envconfig:"PACKWISE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PACKWISE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PACKWISE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PACKWISE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PACKWISE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PACKWISE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PACKWISE_REDIS_ADDR"`
	Password     string        `envconfig:"PACKWISE_REDIS_PASSWORD"`
	DB           int           `envconfig:"PACKWISE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PACKWISE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PACKWISE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PACKWISE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PACKWISE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PACKWISE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// PromotionsConfig tunes coupon redemption and gift-tier hinting.
type PromotionsConfig struct {
	// NearbyTierGap is the maximum spend distance above the cart total for
	// which a gift tier is still surfaced as a "spend more to unlock" prompt.
	// Parsed as a decimal amount at service construction.
	NearbyTierGap string        `envconfig:"PACKWISE_PROMO_NEARBY_TIER_GAP" default:"50"`
	NearbyTierMax int           `envconfig:"PACKWISE_PROMO_NEARBY_TIER_MAX" default:"2"`
	RedemptionTTL time.Duration `envconfig:"PACKWISE_PROMO_REDEMPTION_TTL" default:"168h"`
}

type InventoryConfig struct {
	DefaultLowStockThreshold int `envconfig:"PACKWISE_INVENTORY_LOW_STOCK_THRESHOLD" default:"5"`
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
