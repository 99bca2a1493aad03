package app

import (
	"time"

	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/bookhaven-backend/internal/data/db"
	"github.com/yungbote/bookhaven-backend/internal/platform/envutil"
	"github.com/yungbote/bookhaven-backend/internal/platform/kvstore"
	"github.com/yungbote/bookhaven-backend/internal/platform/logger"
)

const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"

	defaultSessionSecret = "defaultsecret"
)

type Config struct {
	Port        string
	LogMode     string
	Environment string
	Version     string

	SessionBackend      string
	Redis               kvstore.RedisConfig
	RedisChannel        string
	SessionTTL          time.Duration
	SessionSecret       string
	SessionMaxAge       time.Duration
	SessionCookie       string
	SessionCookieSecure bool

	DB db.Config

	CatalogPath           string
	StoreName             string
	CurrencySymbol        string
	ResetOrderFlagOnClear bool

	// ContactNotifyEmails receive a copy of each contact message via SendGrid.
	ContactNotifyEmails []string

	CORSAllowOrigins []string
	MetricsAddr      string
	ShutdownGrace    time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:        envutil.String("PORT", "8080"),
		LogMode:     envutil.String("LOG_MODE", "development"),
		Environment: envutil.String("APP_ENV", "development"),
		Version:     envutil.String("APP_VERSION", ""),

		SessionBackend: envutil.String("SESSION_BACKEND", SessionBackendMemory),
		Redis: kvstore.RedisConfig{
			Addr:     envutil.String("REDIS_ADDR", ""),
			Password: envutil.String("REDIS_PASSWORD", ""),
			DB:       envutil.Int("REDIS_DB", 0),
		},
		RedisChannel:        envutil.String("REDIS_CHANNEL", "cart-events"),
		SessionTTL:          envutil.Duration("SESSION_TTL", 30*time.Minute),
		SessionSecret:       envutil.String("SESSION_SECRET", defaultSessionSecret),
		SessionMaxAge:       envutil.Duration("SESSION_MAX_AGE", 24*time.Hour),
		SessionCookie:       envutil.String("SESSION_COOKIE", "bh_session"),
		SessionCookieSecure: envutil.Bool("SESSION_COOKIE_SECURE", false),

		DB: db.Config{
			Driver:      envutil.String("DB_DRIVER", db.DriverSQLite),
			SQLitePath:  envutil.String("SQLITE_PATH", "bookhaven.db"),
			PostgresDSN: envutil.String("POSTGRES_DSN", ""),
			LogLevel:    gormLogger.Warn,
		},

		CatalogPath:           envutil.String("CATALOG_PATH", ""),
		StoreName:             envutil.String("STORE_NAME", "Book Haven"),
		CurrencySymbol:        envutil.String("CURRENCY_SYMBOL", "$"),
		ResetOrderFlagOnClear: envutil.Bool("RESET_ORDER_FLAG_ON_CLEAR", false),
		ContactNotifyEmails:   envutil.List("CONTACT_NOTIFY_EMAILS", nil),

		CORSAllowOrigins: envutil.List("CORS_ALLOW_ORIGINS", nil),
		MetricsAddr:      envutil.String("METRICS_ADDR", ""),
		ShutdownGrace:    envutil.Duration("SHUTDOWN_GRACE", 10*time.Second),
	}
	if cfg.SessionSecret == defaultSessionSecret && log != nil {
		log.Warn("SESSION_SECRET not set; using the development default")
	}
	return cfg
}

// UsesRedis reports whether any component needs a Redis connection.
func (c Config) UsesRedis() bool {
	return c.SessionBackend == SessionBackendRedis || c.Redis.Addr != ""
}
