package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	LogLevel    string
	Timezone    string

	StoreBackend   string
	StoreKeyPrefix string
	SeedOnStart    bool
	SnowflakeNode  int64

	MaxReceiptBytes int64

	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string
	SQLitePath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MetricsPushURL string
	OTLPEndpoint   string
}

const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMySQL    = "mysql"
	BackendRedis    = "redis"
)

const defaultMaxReceiptBytes = 5 << 20

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:         getenv("APP_SERVICE", "snackbar"),
		AppVersion:      getenv("APP_VERSION", "0.1.0"),
		Environment:     getenv("ENVIRONMENT", "development"),
		LogLevel:        strings.ToLower(getenv("LOG_LEVEL", "info")),
		Timezone:        getenv("TIMEZONE", "Local"),
		StoreBackend:    normalizeBackend(getenv("STORE_BACKEND", BackendSQLite)),
		StoreKeyPrefix:  strings.TrimSpace(getenv("STORE_KEY_PREFIX", "snackbar:")),
		SeedOnStart:     getenvBool("SEED_ON_START", true),
		SnowflakeNode:   getenvInt64("SNOWFLAKE_NODE", 1),
		MaxReceiptBytes: getenvInt64("MAX_RECEIPT_BYTES", defaultMaxReceiptBytes),
		DBHost:          getenv("DATABASE_HOST", "localhost"),
		DBPort:          getenv("DATABASE_PORT", "5432"),
		DBName:          getenv("DATABASE_NAME", "snackbar"),
		DBUser:          getenv("DATABASE_USER", "postgres"),
		DBPassword:      getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:       getenv("DATABASE_SSLMODE", "disable"),
		SQLitePath:      getenv("SQLITE_PATH", "snackbar.db"),
		RedisAddr:       getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getenv("REDIS_PASSWORD", ""),
		RedisDB:         int(getenvInt64("REDIS_DB", 0)),
		MetricsPushURL:  strings.TrimSpace(getenv("METRICS_PUSHGATEWAY_URL", "")),
		OTLPEndpoint:    strings.TrimSpace(getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")),
	}
}

// Location resolves TIMEZONE, falling back to UTC when it is unknown.
func (c Config) Location() *time.Location {
	name := strings.TrimSpace(c.Timezone)
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Module provides Config and the hot-reloadable POS settings.
var Module = fx.Module("config",
	fx.Provide(
		Load,
		func() (*POSConfigHolder, error) { return NewPOSConfigHolder() },
	),
)

func normalizeBackend(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case BackendMemory, BackendSQLite, BackendPostgres, BackendMySQL, BackendRedis:
		return value
	default:
		return BackendSQLite
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}
