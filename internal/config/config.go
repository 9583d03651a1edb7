package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	LogLevel string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	OrderService OrderServiceConfig
	Webhook      WebhookConfig
	Reconcile    ReconcileConfig
	RateLimit    RateLimitConfig

	OTLPEndpoint string
}

// OrderServiceConfig points at the upstream order service.
type OrderServiceConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// WebhookConfig carries per-provider webhook signing secrets.
type WebhookConfig struct {
	CardGateSecret string
	PayPalSecret   string
}

// RateLimitConfig bounds inbound webhook traffic per provider.
type RateLimitConfig struct {
	Enabled      bool
	WebhookRate  float64
	WebhookBurst int
}

// ReconcileConfig controls the payment verification retry policy.
type ReconcileConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	RetryDelay   time.Duration
	LockTTL      time.Duration
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "vector-ecom"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),

		LogLevel: strings.ToLower(strings.TrimSpace(getenv("LOG_LEVEL", "info"))),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "vector_ecom"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     int(getenvInt64("DATABASE_MAX_IDLE_CONN", 5)),
		DBMaxOpenConn:     int(getenvInt64("DATABASE_MAX_OPEN_CONN", 25)),
		DBConnMaxLifetime: int(getenvInt64("DATABASE_CONN_MAX_LIFETIME", 30)),
		DBConnMaxIdleTime: int(getenvInt64("DATABASE_CONN_MAX_IDLE_TIME", 5)),

		RedisAddr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       int(getenvInt64("REDIS_DB", 0)),

		OrderService: OrderServiceConfig{
			BaseURL: strings.TrimRight(getenv("ORDER_SERVICE_URL", "http://localhost:9000"), "/"),
			APIKey:  strings.TrimSpace(getenv("ORDER_SERVICE_API_KEY", "")),
			Timeout: getenvDuration("ORDER_SERVICE_TIMEOUT", 10*time.Second),
		},
		Webhook: WebhookConfig{
			CardGateSecret: strings.TrimSpace(getenv("CARDGATE_WEBHOOK_SECRET", "")),
			PayPalSecret:   strings.TrimSpace(getenv("PAYPAL_WEBHOOK_SECRET", "")),
		},
		RateLimit: RateLimitConfig{
			Enabled:      getenvBool("WEBHOOK_RATE_LIMIT_ENABLED", false),
			WebhookRate:  getenvFloat("WEBHOOK_RATE_LIMIT_RATE", 20),
			WebhookBurst: int(getenvInt64("WEBHOOK_RATE_LIMIT_BURST", 40)),
		},
		Reconcile: ReconcileConfig{
			MaxAttempts:  int(getenvInt64("RECONCILE_MAX_ATTEMPTS", 0)),
			InitialDelay: getenvDuration("RECONCILE_INITIAL_DELAY", 0),
			RetryDelay:   getenvDuration("RECONCILE_RETRY_DELAY", 0),
			LockTTL:      getenvDuration("RECONCILE_LOCK_TTL", 0),
		},

		OTLPEndpoint: getenv("OTLP_ENDPOINT", "localhost:4317"),
	}
}

func (c Config) IsDev() bool {
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
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

func getenvBool(key string, def bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}
