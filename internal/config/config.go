package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAdminPassword is only accepted in development
const DefaultAdminPassword = "changeme"

type Config struct {
	// Application
	AppName  string `validate:"required"`
	AppEnv   string `validate:"oneof=development production"`
	AppURL   string `validate:"required,url"`
	Port     string `validate:"required,numeric"`
	LogLevel string `validate:"omitempty,oneof=debug info warn error"`

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string `validate:"oneof=sqlite pgx"`
	DBConnection string `validate:"required"`

	// Security
	JWTSecret          string        `validate:"required,min=16"`
	JWTExpiry          time.Duration `validate:"gt=0"`
	CORSAllowedOrigins []string

	// Seed admin, created when the users table is empty
	AdminUsername string `validate:"required"`
	AdminPassword string `validate:"required,min=6"`

	// Content storage
	StorageDriver string `validate:"oneof=local s3"`
	UploadDir     string `validate:"required_if=StorageDriver local"`
	MaxUploadMB   int    `validate:"gt=0"`
	InlineMaxKB   int    `validate:"gte=0"`

	// Storage - S3-compatible: MinIO, AWS S3, Cloudflare R2, DigitalOcean Spaces, etc.
	S3Region    string `validate:"required_if=StorageDriver s3"`
	S3Bucket    string `validate:"required_if=StorageDriver s3"`
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string // Optional: for S3-compatible services (MinIO, DO Spaces, R2, etc.)

	// Subscription
	SubscriptionTrialDays   int `validate:"gte=0"`
	SubscriptionRenewalDays int `validate:"gt=0"`

	// Payment
	PaymentProvider string `validate:"oneof=none polar stripe"`
	// Payment - Polar
	PolarAPIKey        string `validate:"required_if=PaymentProvider polar"`
	PolarWebhookSecret string `validate:"required_if=PaymentProvider polar"`
	PolarSandboxMode   bool
	PolarProductID     string `validate:"required_if=PaymentProvider polar"`
	// Payment - Stripe
	StripeSecretKey     string `validate:"required_if=PaymentProvider stripe"`
	StripeWebhookSecret string `validate:"required_if=PaymentProvider stripe"`
	StripePriceID       string `validate:"required_if=PaymentProvider stripe"`

	// Observability (optional)
	SentryDSN string
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName:  envString("APP_NAME", "Filebox"),
		AppEnv:   envRequired("APP_ENV"), // Required: 'development' or 'production'
		AppURL:   envString("APP_URL", "http://localhost:8090"),
		Port:     envString("PORT", "8090"),
		LogLevel: envString("LOG_LEVEL", ""),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/filebox.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"),

		// Security
		JWTSecret:          envRequired("JWT_SECRET"),
		JWTExpiry:          envDuration("JWT_EXPIRY", 168*time.Hour), // 7 days
		CORSAllowedOrigins: envList("CORS_ALLOWED_ORIGINS", nil),

		// Seed admin
		AdminUsername: envString("ADMIN_USERNAME", "admin"),
		AdminPassword: envString("ADMIN_PASSWORD", DefaultAdminPassword),

		// Content storage
		StorageDriver: envString("STORAGE_DRIVER", "local"),
		UploadDir:     envString("UPLOAD_DIR", "./data/uploads"),
		MaxUploadMB:   envInt("MAX_UPLOAD_MB", 1024),
		InlineMaxKB:   envInt("INLINE_MAX_KB", 512),

		// Storage - S3 (only used with STORAGE_DRIVER=s3)
		S3Region:    envString("S3_REGION", ""),
		S3Bucket:    envString("S3_BUCKET", ""),
		S3AccessKey: envString("S3_ACCESS_KEY", ""),
		S3SecretKey: envString("S3_SECRET_KEY", ""),
		S3Endpoint:  envString("S3_ENDPOINT", ""), // Optional: for non-AWS providers

		// Subscription
		SubscriptionTrialDays:   envInt("SUBSCRIPTION_TRIAL_DAYS", 30),
		SubscriptionRenewalDays: envInt("SUBSCRIPTION_RENEWAL_DAYS", 30),

		// Payment (provider selection and configuration)
		PaymentProvider:     envString("PAYMENT_PROVIDER", "none"),
		PolarAPIKey:         envString("POLAR_API_KEY", ""),
		PolarWebhookSecret:  envString("POLAR_WEBHOOK_SECRET", ""),
		PolarSandboxMode:    envBool("POLAR_SANDBOX_MODE", envString("APP_ENV", "development") == "development"),
		PolarProductID:      envString("POLAR_PRODUCT_ID", ""),
		StripeSecretKey:     envString("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: envString("STRIPE_WEBHOOK_SECRET", ""),
		StripePriceID:       envString("STRIPE_PRICE_ID", ""),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),
	}

	return cfg
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return i
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

// envList splits a comma separated value, dropping empty entries
func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MaxUploadBytes is the per-file upload limit
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) * 1024 * 1024
}

// InlineMaxBytes is the largest payload accepted on the base64 JSON upload path
func (c *Config) InlineMaxBytes() int64 {
	return int64(c.InlineMaxKB) * 1024
}

// Sanitized returns a copy of the config with only public/safe fields.
// All secrets, credentials, and sensitive data are excluded.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName:         c.AppName,
		AppEnv:          c.AppEnv,
		AppURL:          c.AppURL,
		Port:            c.Port,
		DBDriver:        c.DBDriver,
		StorageDriver:   c.StorageDriver,
		MaxUploadMB:     c.MaxUploadMB,
		InlineMaxKB:     c.InlineMaxKB,
		PaymentProvider: c.PaymentProvider,
	}
}
