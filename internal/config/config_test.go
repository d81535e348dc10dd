package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		AppName:                 "Filebox",
		AppEnv:                  "development",
		AppURL:                  "http://localhost:8090",
		Port:                    "8090",
		DBDriver:                "sqlite",
		DBConnection:            "./data/filebox.db",
		JWTSecret:               "0123456789abcdef",
		JWTExpiry:               time.Hour,
		AdminUsername:           "admin",
		AdminPassword:           DefaultAdminPassword,
		StorageDriver:           "local",
		UploadDir:               "./data/uploads",
		MaxUploadMB:             1024,
		InlineMaxKB:             512,
		SubscriptionTrialDays:   30,
		SubscriptionRenewalDays: 30,
		PaymentProvider:         "none",
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"unknown env", func(c *Config) { c.AppEnv = "staging" }, "AppEnv"},
		{"bad url", func(c *Config) { c.AppURL = "not a url" }, "AppURL"},
		{"short jwt secret", func(c *Config) { c.JWTSecret = "short" }, "JWTSecret"},
		{"unknown db driver", func(c *Config) { c.DBDriver = "mysql" }, "DBDriver"},
		{"zero upload limit", func(c *Config) { c.MaxUploadMB = 0 }, "MaxUploadMB"},
		{"s3 without bucket", func(c *Config) { c.StorageDriver = "s3"; c.S3Region = "eu-central-1" }, "S3Bucket"},
		{"local without dir", func(c *Config) { c.UploadDir = "" }, "UploadDir"},
		{"stripe without key", func(c *Config) { c.PaymentProvider = "stripe" }, "StripeSecretKey"},
		{"polar without key", func(c *Config) { c.PaymentProvider = "polar" }, "PolarAPIKey"},
		{"unknown provider", func(c *Config) { c.PaymentProvider = "paypal" }, "PaymentProvider"},
		{"default password in production", func(c *Config) { c.AppEnv = "production" }, "ADMIN_PASSWORD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)

			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}

	t.Run("production with own password", func(t *testing.T) {
		c := validConfig()
		c.AppEnv = "production"
		c.AdminPassword = "a-real-password"
		assert.NoError(t, c.Validate())
	})

	t.Run("complete stripe setup", func(t *testing.T) {
		c := validConfig()
		c.PaymentProvider = "stripe"
		c.StripeSecretKey = "sk_test_1"
		c.StripeWebhookSecret = "whsec_1"
		c.StripePriceID = "price_1"
		assert.NoError(t, c.Validate())
	})
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("FB_LIST", " https://a.example , ,https://b.example,")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, envList("FB_LIST", nil))
	assert.Equal(t, []string{"x"}, envList("FB_LIST_UNSET", []string{"x"}))

	t.Setenv("FB_INT", "abc")
	assert.Equal(t, 7, envInt("FB_INT", 7))
	t.Setenv("FB_INT", "42")
	assert.Equal(t, 42, envInt("FB_INT", 7))

	t.Setenv("FB_BOOL", "true")
	assert.True(t, envBool("FB_BOOL", false))

	t.Setenv("FB_DURATION", "90m")
	assert.Equal(t, 90*time.Minute, envDuration("FB_DURATION", time.Hour))
	t.Setenv("FB_DURATION", "soon")
	assert.Equal(t, time.Hour, envDuration("FB_DURATION", time.Hour))
}

func TestDerivedValues(t *testing.T) {
	c := validConfig()
	c.JWTSecret = "super-secret-value"
	c.StripeSecretKey = "sk_live"

	assert.Equal(t, int64(1024*1024*1024), c.MaxUploadBytes())
	assert.Equal(t, int64(512*1024), c.InlineMaxBytes())

	safe := c.Sanitized()
	assert.Empty(t, safe.JWTSecret)
	assert.Empty(t, safe.StripeSecretKey)
	assert.Empty(t, safe.AdminPassword)
	assert.Equal(t, "Filebox", safe.AppName)
	assert.Equal(t, 1024, safe.MaxUploadMB)
}
