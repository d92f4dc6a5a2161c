package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, int64(299), cfg.Shop.ShippingFlatFee)
	assert.Equal(t, int64(2000), cfg.Shop.FreeShippingThreshold)
	assert.Equal(t, "eur", cfg.Shop.Currency)
	assert.Equal(t, "session_id", cfg.Shop.SessionCookieName)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "a-production-secret-of-at-least-32-chars")
	t.Setenv("SHOP_SHIPPING_FEE", "450")
	t.Setenv("SHOP_CHECKOUT_TTL", "10m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://charmaway.es, https://admin.charmaway.es")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "6543")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, int64(450), cfg.Shop.ShippingFlatFee)
	assert.Equal(t, 10*time.Minute, cfg.Shop.CheckoutTTL)
	assert.Equal(t, []string{"https://charmaway.es", "https://admin.charmaway.es"}, cfg.Security.CORSAllowedOrigins)
	assert.Contains(t, cfg.GetDatabaseDSN(), "host=db port=6543")
}

func TestLoad_InvalidValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "lots")
	t.Setenv("APP_DEBUG", "maybe")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.App.Debug)
}

func TestValidate(t *testing.T) {
	t.Run("short jwt secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "too-short")
		_, err := Load()
		assert.ErrorContains(t, err, "JWT_SECRET")
	})

	t.Run("negative shipping fee", func(t *testing.T) {
		t.Setenv("SHOP_SHIPPING_FEE", "-1")
		_, err := Load()
		assert.ErrorContains(t, err, "SHOP_SHIPPING_FEE")
	})

	t.Run("development secret in production", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		_, err := Load()
		assert.ErrorContains(t, err, "must be set in production")
	})

	t.Run("unknown providers", func(t *testing.T) {
		t.Setenv("EMAIL_PROVIDER", "pigeon")
		t.Setenv("STORAGE_PROVIDER", "ftp")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "EMAIL_PROVIDER")
		assert.Contains(t, err.Error(), "STORAGE_PROVIDER")
	})

	t.Run("s3 needs a bucket", func(t *testing.T) {
		t.Setenv("STORAGE_PROVIDER", "s3")
		_, err := Load()
		assert.ErrorContains(t, err, "S3_BUCKET is required")
	})
}

func TestGetRedisAddr(t *testing.T) {
	cfg := &Config{Redis: RedisConfig{Host: "cache", Port: "6380"}}
	assert.Equal(t, "cache:6380", cfg.GetRedisAddr())
}
