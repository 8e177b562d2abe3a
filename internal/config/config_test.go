package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "uniform_shop.db", cfg.DBPath)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "uniform-shop-orders", cfg.KafkaTopic)
	assert.Equal(t, 100, cfg.CheckoutRateLimit)
	assert.Equal(t, time.Second, cfg.CheckoutRateWindow)
	assert.Equal(t, 2*time.Hour, cfg.CartTTL)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("CHECKOUT_RATE_LIMIT", "5")
	t.Setenv("CART_TTL_MIN", "30")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 5, cfg.CheckoutRateLimit)
	assert.Equal(t, 30*time.Minute, cfg.CartTTL)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("CHECKOUT_RATE_LIMIT", "zero")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsNonPositive(t *testing.T) {
	t.Setenv("CART_TTL_MIN", "0")
	_, err := Load()
	assert.Error(t, err)
}

func TestSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitCSV(" a , b ,"))
	assert.Empty(t, splitCSV(" , "))
}
