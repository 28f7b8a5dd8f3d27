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
	assert.Equal(t, 8003, cfg.HTTPPort)
	assert.Equal(t, BackendLedis, cfg.StorageBackend)
	assert.Equal(t, "@GoMarketplace:products", cfg.StorageKey)
	assert.Equal(t, 5*time.Second, cfg.PersistTimeout)
	assert.Equal(t, uint(3), cfg.PersistMaxTries)
	assert.Equal(t, time.Duration(0), cfg.CartTTLDuration())
	assert.False(t, cfg.EventsEnabled)
}

func TestLoad_InvalidHTTPPort(t *testing.T) {
	t.Setenv("CART_HTTP_PORT", "0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid HTTP port")
}

func TestLoad_InvalidBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "sqlite")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid STORAGE_BACKEND")
}

func TestLoad_InvalidOTELSampleRate(t *testing.T) {
	t.Setenv("OTEL_SAMPLE_RATE", "2.0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OTEL_SAMPLE_RATE must be between 0.0 and 1.0")
}

func TestLoad_ZeroPersistTries(t *testing.T) {
	t.Setenv("CART_PERSIST_MAX_TRIES", "0")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "CART_PERSIST_MAX_TRIES")
}

func TestLoad_NegativeTTL(t *testing.T) {
	t.Setenv("CART_TTL_HOURS", "-1")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "CART_TTL_HOURS")
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "redis.prod:6380")
	t.Setenv("CART_TTL_HOURS", "24")
	t.Setenv("CART_PERSIST_TIMEOUT", "250ms")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, BackendRedis, cfg.StorageBackend)
	assert.Equal(t, "redis.prod:6380", cfg.RedisAddr)
	assert.Equal(t, 24*time.Hour, cfg.CartTTLDuration())
	assert.Equal(t, 250*time.Millisecond, cfg.PersistTimeout)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
}
