package config_test

import (
	"testing"
	"time"

	"storefront/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("KAFKA_BROKERS", "")
		t.Setenv("UPSTREAM_TIMEOUT_SECONDS", "")
		t.Setenv("CONTACTS_FLAT_PRICE", "")
		t.Setenv("CORS_ORIGINS", "")
		t.Setenv("KAFKA_PUBLISH_TIMEOUT_MS", "")

		cfg, err := config.Load()
		require.NoError(t, err)

		assert.Equal(t, 30*time.Second, cfg.UpstreamTimeout)
		assert.Equal(t, 29.99, cfg.ContactsFlatPrice)
		assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
		assert.Equal(t, 2*time.Second, cfg.EventPublishTimeout)
		assert.False(t, cfg.KafkaEnabled())
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
		t.Setenv("UPSTREAM_TIMEOUT_SECONDS", "5")
		t.Setenv("CONTACTS_FLAT_PRICE", "19.5")
		t.Setenv("CORS_ORIGINS", "https://shop.example.com")

		cfg, err := config.Load()
		require.NoError(t, err)

		assert.Equal(t, 5*time.Second, cfg.UpstreamTimeout)
		assert.Equal(t, 19.5, cfg.ContactsFlatPrice)
		assert.Equal(t, []string{"https://shop.example.com"}, cfg.CORSOrigins)
		assert.True(t, cfg.KafkaEnabled())
		assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Brokers())
	})

	t.Run("invalid_numbers_fall_back", func(t *testing.T) {
		t.Setenv("UPSTREAM_PAGE_SIZE", "lots")
		t.Setenv("CONTACTS_FLAT_PRICE", "-3")

		cfg, err := config.Load()
		require.NoError(t, err)

		assert.Equal(t, 50, cfg.UpstreamPageSize)
		assert.Equal(t, 29.99, cfg.ContactsFlatPrice)
	})
}
