package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadUsesEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("ENV", "production")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("CACHE_TTL_SECONDS", "60")

	cfg := Load()

	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, "production", cfg.Server.Env)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 60, cfg.Business.CacheTTLSeconds)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ORDER_PAGE_SIZE", "")
	t.Setenv("KAFKA_TOPIC_ORDER_EVENTS", "")

	cfg := Load()

	assert.Equal(t, 10, cfg.Business.OrderPageSize)
	assert.Equal(t, "order-events", cfg.Kafka.TopicOrder)
}
