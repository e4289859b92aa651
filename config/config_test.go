package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvDefaults(t *testing.T) {
	cfg := LoadEnv()

	assert.Equal(t, ":8080", cfg.Server.HTTPPort)
	assert.Equal(t, "orders.events", cfg.Kafka.Topic)
	assert.Equal(t, "0.16", cfg.Orders.TaxRate.String())
	assert.Equal(t, 30, cfg.Orders.MaxScheduleDays)
	assert.Equal(t, 10, cfg.Orders.CheckoutLockTTLSec)
	assert.Equal(t, 24, cfg.JWT.TTLHours)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ORDERS_TAX_RATE", "0.08")
	t.Setenv("ORDERS_MAX_SCHEDULE_DAYS", "14")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg := LoadEnv()

	assert.Equal(t, "0.08", cfg.Orders.TaxRate.String())
	assert.Equal(t, 14, cfg.Orders.MaxScheduleDays)
	require.Len(t, cfg.Kafka.Brokers, 2)
	assert.Equal(t, "k2:9092", cfg.Kafka.Brokers[1])
}

func TestLoadEnvBadDecimalFallsBack(t *testing.T) {
	t.Setenv("ORDERS_TAX_RATE", "not-a-number")
	cfg := LoadEnv()
	assert.Equal(t, "0.16", cfg.Orders.TaxRate.String())
}
