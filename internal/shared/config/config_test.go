package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "/api/v1", cfg.GetAPIBasePath())
	assert.Equal(t, ":8080", cfg.GetServerAddress())
	assert.Equal(t, 24*time.Hour, cfg.Booking.PaymentWindow)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Contains(t, cfg.Database.DSN, "dbname=turfbook_db")
	assert.False(t, cfg.Kafka.Enabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SWEEPER_INTERVAL", "30s")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("SMTP_PORT", "not-a-number")
	t.Setenv("GIN_MODE", "release")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.Sweeper.Interval)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 587, cfg.Email.SMTPPort)
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.IsDevelopment())
}

func TestLocation(t *testing.T) {
	t.Setenv("BOOKING_TIMEZONE", "Nowhere/Invalid")
	assert.Equal(t, time.UTC, Load().Location())

	t.Setenv("BOOKING_TIMEZONE", "UTC")
	assert.Equal(t, "UTC", Load().Location().String())
}
