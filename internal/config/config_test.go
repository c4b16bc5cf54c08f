package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("PORT", "")
		t.Setenv("DELETE_GRACE_WINDOW", "")
		t.Setenv("KAFKA_BROKERS", "")
		t.Setenv("TIMEZONE", "")

		cfg := Load()

		assert.Equal(t, "8081", cfg.Port)
		assert.Equal(t, 15*time.Minute, cfg.DeleteGraceWindow)
		assert.Empty(t, cfg.KafkaBrokers)
		assert.Equal(t, "America/Argentina/Buenos_Aires", cfg.Location.String())
	})

	t.Run("From env", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("DELETE_GRACE_WINDOW", "10m")
		t.Setenv("WEBHOOK_TIMEOUT", "3s")
		t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
		t.Setenv("RATE_LIMIT_BURST", "7")
		t.Setenv("TIMEZONE", "UTC")

		cfg := Load()

		assert.Equal(t, "9090", cfg.Port)
		assert.Equal(t, 10*time.Minute, cfg.DeleteGraceWindow)
		assert.Equal(t, 3*time.Second, cfg.WebhookTimeout)
		assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
		assert.Equal(t, 7, cfg.RateLimitBurst)
		assert.Equal(t, time.UTC, cfg.Location)
	})

	t.Run("Invalid values fall back", func(t *testing.T) {
		t.Setenv("DELETE_GRACE_WINDOW", "soon")
		t.Setenv("RATE_LIMIT_RPS", "fast")
		t.Setenv("TIMEZONE", "Mars/Olympus_Mons")

		cfg := Load()

		assert.Equal(t, 15*time.Minute, cfg.DeleteGraceWindow)
		assert.Equal(t, 5.0, cfg.RateLimitRPS)
		assert.Equal(t, time.UTC, cfg.Location)
	})
}
