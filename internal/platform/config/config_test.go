package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	t.Setenv("PGSQL_URL", "postgres://localhost/payledger")
	t.Setenv("RECONCILE_SECRET", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.DatabaseDriver)
	assert.Equal(t, 200, cfg.ReconcileDefaultLimit)
	assert.Equal(t, 1000, cfg.ReconcileMaxLimit)
	assert.Equal(t, 1, cfg.ReconcileConcurrency)
	assert.Equal(t, 2*time.Minute, cfg.ReconcileTimeout)
	assert.Equal(t, time.Duration(0), cfg.ReconcileInterval)
	assert.Equal(t, 5*time.Minute, cfg.WebhookClaimLease)
	assert.Equal(t, "50-S", cfg.WebhookRateLimit)
	assert.Empty(t, cfg.ReconcileSecret)
}

func TestLoadConfig_Overrides(t *testing.T) {
	viper.Reset()
	t.Setenv("DATABASE_DRIVER", "MEMORY")
	t.Setenv("RECONCILE_SECRET", "s3cret")
	t.Setenv("RECONCILE_CONCURRENCY", "4")
	t.Setenv("RECONCILE_INTERVAL", "15m")
	t.Setenv("WEBHOOK_CLAIM_LEASE", "not-a-duration")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.DatabaseDriver)
	assert.Equal(t, "s3cret", cfg.ReconcileSecret)
	assert.Equal(t, 4, cfg.ReconcileConcurrency)
	assert.Equal(t, 15*time.Minute, cfg.ReconcileInterval)
	assert.Equal(t, 5*time.Minute, cfg.WebhookClaimLease)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}
