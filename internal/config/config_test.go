package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "seed_data.csv", cfg.SeedFile)
	assert.Equal(t, "audit_log.csv", cfg.AuditFile)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, 30*time.Second, cfg.ProviderTimeout)
	assert.False(t, cfg.RedisTLS)
	assert.Nil(t, cfg.CORSAllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JOTFORM_FORM_ID", "240011223344")
	t.Setenv("PROVIDER_TIMEOUT", "5s")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://ops.example.com, https://dash.example.com")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "240011223344", cfg.JotformFormID)
	assert.Equal(t, 5*time.Second, cfg.ProviderTimeout)
	assert.True(t, cfg.RedisTLS)
	assert.Equal(t, []string{"https://ops.example.com", "https://dash.example.com"}, cfg.CORSAllowedOrigins)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("PROVIDER_TIMEOUT", "soon")
	t.Setenv("REDIS_TLS", "definitely")

	cfg := Load()

	assert.Equal(t, 30*time.Second, cfg.ProviderTimeout)
	assert.False(t, cfg.RedisTLS)
}
