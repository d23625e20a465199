package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, 2*time.Hour, cfg.Sessions.StateTTL)
	assert.Equal(t, "./catalog", cfg.Catalog.Dir)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DATABASE_ENABLED", "false")
	t.Setenv("AUTH_ENABLED", "false")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("SESSION_IDLE_TIMEOUT", "5m")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.False(t, cfg.Database.Enabled)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, 5*time.Minute, cfg.Sessions.IdleTimeout)

	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"port", map[string]string{"SERVER_PORT": "70000"}},
		{"auth without database", map[string]string{"DATABASE_ENABLED": "false"}},
		{"empty dsn", map[string]string{"DATABASE_DSN": ""}},
		{"log level", map[string]string{"LOG_LEVEL": "loud"}},
		{"cleanup interval", map[string]string{"CLEANUP_INTERVAL": "0s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
