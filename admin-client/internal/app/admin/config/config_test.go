package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"ADMIN_ENTRYPOINT", "ADMIN_ITEMS_PER_PAGE", "ADMIN_REQUEST_TIMEOUT", "ADMIN_CACHE_TTL", "ADMIN_NOTIFY_DISMISS", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8081", cfg.API.Entrypoint)
	assert.Equal(t, 10, cfg.API.ItemsPerPage)
	assert.Equal(t, 10*time.Second, cfg.API.RequestTimeout)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 4*time.Second, cfg.Notify.Dismiss)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("ADMIN_ENTRYPOINT", "https://api.example.com")
	t.Setenv("ADMIN_ITEMS_PER_PAGE", "25")
	t.Setenv("ADMIN_CACHE_TTL", "0s")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg.API.Entrypoint)
	assert.Equal(t, 25, cfg.API.ItemsPerPage)
	assert.Zero(t, cfg.Cache.TTL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"relative entrypoint", "ADMIN_ENTRYPOINT", "/api"},
		{"items per page not a number", "ADMIN_ITEMS_PER_PAGE", "ten"},
		{"items per page above max", "ADMIN_ITEMS_PER_PAGE", "500"},
		{"bad timeout", "ADMIN_REQUEST_TIMEOUT", "soon"},
		{"negative ttl", "ADMIN_CACHE_TTL", "-1s"},
		{"bad dismiss", "ADMIN_NOTIFY_DISMISS", "4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()

			assert.Error(t, err)
		})
	}
}
