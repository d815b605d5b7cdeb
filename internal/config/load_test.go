package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/flashdeck-api/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "file", cfg.Store.Kind)
	assert.Equal(t, "data/flashdeck.json", cfg.Store.FilePath)
	assert.Equal(t, "data/backups", cfg.Store.BackupsDir)
	assert.Equal(t, 10, cfg.Store.MaxBackups)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("FLASHDECK_SERVER_PORT", "9999")
	t.Setenv("FLASHDECK_SERVER_LOG_LEVEL", "debug")
	t.Setenv("FLASHDECK_STORE_KIND", "memory")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "memory", cfg.Store.Kind)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"port out of range", "FLASHDECK_SERVER_PORT", "70000"},
		{"bad log level", "FLASHDECK_SERVER_LOG_LEVEL", "verbose"},
		{"bad store kind", "FLASHDECK_STORE_KIND", "etcd"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)

			_, err := config.Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid configuration")
		})
	}
}
