package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/flashdeck-api/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpenRepository(t *testing.T) {
	t.Parallel()

	t.Run("memory", func(t *testing.T) {
		t.Parallel()

		repo, err := openRepository(config.StoreConfig{Kind: "memory"}, testLogger())
		require.NoError(t, err)
		require.NotNil(t, repo)
		assert.NoError(t, repo.Close())
	})

	t.Run("file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		repo, err := openRepository(config.StoreConfig{
			Kind:       "file",
			FilePath:   filepath.Join(dir, "flashdeck.json"),
			BackupsDir: filepath.Join(dir, "backups"),
			MaxBackups: 3,
		}, testLogger())
		require.NoError(t, err)
		require.NotNil(t, repo)
		assert.NoError(t, repo.Close())
	})

	t.Run("unknown kind", func(t *testing.T) {
		t.Parallel()

		_, err := openRepository(config.StoreConfig{Kind: "carrier-pigeon"}, testLogger())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown store kind")
	})
}

func TestSetupRouter_Health(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		Server: config.ServerConfig{Port: 8080, LogLevel: "info"},
		Store:  config.StoreConfig{Kind: "memory"},
	}

	app, err := newApplication(cfg, testLogger())
	require.NoError(t, err)
	defer app.cleanup()

	srv := httptest.NewServer(app.setupRouter())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "OK", string(body))
}
