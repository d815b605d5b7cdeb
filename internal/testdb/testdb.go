// Package testdb locates the PostgreSQL instance used by integration
// tests. Tests that need a live database call SkipIfUnavailable so the
// suite still passes on machines without one.
package testdb

import (
	"os"
	"testing"
)

// EnvURL is the environment variable naming the integration test database.
const EnvURL = "FLASHDECK_TEST_DATABASE_URL"

// URL returns the configured test database connection string, or "" when
// none is configured.
func URL() string {
	return os.Getenv(EnvURL)
}

// SkipIfUnavailable skips the calling test unless a test database is
// configured, and returns the connection string otherwise.
func SkipIfUnavailable(t *testing.T) string {
	t.Helper()

	url := URL()
	if url == "" {
		t.Skipf("skipping: %s is not set", EnvURL)
	}
	return url
}
