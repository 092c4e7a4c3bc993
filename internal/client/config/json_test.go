package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	full := writeTempJSON(t, dir, "full.json", map[string]any{
		"server_url":        "https://board.example/api",
		"request_timeout":   "4s",
		"access_token_ttl":  "5m",
		"refresh_token_ttl": "12h",
		"database_path":     "",
		"store_secret":      "s3cret",
		"log_level":         "warn",
		"log_format":        "json",
	})
	partial := writeTempJSON(t, dir, "partial.json", map[string]any{
		"server_url": "https://other/api",
	})

	t.Run("loads every field", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", full}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "https://board.example/api", cfg.ServerURL)
		assert.Equal(t, 4*time.Second, cfg.RequestTimeout)
		assert.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
		assert.Equal(t, 12*time.Hour, cfg.RefreshTokenTTL)
		assert.Empty(t, cfg.DatabasePath)
		assert.Equal(t, "s3cret", cfg.StoreSecret)
		assert.Equal(t, "warn", cfg.LogLevel)
		assert.Equal(t, "json", cfg.LogFormat)
	})

	t.Run("partial file keeps defaults", func(t *testing.T) {
		os.Args = []string{"testbin", "--config=" + partial}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "https://other/api", cfg.ServerURL)
		assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
		assert.Equal(t, "taskboard.db", cfg.DatabasePath)
	})

	t.Run("no flag → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{ServerURL: "defaults", RequestTimeout: 42 * time.Second}
		parseJson(cfg)

		assert.Equal(t, "defaults", cfg.ServerURL)
		assert.Equal(t, 42*time.Second, cfg.RequestTimeout)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-c", bad}

		require.Panics(t, func() { parseJson(&Config{}) })
	})
}
