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
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	dir := t.TempDir()

	t.Run("overlays present fields", func(t *testing.T) {
		path := writeTempJSON(t, dir, "cfg.json", map[string]any{
			"secret_key":                      "json-secret",
			"refresh_token_validity_duration": 60000000000,
		})
		var cfg Config
		cfg.LoadDefaults()
		require.NoError(t, parseJson(&cfg, path))

		assert.Equal(t, "json-secret", cfg.SecretKey)
		assert.Equal(t, time.Minute, cfg.RefreshTokenValidityDuration)
		assert.Equal(t, ":8080", cfg.Addr)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))
		assert.ErrorContains(t, parseJson(&Config{}, bad), "parse config")
	})

	t.Run("missing file", func(t *testing.T) {
		assert.ErrorContains(t, parseJson(&Config{}, filepath.Join(dir, "nope.json")), "read config")
	})
}
