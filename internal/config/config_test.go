// ABOUTME: Tests for oracle configuration loading
// ABOUTME: Default file creation, TOML overrides, env overrides and .env loading
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"WEAVIATE_URL", "WEAVIATE_API_KEY", "ORACLE_COLLECTION", "ORACLE_READINESS",
		"ORACLE_STORE", "ORACLE_SQLITE_PATH", "SCRYFALL_BASE_URL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad(t *testing.T) {
	t.Run("creates default file when missing", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "oracle", "config.toml")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 20, cfg.Ingest.BatchSize)
		assert.Equal(t, DriverWeaviate, cfg.Store.Driver)
		assert.Equal(t, 30*time.Second, cfg.Scryfall.Timeout.Duration)
		assert.False(t, cfg.HasDatabase())

		_, err = os.Stat(path)
		require.NoError(t, err)

		again, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, cfg, again)
	})

	t.Run("reads values from toml", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "config.toml")
		content := `
[weaviate]
url = "https://cluster.example.com"
api_key = "from-file"
readiness = "strict"
timeout = "5s"

[store]
driver = "sqlite"

[ingest]
batch_size = 50
retry_attempts = 3
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "https://cluster.example.com", cfg.Weaviate.URL)
		assert.Equal(t, "strict", cfg.Weaviate.Readiness)
		assert.Equal(t, 5*time.Second, cfg.Weaviate.Timeout.Duration)
		assert.Equal(t, DriverSQLite, cfg.Store.Driver)
		assert.Equal(t, 50, cfg.Ingest.BatchSize)
		assert.Equal(t, 3, cfg.Ingest.RetryAttempts)
		assert.Equal(t, "OracleCards", cfg.Weaviate.Collection)
		assert.True(t, cfg.HasDatabase())
	})

	t.Run("env overrides file", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte("[weaviate]\napi_key = \"from-file\"\n"), 0o600))

		t.Setenv("WEAVIATE_API_KEY", "from-env")
		t.Setenv("ORACLE_STORE", "charm")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.Weaviate.APIKey)
		assert.Equal(t, DriverCharm, cfg.Store.Driver)
	})

	t.Run("rejects unknown driver", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte("[store]\ndriver = \"postgres\"\n"), 0o600))

		_, err := Load(path)
		assert.ErrorContains(t, err, "unknown store driver")
	})

	t.Run("rejects malformed toml", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte("[weaviate\n"), 0o600))

		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("missing file is fine", func(t *testing.T) {
		assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
	})

	t.Run("sets unset variables only", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("ORACLE_COLLECTION=FromDotEnv\nWEAVIATE_URL=https://dotenv\n"), 0o600))

		t.Setenv("ORACLE_COLLECTION", "")
		require.NoError(t, os.Unsetenv("ORACLE_COLLECTION"))
		t.Setenv("WEAVIATE_URL", "https://already-set")

		require.NoError(t, LoadDotEnv(path))
		assert.Equal(t, "FromDotEnv", os.Getenv("ORACLE_COLLECTION"))
		assert.Equal(t, "https://already-set", os.Getenv("WEAVIATE_URL"))
	})
}
