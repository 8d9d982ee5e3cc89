// ABOUTME: Oracle configuration loaded from TOML, .env and environment variables
// ABOUTME: Creates a default config file on first use and applies env overrides
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Duration is a time.Duration written as a string like "30s" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// ScryfallConfig configures the outbound card API.
type ScryfallConfig struct {
	BaseURL   string   `toml:"base_url"`
	UserAgent string   `toml:"user_agent"`
	Timeout   Duration `toml:"timeout"`
}

// WeaviateConfig configures the vector store connection.
type WeaviateConfig struct {
	URL        string   `toml:"url"`
	APIKey     string   `toml:"api_key"`
	Collection string   `toml:"collection"`
	SearchMode string   `toml:"search_mode"`
	Readiness  string   `toml:"readiness"`
	Timeout    Duration `toml:"timeout"`
}

// StoreConfig selects the ingest target and local mirrors.
type StoreConfig struct {
	Driver        string `toml:"driver"`
	SQLitePath    string `toml:"sqlite_path"`
	CharmDB       string `toml:"charm_db"`
	CharmHost     string `toml:"charm_host"`
	CharmAutoSync bool   `toml:"charm_auto_sync"`
}

// IngestConfig tunes the batch pipeline.
type IngestConfig struct {
	BatchSize     int      `toml:"batch_size"`
	RetryAttempts int      `toml:"retry_attempts"`
	RetryBackoff  Duration `toml:"retry_backoff"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr      string `toml:"addr"`
	StaticDir string `toml:"static_dir"`
}

// Config is the full oracle configuration.
type Config struct {
	Scryfall ScryfallConfig `toml:"scryfall"`
	Weaviate WeaviateConfig `toml:"weaviate"`
	Store    StoreConfig    `toml:"store"`
	Ingest   IngestConfig   `toml:"ingest"`
	Server   ServerConfig   `toml:"server"`
}

// Store drivers.
const (
	DriverWeaviate = "weaviate"
	DriverSQLite   = "sqlite"
	DriverCharm    = "charm"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Scryfall: ScryfallConfig{
			BaseURL:   "https://api.scryfall.com",
			UserAgent: "Card-Lookup-MCP-Server/1.0",
			Timeout:   Duration{30 * time.Second},
		},
		Weaviate: WeaviateConfig{
			Collection: "OracleCards",
			SearchMode: "bm25",
			Readiness:  "lenient",
			Timeout:    Duration{30 * time.Second},
		},
		Store: StoreConfig{
			Driver:        DriverWeaviate,
			SQLitePath:    DefaultSQLitePath(),
			CharmDB:       AppName,
			CharmAutoSync: true,
		},
		Ingest: IngestConfig{
			BatchSize:     20,
			RetryAttempts: 0,
			RetryBackoff:  Duration{2 * time.Second},
		},
		Server: ServerConfig{
			Addr: ":3000",
		},
	}
}

// Load reads the config at path, creating it with defaults when it does not
// exist yet, then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := writeDefault(path, cfg); err != nil {
			return Config{}, err
		}
	} else if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("error decoding config file %s: %w", path, err)
	}

	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from a .env file into the process
// environment. A missing file is not an error; existing variables win.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Validate rejects values that would only fail later.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverWeaviate, DriverSQLite, DriverCharm:
	default:
		return fmt.Errorf("unknown store driver %q (want weaviate, sqlite or charm)", c.Store.Driver)
	}
	switch c.Weaviate.SearchMode {
	case "bm25", "near_text":
	default:
		return fmt.Errorf("unknown search mode %q (want bm25 or near_text)", c.Weaviate.SearchMode)
	}
	if c.Ingest.BatchSize < 1 {
		return fmt.Errorf("ingest batch_size must be positive, got %d", c.Ingest.BatchSize)
	}
	return nil
}

// HasDatabase reports whether both vector store credentials are set.
func (c Config) HasDatabase() bool {
	return c.Weaviate.URL != "" && c.Weaviate.APIKey != ""
}

func applyEnv(cfg *Config) {
	overrides := []struct {
		key string
		dst *string
	}{
		{"WEAVIATE_URL", &cfg.Weaviate.URL},
		{"WEAVIATE_API_KEY", &cfg.Weaviate.APIKey},
		{"ORACLE_COLLECTION", &cfg.Weaviate.Collection},
		{"ORACLE_READINESS", &cfg.Weaviate.Readiness},
		{"ORACLE_STORE", &cfg.Store.Driver},
		{"ORACLE_SQLITE_PATH", &cfg.Store.SQLitePath},
		{"SCRYFALL_BASE_URL", &cfg.Scryfall.BaseURL},
	}
	for _, o := range overrides {
		if v := strings.TrimSpace(os.Getenv(o.key)); v != "" {
			*o.dst = v
		}
	}
}

func writeDefault(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating config file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}
	return nil
}
