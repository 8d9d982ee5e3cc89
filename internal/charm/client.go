// ABOUTME: Charm KV client wrapper using transactional Do API
// ABOUTME: Short-lived connections to avoid lock contention with other oracle processes

package charm

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
)

const (
	// CardPrefix is the key prefix for mirrored cards.
	CardPrefix = "card:"

	// DBName is the default KV database name for oracle.
	DBName = "oracle"
)

// Config selects the Charm server and database.
type Config struct {
	Host     string
	DBName   string
	AutoSync bool
}

// Client holds configuration for KV operations.
// It does NOT hold a persistent connection: each operation opens the
// database, performs the operation, and closes it.
type Client struct {
	dbName   string
	autoSync bool
}

// NewClient creates a new client from cfg.
func NewClient(cfg Config) (*Client, error) {
	// Set charm host if configured
	if cfg.Host != "" {
		if err := os.Setenv("CHARM_HOST", cfg.Host); err != nil {
			return nil, err
		}
	}

	name := cfg.DBName
	if name == "" {
		name = DBName
	}

	return &Client{
		dbName:   name,
		autoSync: cfg.AutoSync,
	}, nil
}

// GetRaw retrieves a value by key (read-only, no lock contention).
func (c *Client) GetRaw(key []byte) ([]byte, error) {
	var val []byte
	err := kv.DoReadOnly(c.dbName, func(k *kv.KV) error {
		var err error
		val, err = k.Get(key)
		return err
	})
	return val, err
}

// DoReadOnly executes a function with read-only database access.
// Use this for batch read operations that need multiple Gets.
func (c *Client) DoReadOnly(fn func(k *kv.KV) error) error {
	return kv.DoReadOnly(c.dbName, fn)
}

// Do executes a function with write access to the database.
// Use this for batch write operations.
func (c *Client) Do(fn func(k *kv.KV) error) error {
	return kv.Do(c.dbName, func(k *kv.KV) error {
		if err := fn(k); err != nil {
			return err
		}
		if c.autoSync {
			return k.Sync()
		}
		return nil
	})
}

// Sync triggers a manual sync with the charm server.
func (c *Client) Sync() error {
	return kv.Do(c.dbName, func(k *kv.KV) error {
		return k.Sync()
	})
}

// ID returns the charm user ID for this device.
func (c *Client) ID() (string, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", err
	}
	return cc.ID()
}

// IsLinked returns true if this device is linked to a Charm account.
func (c *Client) IsLinked() bool {
	_, err := c.ID()
	return err == nil
}

// GetJSON retrieves and unmarshals a JSON value.
func (c *Client) GetJSON(key []byte, dest any) error {
	data, err := c.GetRaw(key)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// Close is a no-op: connections are closed after each operation.
func (c *Client) Close() error {
	return nil
}

// GetCharmHost returns the configured Charm host.
func GetCharmHost() string {
	if host := os.Getenv("CHARM_HOST"); host != "" {
		return host
	}
	return "charm.2389.dev"
}

// RepairDB attempts to repair a corrupted mirror without opening it.
func RepairDB(name string, force bool) (*kv.RepairResult, error) {
	if name == "" {
		name = DBName
	}
	result, err := kv.Repair(name, force)
	if err != nil {
		return nil, fmt.Errorf("repair %s: %w", name, err)
	}
	return result, nil
}

// ResetDB deletes the local mirror and pulls it again from the Charm server.
func ResetDB(name string) error {
	if name == "" {
		name = DBName
	}
	return kv.Reset(name)
}

// Wipe deletes the mirror locally and from the Charm server.
func (c *Client) Wipe() (*kv.WipeResult, error) {
	return kv.Wipe(c.dbName)
}
