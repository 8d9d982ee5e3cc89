// ABOUTME: Shared construction of clients and stores for subcommands
// ABOUTME: Scryfall client, database gateway and collection store selection by driver
package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/harper/oracle/internal/charm"
	"github.com/harper/oracle/internal/config"
	"github.com/harper/oracle/internal/db"
	"github.com/harper/oracle/internal/gateway"
	"github.com/harper/oracle/internal/scryfall"
	"github.com/harper/oracle/internal/store"
	"github.com/harper/oracle/internal/weaviate"
)

// collectionStore is an ingest target.
type collectionStore interface {
	store.Store
	store.Closer
}

// mirror is a local store that can be read back.
type mirror interface {
	store.Searcher
	store.Getter
	store.Counter
	store.Closer
}

func newScryfall(c config.Config, logger *log.Logger) *scryfall.Client {
	return scryfall.New(
		scryfall.WithBaseURL(c.Scryfall.BaseURL),
		scryfall.WithUserAgent(c.Scryfall.UserAgent),
		scryfall.WithTimeout(c.Scryfall.Timeout.Duration),
		scryfall.WithLogger(logger),
	)
}

func weaviateConfig(c config.Config) weaviate.Config {
	return weaviate.Config{
		Collection: c.Weaviate.Collection,
		SearchMode: c.Weaviate.SearchMode,
		Timeout:    c.Weaviate.Timeout.Duration,
	}
}

func newGateway(c config.Config, logger *log.Logger) (*gateway.Gateway, error) {
	readiness, err := gateway.ParseReadiness(c.Weaviate.Readiness)
	if err != nil {
		return nil, err
	}
	return gateway.New(
		weaviate.Dialer(weaviateConfig(c)),
		gateway.WithReadiness(readiness),
		gateway.WithLogger(logger),
	), nil
}

// connectGateway connects when credentials are configured. Failures are
// logged and the server continues without database features.
func connectGateway(ctx context.Context, gw *gateway.Gateway, c config.Config, logger *log.Logger) {
	if !c.HasDatabase() {
		logger.Info("database not configured, database tools will report it as unavailable")
		return
	}
	err := gw.Connect(ctx, gateway.Config{URL: c.Weaviate.URL, APIKey: c.Weaviate.APIKey})
	if err != nil {
		logger.Warn("failed to initialize database connection, continuing without database features", "err", err)
	}
}

func openWeaviate(ctx context.Context, c config.Config) (*weaviate.Client, error) {
	if !c.HasDatabase() {
		return nil, gateway.ErrConfig
	}
	ep := gateway.NormalizeEndpoint(gateway.Config{URL: c.Weaviate.URL, APIKey: c.Weaviate.APIKey})
	wc := weaviateConfig(c)
	wc.Host = ep.Host
	wc.Scheme = ep.Scheme
	wc.APIKey = ep.APIKey
	return weaviate.Dial(ctx, wc)
}

func newCharm(c config.Config) (*charm.Client, error) {
	return charm.NewClient(charm.Config{
		Host:     c.Store.CharmHost,
		DBName:   c.Store.CharmDB,
		AutoSync: c.Store.CharmAutoSync,
	})
}

// openStore opens the ingest target selected by driver.
func openStore(ctx context.Context, c config.Config, driver string) (collectionStore, error) {
	switch driver {
	case config.DriverWeaviate:
		client, err := openWeaviate(ctx, c)
		if err != nil {
			return nil, err
		}
		if err := client.EnsureCollection(ctx); err != nil {
			return nil, err
		}
		return client, nil
	case config.DriverSQLite:
		s, err := db.Open(c.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverCharm:
		client, err := newCharm(c)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q (want weaviate, sqlite or charm)", driver)
	}
}

// openMirror opens a local mirror that supports reads.
func openMirror(c config.Config, driver string) (mirror, error) {
	switch driver {
	case config.DriverSQLite:
		s, err := db.Open(c.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverCharm:
		client, err := newCharm(c)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("store %q is not a local mirror (want sqlite or charm)", driver)
	}
}
