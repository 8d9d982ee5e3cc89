// ABOUTME: Database access gateway owning the vector store connection
// ABOUTME: Explicit handle with atomic connect/disconnect and a configurable readiness policy
package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harper/oracle/internal/record"
	"github.com/harper/oracle/internal/store"
)

// ErrConfig is returned by Connect when required parameters are missing.
var ErrConfig = errors.New("WEAVIATE_URL and WEAVIATE_API_KEY are required for database connection")

// ErrNotConnected is returned by Backend when no connection is usable.
var ErrNotConnected = errors.New("database is not connected")

// Readiness decides whether a connection whose readiness probe failed may
// serve queries.
type Readiness string

const (
	// ReadinessLenient lets tools query a connected but unready store.
	ReadinessLenient Readiness = "lenient"
	// ReadinessStrict hides the connection until a probe succeeds.
	ReadinessStrict Readiness = "strict"
)

// ParseReadiness maps a config value to a policy, defaulting to lenient.
func ParseReadiness(s string) (Readiness, error) {
	switch Readiness(strings.ToLower(strings.TrimSpace(s))) {
	case "", ReadinessLenient:
		return ReadinessLenient, nil
	case ReadinessStrict:
		return ReadinessStrict, nil
	default:
		return "", fmt.Errorf("unknown readiness policy %q (want lenient or strict)", s)
	}
}

// Config carries the connection parameters.
type Config struct {
	URL    string
	APIKey string
}

// Endpoint is a normalized Config handed to the Dialer.
type Endpoint struct {
	Host   string
	Scheme string
	APIKey string
}

// Backend is an established store connection.
type Backend interface {
	Ready(ctx context.Context) error
	Close() error
	Search(ctx context.Context, query string, limit int) ([]record.Record, error)
	Stats(ctx context.Context) (store.Stats, error)
}

// Dialer establishes a Backend for an endpoint.
type Dialer func(ctx context.Context, ep Endpoint) (Backend, error)

// Option configures a Gateway.
type Option func(*Gateway)

// WithReadiness sets the readiness policy.
func WithReadiness(r Readiness) Option {
	return func(g *Gateway) {
		g.readiness = r
	}
}

// WithProbeTimeout bounds every readiness probe.
func WithProbeTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		g.probeTimeout = d
	}
}

// WithLogger sets the logger used for state transitions.
func WithLogger(l *log.Logger) Option {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// Gateway manages one lazily established store connection. It is safe for
// concurrent use; every state transition happens under a single lock.
type Gateway struct {
	dial         Dialer
	readiness    Readiness
	probeTimeout time.Duration
	logger       *log.Logger

	mu      sync.RWMutex
	backend Backend
	ready   bool
}

// New creates a disconnected gateway.
func New(dial Dialer, opts ...Option) *Gateway {
	g := &Gateway{
		dial:         dial,
		readiness:    ReadinessLenient,
		probeTimeout: 10 * time.Second,
		logger:       log.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NormalizeEndpoint strips the scheme from url. Endpoints without a scheme
// default to https.
func NormalizeEndpoint(cfg Config) Endpoint {
	host := strings.TrimSpace(cfg.URL)
	scheme := "https"
	switch {
	case strings.HasPrefix(host, "https://"):
		host = strings.TrimPrefix(host, "https://")
	case strings.HasPrefix(host, "http://"):
		host = strings.TrimPrefix(host, "http://")
		scheme = "http"
	}
	return Endpoint{
		Host:   strings.TrimSuffix(host, "/"),
		Scheme: scheme,
		APIKey: cfg.APIKey,
	}
}

// Connect establishes the connection. It is a no-op when already connected.
// A failed readiness probe still leaves the gateway connected.
func (g *Gateway) Connect(ctx context.Context, cfg Config) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.backend != nil {
		g.logger.Debug("database already connected")
		return nil
	}

	if cfg.URL == "" || cfg.APIKey == "" {
		return ErrConfig
	}

	backend, err := g.dial(ctx, NormalizeEndpoint(cfg))
	if err != nil {
		g.logger.Error("failed to connect to database", "err", err)
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	g.backend = backend
	g.ready = g.probe(ctx, backend) == nil
	if g.ready {
		g.logger.Info("connected to database")
	} else {
		g.logger.Warn("connection established but cluster may not be ready yet", "policy", g.readiness)
	}
	return nil
}

// Disconnect releases the connection. It is idempotent.
func (g *Gateway) Disconnect() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.backend == nil {
		return nil
	}
	err := g.backend.Close()
	g.backend = nil
	g.ready = false
	g.logger.Info("database connection closed")
	return err
}

// IsConnected reports whether a connection handle exists.
func (g *Gateway) IsConnected() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.backend != nil
}

// IsReady reports whether the last readiness probe succeeded.
func (g *Gateway) IsReady() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.backend != nil && g.ready
}

// Readiness returns the configured policy.
func (g *Gateway) Readiness() Readiness {
	return g.readiness
}

// Usable reports whether tools may query the store under the readiness policy.
func (g *Gateway) Usable() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.usableLocked()
}

func (g *Gateway) usableLocked() bool {
	if g.backend == nil {
		return false
	}
	return g.ready || g.readiness == ReadinessLenient
}

// TestConnection actively probes the store. Probe failures are logged and
// reported as false, never returned.
func (g *Gateway) TestConnection(ctx context.Context) bool {
	g.mu.RLock()
	backend := g.backend
	g.mu.RUnlock()

	if backend == nil {
		return false
	}

	err := g.probe(ctx, backend)
	if err != nil {
		g.logger.Warn("database connection test failed", "err", err)
	}

	g.mu.Lock()
	// The connection may have been replaced while probing.
	if g.backend == backend {
		g.ready = err == nil
	}
	g.mu.Unlock()

	return err == nil
}

// Backend returns the connection for queries, or ErrNotConnected when the
// gateway is disconnected or the policy forbids using an unready store.
func (g *Gateway) Backend() (Backend, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if !g.usableLocked() {
		return nil, ErrNotConnected
	}
	return g.backend, nil
}

func (g *Gateway) probe(ctx context.Context, backend Backend) (err error) {
	ctx, cancel := context.WithTimeout(ctx, g.probeTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("readiness probe panicked: %v", r)
		}
	}()
	return backend.Ready(ctx)
}
