// ABOUTME: HTTP client for the Scryfall card API
// ABOUTME: Search, named lookup and collection lookup with schema-validated responses
package scryfall

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harper/oracle/internal/card"
)

const (
	// DefaultBaseURL is the public Scryfall API.
	DefaultBaseURL = "https://api.scryfall.com"
	// DefaultUserAgent identifies this server to Scryfall.
	DefaultUserAgent = "Card-Lookup-MCP-Server/1.0"
	// DefaultTimeout bounds every outbound call.
	DefaultTimeout = 30 * time.Second
	// PageSize is the number of cards Scryfall returns per search page.
	PageSize = 175
	// MaxCollectionSize is the identifier limit of the collection endpoint.
	MaxCollectionSize = 75
)

// Client calls the Scryfall API.
type Client struct {
	baseURL    string
	userAgent  string
	timeout    time.Duration
	httpClient *http.Client
	logger     *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(u, "/")
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithTimeout sets the per-call deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.httpClient = h
	}
}

// WithLogger sets the logger used for schema drift diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a client with the public API defaults.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		userAgent:  DefaultUserAgent,
		timeout:    DefaultTimeout,
		httpClient: http.DefaultClient,
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	return c
}

// Search runs a full-text query using Scryfall search syntax. Pages start at 1;
// zero requests the provider default.
func (c *Client) Search(ctx context.Context, query string, page int) (card.List, error) {
	params := url.Values{"q": {query}}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}

	body, err := c.do(ctx, http.MethodGet, "/cards/search?"+params.Encode(), nil)
	if err != nil {
		return card.List{}, err
	}

	list, err := card.ParseList(body)
	if err != nil {
		return card.List{}, c.drift("/cards/search", err)
	}
	return list, nil
}

// Named fetches a single card by exact or fuzzy name.
func (c *Client) Named(ctx context.Context, name string, fuzzy bool) (card.Card, error) {
	key := "exact"
	if fuzzy {
		key = "fuzzy"
	}
	params := url.Values{key: {name}}

	body, err := c.do(ctx, http.MethodGet, "/cards/named?"+params.Encode(), nil)
	if err != nil {
		return card.Card{}, err
	}

	found, err := card.Parse(body)
	if err != nil {
		return card.Card{}, c.drift("/cards/named", err)
	}
	return found, nil
}

type identifier struct {
	Name string `json:"name"`
}

// Collection resolves up to MaxCollectionSize card names in one request.
func (c *Client) Collection(ctx context.Context, names []string) (card.Collection, error) {
	if len(names) > MaxCollectionSize {
		return card.Collection{}, ErrTooManyIdentifiers
	}

	ids := make([]identifier, 0, len(names))
	for _, name := range names {
		ids = append(ids, identifier{Name: name})
	}
	payload, err := json.Marshal(map[string]any{"identifiers": ids})
	if err != nil {
		return card.Collection{}, fmt.Errorf("failed to encode identifiers: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, "/cards/collection", payload)
	if err != nil {
		return card.Collection{}, err
	}

	coll, err := card.ParseCollection(body)
	if err != nil {
		return card.Collection{}, c.drift("/cards/collection", err)
	}
	return coll, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scryfall request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read scryfall response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apiError(resp.StatusCode, body)
	}
	return body, nil
}

func apiError(status int, body []byte) *APIError {
	var payload struct {
		Code    string `json:"code"`
		Error   string `json:"error"`
		Details string `json:"details"`
	}
	// Non-JSON error bodies fall back to the status line.
	_ = json.Unmarshal(body, &payload)
	return &APIError{Status: status, Code: payload.Code, Reason: payload.Error, Details: payload.Details}
}

func (c *Client) drift(endpoint string, err error) error {
	var verr *card.ValidationError
	if !errors.As(err, &verr) {
		return fmt.Errorf("failed to decode scryfall response: %w", err)
	}
	c.logger.Error("scryfall response failed schema validation", "endpoint", endpoint, "issues", verr.Error())
	return &SchemaDriftError{Endpoint: endpoint, Err: verr}
}
