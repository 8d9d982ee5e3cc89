// ABOUTME: Weaviate collection client for flattened card records
// ABOUTME: Batch inserts, keyword or near-text search, aggregate stats and readiness probes
package weaviate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-openapi/strfmt"
	wv "github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/harper/oracle/internal/gateway"
	"github.com/harper/oracle/internal/record"
	"github.com/harper/oracle/internal/store"
)

// Search modes.
const (
	SearchBM25     = "bm25"
	SearchNearText = "near_text"
)

// DefaultCollection is used when no collection is configured.
const DefaultCollection = "OracleCards"

// Config describes one Weaviate collection.
type Config struct {
	Host       string
	Scheme     string
	APIKey     string
	Collection string
	SearchMode string
	Timeout    time.Duration
}

// Client talks to a single Weaviate collection.
type Client struct {
	client     *wv.Client
	collection string
	searchMode string
}

// Dial builds a client for cfg. Weaviate clients are stateless HTTP wrappers,
// so no network traffic happens until the first call.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Host == "" {
		return nil, errors.New("weaviate host is required")
	}
	if cfg.Scheme == "" {
		cfg.Scheme = "https"
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	wcfg := wv.Config{
		Host:             cfg.Host,
		Scheme:           cfg.Scheme,
		ConnectionClient: &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.APIKey != "" {
		wcfg.AuthConfig = auth.ApiKey{Value: cfg.APIKey}
	}

	client, err := wv.NewClient(wcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %w", err)
	}

	return &Client{
		client:     client,
		collection: cfg.Collection,
		searchMode: cfg.SearchMode,
	}, nil
}

// Dialer adapts Dial to the gateway, taking host, scheme and key from the
// gateway endpoint and everything else from base.
func Dialer(base Config) gateway.Dialer {
	return func(ctx context.Context, ep gateway.Endpoint) (gateway.Backend, error) {
		cfg := base
		cfg.Host = ep.Host
		cfg.Scheme = ep.Scheme
		cfg.APIKey = ep.APIKey
		client, err := Dial(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

// Ready lists the schema as a cheap REST round trip.
func (c *Client) Ready(ctx context.Context) error {
	_, err := c.client.Schema().Getter().Do(ctx)
	return err
}

// EnsureCollection creates the collection with the card record properties
// when it does not exist yet.
func (c *Client) EnsureCollection(ctx context.Context) error {
	exists, err := c.client.Schema().ClassExistenceChecker().WithClassName(c.collection).Do(ctx)
	if err != nil {
		return fmt.Errorf("check collection %s: %w", c.collection, err)
	}
	if exists {
		return nil
	}

	class := &models.Class{
		Class:       c.collection,
		Description: "Scryfall card printings",
		Properties:  classProperties(),
	}
	if err := c.client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
		return fmt.Errorf("create collection %s: %w", c.collection, err)
	}
	return nil
}

func classProperties() []*models.Property {
	props := make([]*models.Property, 0, len(record.Fields))
	for _, name := range record.Fields {
		dataType := "text"
		switch name {
		case "cmc":
			dataType = "number"
		case "colors", "color_identity", "keywords":
			dataType = "text[]"
		}
		props = append(props, &models.Property{Name: name, DataType: []string{dataType}})
	}
	return props
}

// Close is a no-op; the underlying client holds no connections of its own.
func (c *Client) Close() error {
	return nil
}

// InsertMany writes one batch. Each object uses the Scryfall id as its
// Weaviate id so re-ingesting a card replaces it.
func (c *Client) InsertMany(ctx context.Context, records []record.Record) (store.BatchResult, error) {
	objects := make([]*models.Object, 0, len(records))
	for _, rec := range records {
		objects = append(objects, &models.Object{
			Class:      c.collection,
			ID:         strfmt.UUID(rec.ID),
			Properties: rec.Properties(),
		})
	}

	resp, err := c.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		return store.BatchResult{}, fmt.Errorf("batch insert into %s: %w", c.collection, err)
	}
	return batchResult(records, resp), nil
}

// Search queries the collection by keyword (BM25) or by vector similarity
// when the collection has a text vectorizer.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]record.Record, error) {
	fields := make([]graphql.Field, 0, len(record.Fields))
	for _, name := range record.Fields {
		fields = append(fields, graphql.Field{Name: name})
	}

	get := c.client.GraphQL().Get().
		WithClassName(c.collection).
		WithFields(fields...).
		WithLimit(limit)

	switch c.searchMode {
	case SearchNearText:
		get = get.WithNearText(c.client.GraphQL().NearTextArgBuilder().WithConcepts([]string{query}))
	default:
		get = get.WithBM25(c.client.GraphQL().Bm25ArgBuilder().WithQuery(query))
	}

	resp, err := get.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", c.collection, err)
	}
	if err := graphQLError(resp); err != nil {
		return nil, err
	}
	return parseGet(resp.Data, c.collection)
}

// Count returns the number of objects in the collection.
func (c *Client) Count(ctx context.Context) (int, error) {
	resp, err := c.client.GraphQL().Aggregate().
		WithClassName(c.collection).
		WithFields(graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}).
		Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("aggregate %s: %w", c.collection, err)
	}
	if err := graphQLError(resp); err != nil {
		return 0, err
	}
	return parseCount(resp.Data, c.collection)
}

// Stats reports the object count and every collection in the cluster.
func (c *Client) Stats(ctx context.Context) (store.Stats, error) {
	count, err := c.Count(ctx)
	if err != nil {
		return store.Stats{}, err
	}

	schema, err := c.client.Schema().Getter().Do(ctx)
	if err != nil {
		return store.Stats{}, fmt.Errorf("list collections: %w", err)
	}

	stats := store.Stats{Collection: c.collection, Objects: count}
	for _, class := range schema.Classes {
		stats.Collections = append(stats.Collections, class.Class)
	}
	return stats, nil
}

func batchResult(records []record.Record, resp []models.ObjectsGetResponse) store.BatchResult {
	var result store.BatchResult
	for i, obj := range resp {
		if obj.Result != nil && obj.Result.Errors != nil && len(obj.Result.Errors.Error) > 0 {
			recErr := store.RecordError{Message: obj.Result.Errors.Error[0].Message}
			if i < len(records) {
				recErr.ID = records[i].ID
				recErr.Name = records[i].Name
			}
			result.Failed = append(result.Failed, recErr)
			continue
		}
		result.Inserted++
	}
	return result
}

func graphQLError(resp *models.GraphQLResponse) error {
	if resp == nil {
		return errors.New("empty graphql response")
	}
	if len(resp.Errors) > 0 && resp.Errors[0] != nil {
		return fmt.Errorf("graphql: %s", resp.Errors[0].Message)
	}
	return nil
}

func parseGet(data map[string]models.JSONObject, collection string) ([]record.Record, error) {
	get, ok := data["Get"].(map[string]any)
	if !ok {
		return nil, errors.New("graphql response missing Get")
	}
	items, ok := get[collection].([]any)
	if !ok {
		return nil, nil
	}

	records := make([]record.Record, 0, len(items))
	for _, item := range items {
		props, ok := item.(map[string]any)
		if !ok {
			continue
		}
		records = append(records, record.FromProperties(props))
	}
	return records, nil
}

func parseCount(data map[string]models.JSONObject, collection string) (int, error) {
	agg, ok := data["Aggregate"].(map[string]any)
	if !ok {
		return 0, errors.New("graphql response missing Aggregate")
	}
	groups, ok := agg[collection].([]any)
	if !ok || len(groups) == 0 {
		return 0, nil
	}
	group, _ := groups[0].(map[string]any)
	meta, _ := group["meta"].(map[string]any)
	count, ok := meta["count"].(float64)
	if !ok {
		return 0, fmt.Errorf("aggregate %s: count missing", collection)
	}
	return int(count), nil
}
