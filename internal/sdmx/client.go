package sdmx

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"oecdmcp/internal/domain"
)

// CatalogLookup is the read-only view of the curated dataset catalog the
// facade needs. Implemented by *catalog.Catalog.
type CatalogLookup interface {
	Lookup(id string) (domain.DatasetRef, bool)
	Search(text string) []domain.DatasetRef
	All() []domain.DatasetRef
}

// ResultCache stores decoded query results keyed by dataset id and a query
// fingerprint. Implemented by *cache.Store; nil disables caching.
type ResultCache interface {
	Get(datasetID, key string) ([]domain.Observation, bool, error)
	Put(datasetID, key string, obs []domain.Observation) error
}

// ClientOptions wires a Client together.
type ClientOptions struct {
	BaseURL      string
	Catalog      CatalogLookup
	Executor     *Executor
	Cache        ResultCache // optional
	DefaultLimit int
	MaxLimit     int
}

// Client is the public query surface: list, describe, query, search. It
// composes the sanitizer, executor, and decoders per operation and turns
// remote failures into structured diagnostics.
type Client struct {
	baseURL      string
	catalog      CatalogLookup
	exec         *Executor
	cache        ResultCache
	defaultLimit int
	maxLimit     int
}

// NewClient creates a query facade.
func NewClient(opts ClientOptions) *Client {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 100
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = 1000
	}
	return &Client{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		catalog:      opts.Catalog,
		exec:         opts.Executor,
		cache:        opts.Cache,
		defaultLimit: opts.DefaultLimit,
		maxLimit:     opts.MaxLimit,
	}
}

// ListDatasets returns every catalog entry. No network.
func (c *Client) ListDatasets() []domain.DatasetRef {
	return c.catalog.All()
}

// SearchDatasets filters the catalog by id/name/description substring,
// case-insensitive. No network.
func (c *Client) SearchDatasets(text string) []domain.DatasetRef {
	return c.catalog.Search(text)
}

// DescribeDataset derives the dimension structure of a dataset from a
// minimal live query (a single observation carries the full structural
// metadata). Unknown ids fail fast; remote failures degrade to the generic
// fallback structure rather than failing the call.
func (c *Client) DescribeDataset(ctx context.Context, id string) (*domain.DatasetStructure, error) {
	ref, ok := c.catalog.Lookup(id)
	if !ok {
		return nil, &UnknownDatasetError{ID: id}
	}

	params := url.Values{}
	params.Set("format", "jsondata")
	params.Set("lastNObservations", "1")
	u := c.dataURL(ref, "all", params)

	body, err := c.exec.Do(ctx, u, RequestContext{Dataset: id, Operation: "describe"})
	if err != nil {
		log.Printf("[sdmx] describe %s: structure fetch failed, using fallback: %v", id, err)
		return fallbackDatasetStructure(ref), nil
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Printf("[sdmx] describe %s: unparseable structure payload, using fallback: %v", id, err)
		return fallbackDatasetStructure(ref), nil
	}

	series, obs, ok := ExtractStructure(payload)
	if !ok {
		log.Printf("[sdmx] describe %s: no known structure shape, using fallback", id)
		return fallbackDatasetStructure(ref), nil
	}
	return &domain.DatasetStructure{Dataset: ref, SeriesDims: series, ObsDims: obs}, nil
}

// QueryDataset fetches observations for a dataset. Sanitization, period
// validation, and catalog resolution all happen before any network action;
// a cache hit also avoids the network entirely.
func (c *Client) QueryDataset(ctx context.Context, id, filter string, opts domain.QueryOptions) ([]domain.Observation, error) {
	encoded, err := SanitizeFilter(filter)
	if err != nil {
		return nil, err
	}
	if err := validatePeriod("startPeriod", opts.StartPeriod); err != nil {
		return nil, err
	}
	if err := validatePeriod("endPeriod", opts.EndPeriod); err != nil {
		return nil, err
	}

	ref, ok := c.catalog.Lookup(id)
	if !ok {
		return nil, &UnknownDatasetError{ID: id}
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = c.defaultLimit
	}
	if limit > c.maxLimit {
		limit = c.maxLimit
	}

	key := queryFingerprint(filter, opts, limit)
	if c.cache != nil {
		if cached, hit, err := c.cache.Get(id, key); err != nil {
			log.Printf("[sdmx] query %s: cache read failed: %v", id, err)
		} else if hit {
			return cached, nil
		}
	}

	params := url.Values{}
	params.Set("format", "jsondata")
	if opts.StartPeriod != "" {
		params.Set("startPeriod", opts.StartPeriod)
	}
	if opts.EndPeriod != "" {
		params.Set("endPeriod", opts.EndPeriod)
	}
	if opts.LastN > 0 {
		params.Set("lastNObservations", strconv.Itoa(opts.LastN))
	}
	u := c.dataURL(ref, encoded, params)

	body, err := c.exec.Do(ctx, u, RequestContext{Dataset: id, Operation: "query"})
	if err != nil {
		return nil, err
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		// Decoding anomalies degrade instead of raising: the caller always
		// gets something structurally valid back.
		log.Printf("[sdmx] query %s: unparseable payload, returning no observations: %v", id, err)
		return []domain.Observation{}, nil
	}

	seriesDims, obsDims, ok := ExtractStructure(payload)
	if !ok {
		seriesDims, obsDims = FallbackStructure()
	}
	observations := DecodeObservations(payload, seriesDims, obsDims, limit)

	if c.cache != nil {
		if err := c.cache.Put(id, key, observations); err != nil {
			log.Printf("[sdmx] query %s: cache write failed: %v", id, err)
		}
	}
	return observations, nil
}

// dataURL builds the outbound data request path. The filter segment must
// already be sanitized and percent-encoded.
func (c *Client) dataURL(ref domain.DatasetRef, encodedFilter string, params url.Values) string {
	return fmt.Sprintf("%s/data/%s,%s,%s/%s?%s",
		c.baseURL, ref.Agency, ref.FlowID, ref.Version, encodedFilter, params.Encode())
}

func fallbackDatasetStructure(ref domain.DatasetRef) *domain.DatasetStructure {
	series, obs := FallbackStructure()
	return &domain.DatasetStructure{Dataset: ref, SeriesDims: series, ObsDims: obs, Fallback: true}
}

// periodPattern matches the period forms the OECD endpoint accepts:
// YYYY, YYYY-Qn, YYYY-MM.
var periodPattern = regexp.MustCompile(`^\d{4}(-(Q[1-4]|0[1-9]|1[0-2]))?$`)

func validatePeriod(field, value string) error {
	if value == "" {
		return nil
	}
	if !periodPattern.MatchString(value) {
		return &InputError{Field: field, Value: value, Reason: "expected YYYY, YYYY-Qn, or YYYY-MM"}
	}
	return nil
}

func queryFingerprint(filter string, opts domain.QueryOptions, limit int) string {
	return fmt.Sprintf("%s|%s|%s|%d|%d", filter, opts.StartPeriod, opts.EndPeriod, opts.LastN, limit)
}
