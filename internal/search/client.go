// ABOUTME: Azure AI Search client for querying a document index over REST
// ABOUTME: Returns hits with their opaque payload blob; no ranking happens locally
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/harper/menu-agent/internal/search")

// DefaultPayloadField is the index field holding the serialized document blob
const DefaultPayloadField = "payload"

// emptyPayload stands in for documents that carry no payload field
const emptyPayload = "{}"

// Searcher runs a free-text query against a remote index
type Searcher interface {
	Search(ctx context.Context, req Request) (*Response, error)
}

// Request describes one query. Top <= 0 leaves the page size to the service.
type Request struct {
	Query             string
	Top               int
	IncludeTotalCount bool
}

// Response is a single page of hits in the order the service ranked them
type Response struct {
	Count *int64
	Hits  []Hit
}

// Hit is one document returned by the service
type Hit struct {
	Score   float64 `json:"score"`
	Payload string  `json:"payload"`
}

// Config holds connection settings for the search service
type Config struct {
	Endpoint     string
	Index        string
	APIKey       string
	APIVersion   string
	PayloadField string
	Timeout      time.Duration
	HTTPClient   *http.Client
}

// APIError is returned when the service answers with a non-2xx status
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("search service returned %d: %s", e.StatusCode, e.Body)
}

// Client talks to the Azure AI Search documents endpoint
type Client struct {
	endpoint     string
	index        string
	apiKey       string
	apiVersion   string
	payloadField string
	http         *http.Client
}

var _ Searcher = (*Client)(nil)

// NewClient creates a search client. Endpoint and index are required.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("search endpoint is required")
	}
	if cfg.Index == "" {
		return nil, fmt.Errorf("search index is required")
	}
	if _, err := url.Parse(cfg.Endpoint); err != nil {
		return nil, fmt.Errorf("invalid search endpoint: %w", err)
	}

	payloadField := cfg.PayloadField
	if payloadField == "" {
		payloadField = DefaultPayloadField
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		endpoint:     strings.TrimRight(cfg.Endpoint, "/"),
		index:        cfg.Index,
		apiKey:       cfg.APIKey,
		apiVersion:   cfg.APIVersion,
		payloadField: payloadField,
		http:         httpClient,
	}, nil
}

type searchBody struct {
	Search string `json:"search"`
	Top    int    `json:"top,omitempty"`
	Count  bool   `json:"count,omitempty"`
}

type searchResult struct {
	Count *int64                       `json:"@odata.count"`
	Value []map[string]json.RawMessage `json:"value"`
}

// Search posts the query to the index and maps each document to a Hit.
// Transport and service errors are returned as-is to the caller.
func (c *Client) Search(ctx context.Context, req Request) (*Response, error) {
	ctx, span := tracer.Start(ctx, "search.query")
	defer span.End()
	span.SetAttributes(
		attribute.String("search.index", c.index),
		attribute.Int("search.top", req.Top),
	)

	body, err := json.Marshal(searchBody{
		Search: req.Query,
		Top:    req.Top,
		Count:  req.IncludeTotalCount,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding search request: %w", err)
	}

	u := fmt.Sprintf("%s/indexes/%s/docs/search", c.endpoint, url.PathEscape(c.index))
	if c.apiVersion != "" {
		u += "?api-version=" + url.QueryEscape(c.apiVersion)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building search request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("api-key", c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading search response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
		span.RecordError(apiErr)
		span.SetStatus(codes.Error, apiErr.Error())
		return nil, apiErr
	}

	var result searchResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	hits := make([]Hit, 0, len(result.Value))
	for _, doc := range result.Value {
		hits = append(hits, c.toHit(doc))
	}
	span.SetAttributes(attribute.Int("search.hits", len(hits)))

	return &Response{Count: result.Count, Hits: hits}, nil
}

// toHit pulls the score and payload out of a raw index document
func (c *Client) toHit(doc map[string]json.RawMessage) Hit {
	hit := Hit{Payload: emptyPayload}

	if raw, ok := doc["@search.score"]; ok {
		_ = json.Unmarshal(raw, &hit.Score)
	}

	raw, ok := doc[c.payloadField]
	if !ok || string(raw) == "null" {
		return hit
	}

	// Payloads are normally JSON-encoded strings; anything else is passed
	// along as its raw JSON text and decoded downstream.
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		hit.Payload = s
	} else {
		hit.Payload = string(raw)
	}
	return hit
}
