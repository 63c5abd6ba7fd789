// Package geocode resolves UK postcodes to coordinates and runs free-text
// place searches against external lookup services.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

const (
	defaultPostcodeURL = "https://api.postcodes.io"
	defaultTimeout     = 10 * time.Second
	cacheSize          = 4096
)

// Coordinate is a resolved latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Client looks up postcodes with a bounded in-process cache. Lookup
// failures of any kind resolve to a nil coordinate rather than an error;
// callers must treat nil as "not plottable" and skip the report.
type Client struct {
	baseURL string
	http    *http.Client
	cache   *lru.Cache
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the postcode service URL (used by tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient creates a geocoding client.
func NewClient(opts ...Option) *Client {
	cache, _ := lru.New(cacheSize)
	c := &Client{
		baseURL: defaultPostcodeURL,
		http:    &http.Client{Timeout: defaultTimeout},
		cache:   cache,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Normalize produces the canonical cache key for a postcode: trimmed and
// upper-cased. Case and surrounding-whitespace variants of the same
// postcode always share a key.
func Normalize(postcode string) string {
	return strings.ToUpper(strings.TrimSpace(postcode))
}

type postcodeResponse struct {
	Status int `json:"status"`
	Result *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"result"`
}

// PostcodeToCoords resolves a postcode to a coordinate, hitting the cache
// first. Returns nil when the postcode is empty, unrecognized by the
// service, or the service cannot be reached.
func (c *Client) PostcodeToCoords(ctx context.Context, postcode string) *Coordinate {
	normalized := Normalize(postcode)
	if normalized == "" {
		return nil
	}

	if v, ok := c.cache.Get(normalized); ok {
		coord := v.(Coordinate)
		return &coord
	}

	u := fmt.Sprintf("%s/postcodes/%s", c.baseURL, url.PathEscape(normalized))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var body postcodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil
	}
	if body.Status != http.StatusOK || body.Result == nil {
		return nil
	}

	coord := Coordinate{Lat: body.Result.Latitude, Lng: body.Result.Longitude}
	c.cache.Add(normalized, coord)
	return &coord
}
