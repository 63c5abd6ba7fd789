package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultPlacesURL = "https://nominatim.openstreetmap.org"

// Place is one ranked result from the place search service.
type Place struct {
	PlaceID     int64   `json:"place_id"`
	DisplayName string  `json:"display_name"`
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	Type        string  `json:"type"`
	Category    string  `json:"category"`
	Importance  float64 `json:"importance"`
}

// PlaceSearcher queries a Nominatim-style service for places matching a
// free-text query.
type PlaceSearcher struct {
	baseURL string
	http    *http.Client
}

// NewPlaceSearcher creates a place search client. An empty baseURL selects
// the public Nominatim instance.
func NewPlaceSearcher(baseURL string) *PlaceSearcher {
	if baseURL == "" {
		baseURL = defaultPlacesURL
	}
	return &PlaceSearcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Search returns up to limit ranked places for the query. An empty query
// returns no results without a network call.
func (p *PlaceSearcher) Search(ctx context.Context, query string, limit int) ([]Place, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	q := url.Values{}
	q.Set("format", "json")
	q.Set("q", query)
	q.Set("limit", fmt.Sprint(limit))
	q.Set("addressdetails", "1")
	q.Set("extratags", "1")

	u := fmt.Sprintf("%s/search?%s", p.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("place search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("place search: unexpected status %d", resp.StatusCode)
	}

	var places []Place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("place search: decode response: %w", err)
	}
	return places, nil
}
