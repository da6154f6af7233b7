// Package geocode resolves coordinates to human-readable addresses against
// a Nominatim-style reverse geocoding endpoint. Lookups are best effort:
// every failure degrades to the raw coordinates, never to an error.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"
)

// Client is a reverse-geocoding client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new geocoding client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
}

// Reverse returns a display address for the coordinates. On any failure the
// raw coordinates are returned instead.
func (c *Client) Reverse(ctx context.Context, lat, lng float64) string {
	fallback := fmt.Sprintf("Lat: %.6f, Long: %.6f", lat, lng)

	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", fmt.Sprintf("%f", lat))
	q.Set("lon", fmt.Sprintf("%f", lng))
	reqURL := fmt.Sprintf("%s/reverse?%s", c.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		log.Printf("geocode: failed to build request: %v", err)
		return fallback
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("geocode: reverse lookup failed: %v", err)
		return fallback
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("geocode: reverse lookup returned status %d", resp.StatusCode)
		return fallback
	}

	var body reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		log.Printf("geocode: failed to decode response: %v", err)
		return fallback
	}
	if body.DisplayName == "" {
		return fallback
	}
	return body.DisplayName
}
