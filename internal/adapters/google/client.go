// internal/adapters/google/client.go
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"flexreviews/internal/adapters/observability"
)

// Client is a thin proxy over the Google Places web service. It is a
// parallel feature: nothing in the review pipeline consumes its output.
type Client struct {
	base string
	key  string
	hc   *http.Client
	rl   *rate.Limiter
}

var ErrNoResults = errors.New("google: no results")

func New(base, key string, rps int) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("google API key is required")
	}
	if base == "" {
		base = "https://maps.googleapis.com/maps/api/place"
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimSuffix(base, "/"),
		key:  key,
		hc:   &http.Client{Timeout: 15 * time.Second},
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// Place is the trimmed search result surfaced to the UI autocomplete.
type Place struct {
	PlaceID          string  `json:"placeId"`
	Name             string  `json:"name"`
	Address          string  `json:"address"`
	Rating           float64 `json:"rating"`
	UserRatingsTotal int     `json:"userRatingsTotal"`
}

func (c *Client) Search(ctx context.Context, query string) ([]Place, error) {
	var body struct {
		Status  string `json:"status"`
		Results []struct {
			PlaceID          string  `json:"place_id"`
			Name             string  `json:"name"`
			FormattedAddress string  `json:"formatted_address"`
			Rating           float64 `json:"rating"`
			UserRatingsTotal int     `json:"user_ratings_total"`
		} `json:"results"`
	}
	params := url.Values{"query": {query}}
	if err := c.get(ctx, "/textsearch/json", params, &body); err != nil {
		return nil, err
	}
	if err := checkStatus(body.Status); err != nil {
		return nil, err
	}
	out := make([]Place, 0, len(body.Results))
	for _, r := range body.Results {
		out = append(out, Place{
			PlaceID:          r.PlaceID,
			Name:             r.Name,
			Address:          r.FormattedAddress,
			Rating:           r.Rating,
			UserRatingsTotal: r.UserRatingsTotal,
		})
	}
	return out, nil
}

// Details returns the raw place details payload for the given place id,
// limited to the fields the dashboard shows.
func (c *Client) Details(ctx context.Context, placeID string) (map[string]any, error) {
	var body struct {
		Status string         `json:"status"`
		Result map[string]any `json:"result"`
	}
	params := url.Values{
		"place_id": {placeID},
		"fields":   {"name,formatted_address,rating,user_ratings_total,reviews,url"},
	}
	if err := c.get(ctx, "/details/json", params, &body); err != nil {
		return nil, err
	}
	if err := checkStatus(body.Status); err != nil {
		return nil, err
	}
	return body.Result, nil
}

// Reviews extracts the raw review objects from the place details.
func (c *Client) Reviews(ctx context.Context, placeID string) (placeName string, reviews []map[string]any, err error) {
	details, err := c.Details(ctx, placeID)
	if err != nil {
		return "", nil, err
	}
	placeName, _ = details["name"].(string)
	raw, _ := details["reviews"].([]any)
	for _, it := range raw {
		if m, ok := it.(map[string]any); ok {
			reviews = append(reviews, m)
		}
	}
	return placeName, reviews, nil
}

func checkStatus(status string) error {
	switch status {
	case "OK":
		return nil
	case "ZERO_RESULTS":
		return ErrNoResults
	default:
		return fmt.Errorf("google: status %q", status)
	}
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}
	params.Set("key", c.key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	observability.ObserveExternal("google", path, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
