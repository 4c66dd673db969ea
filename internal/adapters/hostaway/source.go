package hostaway

import (
	"context"
	_ "embed"
	"encoding/json"

	"github.com/rs/zerolog/log"
)

//go:embed fixture.json
var fixtureJSON []byte

// FixtureReviews returns the bundled raw review dataset. Each call decodes
// afresh so callers get maps they are free to mutate.
func FixtureReviews() ([]map[string]any, error) {
	var out []map[string]any
	if err := json.Unmarshal(fixtureJSON, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Source wraps the API client with the fixture-fallback contract: when the
// client is unconfigured, the call fails, or the result set is empty, it
// substitutes the fixture dataset of the same shape. Downstream code cannot
// tell which source produced the data.
type Source struct {
	client *Client
}

// NewSource accepts a nil client, in which case every fetch serves the
// fixture. That is the sandbox-account mode, where Hostaway returns no
// reviews anyway.
func NewSource(client *Client) *Source { return &Source{client: client} }

func (s *Source) FetchReviews(ctx context.Context) ([]map[string]any, error) {
	if s.client == nil {
		log.Debug().Msg("hostaway client unconfigured; serving fixture reviews")
		return FixtureReviews()
	}
	raws, err := s.client.FetchReviews(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("hostaway fetch failed; falling back to fixture reviews")
		return FixtureReviews()
	}
	if len(raws) == 0 {
		log.Info().Msg("hostaway returned no reviews; falling back to fixture reviews")
		return FixtureReviews()
	}
	return raws, nil
}

func (s *Source) FetchListingReviews(ctx context.Context, listingID int64) ([]map[string]any, error) {
	if s.client == nil {
		return FixtureReviews()
	}
	raws, err := s.client.FetchListingReviews(ctx, listingID)
	if err != nil {
		log.Warn().Int64("listing", listingID).Err(err).
			Msg("hostaway listing fetch failed; falling back to fixture reviews")
		return FixtureReviews()
	}
	return raws, nil
}
