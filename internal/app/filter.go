package app

import (
	"strings"

	"flexreviews/internal/domain"
)

// FilterAll is the sentinel disabling the property and channel clauses.
const FilterAll = "all"

// ApplyFilter returns the subsequence of reviews matching every clause of
// the filter, preserving relative order. All clauses compose by AND and none
// has a side effect, so applying the same filter twice is a no-op.
func ApplyFilter(reviews []domain.Review, f domain.Filter) []domain.Review {
	out := make([]domain.Review, 0, len(reviews))
	for _, r := range reviews {
		if matches(r, f) {
			out = append(out, r)
		}
	}
	return out
}

func matches(r domain.Review, f domain.Filter) bool {
	if f.Property != "" && f.Property != FilterAll && r.ListingName != f.Property {
		return false
	}
	// Only one channel exists today; any other non-"all" value matches nothing.
	if f.Channel != "" && f.Channel != FilterAll && f.Channel != domain.ChannelHostaway {
		return false
	}
	switch f.DisplayStatus {
	case domain.DisplayShown:
		if !r.DisplayOnWebsite {
			return false
		}
	case domain.DisplayHidden:
		if r.DisplayOnWebsite {
			return false
		}
	}
	if q := strings.ToLower(strings.TrimSpace(f.SearchText)); q != "" {
		if !strings.Contains(strings.ToLower(r.PublicReview), q) &&
			!strings.Contains(strings.ToLower(r.GuestName), q) &&
			!strings.Contains(strings.ToLower(r.ListingName), q) {
			return false
		}
	}
	for category, rng := range f.CategoryRanges {
		if !matchesRange(r, category, rng) {
			return false
		}
	}
	return true
}

// matchesRange implements the pass-through law: the full [0,10] bound is a
// no-op, and a review with no categories at all, or without this particular
// category, is never penalized for the missing data.
func matchesRange(r domain.Review, category string, rng domain.RatingRange) bool {
	if rng.Min <= 0 && rng.Max >= 10 {
		return true
	}
	if len(r.ReviewCategory) == 0 {
		return true
	}
	v, ok := r.CategoryValue(category)
	if !ok {
		return true
	}
	return v >= rng.Min && v <= rng.Max
}
