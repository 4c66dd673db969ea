package app

import (
	"math"
	"strconv"
	"strings"

	"flexreviews/internal/domain"
)

/********** tiny helpers **********/

// lookupStr returns the string at key or "".
func lookupStr(m map[string]any, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// strOr returns the string at key, or def when absent/not a string.
func strOr(m map[string]any, key, def string) string {
	if s := lookupStr(m, key); s != "" {
		return s
	}
	return def
}

// toFloat: number from float64/int/int64/string like "8,0".
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(n, ",", "."))
		if s == "" {
			return 0, false
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// getInt64: integer at key from float64/int/int64/string.
func getInt64(m map[string]any, key string) *int64 {
	switch v := m[key].(type) {
	case float64:
		x := int64(v)
		return &x
	case int:
		x := int64(v)
		return &x
	case int64:
		x := v
		return &x
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return &n
		}
	}
	return nil
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

/********** categories **********/

// mapCategories coerces the raw reviewCategory value into a clean sequence.
// Anything that is not a sequence becomes empty; entries without a string
// category name or a numeric rating are dropped so every retained entry is
// safe to average downstream. Duplicate category names are kept as-is.
func mapCategories(v any) []domain.CategoryRating {
	raw, ok := v.([]any)
	if !ok {
		return []domain.CategoryRating{}
	}
	out := make([]domain.CategoryRating, 0, len(raw))
	for _, it := range raw {
		entry, ok := it.(map[string]any)
		if !ok {
			continue
		}
		name, ok := entry["category"].(string)
		if !ok || name == "" {
			continue
		}
		rating, ok := toFloat(entry["rating"])
		if !ok {
			continue
		}
		out = append(out, domain.CategoryRating{Category: name, Rating: rating})
	}
	return out
}

/********** review normalizer **********/

// NormalizeReview maps one raw record onto the canonical Review. Malformed
// input never aborts the record; each field degrades to its default
// independently. Pure function of its inputs.
//
// The overall rating is derived: mean of the category ratings rounded to two
// decimals when any exist, else the record's own overall field when it falls
// inside the 0..10 scale, else nil.
func NormalizeReview(raw map[string]any, approvals map[int64]bool) domain.Review {
	rv := domain.Review{
		ID:             getInt64(raw, "id"),
		Type:           strOr(raw, "type", domain.DefaultString),
		Status:         strOr(raw, "status", domain.DefaultString),
		PublicReview:   lookupStr(raw, "publicReview"),
		ReviewCategory: mapCategories(raw["reviewCategory"]),
		SubmittedAt:    lookupStr(raw, "submittedAt"),
		GuestName:      strOr(raw, "guestName", domain.DefaultGuestName),
		ListingName:    strOr(raw, "listingName", domain.DefaultListingName),
	}

	if len(rv.ReviewCategory) > 0 {
		var sum float64
		for _, c := range rv.ReviewCategory {
			sum += c.Rating
		}
		avg := round2(sum / float64(len(rv.ReviewCategory)))
		rv.Rating = &avg
	} else if f, ok := toFloat(raw["rating"]); ok && f >= 0 && f <= 10 {
		// an out-of-range overall rating is as absent as a missing one
		rv.Rating = &f
	}

	if rv.ID != nil {
		rv.DisplayOnWebsite = approvals[*rv.ID]
	}
	return rv
}

// KeepGuestReviews drops every record whose type tag is not guest-authored.
// Host-to-guest reviews never enter the pipeline.
func KeepGuestReviews(raws []map[string]any) []map[string]any {
	out := make([]map[string]any, 0, len(raws))
	for _, r := range raws {
		if lookupStr(r, "type") == domain.GuestToHost {
			out = append(out, r)
		}
	}
	return out
}

// NormalizeAll normalizes a batch against one approval-map read.
func NormalizeAll(raws []map[string]any, approvals map[int64]bool) []domain.Review {
	out := make([]domain.Review, 0, len(raws))
	for _, r := range raws {
		out = append(out, NormalizeReview(r, approvals))
	}
	return out
}
