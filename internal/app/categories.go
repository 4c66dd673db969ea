package app

import (
	"sort"

	"flexreviews/internal/domain"
)

// DetectCategories scans a collection and returns the distinct category
// names present, sorted lexicographically. The sorted order keeps filter
// controls and sort-option lists stable across refreshes regardless of
// input order. The vocabulary is built once and shared by the filter, sort,
// and analytics passes.
func DetectCategories(reviews []domain.Review) []string {
	seen := map[string]struct{}{}
	for _, r := range reviews {
		for _, c := range r.ReviewCategory {
			if c.Category == "" {
				continue
			}
			seen[c.Category] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// DefaultCategoryRanges initializes every detected category to the
// unrestricted [0,10] bound.
func DefaultCategoryRanges(categories []string) map[string]domain.RatingRange {
	out := make(map[string]domain.RatingRange, len(categories))
	for _, c := range categories {
		out[c] = domain.FullRange
	}
	return out
}
