package app

import (
	"sort"
	"strings"
	"time"

	"flexreviews/internal/domain"
)

var submittedAtLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseSubmittedAt parses the loose date strings the upstream emits. The
// second return reports success; callers that must order regardless treat a
// failure as the Unix epoch, which sorts invalid dates to one extreme.
func parseSubmittedAt(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Unix(0, 0).UTC(), false
	}
	for _, layout := range submittedAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Unix(0, 0).UTC(), false
}

// ParseSortKey decodes the wire form: "date-desc", "rating-asc", or
// "<category>-asc"/"<category>-desc" for any detected category. Only the
// final "-asc"/"-desc" suffix is significant, so category names containing
// a dash stay unambiguous. Anything without a recognizable suffix falls
// back to newest-first.
func ParseSortKey(s string) domain.SortKey {
	dir := domain.Desc
	head := s
	switch {
	case strings.HasSuffix(s, "-asc"):
		dir = domain.Asc
		head = strings.TrimSuffix(s, "-asc")
	case strings.HasSuffix(s, "-desc"):
		head = strings.TrimSuffix(s, "-desc")
	default:
		return domain.SortKey{Kind: domain.SortByDate, Direction: domain.Desc}
	}
	switch head {
	case "date":
		return domain.SortKey{Kind: domain.SortByDate, Direction: dir}
	case "rating":
		return domain.SortKey{Kind: domain.SortByOverallRating, Direction: dir}
	default:
		return domain.SortKey{Kind: domain.SortByCategory, Category: head, Direction: dir}
	}
}

// SortReviews returns a new ordering of the input by the given key. The sort
// is stable, so reviews comparing equal keep their filtered order.
//
// Policy for missing values: an unparseable submittedAt compares as the Unix
// epoch; a nil overall rating compares as 0; a review lacking the sort
// category goes after every review that has it, in both directions.
func SortReviews(reviews []domain.Review, key domain.SortKey) []domain.Review {
	out := make([]domain.Review, len(reviews))
	copy(out, reviews)

	less := func(a, b float64) bool {
		if key.Direction == domain.Asc {
			return a < b
		}
		return a > b
	}

	switch key.Kind {
	case domain.SortByOverallRating:
		sort.SliceStable(out, func(i, j int) bool {
			return less(ratingOrZero(out[i]), ratingOrZero(out[j]))
		})
	case domain.SortByCategory:
		sort.SliceStable(out, func(i, j int) bool {
			vi, oki := out[i].CategoryValue(key.Category)
			vj, okj := out[j].CategoryValue(key.Category)
			switch {
			case oki && okj:
				return less(vi, vj)
			case oki:
				return true // missing category sorts last regardless of direction
			default:
				return false
			}
		})
	default: // SortByDate
		sort.SliceStable(out, func(i, j int) bool {
			ti, _ := parseSubmittedAt(out[i].SubmittedAt)
			tj, _ := parseSubmittedAt(out[j].SubmittedAt)
			if key.Direction == domain.Asc {
				return ti.Before(tj)
			}
			return ti.After(tj)
		})
	}
	return out
}

func ratingOrZero(r domain.Review) float64 {
	if r.Rating == nil {
		return 0
	}
	return *r.Rating
}
