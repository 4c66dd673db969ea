package app

import (
	"sort"
	"strings"
	"unicode"

	"flexreviews/internal/domain"
)

// Pie bucket thresholds over the 0–10 overall rating. Fractional ratings
// land in the bucket whose threshold they meet: Excellent ≥9, Good ≥7,
// Average ≥5, Poor ≥1. Ratings outside [1,10] and nil ratings are counted
// in no bucket.
var pieBuckets = []struct {
	Name string
	Min  float64
}{
	{"Excellent", 9},
	{"Good", 7},
	{"Average", 5},
	{"Poor", 1},
}

// lowRatingCeiling: category entries at or below this count as low.
const lowRatingCeiling = 6

// BuildDashboard computes the analytics aggregate over a collection that has
// already been narrowed to the selected property (the only filter analytics
// honors). An empty collection returns domain.ErrNoData so the caller can
// render an empty state distinctly from a real all-zero dataset.
func BuildDashboard(reviews []domain.Review) (*domain.Dashboard, error) {
	if len(reviews) == 0 {
		return nil, domain.ErrNoData
	}

	d := &domain.Dashboard{TotalReviews: len(reviews)}

	// Overall average over non-nil ratings.
	var ratedSum float64
	var ratedN int
	for _, r := range reviews {
		if r.Rating != nil {
			ratedSum += *r.Rating
			ratedN++
		}
	}
	if ratedN > 0 {
		d.OverallAverage = round2(ratedSum / float64(ratedN))
	}

	// Per-category averages across reviews that have the category; names
	// are humanized for chart axes.
	for _, category := range DetectCategories(reviews) {
		var sum float64
		var n int
		for _, r := range reviews {
			if v, ok := r.CategoryValue(category); ok {
				sum += v
				n++
			}
		}
		avg := 0.0
		if n > 0 {
			avg = round2(sum / float64(n))
		}
		d.CategoryChartData = append(d.CategoryChartData, domain.CategoryAverage{
			Category: humanizeCategory(category),
			Value:    avg,
		})
	}

	// Rating distribution; zero-count buckets are omitted.
	counts := make([]int, len(pieBuckets))
	for _, r := range reviews {
		if r.Rating == nil || *r.Rating < 1 || *r.Rating > 10 {
			continue
		}
		for i, b := range pieBuckets {
			if *r.Rating >= b.Min {
				counts[i]++
				break
			}
		}
	}
	for i, b := range pieBuckets {
		if counts[i] > 0 {
			d.RatingPieData = append(d.RatingPieData, domain.RatingBucket{Name: b.Name, Value: counts[i]})
		}
	}

	d.PropertiesByRating = propertiesByRating(reviews)
	d.RatingOverTimeData = ratingOverTime(reviews)
	d.UniquePropertiesCount = len(d.PropertiesByRating)
	return d, nil
}

func propertiesByRating(reviews []domain.Review) []domain.PropertyStats {
	type acc struct {
		total      int
		ratedSum   float64
		ratedN     int
		lowRatings int
	}
	byListing := map[string]*acc{}
	for _, r := range reviews {
		a, ok := byListing[r.ListingName]
		if !ok {
			a = &acc{}
			byListing[r.ListingName] = a
		}
		a.total++
		if r.Rating != nil {
			a.ratedSum += *r.Rating
			a.ratedN++
		}
		for _, c := range r.ReviewCategory {
			if c.Rating <= lowRatingCeiling {
				a.lowRatings++
			}
		}
	}

	out := make([]domain.PropertyStats, 0, len(byListing))
	for name, a := range byListing {
		avg := 0.0
		if a.ratedN > 0 {
			avg = round2(a.ratedSum / float64(a.ratedN))
		}
		out = append(out, domain.PropertyStats{
			ListingName:   name,
			TotalReviews:  a.total,
			AverageRating: avg,
			LowRatings:    a.lowRatings,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AverageRating != out[j].AverageRating {
			return out[i].AverageRating > out[j].AverageRating
		}
		return out[i].ListingName < out[j].ListingName
	})
	return out
}

// ratingOverTime buckets rated reviews with a parseable submittedAt by
// calendar month (UTC) and averages each bucket, oldest first.
func ratingOverTime(reviews []domain.Review) []domain.MonthlyRating {
	type acc struct {
		sum float64
		n   int
	}
	byMonth := map[string]*acc{}
	for _, r := range reviews {
		if r.Rating == nil {
			continue
		}
		t, ok := parseSubmittedAt(r.SubmittedAt)
		if !ok {
			continue
		}
		key := t.Format("2006-01")
		a, found := byMonth[key]
		if !found {
			a = &acc{}
			byMonth[key] = a
		}
		a.sum += *r.Rating
		a.n++
	}

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	out := make([]domain.MonthlyRating, 0, len(months))
	for _, m := range months {
		a := byMonth[m]
		out = append(out, domain.MonthlyRating{Month: m, Value: round2(a.sum / float64(a.n))})
	}
	return out
}

// humanizeCategory turns "respect_house_rules" into "Respect House Rules".
func humanizeCategory(name string) string {
	words := strings.Fields(strings.ReplaceAll(name, "_", " "))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
