package app_test

import (
	"errors"
	"fmt"
	"testing"

	"flexreviews/internal/app"
	"flexreviews/internal/domain"
)

func TestBuildDashboard_NoData(t *testing.T) {
	if _, err := app.BuildDashboard(nil); !errors.Is(err, domain.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
	if _, err := app.BuildDashboard([]domain.Review{}); !errors.Is(err, domain.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestBuildDashboard_PieBuckets(t *testing.T) {
	ratings := []float64{9, 9, 8, 7, 6, 5, 4, 3, 2, 1}
	reviews := make([]domain.Review, 0, len(ratings))
	for i, r := range ratings {
		reviews = append(reviews, domain.Review{
			ID: ptr(int64(i + 1)), Rating: ptr(r), ListingName: "A",
		})
	}
	d, err := app.BuildDashboard(reviews)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	want := map[string]int{"Excellent": 2, "Good": 2, "Average": 2, "Poor": 4}
	sum := 0
	for _, b := range d.RatingPieData {
		if want[b.Name] != b.Value {
			t.Fatalf("bucket %s = %d, want %d", b.Name, b.Value, want[b.Name])
		}
		sum += b.Value
	}
	if sum != 10 {
		t.Fatalf("bucket counts must sum to 10, got %d", sum)
	}
}

func TestBuildDashboard_PieExcludesOutOfRangeAndNil(t *testing.T) {
	reviews := []domain.Review{
		{ListingName: "A", Rating: ptr(0.5)},
		{ListingName: "A", Rating: ptr(11.0)},
		{ListingName: "A"},
		{ListingName: "A", Rating: ptr(9.5)},
	}
	d, err := app.BuildDashboard(reviews)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(d.RatingPieData) != 1 || d.RatingPieData[0].Name != "Excellent" || d.RatingPieData[0].Value != 1 {
		t.Fatalf("zero buckets must be omitted and outliers excluded: %+v", d.RatingPieData)
	}
}

func TestBuildDashboard_PropertiesByRating(t *testing.T) {
	reviews := []domain.Review{
		{ListingName: "B", Rating: ptr(3.0), ReviewCategory: []domain.CategoryRating{{Category: "cleanliness", Rating: 3}}},
		{ListingName: "A", Rating: ptr(9.0)},
		{ListingName: "B", Rating: ptr(4.0), ReviewCategory: []domain.CategoryRating{{Category: "cleanliness", Rating: 4}}},
		{ListingName: "A", Rating: ptr(10.0)},
	}
	d, err := app.BuildDashboard(reviews)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if d.UniquePropertiesCount != 2 {
		t.Fatalf("uniquePropertiesCount: %d", d.UniquePropertiesCount)
	}
	if len(d.PropertiesByRating) != 2 {
		t.Fatalf("stats: %+v", d.PropertiesByRating)
	}
	a, b := d.PropertiesByRating[0], d.PropertiesByRating[1]
	if a.ListingName != "A" || b.ListingName != "B" {
		t.Fatalf("order must be by averageRating desc: %+v", d.PropertiesByRating)
	}
	if a.AverageRating != 9.5 || b.AverageRating != 3.5 {
		t.Fatalf("averages must be exact means: %v %v", a.AverageRating, b.AverageRating)
	}
	if a.TotalReviews != 2 || b.TotalReviews != 2 {
		t.Fatalf("totals: %d %d", a.TotalReviews, b.TotalReviews)
	}
	if b.LowRatings != 2 || a.LowRatings != 0 {
		t.Fatalf("lowRatings counts category entries <= 6: %d %d", a.LowRatings, b.LowRatings)
	}
}

func TestBuildDashboard_CategoryChartHumanized(t *testing.T) {
	reviews := []domain.Review{
		{ListingName: "A", ReviewCategory: []domain.CategoryRating{
			{Category: "respect_house_rules", Rating: 8},
		}, Rating: ptr(8.0)},
		{ListingName: "A", ReviewCategory: []domain.CategoryRating{
			{Category: "respect_house_rules", Rating: 9},
		}, Rating: ptr(9.0)},
	}
	d, err := app.BuildDashboard(reviews)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(d.CategoryChartData) != 1 {
		t.Fatalf("chart data: %+v", d.CategoryChartData)
	}
	got := d.CategoryChartData[0]
	if got.Category != "Respect House Rules" {
		t.Fatalf("humanized name: %q", got.Category)
	}
	if got.Value != 8.5 {
		t.Fatalf("category mean: %v", got.Value)
	}
}

func TestBuildDashboard_RatingOverTime(t *testing.T) {
	reviews := []domain.Review{
		{ListingName: "A", Rating: ptr(8.0), SubmittedAt: "2024-02-10 09:00:00"},
		{ListingName: "A", Rating: ptr(6.0), SubmittedAt: "2024-02-20 18:00:00"},
		{ListingName: "A", Rating: ptr(9.0), SubmittedAt: "2024-01-05 12:00:00"},
		{ListingName: "A", Rating: ptr(9.0), SubmittedAt: "garbage"}, // skipped
		{ListingName: "A", SubmittedAt: "2024-03-01 12:00:00"},      // nil rating skipped
	}
	d, err := app.BuildDashboard(reviews)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	want := []domain.MonthlyRating{{Month: "2024-01", Value: 9}, {Month: "2024-02", Value: 7}}
	if fmt.Sprint(d.RatingOverTimeData) != fmt.Sprint(want) {
		t.Fatalf("time series: %+v", d.RatingOverTimeData)
	}
}

func TestBuildDashboard_OverallAverage(t *testing.T) {
	reviews := []domain.Review{
		{ListingName: "A", Rating: ptr(9.0)},
		{ListingName: "A"}, // nil excluded from the mean
		{ListingName: "A", Rating: ptr(6.0)},
	}
	d, err := app.BuildDashboard(reviews)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if d.TotalReviews != 3 {
		t.Fatalf("totalReviews: %d", d.TotalReviews)
	}
	if d.OverallAverage != 7.5 {
		t.Fatalf("overallAverage: %v", d.OverallAverage)
	}
}

func TestBuildDashboard_AllNilRatings(t *testing.T) {
	d, err := app.BuildDashboard([]domain.Review{{ListingName: "A"}, {ListingName: "B"}})
	if err != nil {
		t.Fatalf("all-nil ratings must still aggregate: %v", err)
	}
	if d.OverallAverage != 0 || len(d.RatingPieData) != 0 {
		t.Fatalf("expected zero average and no pie buckets: %+v", d)
	}
}
