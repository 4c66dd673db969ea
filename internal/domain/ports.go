package domain

import "context"

// ReviewSource delivers raw review records from the upstream booking API
// (or a fixture of the same shape when the API is unavailable).
type ReviewSource interface {
	FetchReviews(ctx context.Context) ([]map[string]any, error)
	FetchListingReviews(ctx context.Context, listingID int64) ([]map[string]any, error)
}

// ApprovalStore owns the public-display flags, keyed by review id.
type ApprovalStore interface {
	Get(ctx context.Context) (map[int64]bool, error)
	Set(ctx context.Context, id int64, shown bool) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// DisplayStatus filters on a review's public-display flag.
type DisplayStatus string

const (
	DisplayAll    DisplayStatus = "all"
	DisplayShown  DisplayStatus = "shown"
	DisplayHidden DisplayStatus = "hidden"
)

// RatingRange is an inclusive [Min, Max] bound on a category rating.
type RatingRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// FullRange is the unrestricted bound; a filter at this value is a no-op.
var FullRange = RatingRange{Min: 0, Max: 10}

// Filter is the compound specification applied over a review collection.
// The zero-value Property/Channel sentinel is "all". All clauses AND.
type Filter struct {
	Property       string
	Channel        string
	DisplayStatus  DisplayStatus
	SearchText     string
	CategoryRanges map[string]RatingRange
}

// SortKind selects what a sort key orders by.
type SortKind int

const (
	SortByDate SortKind = iota
	SortByOverallRating
	SortByCategory
)

type Direction int

const (
	Desc Direction = iota
	Asc
)

// SortKey is the tagged sort selector. Category is set only for
// SortByCategory; the string wire form ("date-desc", "<category>-asc") is
// parsed at the HTTP boundary, never inside the engines.
type SortKey struct {
	Kind      SortKind
	Category  string
	Direction Direction
}

// Analytics read models.

type CategoryAverage struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

type RatingBucket struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type PropertyStats struct {
	ListingName   string  `json:"listingName"`
	TotalReviews  int     `json:"totalReviews"`
	AverageRating float64 `json:"averageRating"`
	LowRatings    int     `json:"lowRatings"`
}

type MonthlyRating struct {
	Month string  `json:"month"`
	Value float64 `json:"value"`
}

// Dashboard is the aggregate computed for the analytics view.
type Dashboard struct {
	TotalReviews          int               `json:"totalReviews"`
	OverallAverage        float64           `json:"overallAverage"`
	UniquePropertiesCount int               `json:"uniquePropertiesCount"`
	CategoryChartData     []CategoryAverage `json:"categoryChartData"`
	RatingPieData         []RatingBucket    `json:"ratingPieData"`
	PropertiesByRating    []PropertyStats   `json:"propertiesByRating"`
	RatingOverTimeData    []MonthlyRating   `json:"ratingOverTimeData"`
}
