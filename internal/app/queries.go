package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"flexreviews/internal/domain"
)

// SnapshotKey is the cache key holding the current normalized collection.
const SnapshotKey = "reviews:hostaway"

// ReviewService builds and serves the in-memory review snapshot. The
// collection is rebuilt wholesale on every cache miss: fetch raw records,
// keep guest-authored ones, read the approval map once, normalize. The
// pipeline passes (filter, sort, analytics) are pure over that snapshot.
type ReviewService struct {
	src       domain.ReviewSource
	approvals domain.ApprovalStore
	cache     domain.Cache
	ttlSec    int
}

func NewReviewService(src domain.ReviewSource, approvals domain.ApprovalStore, cache domain.Cache, ttlSec int) *ReviewService {
	return &ReviewService{src: src, approvals: approvals, cache: cache, ttlSec: ttlSec}
}

// Reviews returns the current canonical collection, serving from cache when
// warm. A failed approval-map read degrades to "nothing approved" rather
// than failing the whole fetch.
func (s *ReviewService) Reviews(ctx context.Context) ([]domain.Review, error) {
	var cached []domain.Review
	if ok, _ := s.cache.Get(ctx, SnapshotKey, &cached); ok {
		return cached, nil
	}

	raws, err := s.src.FetchReviews(ctx)
	if err != nil {
		return nil, err
	}

	approvals, err := s.approvals.Get(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("approval map read failed; defaulting to hidden")
		approvals = map[int64]bool{}
	}

	out := NormalizeAll(KeepGuestReviews(raws), approvals)

	// copy before caching so callers can't mutate the cached value
	snap := make([]domain.Review, len(out))
	copy(snap, out)
	_ = s.cache.Set(ctx, SnapshotKey, snap, s.ttlSec)
	return out, nil
}

// Query runs the filter and sort engines over the snapshot.
func (s *ReviewService) Query(ctx context.Context, f domain.Filter, key domain.SortKey) ([]domain.Review, error) {
	reviews, err := s.Reviews(ctx)
	if err != nil {
		return nil, err
	}
	return SortReviews(ApplyFilter(reviews, f), key), nil
}

// Categories returns the sorted category vocabulary of the snapshot.
func (s *ReviewService) Categories(ctx context.Context) ([]string, error) {
	reviews, err := s.Reviews(ctx)
	if err != nil {
		return nil, err
	}
	return DetectCategories(reviews), nil
}

// Dashboard aggregates analytics, optionally narrowed to one property.
// Property is the only filter the analytics view honors.
func (s *ReviewService) Dashboard(ctx context.Context, property string) (*domain.Dashboard, error) {
	reviews, err := s.Reviews(ctx)
	if err != nil {
		return nil, err
	}
	if property != "" && property != FilterAll {
		reviews = ApplyFilter(reviews, domain.Filter{Property: property})
	}
	return BuildDashboard(reviews)
}

// PublicReviews returns the approved reviews for one property, newest
// first, for the public property page.
func (s *ReviewService) PublicReviews(ctx context.Context, property string) ([]domain.Review, error) {
	reviews, err := s.Reviews(ctx)
	if err != nil {
		return nil, err
	}
	shown := ApplyFilter(reviews, domain.Filter{Property: property, DisplayStatus: domain.DisplayShown})
	return SortReviews(shown, domain.SortKey{Kind: domain.SortByDate, Direction: domain.Desc}), nil
}
