package app

import (
	"context"
	"fmt"

	"flexreviews/internal/domain"
)

// ApprovalService handles the one mutable piece of state: the per-review
// public-display flag.
type ApprovalService struct {
	store domain.ApprovalStore
	cache domain.Cache
}

func NewApprovalService(store domain.ApprovalStore, cache domain.Cache) *ApprovalService {
	return &ApprovalService{store: store, cache: cache}
}

// SetApproval persists the flag and then invalidates the snapshot so the
// next read observes it. The store write comes first: no optimistic update,
// and on failure the cached snapshot is left untouched.
func (s *ApprovalService) SetApproval(ctx context.Context, id int64, shown bool) error {
	if err := s.store.Set(ctx, id, shown); err != nil {
		return fmt.Errorf("approval write for %d: %w", id, err)
	}
	if s.cache != nil {
		_ = s.cache.Del(ctx, SnapshotKey)
	}
	return nil
}

// Approvals exposes the current approval map.
func (s *ApprovalService) Approvals(ctx context.Context) (map[int64]bool, error) {
	return s.store.Get(ctx)
}
