package domain

import "errors"

var (
	// ErrNoData distinguishes "nothing to aggregate" from a real all-zero
	// dataset so consumers can render an empty state.
	ErrNoData = errors.New("no review data")

	ErrNotFound = errors.New("not found")
)
