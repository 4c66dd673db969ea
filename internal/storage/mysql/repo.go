package mysql

import (
	"context"
	"database/sql"
)

// ApprovalRepo is the MySQL-backed approval store, for deployments where
// the flat file is not durable enough (multiple API replicas sharing one
// database).
type ApprovalRepo struct{ db *sql.DB }

func New(db *sql.DB) *ApprovalRepo { return &ApprovalRepo{db: db} }

// Migrate creates the approvals table when it does not exist yet.
func (r *ApprovalRepo) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, createApprovalsSQL)
	return err
}

func (r *ApprovalRepo) Get(ctx context.Context) (map[int64]bool, error) {
	rows, err := r.db.QueryContext(ctx, listApprovalsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[int64]bool{}
	for rows.Next() {
		var id int64
		var shown bool
		if err := rows.Scan(&id, &shown); err != nil {
			return nil, err
		}
		out[id] = shown
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ApprovalRepo) Set(ctx context.Context, id int64, shown bool) error {
	_, err := r.db.ExecContext(ctx, upsertApprovalSQL, id, shown)
	return err
}
