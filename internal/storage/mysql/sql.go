package mysql

const createApprovalsSQL = `
CREATE TABLE IF NOT EXISTS review_approvals (
  review_id  BIGINT      NOT NULL,
  shown      TINYINT(1)  NOT NULL DEFAULT 0,
  updated_at TIMESTAMP   NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
  PRIMARY KEY (review_id)
)
`

const upsertApprovalSQL = `
INSERT INTO review_approvals (review_id, shown)
VALUES (?, ?)
ON DUPLICATE KEY UPDATE
  shown      = VALUES(shown),
  updated_at = CURRENT_TIMESTAMP
`

const listApprovalsSQL = `
SELECT review_id, shown
FROM review_approvals
`
