package postgres

import (
	"context"

	"github.com/approvalengine/expense-service/internal"
	"github.com/approvalengine/expense-service/internal/approval"
	"github.com/approvalengine/expense-service/internal/persistence"
	"github.com/jmoiron/sqlx"
)

// QueryRepo implements approval.QueryRepository: parameterized sqlx reads
// for the Query Surface, kept separate from the gorm-backed write path
// (spec §4.F).
type QueryRepo struct {
	db *sqlx.DB
}

func NewQueryRepo(db *sqlx.DB) *QueryRepo { return &QueryRepo{db: db} }

const chainRowsQuery = `
SELECT
  s.id AS slot_id,
  s.sequence AS sequence,
  s.approver_id AS approver_id,
  u.name AS approver_name,
  s.status AS status,
  s.comment AS comment,
  s.decided_at AS decided_at
FROM approval_slots s
JOIN users u ON u.id = s.approver_id
WHERE s.expense_id = $1
ORDER BY s.sequence ASC
`

func (r *QueryRepo) GetChainRows(ctx context.Context, expenseID int64) ([]approval.ChainRow, error) {
	var rows []approval.ChainRow
	if err := persistence.QueryMany(ctx, r.db, &rows, chainRowsQuery, expenseID); err != nil {
		return nil, internal.NewInternalError("failed to load approval chain", err)
	}
	return rows, nil
}

// pendingForApproverQuery selects slots assigned to the caller that are
// still pending, on an expense that is still pending, with every
// lower-sequence slot on the same expense already approved (spec §4.F
// "ready for my decision").
const pendingForApproverQuery = `
SELECT
  s.id AS slot_id,
  s.sequence AS sequence,
  e.id AS expense_id,
  e.amount AS amount_base,
  e.original_amount AS amount_original,
  e.original_currency AS currency_original,
  e.user_id AS submitter_id,
  u.name AS submitter_name,
  e.category AS category,
  e.description AS description,
  e.date AS expense_date,
  (SELECT count(*) FROM approval_slots t WHERE t.expense_id = e.id) AS total_slots,
  (SELECT count(*) FROM approval_slots t WHERE t.expense_id = e.id AND t.status = 'approved') AS approved_slots
FROM approval_slots s
JOIN expenses e ON e.id = s.expense_id
JOIN users u ON u.id = e.user_id
WHERE s.approver_id = $1
  AND s.status = 'pending'
  AND e.status = 'pending'
  AND NOT EXISTS (
    SELECT 1 FROM approval_slots t
    WHERE t.expense_id = s.expense_id
      AND t.sequence < s.sequence
      AND t.status <> 'approved'
  )
ORDER BY e.date ASC, s.sequence ASC
`

func (r *QueryRepo) ListPendingForApprover(ctx context.Context, approverID int64) ([]approval.PendingItem, error) {
	var rows []approval.PendingItem
	if err := persistence.QueryMany(ctx, r.db, &rows, pendingForApproverQuery, approverID); err != nil {
		return nil, internal.NewInternalError("failed to load pending approvals", err)
	}
	for i := range rows {
		chain, err := r.GetChainRows(ctx, rows[i].ExpenseID)
		if err != nil {
			return nil, err
		}
		prior := make([]approval.ChainRow, 0, len(chain))
		for _, c := range chain {
			if c.Sequence < rows[i].Sequence {
				prior = append(prior, c)
			}
		}
		rows[i].PriorDecisions = prior
	}
	return rows, nil
}
