package approval

import (
	"context"
	"time"

	"github.com/approvalengine/expense-service/internal"
	"github.com/approvalengine/expense-service/internal/expense"
)

// ChainRow is one chain position joined with its approver's display name,
// the shape the Query Surface's sqlx reads project (spec §4.F).
type ChainRow struct {
	SlotID       int64      `db:"slot_id"`
	Sequence     int        `db:"sequence"`
	ApproverID   int64      `db:"approver_id"`
	ApproverName string     `db:"approver_name"`
	Status       string     `db:"status"`
	Comment      *string    `db:"comment"`
	DecidedAt    *time.Time `db:"decided_at"`
}

// PendingItem is one row of ListPendingForMe: a slot ready for the
// caller's decision, with enough expense and chain context to render a
// review screen without a second round trip (spec §4.F).
type PendingItem struct {
	SlotID           int64     `db:"slot_id"`
	Sequence         int       `db:"sequence"`
	ExpenseID        int64     `db:"expense_id"`
	AmountBase       float64   `db:"amount_base"`
	AmountOriginal   float64   `db:"amount_original"`
	CurrencyOriginal string    `db:"currency_original"`
	SubmitterID      int64     `db:"submitter_id"`
	SubmitterName    string    `db:"submitter_name"`
	Category         string    `db:"category"`
	Description      string    `db:"description"`
	ExpenseDate      time.Time `db:"expense_date"`
	TotalSlots       int       `db:"total_slots"`
	ApprovedSlots    int       `db:"approved_slots"`
	PriorDecisions   []ChainRow
}

// HistoryResult is GetApprovalHistory's payload: the ordered chain plus
// completion statistics (spec §4.F).
type HistoryResult struct {
	Chain                []ChainRow
	Total                int
	Approved             int
	Rejected             int
	Pending              int
	CompletionPercentage int
}

func chainRowsToSlotViews(rows []ChainRow) []expense.SlotView {
	out := make([]expense.SlotView, len(rows))
	for i, r := range rows {
		out[i] = expense.SlotView{
			SlotID:       r.SlotID,
			Sequence:     r.Sequence,
			ApproverID:   r.ApproverID,
			ApproverName: r.ApproverName,
			Status:       r.Status,
			Comment:      r.Comment,
			DecidedAt:    r.DecidedAt,
		}
	}
	return out
}

// GetChain implements expense.ChainQuerier so internal/expense's
// GetExpense/ListMyExpenses can attach the ordered slot list without
// importing this package.
func (s *Service) GetChain(ctx context.Context, expenseID int64) ([]expense.SlotView, error) {
	rows, err := s.query.GetChainRows(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	return chainRowsToSlotViews(rows), nil
}

// ListPendingForMe returns slots awaiting the caller's decision: assigned
// to them, still pending, on a still-pending expense, and with every
// lower-sequence slot already approved (spec §4.F).
func (s *Service) ListPendingForMe(ctx context.Context, actor internal.Principal) ([]PendingItem, error) {
	return s.query.ListPendingForApprover(ctx, actor.UserID)
}

// GetApprovalHistory returns the full chain plus completion statistics,
// gated by the same access rule as GetExpense (spec §4.F), enforced by
// the caller (internal/expense.Service.GetExpense) before this is
// invoked — this method assumes the access check already passed.
func (s *Service) GetApprovalHistory(ctx context.Context, expenseID int64) (*HistoryResult, error) {
	rows, err := s.query.GetChainRows(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	result := &HistoryResult{Chain: rows, Total: len(rows)}
	for _, r := range rows {
		switch r.Status {
		case StatusApproved:
			result.Approved++
		case StatusRejected:
			result.Rejected++
		default:
			result.Pending++
		}
	}
	if result.Total > 0 {
		result.CompletionPercentage = result.Approved * 100 / result.Total
	}
	return result, nil
}
