package expense

import "time"

// SlotView is the read-only projection of one chain position returned by
// internal/approval's Query Surface methods (spec §4.F). It carries
// everything ListMyExpenses/GetExpense need to render a chain without
// this package importing internal/approval's domain types.
type SlotView struct {
	SlotID       int64      `json:"slot_id"`
	Sequence     int        `json:"sequence"`
	ApproverID   int64      `json:"approver_id"`
	ApproverName string     `json:"approver_name"`
	Status       string     `json:"status"`
	Comment      *string    `json:"comment,omitempty"`
	DecidedAt    *time.Time `json:"decided_at,omitempty"`
}

// ExpenseWithChain is one listing row enriched with its ordered chain
// (spec §4.F ListMyExpenses/ListCompanyExpenses).
type ExpenseWithChain struct {
	*Expense
	Chain []SlotView `json:"chain"`
}
