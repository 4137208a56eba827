package approval

import (
	"context"
	"time"

	"github.com/approvalengine/expense-service/internal"
	expenseDatamodel "github.com/approvalengine/expense-service/internal/core/datamodel/expense"
	"github.com/approvalengine/expense-service/internal/core/events"
	"github.com/approvalengine/expense-service/internal/expense"
	"github.com/approvalengine/expense-service/internal/persistence"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	VerdictApprove = "approve"
	VerdictReject  = "reject"
)

// DecisionResult is returned by Decide after commit (spec §4.D).
type DecisionResult struct {
	Expense      *expense.Expense
	Terminal     bool
	NextSequence *int
}

// Decide transitions one slot and, depending on the verdict and the Rule
// Evaluator, potentially the owning expense (spec §4.D). The expense row
// is locked with SELECT ... FOR UPDATE for the duration of the
// transaction, serializing concurrent deciders on the same expense
// (spec §5) in place of an explicit pg_advisory_lock call.
func (s *Service) Decide(ctx context.Context, actor internal.Principal, slotID int64, verdict, comment string) (*DecisionResult, error) {
	if verdict != VerdictApprove && verdict != VerdictReject {
		return nil, internal.NewValidationError("verdict must be approve or reject", internal.ErrCodeValidationFailed)
	}
	if verdict == VerdictReject && comment == "" {
		return nil, internal.ErrCommentRequired
	}

	var result *DecisionResult

	err := persistence.TxScope(ctx, s.db, func(tx *gorm.DB) error {
		slot, err := s.slots.GetSlotTx(tx, slotID)
		if err != nil {
			return err
		}
		if slot.ApproverID != actor.UserID {
			return internal.ErrNotAssignedApprover
		}
		if slot.Status != StatusPending {
			return internal.ErrSlotAlreadyDecided
		}

		lockedTx := tx
		if tx.Dialector.Name() != "sqlite" {
			// SQLite has no row-level locking syntax; its single-writer
			// model already serializes the transaction this runs inside,
			// which is enough for the in-memory test suite.
			lockedTx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var row expenseDatamodel.Expense
		if err := lockedTx.First(&row, slot.ExpenseID).Error; err != nil {
			return internal.NewInternalError("failed to lock expense row", err)
		}
		if row.CompanyID != actor.CompanyID {
			return internal.NewNotFoundError("approval slot not found", internal.ErrCodeExpenseNotFound)
		}
		if row.Status != expense.StatusPending {
			return internal.ErrExpenseTerminated
		}

		allSlots, err := s.slots.ListSlotsForExpenseTx(tx, slot.ExpenseID)
		if err != nil {
			return err
		}

		if verdict == VerdictApprove {
			for _, sl := range allSlots {
				if sl.Sequence < slot.Sequence && sl.Status != StatusApproved {
					return internal.NewOutOfOrderApprovalError(sl.Sequence)
				}
			}
			return s.applyApprove(tx, ctx, actor, &row, allSlots, slot, comment, &result)
		}
		return s.applyReject(tx, &row, allSlots, slot, comment, &result)
	})
	if err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		audit := events.NewApprovalAuditEvent(result.Expense.ID, slotID, actor.UserID, verdict, comment, result.Terminal)
		s.eventBus.Publish(ctx, audit)

		if result.Terminal && verdict == VerdictApprove {
			amountMinor := int64(result.Expense.AmountBase*100 + 0.5)
			approved := events.NewExpenseApprovedEvent(result.Expense.ID, amountMinor, result.Expense.UserID, result.Expense.CurrencyOriginal)
			s.eventBus.Publish(ctx, approved)
		}
	}

	return result, nil
}

func (s *Service) applyReject(tx *gorm.DB, row *expenseDatamodel.Expense, allSlots []*Slot, decided *Slot, comment string, out **DecisionResult) error {
	now := time.Now()
	c := comment
	decided.Status = StatusRejected
	decided.Comment = &c
	decided.DecidedAt = &now
	if err := s.slots.UpdateSlot(tx, decided); err != nil {
		return err
	}

	cascadeComment := "Rejected due to prior rejection in approval chain"
	var cascaded []*Slot
	for _, sl := range allSlots {
		if sl.ID == decided.ID || sl.Status != StatusPending {
			continue
		}
		sl.Status = StatusRejected
		sl.Comment = &cascadeComment
		sl.DecidedAt = &now
		cascaded = append(cascaded, sl)
	}
	if len(cascaded) > 0 {
		if err := s.slots.UpdateSlots(tx, cascaded); err != nil {
			return err
		}
	}

	if err := tx.Model(&expenseDatamodel.Expense{}).Where("id = ?", row.ID).
		Updates(map[string]interface{}{"status": expense.StatusRejected, "processed_at": now}).Error; err != nil {
		return internal.NewInternalError("failed to update expense status", err)
	}
	row.Status = expense.StatusRejected
	row.ProcessedAt = &now

	*out = &DecisionResult{Expense: expense.FromDataModel(row), Terminal: true}
	return nil
}

func (s *Service) applyApprove(tx *gorm.DB, ctx context.Context, actor internal.Principal, row *expenseDatamodel.Expense, allSlots []*Slot, decided *Slot, comment string, out **DecisionResult) error {
	now := time.Now()
	if comment != "" {
		c := comment
		decided.Comment = &c
	}
	decided.Status = StatusApproved
	decided.DecidedAt = &now
	if err := s.slots.UpdateSlot(tx, decided); err != nil {
		return err
	}

	approvedCount := 0
	allApproved := true
	for _, sl := range allSlots {
		if sl.ID == decided.ID {
			sl.Status, sl.Comment, sl.DecidedAt = decided.Status, decided.Comment, decided.DecidedAt
		}
		if sl.Status == StatusApproved {
			approvedCount++
		} else {
			allApproved = false
		}
	}

	rules, err := s.rules.ListActive(ctx, actor.CompanyID)
	if err != nil {
		return err
	}
	outcome := Evaluate(allSlots, rules)

	terminal := outcome == TerminateApproved || allApproved
	updates := map[string]interface{}{"approved_count": approvedCount}
	if terminal {
		updates["status"] = expense.StatusApproved
		updates["processed_at"] = now
	}
	if err := tx.Model(&expenseDatamodel.Expense{}).Where("id = ?", row.ID).Updates(updates).Error; err != nil {
		return internal.NewInternalError("failed to update expense", err)
	}
	row.ApprovedCount = approvedCount
	if terminal {
		row.Status = expense.StatusApproved
		row.ProcessedAt = &now
	}

	var next *int
	if !terminal {
		for _, sl := range allSlots {
			if sl.Status == StatusPending {
				seq := sl.Sequence
				next = &seq
				break
			}
		}
	}
	*out = &DecisionResult{Expense: expense.FromDataModel(row), Terminal: terminal, NextSequence: next}
	return nil
}
