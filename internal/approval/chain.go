package approval

import (
	"context"
	"sort"
	"time"

	"github.com/approvalengine/expense-service/internal"
	expenseDatamodel "github.com/approvalengine/expense-service/internal/core/datamodel/expense"
	"github.com/approvalengine/expense-service/internal/expense"
	"github.com/approvalengine/expense-service/internal/persistence"
	"gorm.io/gorm"
)

// chainEntry is one approver position before sequence renumbering.
type chainEntry struct {
	userID   int64
	roleName string
}

// BuildChain implements expense.ChainBuilder (spec §4.C). It normalizes the
// submitted amount, inserts the expense row, assembles the ordered
// approver list (manager first, then active ApproverConfig rows), and
// persists one ApprovalSlot per entry, all inside a single transaction.
func (s *Service) BuildChain(ctx context.Context, principal internal.Principal, dto expense.CreateExpenseDTO) (*expense.Expense, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	baseCurrency, err := s.companies.GetBaseCurrency(principal.CompanyID)
	if err != nil {
		return nil, err
	}

	amountBase, err := s.normalizer.Convert(ctx, dto.AmountOriginal, dto.CurrencyOriginal, baseCurrency)
	if err != nil {
		return nil, err
	}

	managerID, err := s.users.GetManagerID(principal.UserID)
	if err != nil {
		return nil, err
	}

	activeApprovers, err := s.approvers.ListActive(ctx, principal.CompanyID)
	if err != nil {
		return nil, err
	}

	entries := assembleChain(managerID, activeApprovers)

	var result *expense.Expense

	err = persistence.TxScope(ctx, s.db, func(tx *gorm.DB) error {
		now := time.Now()
		row := &expenseDatamodel.Expense{
			UserID:           principal.UserID,
			CompanyID:        principal.CompanyID,
			AmountBase:       amountBase,
			AmountOriginal:   dto.AmountOriginal,
			CurrencyOriginal: dto.CurrencyOriginal,
			Category:         dto.Category,
			Description:      dto.Description,
			ExpenseDate:      dto.ExpenseDate,
			Status:           expense.StatusPending,
			ReceiptURL:       dto.ReceiptURL,
			SubmittedAt:      now,
		}

		if len(entries) == 0 {
			if principal.Role == internal.RoleAdmin {
				row.Status = expense.StatusApproved
				row.ProcessedAt = &now
			} else {
				warning := "no approvers configured for this company; expense left pending with no approval chain"
				row.ChainWarning = &warning
			}
		}

		if err := tx.Create(row).Error; err != nil {
			return internal.NewInternalError("failed to insert expense", err)
		}

		slots := make([]*Slot, len(entries))
		for i, e := range entries {
			slots[i] = &Slot{
				ExpenseID:  row.ID,
				ApproverID: e.userID,
				Sequence:   i + 1,
				Status:     StatusPending,
			}
		}
		if len(slots) > 0 {
			if err := s.slots.InsertSlots(tx, slots); err != nil {
				return err
			}
		}

		result = expense.FromDataModel(row)
		return nil
	})
	if err != nil {
		if dto.ReceiptURL != nil && s.receipts != nil {
			if cerr := s.receipts.Delete(ctx, *dto.ReceiptURL); cerr != nil {
				s.logger.Error("BuildChain: failed to clean up orphaned receipt", "error", cerr, "url", *dto.ReceiptURL)
			}
		}
		return nil, err
	}
	return result, nil
}

// assembleChain builds the dense, deduplicated approver list: the direct
// manager at sequence 1 if present, then active ApproverConfig rows sorted
// by their configured sequence, skipping any entry whose user equals the
// manager already placed (spec §4.C step 2).
func assembleChain(managerID *int64, active []*Approver) []chainEntry {
	sorted := make([]*Approver, len(active))
	copy(sorted, active)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Sequence < sorted[j].Sequence })

	var entries []chainEntry
	if managerID != nil {
		entries = append(entries, chainEntry{userID: *managerID, roleName: "manager"})
	}
	for _, a := range sorted {
		if managerID != nil && a.UserID == *managerID {
			continue
		}
		entries = append(entries, chainEntry{userID: a.UserID, roleName: a.RoleName})
	}
	return entries
}
