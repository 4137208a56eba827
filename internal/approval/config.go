package approval

import (
	"context"

	"github.com/approvalengine/expense-service/internal"
	"github.com/approvalengine/expense-service/internal/persistence"
	"gorm.io/gorm"
)

// AddApprover validates the target user and slot, then inserts a new
// active roster row (spec §4.G).
func (s *Service) AddApprover(ctx context.Context, companyID, userID int64, roleName string, sequence int) (*Approver, error) {
	belongs, err := s.users.BelongsToCompany(userID, companyID)
	if err != nil {
		return nil, err
	}
	if !belongs {
		return nil, internal.NewNotFoundError("user not found in company", internal.ErrCodeExpenseNotFound)
	}
	active, err := s.users.IsActive(userID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, internal.NewValidationError("approver must be an active user", internal.ErrCodeValidationFailed)
	}
	isManagerOrAdmin, err := s.users.IsManagerOrAdmin(userID)
	if err != nil {
		return nil, err
	}
	if !isManagerOrAdmin {
		return nil, internal.NewValidationError("approver must have role manager or admin", internal.ErrCodeValidationFailed)
	}

	if existing, err := s.approvers.GetActiveByUserAndRole(ctx, companyID, userID, roleName); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, internal.ErrDuplicateApprover
	}
	if occupant, err := s.approvers.GetActiveBySequence(ctx, companyID, sequence); err != nil {
		return nil, err
	} else if occupant != nil {
		return nil, internal.ErrSequenceOccupied
	}

	approver := &Approver{CompanyID: companyID, UserID: userID, RoleName: roleName, Sequence: sequence, Active: true}
	if err := persistence.TxScope(ctx, s.db, func(tx *gorm.DB) error {
		return s.approvers.Insert(tx, approver)
	}); err != nil {
		return nil, err
	}
	return approver, nil
}

// UpdateApproverSequence swaps the target approver into new_sequence,
// atomically relocating whichever active row currently occupies it
// (spec §4.G).
func (s *Service) UpdateApproverSequence(ctx context.Context, approverID int64, newSequence int) error {
	target, err := s.approvers.GetByID(ctx, approverID)
	if err != nil {
		return err
	}
	if target == nil {
		return internal.NewNotFoundError("approver not found", internal.ErrCodeExpenseNotFound)
	}

	return persistence.TxScope(ctx, s.db, func(tx *gorm.DB) error {
		occupant, err := s.approvers.GetActiveBySequence(ctx, target.CompanyID, newSequence)
		if err != nil {
			return err
		}
		oldSequence := target.Sequence
		target.Sequence = newSequence
		if err := s.approvers.Update(tx, target); err != nil {
			return err
		}
		if occupant != nil && occupant.ID != target.ID {
			occupant.Sequence = oldSequence
			if err := s.approvers.Update(tx, occupant); err != nil {
				return err
			}
		}
		return nil
	})
}

// RemoveApprover soft-deletes an approver row, refusing when the approver
// still holds a pending slot (spec §4.G).
func (s *Service) RemoveApprover(ctx context.Context, approverID int64) error {
	target, err := s.approvers.GetByID(ctx, approverID)
	if err != nil {
		return err
	}
	if target == nil {
		return internal.NewNotFoundError("approver not found", internal.ErrCodeExpenseNotFound)
	}

	return persistence.TxScope(ctx, s.db, func(tx *gorm.DB) error {
		blocked, err := s.slots.HasPendingSlotForApproverTx(tx, target.UserID)
		if err != nil {
			return err
		}
		if blocked {
			return internal.ErrPendingWorkBlocks
		}
		target.Active = false
		return s.approvers.Update(tx, target)
	})
}

// SetApprovalRule validates config against its rule family, deactivates
// any existing active rule of the same type, and inserts the new one, all
// in one transaction (spec §4.G).
func (s *Service) SetApprovalRule(ctx context.Context, companyID int64, ruleType string, config RuleConfig) (*Rule, error) {
	config.Type = ruleType
	if err := config.Validate(); err != nil {
		return nil, err
	}

	rule := &Rule{CompanyID: companyID, RuleType: ruleType, Config: config, Active: true}
	err := persistence.TxScope(ctx, s.db, func(tx *gorm.DB) error {
		if err := s.rules.DeactivateByType(tx, companyID, ruleType); err != nil {
			return err
		}
		return s.rules.Insert(tx, rule)
	})
	if err != nil {
		return nil, err
	}
	return rule, nil
}

// ListApprovers returns every roster row for a company, active or not
// (spec §4.G).
func (s *Service) ListApprovers(ctx context.Context, companyID int64) ([]*Approver, error) {
	return s.approvers.ListAll(ctx, companyID)
}

// ListRules returns every rule row for a company, active or not.
func (s *Service) ListRules(ctx context.Context, companyID int64) ([]*Rule, error) {
	return s.rules.ListAll(ctx, companyID)
}
