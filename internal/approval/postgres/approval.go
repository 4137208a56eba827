// Package postgres implements internal/approval's repository interfaces:
// gorm for the transactional writes the state machine and admin
// configuration need, sqlx for the Query Surface's parameterized joins.
package postgres

import (
	"context"

	"github.com/approvalengine/expense-service/internal"
	"github.com/approvalengine/expense-service/internal/approval"
	approvalDatamodel "github.com/approvalengine/expense-service/internal/core/datamodel/approval"
	"gorm.io/gorm"
)

// SlotRepo implements approval.SlotRepository.
type SlotRepo struct {
	db *gorm.DB
}

func NewSlotRepo(db *gorm.DB) *SlotRepo { return &SlotRepo{db: db} }

func (r *SlotRepo) InsertSlots(tx *gorm.DB, slots []*approval.Slot) error {
	if len(slots) == 0 {
		return nil
	}
	rows := make([]*approvalDatamodel.ApprovalSlot, len(slots))
	for i, s := range slots {
		rows[i] = approval.SlotToDataModel(s)
	}
	if err := tx.Create(&rows).Error; err != nil {
		return internal.NewInternalError("failed to insert approval slots", err)
	}
	for i, row := range rows {
		slots[i].ID = row.ID
		slots[i].CreatedAt = row.CreatedAt
	}
	return nil
}

func (r *SlotRepo) GetSlot(ctx context.Context, slotID int64) (*approval.Slot, error) {
	return r.getSlot(r.db.WithContext(ctx), slotID)
}

func (r *SlotRepo) GetSlotTx(tx *gorm.DB, slotID int64) (*approval.Slot, error) {
	return r.getSlot(tx, slotID)
}

func (r *SlotRepo) getSlot(db *gorm.DB, slotID int64) (*approval.Slot, error) {
	var row approvalDatamodel.ApprovalSlot
	if err := db.First(&row, slotID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.NewNotFoundError("approval slot not found", internal.ErrCodeExpenseNotFound)
		}
		return nil, internal.NewInternalError("failed to load approval slot", err)
	}
	return approval.SlotFromDataModel(&row), nil
}

func (r *SlotRepo) ListSlotsForExpense(ctx context.Context, expenseID int64) ([]*approval.Slot, error) {
	return r.listSlots(r.db.WithContext(ctx), expenseID)
}

func (r *SlotRepo) ListSlotsForExpenseTx(tx *gorm.DB, expenseID int64) ([]*approval.Slot, error) {
	return r.listSlots(tx, expenseID)
}

func (r *SlotRepo) listSlots(db *gorm.DB, expenseID int64) ([]*approval.Slot, error) {
	var rows []*approvalDatamodel.ApprovalSlot
	if err := db.Where("expense_id = ?", expenseID).Order("sequence ASC").Find(&rows).Error; err != nil {
		return nil, internal.NewInternalError("failed to list approval slots", err)
	}
	return approval.SlotsFromDataModel(rows), nil
}

func (r *SlotRepo) UpdateSlot(tx *gorm.DB, slot *approval.Slot) error {
	row := approval.SlotToDataModel(slot)
	if err := tx.Model(&approvalDatamodel.ApprovalSlot{}).Where("id = ?", row.ID).
		Updates(map[string]interface{}{
			"status":     row.Status,
			"comment":    row.Comment,
			"decided_at": row.DecidedAt,
		}).Error; err != nil {
		return internal.NewInternalError("failed to update approval slot", err)
	}
	return nil
}

func (r *SlotRepo) UpdateSlots(tx *gorm.DB, slots []*approval.Slot) error {
	for _, s := range slots {
		if err := r.UpdateSlot(tx, s); err != nil {
			return err
		}
	}
	return nil
}

func (r *SlotRepo) HasPendingSlotForApprover(ctx context.Context, approverID int64) (bool, error) {
	return r.hasPendingSlotForApprover(r.db.WithContext(ctx), approverID)
}

// HasPendingSlotForApproverTx runs the same check against a transaction
// that already holds the roster row's lock, so a concurrent Decide (or
// BuildChain assigning a fresh slot) can't race the removal between the
// check and the deactivating write.
func (r *SlotRepo) HasPendingSlotForApproverTx(tx *gorm.DB, approverID int64) (bool, error) {
	return r.hasPendingSlotForApprover(tx, approverID)
}

func (r *SlotRepo) hasPendingSlotForApprover(db *gorm.DB, approverID int64) (bool, error) {
	var count int64
	if err := db.Model(&approvalDatamodel.ApprovalSlot{}).
		Where("approver_id = ? AND status = ?", approverID, approval.StatusPending).
		Count(&count).Error; err != nil {
		return false, internal.NewInternalError("failed to check pending slots", err)
	}
	return count > 0, nil
}

// ApproverRepo implements approval.ApproverRepository.
type ApproverRepo struct {
	db *gorm.DB
}

func NewApproverRepo(db *gorm.DB) *ApproverRepo { return &ApproverRepo{db: db} }

func (r *ApproverRepo) ListActive(ctx context.Context, companyID int64) ([]*approval.Approver, error) {
	var rows []*approvalDatamodel.ApproverConfig
	if err := r.db.WithContext(ctx).Where("company_id = ? AND active = true", companyID).
		Order("sequence ASC").Find(&rows).Error; err != nil {
		return nil, internal.NewInternalError("failed to list active approvers", err)
	}
	return approval.ApproversFromDataModel(rows), nil
}

func (r *ApproverRepo) ListAll(ctx context.Context, companyID int64) ([]*approval.Approver, error) {
	var rows []*approvalDatamodel.ApproverConfig
	if err := r.db.WithContext(ctx).Where("company_id = ?", companyID).
		Order("sequence ASC").Find(&rows).Error; err != nil {
		return nil, internal.NewInternalError("failed to list approvers", err)
	}
	return approval.ApproversFromDataModel(rows), nil
}

func (r *ApproverRepo) GetByID(ctx context.Context, id int64) (*approval.Approver, error) {
	var row approvalDatamodel.ApproverConfig
	if err := r.db.WithContext(ctx).First(&row, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, internal.NewInternalError("failed to load approver", err)
	}
	return approval.ApproverFromDataModel(&row), nil
}

func (r *ApproverRepo) GetActiveBySequence(ctx context.Context, companyID int64, sequence int) (*approval.Approver, error) {
	var row approvalDatamodel.ApproverConfig
	err := r.db.WithContext(ctx).Where("company_id = ? AND sequence = ? AND active = true", companyID, sequence).
		First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, internal.NewInternalError("failed to look up approver sequence", err)
	}
	return approval.ApproverFromDataModel(&row), nil
}

func (r *ApproverRepo) GetActiveByUserAndRole(ctx context.Context, companyID, userID int64, roleName string) (*approval.Approver, error) {
	var row approvalDatamodel.ApproverConfig
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND user_id = ? AND role_name = ? AND active = true", companyID, userID, roleName).
		First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, internal.NewInternalError("failed to look up duplicate approver", err)
	}
	return approval.ApproverFromDataModel(&row), nil
}

func (r *ApproverRepo) Insert(tx *gorm.DB, a *approval.Approver) error {
	row := approval.ApproverToDataModel(a)
	if err := tx.Create(row).Error; err != nil {
		return internal.NewInternalError("failed to insert approver", err)
	}
	a.ID = row.ID
	a.CreatedAt = row.CreatedAt
	a.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *ApproverRepo) Update(tx *gorm.DB, a *approval.Approver) error {
	row := approval.ApproverToDataModel(a)
	if err := tx.Model(&approvalDatamodel.ApproverConfig{}).Where("id = ?", row.ID).
		Updates(map[string]interface{}{
			"role_name": row.RoleName,
			"sequence":  row.Sequence,
			"active":    row.Active,
		}).Error; err != nil {
		return internal.NewInternalError("failed to update approver", err)
	}
	return nil
}

// RuleRepo implements approval.RuleRepository.
type RuleRepo struct {
	db *gorm.DB
}

func NewRuleRepo(db *gorm.DB) *RuleRepo { return &RuleRepo{db: db} }

func (r *RuleRepo) ListActive(ctx context.Context, companyID int64) ([]*approval.Rule, error) {
	var rows []*approvalDatamodel.ApprovalRule
	if err := r.db.WithContext(ctx).Where("company_id = ? AND active = true", companyID).Find(&rows).Error; err != nil {
		return nil, internal.NewInternalError("failed to list active rules", err)
	}
	return approval.RulesFromDataModel(rows)
}

func (r *RuleRepo) ListAll(ctx context.Context, companyID int64) ([]*approval.Rule, error) {
	var rows []*approvalDatamodel.ApprovalRule
	if err := r.db.WithContext(ctx).Where("company_id = ?", companyID).Find(&rows).Error; err != nil {
		return nil, internal.NewInternalError("failed to list rules", err)
	}
	return approval.RulesFromDataModel(rows)
}

func (r *RuleRepo) DeactivateByType(tx *gorm.DB, companyID int64, ruleType string) error {
	if err := tx.Model(&approvalDatamodel.ApprovalRule{}).
		Where("company_id = ? AND rule_type = ? AND active = true", companyID, ruleType).
		Update("active", false).Error; err != nil {
		return internal.NewInternalError("failed to deactivate prior rule", err)
	}
	return nil
}

func (r *RuleRepo) Insert(tx *gorm.DB, rule *approval.Rule) error {
	row, err := approval.RuleToDataModel(rule)
	if err != nil {
		return err
	}
	if err := tx.Create(row).Error; err != nil {
		return internal.NewInternalError("failed to insert rule", err)
	}
	rule.ID = row.ID
	rule.CreatedAt = row.CreatedAt
	rule.UpdatedAt = row.UpdatedAt
	return nil
}
