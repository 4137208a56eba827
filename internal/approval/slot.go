// Package approval implements the Approval Chain Builder, Approval State
// Machine, Rule Evaluator, Query Surface, and Admin Configuration
// components of the core engine.
package approval

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/approvalengine/expense-service/internal"
	approvalDatamodel "github.com/approvalengine/expense-service/internal/core/datamodel/approval"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Slot is the business-facing view of one position in an expense's chain.
type Slot struct {
	ID         int64      `json:"id"`
	ExpenseID  int64      `json:"expense_id"`
	ApproverID int64      `json:"approver_id"`
	Sequence   int        `json:"sequence"`
	Status     string     `json:"status"`
	Comment    *string    `json:"comment,omitempty"`
	DecidedAt  *time.Time `json:"decided_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (s *Slot) IsTerminal() bool {
	return s.Status == StatusApproved || s.Status == StatusRejected
}

func SlotToDataModel(s *Slot) *approvalDatamodel.ApprovalSlot {
	return &approvalDatamodel.ApprovalSlot{
		ID:         s.ID,
		ExpenseID:  s.ExpenseID,
		ApproverID: s.ApproverID,
		Sequence:   s.Sequence,
		Status:     s.Status,
		Comment:    s.Comment,
		DecidedAt:  s.DecidedAt,
		CreatedAt:  s.CreatedAt,
	}
}

func SlotFromDataModel(s *approvalDatamodel.ApprovalSlot) *Slot {
	return &Slot{
		ID:         s.ID,
		ExpenseID:  s.ExpenseID,
		ApproverID: s.ApproverID,
		Sequence:   s.Sequence,
		Status:     s.Status,
		Comment:    s.Comment,
		DecidedAt:  s.DecidedAt,
		CreatedAt:  s.CreatedAt,
	}
}

func SlotsFromDataModel(rows []*approvalDatamodel.ApprovalSlot) []*Slot {
	out := make([]*Slot, len(rows))
	for i, r := range rows {
		out[i] = SlotFromDataModel(r)
	}
	return out
}

// Approver is one row of a company's configured roster (spec §3, §4.G).
type Approver struct {
	ID        int64     `json:"id"`
	CompanyID int64     `json:"company_id"`
	UserID    int64     `json:"user_id"`
	RoleName  string    `json:"role_name"`
	Sequence  int       `json:"sequence"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ApproverToDataModel(a *Approver) *approvalDatamodel.ApproverConfig {
	return &approvalDatamodel.ApproverConfig{
		ID:        a.ID,
		CompanyID: a.CompanyID,
		UserID:    a.UserID,
		RoleName:  a.RoleName,
		Sequence:  a.Sequence,
		Active:    a.Active,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func ApproverFromDataModel(a *approvalDatamodel.ApproverConfig) *Approver {
	return &Approver{
		ID:        a.ID,
		CompanyID: a.CompanyID,
		UserID:    a.UserID,
		RoleName:  a.RoleName,
		Sequence:  a.Sequence,
		Active:    a.Active,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func ApproversFromDataModel(rows []*approvalDatamodel.ApproverConfig) []*Approver {
	out := make([]*Approver, len(rows))
	for i, r := range rows {
		out[i] = ApproverFromDataModel(r)
	}
	return out
}

// Rule families accepted at config time. amount_threshold, category_based,
// and role_based are named in the source but never consulted at evaluation
// time; SetApprovalRule rejects them rather than silently storing dead
// config (spec.md §9 open question, resolved).
const (
	RuleTypePercentage       = "percentage"
	RuleTypeSpecificApprover = "specific_approver"
	RuleTypeHybrid           = "hybrid"
)

// PercentageConfig backs rule_type=percentage. TotalApprovers is stored for
// display only; evaluation always uses the expense's live slot count
// (spec.md §9 open question, resolved in favor of the source's behavior).
type PercentageConfig struct {
	Percentage     int `json:"percentage"`
	TotalApprovers int `json:"total_approvers"`
}

type SpecificApproverConfig struct {
	ApproverID int64 `json:"approver_id"`
}

type HybridConfig struct {
	Percentage        int   `json:"percentage"`
	TotalApprovers    int   `json:"total_approvers"`
	SpecialApproverID int64 `json:"special_approver_id"`
}

// RuleConfig is the tagged-variant replacement for the source's loose
// runtime-typed rule config map (spec.md §9 "Dynamic dispatch patterns").
type RuleConfig struct {
	Type             string                   `json:"type"`
	Percentage       *PercentageConfig        `json:"percentage,omitempty"`
	SpecificApprover *SpecificApproverConfig  `json:"specific_approver,omitempty"`
	Hybrid           *HybridConfig            `json:"hybrid,omitempty"`
}

func (c RuleConfig) Validate() error {
	switch c.Type {
	case RuleTypePercentage:
		if c.Percentage == nil || c.Percentage.Percentage < 1 || c.Percentage.Percentage > 100 || c.Percentage.TotalApprovers < 1 {
			return internal.NewValidationError("percentage config requires percentage in [1,100] and total_approvers >= 1", internal.ErrCodeValidationFailed)
		}
	case RuleTypeSpecificApprover:
		if c.SpecificApprover == nil || c.SpecificApprover.ApproverID <= 0 {
			return internal.NewValidationError("specific_approver config requires approver_id", internal.ErrCodeValidationFailed)
		}
	case RuleTypeHybrid:
		if c.Hybrid == nil || c.Hybrid.Percentage < 1 || c.Hybrid.Percentage > 100 || c.Hybrid.TotalApprovers < 1 || c.Hybrid.SpecialApproverID <= 0 {
			return internal.NewValidationError("hybrid config requires percentage in [1,100], total_approvers >= 1, and special_approver_id", internal.ErrCodeValidationFailed)
		}
	default:
		return internal.NewValidationError("unsupported rule family: only percentage, specific_approver, and hybrid affect decisions", internal.ErrCodeUnsupportedRuleFamily)
	}
	return nil
}

// Rule is the business-facing view of one company's quorum/veto rule.
type Rule struct {
	ID        int64      `json:"id"`
	CompanyID int64      `json:"company_id"`
	RuleType  string     `json:"rule_type"`
	Config    RuleConfig `json:"config"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Description renders a human-readable summary for ListRules (spec §4.G).
func (r *Rule) Description() string {
	switch r.RuleType {
	case RuleTypePercentage:
		if r.Config.Percentage != nil {
			return "terminate once " + strconv.Itoa(r.Config.Percentage.Percentage) + "% of slots are approved"
		}
	case RuleTypeSpecificApprover:
		if r.Config.SpecificApprover != nil {
			return "terminate once approver " + strconv.FormatInt(r.Config.SpecificApprover.ApproverID, 10) + " approves"
		}
	case RuleTypeHybrid:
		if r.Config.Hybrid != nil {
			return "terminate once " + strconv.Itoa(r.Config.Hybrid.Percentage) + "% approved AND approver " + strconv.FormatInt(r.Config.Hybrid.SpecialApproverID, 10) + " approves"
		}
	}
	return r.RuleType
}

func RuleToDataModel(r *Rule) (*approvalDatamodel.ApprovalRule, error) {
	raw, err := json.Marshal(r.Config)
	if err != nil {
		return nil, internal.NewInternalError("failed to marshal rule config", err)
	}
	return &approvalDatamodel.ApprovalRule{
		ID:        r.ID,
		CompanyID: r.CompanyID,
		RuleType:  r.RuleType,
		Config:    string(raw),
		Active:    r.Active,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

func RuleFromDataModel(r *approvalDatamodel.ApprovalRule) (*Rule, error) {
	var cfg RuleConfig
	if err := json.Unmarshal([]byte(r.Config), &cfg); err != nil {
		return nil, internal.NewInternalError("failed to unmarshal rule config", err)
	}
	return &Rule{
		ID:        r.ID,
		CompanyID: r.CompanyID,
		RuleType:  r.RuleType,
		Config:    cfg,
		Active:    r.Active,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

func RulesFromDataModel(rows []*approvalDatamodel.ApprovalRule) ([]*Rule, error) {
	out := make([]*Rule, 0, len(rows))
	for _, r := range rows {
		rule, err := RuleFromDataModel(r)
		if err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	return out, nil
}
