package approval

// DecideDTO is the approve/reject request body (spec §6).
type DecideDTO struct {
	Comment string `json:"comments,omitempty"`
}

// AddApproverDTO is POST /config/approvers' body (spec §4.G).
type AddApproverDTO struct {
	UserID   int64  `json:"user_id" validate:"required"`
	RoleName string `json:"role_name" validate:"required"`
	Sequence int    `json:"sequence" validate:"required,min=1"`
}

// UpdateSequenceDTO is the PUT /config/approvers/{id} body.
type UpdateSequenceDTO struct {
	Sequence int `json:"sequence" validate:"required,min=1"`
}

// SetRuleDTO is POST /config/rules' body. Exactly one of the variant
// fields must be set, matching RuleType.
type SetRuleDTO struct {
	RuleType         string                  `json:"rule_type" validate:"required,oneof=percentage specific_approver hybrid"`
	Percentage       *PercentageConfig       `json:"percentage,omitempty"`
	SpecificApprover *SpecificApproverConfig `json:"specific_approver,omitempty"`
	Hybrid           *HybridConfig           `json:"hybrid,omitempty"`
}

func (dto SetRuleDTO) ToRuleConfig() RuleConfig {
	return RuleConfig{
		Type:             dto.RuleType,
		Percentage:       dto.Percentage,
		SpecificApprover: dto.SpecificApprover,
		Hybrid:           dto.Hybrid,
	}
}
