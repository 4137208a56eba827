package approval

import "time"

// ApprovalSlot is the GORM-tagged persistence row for one approver's seat
// in an expense's chain (spec §3).
type ApprovalSlot struct {
	ID         int64      `gorm:"primaryKey"`
	ExpenseID  int64      `gorm:"column:expense_id;not null;index"`
	ApproverID int64      `gorm:"column:approver_id;not null;index"`
	Sequence   int        `gorm:"column:sequence;not null"`
	Status     string     `gorm:"column:status;default:pending;index"`
	Comment    *string    `gorm:"column:comment"`
	DecidedAt  *time.Time `gorm:"column:decided_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (ApprovalSlot) TableName() string {
	return "approval_slots"
}

// ApproverConfig is one row of a company's configured approval roster
// (spec §3, §4.G).
type ApproverConfig struct {
	ID        int64     `gorm:"primaryKey"`
	CompanyID int64     `gorm:"column:company_id;not null;index"`
	UserID    int64     `gorm:"column:user_id;not null;index"`
	RoleName  string    `gorm:"column:role_name;not null"`
	Sequence  int       `gorm:"column:sequence;not null"`
	Active    bool      `gorm:"column:active;default:true;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (ApproverConfig) TableName() string {
	return "approver_configs"
}

// ApprovalRule is a company's quorum/veto rule (spec §3, §4.E). Config is
// stored as JSON in the `config` column and marshalled through the
// tagged-variant approval.RuleConfig type at the domain layer, never as a
// loose map.
type ApprovalRule struct {
	ID        int64     `gorm:"primaryKey"`
	CompanyID int64     `gorm:"column:company_id;not null;index"`
	RuleType  string    `gorm:"column:rule_type;not null;index"`
	Config    string    `gorm:"column:config;type:jsonb;not null"`
	Active    bool      `gorm:"column:active;default:true;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (ApprovalRule) TableName() string {
	return "approval_rules"
}
