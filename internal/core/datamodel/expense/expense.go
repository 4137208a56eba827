package expense

import "time"

// Expense is the GORM-tagged persistence row (spec §3, §6 `expenses` table).
type Expense struct {
	ID               int64      `gorm:"primaryKey"`
	UserID           int64      `gorm:"column:user_id;not null;index"`
	CompanyID        int64      `gorm:"column:company_id;not null;index"`
	AmountBase       float64    `gorm:"column:amount;not null"`
	AmountOriginal   float64    `gorm:"column:original_amount;not null"`
	CurrencyOriginal string     `gorm:"column:original_currency;size:3;not null"`
	Category         string     `gorm:"column:category"`
	Description      string     `gorm:"column:description"`
	ExpenseDate      time.Time  `gorm:"column:date;type:date"`
	Status           string     `gorm:"column:status;default:pending;index"`
	ReceiptURL       *string    `gorm:"column:receipt_url"`
	ApprovedCount    int        `gorm:"column:approved_count;default:0"`
	ChainWarning     *string    `gorm:"column:chain_warning"`
	SubmittedAt      time.Time  `gorm:"column:submitted_at"`
	ProcessedAt      *time.Time `gorm:"column:processed_at"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Expense) TableName() string {
	return "expenses"
}

// ExpenseCategory is kept from the teacher. It carries no company id and
// nothing in the service reads or writes it; the company-scoped suggestion
// list is internal/core/datamodel/category.ExpenseCategory.
type ExpenseCategory struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Description string    `gorm:"column:description"`
	IsActive    bool      `gorm:"column:is_active;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;default:now()"`
}

func (ExpenseCategory) TableName() string {
	return "expense_categories"
}
