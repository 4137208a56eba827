package expense

import (
	"time"

	"github.com/approvalengine/expense-service/internal"
	expenseDatamodel "github.com/approvalengine/expense-service/internal/core/datamodel/expense"
)

// Expense is the business-facing model for one submission (spec §3).
type Expense struct {
	ID               int64      `json:"id"`
	UserID           int64      `json:"user_id"`
	CompanyID        int64      `json:"company_id"`
	AmountBase       float64    `json:"amount_base"`
	AmountOriginal   float64    `json:"amount_original"`
	CurrencyOriginal string     `json:"currency_original"`
	Category         string     `json:"category"`
	Description      string     `json:"description"`
	ExpenseDate      time.Time  `json:"expense_date"`
	Status           string     `json:"status"`
	ReceiptURL       *string    `json:"receipt_url,omitempty"`
	ApprovedCount    int        `json:"approved_count"`
	ChainWarning     *string    `json:"chain_warning,omitempty"`
	SubmittedAt      time.Time  `json:"submitted_at"`
	ProcessedAt      *time.Time `json:"processed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

func (e *Expense) IsTerminal() bool {
	return e.Status == StatusApproved || e.Status == StatusRejected
}

var (
	ErrInvalidAmount   = internal.NewValidationError("amount must be strictly positive", internal.ErrCodeInvalidAmount)
	ErrInvalidCurrency = internal.NewValidationError("currency code must be a 3-letter code", internal.ErrCodeValidationFailed)
	ErrInvalidCategory = internal.NewValidationError("category is required", internal.ErrCodeInvalidCategory)
	ErrInvalidDate     = internal.NewValidationError("expense date is required and cannot be in the future", internal.ErrCodeInvalidDate)
)

func ToDataModel(e *Expense) *expenseDatamodel.Expense {
	return &expenseDatamodel.Expense{
		ID:               e.ID,
		UserID:           e.UserID,
		CompanyID:        e.CompanyID,
		AmountBase:       e.AmountBase,
		AmountOriginal:   e.AmountOriginal,
		CurrencyOriginal: e.CurrencyOriginal,
		Category:         e.Category,
		Description:      e.Description,
		ExpenseDate:      e.ExpenseDate,
		Status:           e.Status,
		ReceiptURL:       e.ReceiptURL,
		ApprovedCount:    e.ApprovedCount,
		ChainWarning:     e.ChainWarning,
		SubmittedAt:      e.SubmittedAt,
		ProcessedAt:      e.ProcessedAt,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

func FromDataModel(e *expenseDatamodel.Expense) *Expense {
	return &Expense{
		ID:               e.ID,
		UserID:           e.UserID,
		CompanyID:        e.CompanyID,
		AmountBase:       e.AmountBase,
		AmountOriginal:   e.AmountOriginal,
		CurrencyOriginal: e.CurrencyOriginal,
		Category:         e.Category,
		Description:      e.Description,
		ExpenseDate:      e.ExpenseDate,
		Status:           e.Status,
		ReceiptURL:       e.ReceiptURL,
		ApprovedCount:    e.ApprovedCount,
		ChainWarning:     e.ChainWarning,
		SubmittedAt:      e.SubmittedAt,
		ProcessedAt:      e.ProcessedAt,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

func FromDataModelSlice(expenses []*expenseDatamodel.Expense) []*Expense {
	result := make([]*Expense, len(expenses))
	for i, e := range expenses {
		result[i] = FromDataModel(e)
	}
	return result
}
