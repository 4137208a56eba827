package expense

import "time"

// CreateExpenseDTO is the submission payload for the Approval Chain Builder
// (spec §4.C). AmountOriginal/CurrencyOriginal are preserved verbatim;
// normalization to the company's base currency happens in the service.
type CreateExpenseDTO struct {
	AmountOriginal   float64   `json:"amount_original" validate:"required,gt=0"`
	CurrencyOriginal string    `json:"currency_original" validate:"required,len=3"`
	Description      string    `json:"description"`
	Category         string    `json:"category" validate:"required"`
	ExpenseDate       time.Time `json:"expense_date" validate:"required"`
	ReceiptURL        *string   `json:"receipt_url,omitempty"`
}

func (dto CreateExpenseDTO) Validate() error {
	if dto.AmountOriginal <= 0 {
		return ErrInvalidAmount
	}
	if len(dto.CurrencyOriginal) != 3 {
		return ErrInvalidCurrency
	}
	if dto.Category == "" {
		return ErrInvalidCategory
	}
	if dto.ExpenseDate.IsZero() {
		return ErrInvalidDate
	}
	if dto.ExpenseDate.After(time.Now()) {
		return ErrInvalidDate
	}
	return nil
}

// ListFilter captures the Query Surface's pagination and filter parameters
// (spec §4.F).
type ListFilter struct {
	Page      int
	Limit     int
	Status    string
	Category  string
	DateFrom  *time.Time
	DateTo    *time.Time
}
