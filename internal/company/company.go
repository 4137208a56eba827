// Package company holds the tenant domain type. Company CRUD itself is
// out of the core's scope (spec §1); this package exists to satisfy the
// narrow CompanyLookup/currency-context dependencies internal/approval
// and internal/expense declare, plus minimal admin bootstrap.
package company

import (
	"time"

	"github.com/approvalengine/expense-service/internal"
	companyDatamodel "github.com/approvalengine/expense-service/internal/core/datamodel/company"
)

// Company is the business-facing tenant model (spec §3).
type Company struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Country   string    `json:"country"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var ErrInvalidCurrency = internal.NewValidationError("currency must be a 3-letter uppercase ISO 4217 code", internal.ErrCodeValidationFailed)

func ToDataModel(c *Company) *companyDatamodel.Company {
	return &companyDatamodel.Company{
		ID:        c.ID,
		Name:      c.Name,
		Country:   c.Country,
		Currency:  c.Currency,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func FromDataModel(c *companyDatamodel.Company) *Company {
	return &Company{
		ID:        c.ID,
		Name:      c.Name,
		Country:   c.Country,
		Currency:  c.Currency,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
