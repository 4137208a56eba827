package postgres

import (
	"github.com/approvalengine/expense-service/internal"
	"github.com/approvalengine/expense-service/internal/company"
	companyDatamodel "github.com/approvalengine/expense-service/internal/core/datamodel/company"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByID(companyID int64) (*company.Company, error) {
	var row companyDatamodel.Company
	if err := r.db.First(&row, companyID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.NewNotFoundError("company not found", internal.ErrCodeExpenseNotFound)
		}
		return nil, internal.NewInternalError("failed to load company", err)
	}
	return company.FromDataModel(&row), nil
}

func (r *Repository) Create(c *company.Company) error {
	row := company.ToDataModel(c)
	if err := r.db.Create(row).Error; err != nil {
		return internal.NewInternalError("failed to create company", err)
	}
	c.ID = row.ID
	return nil
}
