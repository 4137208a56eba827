package company

import (
	"strings"

	"github.com/approvalengine/expense-service/internal"
)

type Repository interface {
	GetByID(companyID int64) (*Company, error)
	Create(c *Company) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(companyID int64) (*Company, error) {
	return s.repo.GetByID(companyID)
}

// GetBaseCurrency implements approval.CompanyLookup.
func (s *Service) GetBaseCurrency(companyID int64) (string, error) {
	c, err := s.repo.GetByID(companyID)
	if err != nil {
		return "", err
	}
	return c.Currency, nil
}

// Create bootstraps a new tenant (admin-only, spec §3 "created by admin
// bootstrap").
func (s *Service) Create(c *Company) error {
	c.Currency = strings.ToUpper(c.Currency)
	if len(c.Currency) != 3 {
		return ErrInvalidCurrency
	}
	if c.Name == "" {
		return internal.NewValidationError("name is required", internal.ErrCodeValidationFailed)
	}
	return s.repo.Create(c)
}
