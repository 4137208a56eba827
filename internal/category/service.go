package category

import (
	"log/slog"

	categoryDatamodel "github.com/approvalengine/expense-service/internal/core/datamodel/category"
)

// RepositoryAPI persists a company's suggestion-list categories.
type RepositoryAPI interface {
	GetAll(companyID int64) ([]*categoryDatamodel.ExpenseCategory, error)
	GetByName(companyID int64, name string) (*categoryDatamodel.ExpenseCategory, error)
	Create(category *categoryDatamodel.ExpenseCategory) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// GetAllCategories returns companyID's active suggestion list.
func (s *Service) GetAllCategories(companyID int64) ([]CategoryResponse, error) {
	dataCategories, err := s.repo.GetAll(companyID)
	if err != nil {
		s.logger.Error("failed to get categories from repository", "error", err)
		return nil, err
	}

	var responses []CategoryResponse
	for _, dataCategory := range dataCategories {
		domainCategory := FromDataModel(dataCategory)
		if domainCategory.IsActiveCategory() {
			responses = append(responses, domainCategory.ToResponse())
		}
	}

	s.logger.Info("retrieved categories", "company_id", companyID, "count", len(responses))
	return responses, nil
}

// CreateCategory adds a new suggestion, admin-only per the router's RBAC
// gate.
func (s *Service) CreateCategory(companyID int64, name, description string) (*Category, error) {
	existing, err := s.repo.GetByName(companyID, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return FromDataModel(existing), nil
	}

	c := NewCategory(companyID, name, description)
	if err := s.repo.Create(ToDataModel(c)); err != nil {
		return nil, err
	}
	return c, nil
}
