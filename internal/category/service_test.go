package category_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/approvalengine/expense-service/internal/category"
	categoryDatamodel "github.com/approvalengine/expense-service/internal/core/datamodel/category"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestCategoryService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Category Service Suite")
}

// MockRepository implements category.RepositoryAPI for testing.
type MockRepository struct {
	categories map[int64]map[string]*categoryDatamodel.ExpenseCategory
	shouldFail bool
	failError  error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		categories: make(map[int64]map[string]*categoryDatamodel.ExpenseCategory),
	}
}

func (m *MockRepository) GetAll(companyID int64) ([]*categoryDatamodel.ExpenseCategory, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var result []*categoryDatamodel.ExpenseCategory
	for _, cat := range m.categories[companyID] {
		result = append(result, cat)
	}
	return result, nil
}

func (m *MockRepository) GetByName(companyID int64, name string) (*categoryDatamodel.ExpenseCategory, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	cat, exists := m.categories[companyID][name]
	if !exists {
		return nil, nil
	}
	return cat, nil
}

func (m *MockRepository) Create(cat *categoryDatamodel.ExpenseCategory) error {
	if m.shouldFail {
		return m.failError
	}
	if m.categories[cat.CompanyID] == nil {
		m.categories[cat.CompanyID] = make(map[string]*categoryDatamodel.ExpenseCategory)
	}
	m.categories[cat.CompanyID][cat.Name] = cat
	return nil
}

func (m *MockRepository) SetShouldFail(shouldFail bool, err error) {
	m.shouldFail = shouldFail
	m.failError = err
}

func (m *MockRepository) AddCategory(cat *category.Category) {
	_ = m.Create(category.ToDataModel(cat))
}

const testCompanyID int64 = 1

var _ = Describe("Category Service", func() {
	var (
		mockRepo *MockRepository
		service  *category.Service
		logger   *slog.Logger
	)

	BeforeEach(func() {
		mockRepo = NewMockRepository()
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = category.NewService(mockRepo, logger)
	})

	Describe("GetAllCategories", func() {
		Context("when repository has categories", func() {
			BeforeEach(func() {
				mockRepo.AddCategory(&category.Category{CompanyID: testCompanyID, ID: 1, Name: "makan", Description: "Meals and entertainment", IsActive: true})
				mockRepo.AddCategory(&category.Category{CompanyID: testCompanyID, ID: 2, Name: "perjalanan", Description: "Business travel", IsActive: true})
				mockRepo.AddCategory(&category.Category{CompanyID: testCompanyID, ID: 3, Name: "inactive", Description: "Inactive category", IsActive: false})
			})

			It("should return only active categories", func() {
				categories, err := service.GetAllCategories(testCompanyID)
				Expect(err).NotTo(HaveOccurred())
				Expect(categories).To(HaveLen(2))

				names := make([]string, len(categories))
				for i, cat := range categories {
					names[i] = cat.Name
				}
				Expect(names).To(ConsistOf("makan", "perjalanan"))
			})
		})

		Context("when repository returns error", func() {
			BeforeEach(func() {
				mockRepo.SetShouldFail(true, errors.New("database error"))
			})

			It("should return error", func() {
				categories, err := service.GetAllCategories(testCompanyID)
				Expect(err).To(HaveOccurred())
				Expect(categories).To(BeNil())
			})
		})

		Context("when repository is empty", func() {
			It("should return empty slice", func() {
				categories, err := service.GetAllCategories(testCompanyID)
				Expect(err).NotTo(HaveOccurred())
				Expect(categories).To(HaveLen(0))
			})
		})

		Context("when another company has categories", func() {
			BeforeEach(func() {
				mockRepo.AddCategory(&category.Category{CompanyID: 2, ID: 1, Name: "other-co", IsActive: true})
			})

			It("should not leak categories across companies", func() {
				categories, err := service.GetAllCategories(testCompanyID)
				Expect(err).NotTo(HaveOccurred())
				Expect(categories).To(HaveLen(0))
			})
		})
	})

	Describe("CreateCategory", func() {
		It("should create a new category", func() {
			c, err := service.CreateCategory(testCompanyID, "makan", "Meals")
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Name).To(Equal("makan"))
			Expect(c.CompanyID).To(Equal(testCompanyID))
		})

		It("should return the existing category on duplicate name", func() {
			first, err := service.CreateCategory(testCompanyID, "makan", "Meals")
			Expect(err).NotTo(HaveOccurred())

			second, err := service.CreateCategory(testCompanyID, "makan", "Different description")
			Expect(err).NotTo(HaveOccurred())
			Expect(second.ID).To(Equal(first.ID))
		})
	})
})
