package postgres_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/approvalengine/expense-service/internal/company"
	companyDatamodel "github.com/approvalengine/expense-service/internal/core/datamodel/company"
	"github.com/approvalengine/expense-service/internal/company/postgres"
)

func TestCompanyRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "CompanyRepository Suite")
}

var _ = Describe("Repository", func() {
	var (
		db   *gorm.DB
		repo *postgres.Repository
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&companyDatamodel.Company{})).To(Succeed())

		repo = postgres.NewRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	Describe("Create then GetByID", func() {
		It("persists a company and assigns its id", func() {
			c := &company.Company{Name: "Acme Co", Currency: "USD"}

			Expect(repo.Create(c)).To(Succeed())
			Expect(c.ID).To(BeNumerically(">", 0))

			got, err := repo.GetByID(c.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Name).To(Equal("Acme Co"))
			Expect(got.Currency).To(Equal("USD"))
		})
	})

	Describe("GetByID", func() {
		It("returns an error for a missing id", func() {
			_, err := repo.GetByID(99999)
			Expect(err).To(HaveOccurred())
		})
	})
})
