package category_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/approvalengine/expense-service/internal"
	"github.com/approvalengine/expense-service/internal/category"
	categoryPostgres "github.com/approvalengine/expense-service/internal/category/postgres"
	categoryDatamodel "github.com/approvalengine/expense-service/internal/core/datamodel/category"
	"github.com/approvalengine/expense-service/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ = Describe("Category Handler Integration", func() {
	var (
		db      *gorm.DB
		repo    category.RepositoryAPI
		service *category.Service
		handler *category.Handler
		slogger *slog.Logger
	)

	BeforeEach(func() {
		var err error
		slogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&categoryDatamodel.ExpenseCategory{})
		Expect(err).NotTo(HaveOccurred())

		repo = categoryPostgres.NewCategoryRepository(db)
		service = category.NewService(repo, slogger)
		baseHandler := &transport.BaseHandler{Logger: slogger}
		handler = category.NewHandler(baseHandler, service)

		for _, cat := range []*category.Category{
			{CompanyID: testCompanyID, Name: "makan", Description: "Meals and entertainment", IsActive: true},
			{CompanyID: testCompanyID, Name: "perjalanan", Description: "Business travel", IsActive: true},
		} {
			Expect(repo.Create(category.ToDataModel(cat))).To(Succeed())
		}
	})

	authedRequest := func() *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/categories", nil)
		ctx := internal.ContextWithPrincipal(req.Context(), internal.Principal{UserID: 1, CompanyID: testCompanyID, Role: internal.RoleEmployee})
		return req.WithContext(ctx)
	}

	It("should handle GET /categories request successfully", func() {
		w := httptest.NewRecorder()

		handler.GetCategories(w, authedRequest())

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

		var response category.CategoriesResponse
		Expect(json.NewDecoder(w.Body).Decode(&response)).To(Succeed())
		Expect(response.Categories).To(HaveLen(2))

		names := make([]string, len(response.Categories))
		for i, cat := range response.Categories {
			names[i] = cat.Name
		}
		Expect(names).To(ConsistOf("makan", "perjalanan"))
	})

	It("should reject an unauthenticated request", func() {
		req := httptest.NewRequest(http.MethodGet, "/categories", nil)
		w := httptest.NewRecorder()

		handler.GetCategories(w, req)

		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})
})
