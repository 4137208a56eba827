package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/approvalengine/expense-service/internal/approval"
	"github.com/approvalengine/expense-service/internal/auth"
	"github.com/approvalengine/expense-service/internal/category"
	"github.com/approvalengine/expense-service/internal/company"
	"github.com/approvalengine/expense-service/internal/expense"
	"github.com/approvalengine/expense-service/internal/payment"
	"github.com/approvalengine/expense-service/internal/transport/middleware"
	"github.com/approvalengine/expense-service/internal/transport/swagger"
	"github.com/approvalengine/expense-service/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// RegisterAllRoutes wires every domain handler under /api/v1, gating
// approval decisions and admin configuration by role via RBACAuthorization.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, authHandler *auth.Handler, rbac *auth.RBACAuthorization, userHandler *user.Handler, companyHandler *company.Handler, expenseHandler *expense.Handler, approvalHandler *approval.Handler, categoryHandler *category.Handler, paymentHandler *payment.Handler, webhookHandler *payment.WebhookHandler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if authHandler != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", authHandler.Login)
				sr.Post("/refresh", authHandler.RefreshToken)
				sr.Post("/logout", authHandler.Logout)
			})
		}

		// Tenant bootstrap: creating the first company has no principal yet.
		if companyHandler != nil {
			r.Post("/companies", companyHandler.Create)
		}

		// Payment gateway callbacks arrive without a principal.
		if webhookHandler != nil {
			r.Post("/payments/callback", webhookHandler.HandlePaymentCallback)
		}

		if authHandler == nil {
			return
		}

		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)

			if companyHandler != nil {
				pr.Get("/companies/me", companyHandler.GetCurrent)
			}

			if userHandler != nil {
				pr.Get("/users/me", userHandler.GetCurrentUser)
				pr.Group(func(ar chi.Router) {
					ar.Use(rbac.RequireAdmin())
					ar.Post("/users", userHandler.CreateUser)
					ar.Patch("/users/{id}/manager", userHandler.UpdateManager)
				})
			}

			if categoryHandler != nil {
				pr.Route("/categories", func(cr chi.Router) {
					cr.Get("/", categoryHandler.GetCategories)
					cr.Group(func(ar chi.Router) {
						ar.Use(rbac.RequireAdmin())
						ar.Post("/", categoryHandler.CreateCategory)
					})
				})
			}

			if paymentHandler != nil {
				pr.Group(func(mr chi.Router) {
					mr.Use(rbac.RequireManager())
					mr.Post("/payments/retry", paymentHandler.RetryPayment)
				})
			}

			if expenseHandler != nil {
				pr.Route("/expenses", func(er chi.Router) {
					er.Post("/", expenseHandler.CreateExpense)
					er.Get("/my", expenseHandler.ListMine)
					er.Get("/{id}", expenseHandler.GetExpense)
					er.Group(func(ar chi.Router) {
						ar.Use(rbac.RequireAdmin())
						ar.Get("/", expenseHandler.ListCompany)
					})
				})
			}

			if approvalHandler != nil {
				pr.Route("/approvals", func(ar chi.Router) {
					ar.Get("/pending", approvalHandler.ListPending)
					ar.Get("/expense/{expenseId}", approvalHandler.GetChain)
					ar.Group(func(mr chi.Router) {
						mr.Use(rbac.RequireManager())
						mr.Post("/{id}/approve", approvalHandler.Approve)
						mr.Post("/{id}/reject", approvalHandler.Reject)
					})
				})

				pr.Route("/config", func(cr chi.Router) {
					cr.Use(rbac.RequireAdmin())
					cr.Post("/approvers", approvalHandler.AddApprover)
					cr.Get("/approvers", approvalHandler.ListApprovers)
					cr.Put("/approvers/{id}", approvalHandler.UpdateApproverSequence)
					cr.Delete("/approvers/{id}", approvalHandler.RemoveApprover)
					cr.Post("/rules", approvalHandler.SetRule)
					cr.Get("/rules", approvalHandler.ListRules)
				})
			}
		})
	})
}
