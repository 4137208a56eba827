package payment_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/approvalengine/expense-service/internal"
	"github.com/approvalengine/expense-service/internal/core/datamodel/payment"
	"github.com/approvalengine/expense-service/internal/transport"

	paymentpkg "github.com/approvalengine/expense-service/internal/payment"
)

type mockPaymentService struct {
	retryPaymentError        error
	getPaymentByExpenseError error
	payment                  *payment.Payment
	response                 *paymentpkg.PaymentResponse
}

func (m *mockPaymentService) CreatePayment(expenseID int64, externalID string, amountIDR int64) (*payment.Payment, error) {
	return m.payment, nil
}

func (m *mockPaymentService) ProcessPayment(req *paymentpkg.PaymentRequest) (*paymentpkg.PaymentResponse, error) {
	return m.response, nil
}

func (m *mockPaymentService) RetryPayment(req *paymentpkg.PaymentRequest) (*paymentpkg.PaymentResponse, error) {
	if m.retryPaymentError != nil {
		return nil, m.retryPaymentError
	}
	return m.response, nil
}

func (m *mockPaymentService) GetPaymentByExpenseID(expenseID int64) (*payment.Payment, error) {
	if m.getPaymentByExpenseError != nil {
		return nil, m.getPaymentByExpenseError
	}
	return m.payment, nil
}

func (m *mockPaymentService) GetPaymentByExternalID(externalID string) (*payment.Payment, error) {
	return m.payment, nil
}

func (m *mockPaymentService) UpdatePaymentStatus(paymentID int64, status string, paymentMethod *string, gatewayResponse json.RawMessage, failureReason *string) error {
	return nil
}

func createAuthedRequest(method, target string, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	ctx := internal.ContextWithPrincipal(req.Context(), internal.Principal{UserID: 1, CompanyID: 1, Role: internal.RoleEmployee})
	return req.WithContext(ctx)
}

var _ = ginkgo.Describe("PaymentHandler", func() {
	var (
		handler        *paymentpkg.Handler
		paymentService *mockPaymentService
		recorder       *httptest.ResponseRecorder
		logger         *slog.Logger
	)

	ginkgo.BeforeEach(func() {
		paymentService = &mockPaymentService{
			payment:  &payment.Payment{ID: 1, ExpenseID: 123, AmountIDR: 10050},
			response: &paymentpkg.PaymentResponse{Data: paymentpkg.PaymentData{ID: "gw-1", Status: paymentpkg.PaymentStatusSuccess}},
		}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		handler = paymentpkg.NewHandler(transport.NewBaseHandler(logger), paymentService, logger)
		recorder = httptest.NewRecorder()
	})

	ginkgo.Context("RetryPayment", func() {
		ginkgo.When("retry request is valid", func() {
			ginkgo.It("should retry payment successfully", func() {
				reqBody := map[string]interface{}{
					"expense_id":  "123",
					"external_id": "test-external-id",
				}
				jsonBody, _ := json.Marshal(reqBody)
				req := createAuthedRequest("POST", "/api/v1/payment/retry", jsonBody)

				handler.RetryPayment(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusOK))
				var response map[string]interface{}
				err := json.Unmarshal(recorder.Body.Bytes(), &response)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(response["status"]).To(gomega.Equal("payment retry initiated"))
				gomega.Expect(response["expense_id"]).To(gomega.Equal("123"))
				gomega.Expect(response["external_id"]).To(gomega.Equal("test-external-id"))
			})
		})

		ginkgo.When("request body is invalid JSON", func() {
			ginkgo.It("should return bad request", func() {
				req := createAuthedRequest("POST", "/api/v1/payment/retry", []byte("invalid json"))

				handler.RetryPayment(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusBadRequest))
			})
		})

		ginkgo.Context("when request validation fails", func() {
			ginkgo.It("should return validation error for missing expense_id", func() {
				reqBody := map[string]interface{}{
					"external_id": "test-external-id",
				}
				jsonBody, _ := json.Marshal(reqBody)
				req := createAuthedRequest("POST", "/api/v1/payment/retry", jsonBody)

				handler.RetryPayment(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusBadRequest))
			})

			ginkgo.It("should return validation error for missing external_id", func() {
				reqBody := map[string]interface{}{
					"expense_id": "123",
				}
				jsonBody, _ := json.Marshal(reqBody)
				req := createAuthedRequest("POST", "/api/v1/payment/retry", jsonBody)

				handler.RetryPayment(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusBadRequest))
			})
		})

		ginkgo.Context("when expense ID is invalid", func() {
			ginkgo.It("should return bad request for non-numeric expense ID", func() {
				reqBody := map[string]interface{}{
					"expense_id":  "invalid",
					"external_id": "test-external-id",
				}
				jsonBody, _ := json.Marshal(reqBody)
				req := createAuthedRequest("POST", "/api/v1/payment/retry", jsonBody)

				handler.RetryPayment(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusBadRequest))
			})
		})

		ginkgo.Context("when no payment record exists for the expense", func() {
			ginkgo.It("should return an error", func() {
				paymentService.getPaymentByExpenseError = errors.New("not found")
				reqBody := map[string]interface{}{
					"expense_id":  "999",
					"external_id": "test-external-id",
				}
				jsonBody, _ := json.Marshal(reqBody)
				req := createAuthedRequest("POST", "/api/v1/payment/retry", jsonBody)

				handler.RetryPayment(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusInternalServerError))
			})
		})

		ginkgo.Context("when the payment gateway retry fails", func() {
			ginkgo.It("should return an error", func() {
				paymentService.retryPaymentError = errors.New("gateway unreachable")
				reqBody := map[string]interface{}{
					"expense_id":  "123",
					"external_id": "test-external-id",
				}
				jsonBody, _ := json.Marshal(reqBody)
				req := createAuthedRequest("POST", "/api/v1/payment/retry", jsonBody)

				handler.RetryPayment(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusInternalServerError))
			})
		})
	})

	ginkgo.Context("when principal is not in context", func() {
		ginkgo.It("should return unauthorized", func() {
			reqBody := map[string]interface{}{
				"expense_id":  "123",
				"external_id": "test-external-id",
			}
			jsonBody, _ := json.Marshal(reqBody)
			req := httptest.NewRequest("POST", "/api/v1/payment/retry", bytes.NewBuffer(jsonBody))
			req.Header.Set("Content-Type", "application/json")

			handler.RetryPayment(recorder, req)

			gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusUnauthorized))
		})
	})
})
