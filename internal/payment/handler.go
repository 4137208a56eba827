package payment

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	errors "github.com/approvalengine/expense-service/internal"
	"github.com/approvalengine/expense-service/internal/transport"
)

type Handler struct {
	transport.BaseHandler
	PaymentService ServiceAPI
	Logger         *slog.Logger
}

func NewHandler(baseHandler *transport.BaseHandler, paymentService ServiceAPI, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler:    *baseHandler,
		PaymentService: paymentService,
		Logger:         logger,
	}
}

// RetryPayment handles POST /api/v1/payments/retry
func (h *Handler) RetryPayment(w http.ResponseWriter, r *http.Request) {
	principal, ok := errors.PrincipalFromContext(r.Context())
	if !ok {
		h.Logger.Error("RetryPayment: principal not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req PaymentRetryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("RetryPayment: failed to parse request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		h.Logger.Error("RetryPayment: validation error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	expenseID, err := strconv.ParseInt(req.ExpenseID, 10, 64)
	if err != nil {
		h.Logger.Error("RetryPayment: invalid expense ID", "expense_id", req.ExpenseID)
		h.WriteError(w, http.StatusBadRequest, "invalid expense id")
		return
	}

	record, err := h.PaymentService.GetPaymentByExpenseID(expenseID)
	if err != nil {
		h.Logger.Error("RetryPayment: payment record not found", "error", err, "expense_id", expenseID)
		h.HandleServiceError(w, err)
		return
	}

	if _, err := h.PaymentService.RetryPayment(&PaymentRequest{Amount: record.AmountIDR, ExternalID: req.ExternalID}); err != nil {
		h.Logger.Error("RetryPayment: service error", "error", err, "expense_id", expenseID, "external_id", req.ExternalID, "principal_id", principal.UserID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("RetryPayment: payment retry initiated",
		"expense_id", expenseID,
		"external_id", req.ExternalID,
		"principal_id", principal.UserID)

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "payment retry initiated",
		"expense_id":  req.ExpenseID,
		"external_id": req.ExternalID,
	})
}
