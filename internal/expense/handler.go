package expense

import (
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/approvalengine/expense-service/internal"
	"github.com/approvalengine/expense-service/internal/transport"
	"github.com/approvalengine/expense-service/pkg/logger"
	"github.com/go-chi/chi"
)

// ReceiptStorage is the out-of-scope collaborator spec §1 carves
// receipt-file storage out to (pkg/receiptstore.Local in production):
// the handler only ever passes it bytes and gets an opaque URL back.
type ReceiptStorage interface {
	Save(ctx context.Context, originalName string, r io.Reader) (string, error)
}

type Handler struct {
	*transport.BaseHandler
	Service  *Service
	receipts ReceiptStorage
	upload   internal.UploadConfig
}

func NewHandler(service *Service, receipts ReceiptStorage, upload internal.UploadConfig) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
		receipts:    receipts,
		upload:      upload,
	}
}

// CreateExpense handles POST /expenses: a multipart submission with fields
// amount, currency, category, description, date and an optional receipt
// file (spec §6). The receipt, if present, is validated against the
// configured size/media-type bounds and handed to the storage collaborator
// before the expense and chain are persisted.
func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	maxMemory := h.upload.MaxSizeBytes
	if maxMemory <= 0 {
		maxMemory = 5 * 1024 * 1024
	}
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	amount, err := strconv.ParseFloat(r.FormValue("amount"), 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid amount")
		return
	}
	expenseDate, err := time.Parse("2006-01-02", r.FormValue("date"))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid date")
		return
	}

	dto := CreateExpenseDTO{
		AmountOriginal:   amount,
		CurrencyOriginal: strings.ToUpper(strings.TrimSpace(r.FormValue("currency"))),
		Category:         r.FormValue("category"),
		Description:      r.FormValue("description"),
		ExpenseDate:      expenseDate,
	}

	file, header, ferr := r.FormFile("receipt")
	if ferr == nil {
		defer file.Close()
		if err := h.validateReceipt(header); err != nil {
			h.HandleServiceError(w, err)
			return
		}
		url, err := h.receipts.Save(r.Context(), header.Filename, file)
		if err != nil {
			h.Logger.Error("CreateExpense: receipt storage failed", "error", err, "user_id", principal.UserID)
			h.WriteError(w, http.StatusInternalServerError, "failed to store receipt")
			return
		}
		dto.ReceiptURL = &url
	} else if ferr != http.ErrMissingFile {
		h.WriteError(w, http.StatusBadRequest, "invalid receipt upload")
		return
	}

	exp, err := h.Service.CreateExpense(r.Context(), principal, dto)
	if err != nil {
		h.Logger.Error("CreateExpense: service error", "error", err, "user_id", principal.UserID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreateExpense: expense created", "expense_id", exp.ID, "user_id", principal.UserID, "status", exp.Status)
	h.WriteJSON(w, http.StatusCreated, exp)
}

// validateReceipt enforces UploadConfig's size cap and media-type allowlist
// (spec §6 "maximum receipt size... accepted receipt media types").
func (h *Handler) validateReceipt(header *multipart.FileHeader) error {
	if h.upload.MaxSizeBytes > 0 && header.Size > h.upload.MaxSizeBytes {
		return internal.NewReceiptTooLargeError(header.Size, h.upload.MaxSizeBytes)
	}
	contentType := header.Header.Get("Content-Type")
	if len(h.upload.AllowedMediaTypes) == 0 {
		return nil
	}
	for _, allowed := range h.upload.AllowedMediaTypes {
		if prefix, ok := strings.CutSuffix(allowed, "/*"); ok {
			if strings.HasPrefix(contentType, prefix+"/") {
				return nil
			}
			continue
		}
		if contentType == allowed {
			return nil
		}
	}
	return internal.NewReceiptMediaTypeError(contentType)
}

// GetExpense handles GET /expenses/{id} (spec §4.F).
func (h *Handler) GetExpense(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	expenseID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid expense id")
		return
	}

	exp, chain, err := h.Service.GetExpense(r.Context(), principal, expenseID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, &ExpenseWithChain{Expense: exp, Chain: chain})
}

// ListMine handles GET /expenses/my.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	filter := parseListFilter(r)
	rows, total, err := h.Service.ListMyExpenses(r.Context(), principal, filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"expenses": rows,
		"total":    total,
		"page":     filter.Page,
		"limit":    filter.Limit,
	})
}

// ListCompany handles GET /expenses, admin-only company-wide listing.
func (h *Handler) ListCompany(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	filter := parseListFilter(r)
	rows, total, err := h.Service.ListCompanyExpenses(r.Context(), principal, filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"expenses": rows,
		"total":    total,
		"page":     filter.Page,
		"limit":    filter.Limit,
	})
}

func parseListFilter(r *http.Request) ListFilter {
	q := r.URL.Query()
	filter := ListFilter{Page: 1, Limit: 20}

	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		filter.Page = p
	}
	if l, err := strconv.Atoi(q.Get("limit")); err == nil && l > 0 && l <= 100 {
		filter.Limit = l
	}
	filter.Status = q.Get("status")
	filter.Category = q.Get("category")
	if v := q.Get("date_from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.DateFrom = &t
		}
	}
	if v := q.Get("date_to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.DateTo = &t
		}
	}
	return filter
}
