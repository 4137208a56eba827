package approval

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/approvalengine/expense-service/internal"
	"github.com/approvalengine/expense-service/internal/transport"
	"github.com/approvalengine/expense-service/pkg/logger"
	"github.com/go-chi/chi"
)

type Handler struct {
	*transport.BaseHandler
	Service *Service
}

func NewHandler(svc *Service) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{BaseHandler: transport.NewBaseHandler(lg), Service: svc}
}

// ListPending handles GET /approvals/pending.
func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	items, err := h.Service.ListPendingForMe(r.Context(), principal)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, items)
}

// Approve handles POST /approvals/{id}/approve.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, VerdictApprove)
}

// Reject handles POST /approvals/{id}/reject.
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, VerdictReject)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, verdict string) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	slotID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid slot id")
		return
	}
	var dto DecideDTO
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&dto)
	}

	result, err := h.Service.Decide(r.Context(), principal, slotID, verdict, dto.Comment)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}

// GetChain handles GET /approvals/expense/{expenseId}.
func (h *Handler) GetChain(w http.ResponseWriter, r *http.Request) {
	expenseID, err := strconv.ParseInt(chi.URLParam(r, "expenseId"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid expense id")
		return
	}
	history, err := h.Service.GetApprovalHistory(r.Context(), expenseID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, history)
}

// AddApprover handles POST /config/approvers.
func (h *Handler) AddApprover(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var dto AddApproverDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	approver, err := h.Service.AddApprover(r.Context(), principal.CompanyID, dto.UserID, dto.RoleName, dto.Sequence)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, approver)
}

// ListApprovers handles GET /config/approvers.
func (h *Handler) ListApprovers(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	rows, err := h.Service.ListApprovers(r.Context(), principal.CompanyID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, rows)
}

// UpdateApproverSequence handles PUT /config/approvers/{id}.
func (h *Handler) UpdateApproverSequence(w http.ResponseWriter, r *http.Request) {
	approverID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid approver id")
		return
	}
	var dto UpdateSequenceDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.Service.UpdateApproverSequence(r.Context(), approverID, dto.Sequence); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// RemoveApprover handles DELETE /config/approvers/{id}.
func (h *Handler) RemoveApprover(w http.ResponseWriter, r *http.Request) {
	approverID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid approver id")
		return
	}
	if err := h.Service.RemoveApprover(r.Context(), approverID); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// SetRule handles POST /config/rules.
func (h *Handler) SetRule(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var dto SetRuleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rule, err := h.Service.SetApprovalRule(r.Context(), principal.CompanyID, dto.RuleType, dto.ToRuleConfig())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, rule)
}

// ListRules handles GET /config/rules.
func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	rows, err := h.Service.ListRules(r.Context(), principal.CompanyID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	type ruleView struct {
		*Rule
		Description string `json:"description"`
	}
	views := make([]ruleView, len(rows))
	for i, r := range rows {
		views[i] = ruleView{Rule: r, Description: r.Description()}
	}
	h.WriteJSON(w, http.StatusOK, views)
}
