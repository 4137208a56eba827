package company

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/approvalengine/expense-service/internal"
	"github.com/approvalengine/expense-service/internal/transport"
	"github.com/approvalengine/expense-service/pkg/logger"
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

// GetCurrent handles GET /companies/me.
func (h *Handler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	c, err := h.Service.GetByID(principal.CompanyID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c)
}

// Create handles POST /companies, the admin-bootstrap tenant creation
// path (spec §3). Not gated by RBAC itself: the router restricts it to an
// unauthenticated bootstrap route or a super-admin role, per deployment.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var c Company
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.Service.Create(&c); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, c)
}
