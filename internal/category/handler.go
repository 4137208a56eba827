package category

import (
	"encoding/json"
	"net/http"

	"github.com/approvalengine/expense-service/internal"
	"github.com/approvalengine/expense-service/internal/transport"
)

type ServiceAPI interface {
	GetAllCategories(companyID int64) ([]CategoryResponse, error)
	CreateCategory(companyID int64, name, description string) (*Category, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// GetCategories handles GET /categories, the submission form's suggestion
// list for the caller's company.
func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	categories, err := h.Service.GetAllCategories(principal.CompanyID)
	if err != nil {
		h.Logger.Error("GetCategories: failed to get categories", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to get categories")
		return
	}

	h.WriteJSON(w, http.StatusOK, CategoriesResponse{
		Categories: categories,
	})
}

// CreateCategory handles POST /categories, restricted to admins by the
// router's RBAC middleware.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateCategoryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if dto.Name == "" {
		h.WriteError(w, http.StatusBadRequest, "name is required")
		return
	}

	c, err := h.Service.CreateCategory(principal.CompanyID, dto.Name, dto.Description)
	if err != nil {
		h.Logger.Error("CreateCategory: service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to create category")
		return
	}

	h.WriteJSON(w, http.StatusCreated, c)
}
