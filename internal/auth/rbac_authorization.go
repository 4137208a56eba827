package auth

import (
	"log/slog"
	"net/http"

	"github.com/approvalengine/expense-service/internal"
)

// RBACAuthorization builds role-gated middleware from the principal the
// auth middleware already placed in the request context. Replaces the
// permission-string checks with spec's {employee, manager, admin} roles.
type RBACAuthorization struct {
	logger *slog.Logger
}

func NewRBACAuthorization(logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{logger: logger}
}

// RequireRole allows the request through only if the principal's role is
// one of roles.
func (ra *RBACAuthorization) RequireRole(roles ...internal.Role) func(http.Handler) http.Handler {
	allowed := make(map[internal.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := internal.PrincipalFromContext(r.Context())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			if !allowed[principal.Role] {
				ra.logger.WarnContext(r.Context(), "access denied: role not permitted",
					"user_id", principal.UserID,
					"role", principal.Role,
					"allowed_roles", roles)
				http.Error(w, "forbidden: insufficient role", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (ra *RBACAuthorization) RequireManager() func(http.Handler) http.Handler {
	return ra.RequireRole(internal.RoleManager, internal.RoleAdmin)
}

func (ra *RBACAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return ra.RequireRole(internal.RoleAdmin)
}
