package postgres

import (
	"database/sql"
	"fmt"

	"github.com/approvalengine/expense-service/internal"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

// GetPasswordForUsername returns the stored password hash and principal for
// an active user, looked up by email.
func (r *Repository) GetPasswordForUsername(email string) (passwordHash string, p internal.Principal, err error) {
	var role string
	query := `SELECT id, company_id, role, password_hash FROM users WHERE email = ? AND is_active = true`

	row := r.db.Raw(query, email).Row()
	if scanErr := row.Scan(&p.UserID, &p.CompanyID, &role, &passwordHash); scanErr != nil {
		if scanErr == sql.ErrNoRows {
			return "", internal.Principal{}, fmt.Errorf("user not found")
		}
		return "", internal.Principal{}, scanErr
	}
	p.Role = internal.Role(role)
	return passwordHash, p, nil
}

// GetPrincipal reloads {company_id, role} for a user, used to refresh a
// token's claims without trusting the presented refresh token's payload.
func (r *Repository) GetPrincipal(userID int64) (internal.Principal, error) {
	p := internal.Principal{UserID: userID}
	var role string
	query := `SELECT company_id, role FROM users WHERE id = ? AND is_active = true`

	row := r.db.Raw(query, userID).Row()
	if err := row.Scan(&p.CompanyID, &role); err != nil {
		if err == sql.ErrNoRows {
			return internal.Principal{}, fmt.Errorf("user not found")
		}
		return internal.Principal{}, err
	}
	p.Role = internal.Role(role)
	return p, nil
}
