package user

import (
	"errors"
	"time"

	"github.com/approvalengine/expense-service/internal"
	userDatamodel "github.com/approvalengine/expense-service/internal/core/datamodel/user"
)

// User is the business-facing model for a company member (spec §3).
type User struct {
	ID           int64         `json:"id"`
	CompanyID    int64         `json:"company_id"`
	Email        string        `json:"email"`
	Name         string        `json:"name"`
	PasswordHash string        `json:"-"`
	Role         internal.Role `json:"role"`
	ManagerID    *int64        `json:"manager_id,omitempty"`
	IsActive     bool          `json:"is_active"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func (u *User) IsManager() bool {
	return u.Role == internal.RoleManager || u.Role == internal.RoleAdmin
}

func (u *User) IsAdmin() bool {
	return u.Role == internal.RoleAdmin
}

var (
	ErrNotFound     = errors.New("user not found")
	ErrManagerCycle = errors.New("manager assignment would create a cycle")
)

// ValidateManagerAssignment walks the candidate manager's chain up to depth
// maxDepth, rejecting the assignment if it ever reaches userID (spec §3's
// "not transitively equal to self" invariant). lookupManager returns the
// manager_id of the given user, or nil at the top of the chain.
func ValidateManagerAssignment(userID, candidateManagerID int64, maxDepth int, lookupManager func(int64) (*int64, error)) error {
	if candidateManagerID == userID {
		return ErrManagerCycle
	}

	current := candidateManagerID
	for i := 0; i < maxDepth; i++ {
		next, err := lookupManager(current)
		if err != nil {
			return err
		}
		if next == nil {
			return nil
		}
		if *next == userID {
			return ErrManagerCycle
		}
		current = *next
	}
	return ErrManagerCycle
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:           u.ID,
		CompanyID:    u.CompanyID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		ManagerID:    u.ManagerID,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:           u.ID,
		CompanyID:    u.CompanyID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         internal.Role(u.Role),
		ManagerID:    u.ManagerID,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func FromDataModelSlice(users []*userDatamodel.User) []*User {
	result := make([]*User, len(users))
	for i, u := range users {
		result[i] = FromDataModel(u)
	}
	return result
}
