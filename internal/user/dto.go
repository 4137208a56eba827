package user

import "github.com/approvalengine/expense-service/internal"

// CreateUserDTO is the request payload for an admin creating a company
// member.
type CreateUserDTO struct {
	Email     string `json:"email" validate:"required,email"`
	Name      string `json:"name" validate:"required"`
	Password  string `json:"password" validate:"required,min=8"`
	Role      string `json:"role" validate:"required,oneof=employee manager admin"`
	ManagerID *int64 `json:"manager_id,omitempty"`
}

func (dto CreateUserDTO) Validate() error {
	if dto.Email == "" {
		return internal.NewValidationError("email is required", internal.ErrCodeValidationFailed)
	}
	if dto.Name == "" {
		return internal.NewValidationError("name is required", internal.ErrCodeValidationFailed)
	}
	if len(dto.Password) < 8 {
		return internal.NewValidationError("password must be at least 8 characters", internal.ErrCodeValidationFailed)
	}
	switch internal.Role(dto.Role) {
	case internal.RoleEmployee, internal.RoleManager, internal.RoleAdmin:
	default:
		return internal.NewValidationError("role must be employee, manager, or admin", internal.ErrCodeValidationFailed)
	}
	return nil
}

// UpdateManagerDTO reassigns a user's direct manager.
type UpdateManagerDTO struct {
	ManagerID *int64 `json:"manager_id"`
}
