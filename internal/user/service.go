package user

import (
	"fmt"

	"github.com/approvalengine/expense-service/internal"
	"golang.org/x/crypto/bcrypt"
)

const maxManagerChainDepth = 50

type Repository interface {
	GetByID(userID int64) (*User, error)
	GetManagerID(userID int64) (*int64, error)
	Create(u *User) error
	UpdateManager(userID int64, managerID *int64) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(userID int64) (*User, error) {
	u, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return u, nil
}

// CreateUser registers a new company member (spec §3), hashing the
// submitted password the same way the auth service validates it.
func (s *Service) CreateUser(companyID int64, dto CreateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	// A brand-new user has no ID yet, so it cannot already sit on any
	// existing manager chain: no cycle check is needed here, unlike
	// SetManager's reassignment of an existing user.
	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}
	u := &User{
		CompanyID:    companyID,
		Email:        dto.Email,
		Name:         dto.Name,
		PasswordHash: string(hash),
		Role:         internal.Role(dto.Role),
		ManagerID:    dto.ManagerID,
		IsActive:     true,
	}
	if err := s.repo.Create(u); err != nil {
		return nil, err
	}
	return u, nil
}

// SetManager reassigns actor's target user's direct manager, rejecting any
// assignment that would create a cycle (spec §3).
func (s *Service) SetManager(userID int64, managerID *int64) error {
	if managerID != nil {
		if err := ValidateManagerAssignment(userID, *managerID, maxManagerChainDepth, s.repo.GetManagerID); err != nil {
			if err == ErrManagerCycle {
				return internal.ErrManagerCycle
			}
			return err
		}
	}
	return s.repo.UpdateManager(userID, managerID)
}
