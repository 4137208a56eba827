package postgres

import (
	"context"

	"github.com/approvalengine/expense-service/internal"
	userDatamodel "github.com/approvalengine/expense-service/internal/core/datamodel/user"
	"github.com/approvalengine/expense-service/internal/user"
	"gorm.io/gorm"
)

// Repository implements user.Repository plus the narrow lookup interfaces
// internal/approval and internal/expense depend on
// (approval.UserLookup, expense's manager-lookup closure) so those
// packages never need to import internal/user directly.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByID(userID int64) (*user.User, error) {
	var row userDatamodel.User
	if err := r.db.First(&row, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, user.ErrNotFound
		}
		return nil, internal.NewInternalError("failed to load user", err)
	}
	return user.FromDataModel(&row), nil
}

func (r *Repository) GetManagerID(userID int64) (*int64, error) {
	var row userDatamodel.User
	if err := r.db.Select("manager_id").First(&row, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, user.ErrNotFound
		}
		return nil, internal.NewInternalError("failed to load manager id", err)
	}
	return row.ManagerID, nil
}

func (r *Repository) Create(u *user.User) error {
	row := user.ToDataModel(u)
	if err := r.db.Create(row).Error; err != nil {
		return internal.NewInternalError("failed to create user", err)
	}
	u.ID = row.ID
	return nil
}

func (r *Repository) UpdateManager(userID int64, managerID *int64) error {
	if err := r.db.Model(&userDatamodel.User{}).Where("id = ?", userID).
		Update("manager_id", managerID).Error; err != nil {
		return internal.NewInternalError("failed to update manager", err)
	}
	return nil
}

// BelongsToCompany implements approval.UserLookup.
func (r *Repository) BelongsToCompany(userID, companyID int64) (bool, error) {
	var count int64
	if err := r.db.Model(&userDatamodel.User{}).
		Where("id = ? AND company_id = ?", userID, companyID).
		Count(&count).Error; err != nil {
		return false, internal.NewInternalError("failed to check user company", err)
	}
	return count > 0, nil
}

// IsManagerOrAdmin implements approval.UserLookup.
func (r *Repository) IsManagerOrAdmin(userID int64) (bool, error) {
	var row userDatamodel.User
	if err := r.db.Select("role").First(&row, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, user.ErrNotFound
		}
		return false, internal.NewInternalError("failed to load user role", err)
	}
	return row.Role == string(internal.RoleManager) || row.Role == string(internal.RoleAdmin), nil
}

// IsActive implements approval.UserLookup.
func (r *Repository) IsActive(userID int64) (bool, error) {
	var row userDatamodel.User
	if err := r.db.Select("is_active").First(&row, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, user.ErrNotFound
		}
		return false, internal.NewInternalError("failed to load user status", err)
	}
	return row.IsActive, nil
}

// ManagerOf adapts GetManagerID to the ctx-taking signature
// internal/expense.Service.SetManagerLookup expects.
func (r *Repository) ManagerOf(ctx context.Context, userID int64) (*int64, error) {
	return r.GetManagerID(userID)
}
