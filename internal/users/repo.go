package users

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/motorforge/workshop-backend/pkg/db/models"
	"github.com/motorforge/workshop-backend/pkg/enums"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail retrieves the user matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindEmail resolves just the email address for a user id.
func (r *Repository) FindEmail(ctx context.Context, userID uuid.UUID) (string, error) {
	var email string
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Pluck("email", &email).Error
	if err != nil {
		return "", err
	}
	if email == "" {
		return "", gorm.ErrRecordNotFound
	}
	return email, nil
}

// ListActiveAdminIDs returns every active admin-level user id. Used for
// audit notification fan-out.
func (r *Repository) ListActiveAdminIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("role IN ? AND is_active = ?", []enums.Role{enums.RoleSuperAdmin, enums.RoleAdmin}, true).
		Pluck("id", &ids).Error
	return ids, err
}

// ListStaff returns active staff users for assignment pickers.
func (r *Repository) ListStaff(ctx context.Context) ([]models.User, error) {
	var rows []models.User
	err := r.db.WithContext(ctx).
		Where("role IN ? AND is_active = ?",
			[]enums.Role{enums.RoleSuperAdmin, enums.RoleAdmin, enums.RoleEmployee}, true).
		Order("last_name ASC, first_name ASC").
		Find(&rows).Error
	return rows, err
}

// UpdateLastLogin refreshes the user's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}
