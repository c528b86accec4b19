package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/motorforge/workshop-backend/pkg/enums"
)

// User represents the canonical identity entity. Orders keep weak references
// to users; ownership stays here.
type User struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email       string     `gorm:"column:email;type:text;not null;uniqueIndex"`
	FirstName   string     `gorm:"column:first_name;not null"`
	LastName    string     `gorm:"column:last_name;not null"`
	Phone       *string    `gorm:"column:phone"`
	Role        enums.Role `gorm:"column:role;type:user_role;not null;default:'customer'"`
	IsActive    bool       `gorm:"column:is_active;not null;default:true"`
	LastLoginAt *time.Time `gorm:"column:last_login_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
