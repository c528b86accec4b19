package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderHistory is an append-only audit record of one tracked-field change.
// Rows are never updated or deleted after creation.
type OrderHistory struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	Field     string    `gorm:"column:field;type:text;not null"`
	OldValue  *string   `gorm:"column:old_value;type:text"`
	NewValue  *string   `gorm:"column:new_value;type:text"`
	ChangedBy uuid.UUID `gorm:"column:changed_by;type:uuid;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
