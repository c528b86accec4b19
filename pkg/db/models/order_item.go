package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/motorforge/workshop-backend/pkg/enums"
)

// OrderItem is a major component group submitted with a work order.
type OrderItem struct {
	ID         uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    uuid.UUID            `gorm:"column:order_id;type:uuid;not null;index"`
	Type       enums.ItemType       `gorm:"column:type;type:order_item_type;not null"`
	Received   bool                 `gorm:"column:received;not null;default:false"`
	Components []OrderItemComponent `gorm:"foreignKey:OrderItemID;constraint:OnDelete:CASCADE"`
	Services   []OrderService       `gorm:"foreignKey:OrderItemID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItemComponent is a named sub-part of an order item, tracked with its
// own received flag.
type OrderItemComponent struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderItemID uuid.UUID `gorm:"column:order_item_id;type:uuid;not null;index"`
	Name        string    `gorm:"column:name;type:text;not null"`
	Received    bool      `gorm:"column:received;not null;default:false"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}
