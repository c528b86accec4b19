package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderService is a priced service line attached to one order item. Prices
// are copied from the catalog at budgeting time, not live-linked.
type OrderService struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID      uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	OrderItemID  uuid.UUID       `gorm:"column:order_item_id;type:uuid;not null;uniqueIndex:ux_order_services_item_key"`
	ServiceKey   string          `gorm:"column:service_key;type:text;not null;uniqueIndex:ux_order_services_item_key"`
	Measurement  *string         `gorm:"column:measurement;type:text"`
	IsBudgeted   bool            `gorm:"column:is_budgeted;not null;default:false"`
	BasePrice    decimal.Decimal `gorm:"column:base_price;type:numeric(12,2);not null;default:0"`
	NetPrice     decimal.Decimal `gorm:"column:net_price;type:numeric(12,2);not null;default:0"`
	IsAuthorized bool            `gorm:"column:is_authorized;not null;default:false"`
	IsCompleted  bool            `gorm:"column:is_completed;not null;default:false"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
