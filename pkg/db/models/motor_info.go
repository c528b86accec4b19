package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MotorInfo carries the financial summary attached 1:1 to an order.
type MotorInfo struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID       `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	DownPayment decimal.Decimal `gorm:"column:down_payment;type:numeric(12,2);not null;default:0"`
	TotalCost   decimal.Decimal `gorm:"column:total_cost;type:numeric(12,2);not null;default:0"`
	IsFullyPaid bool            `gorm:"column:is_fully_paid;not null;default:false"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
