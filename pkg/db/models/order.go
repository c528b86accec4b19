package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/motorforge/workshop-backend/pkg/enums"
)

// Order is the root work-order aggregate for one engine-repair job.
type Order struct {
	ID                  uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber         int64             `gorm:"column:order_number;not null;uniqueIndex"`
	Title               string            `gorm:"column:title;type:text;not null"`
	Description         *string           `gorm:"column:description;type:text"`
	Status              enums.OrderStatus `gorm:"column:status;type:order_status;not null;default:'received'"`
	Priority            enums.Priority    `gorm:"column:priority;type:order_priority;not null;default:'normal'"`
	CategoryID          *uuid.UUID        `gorm:"column:category_id;type:uuid"`
	Notes               *string           `gorm:"column:notes;type:text"`
	EstimatedCompletion *time.Time        `gorm:"column:estimated_completion"`
	ActualCompletion    *time.Time        `gorm:"column:actual_completion"`
	TotalCost           decimal.Decimal   `gorm:"column:total_cost;type:numeric(12,2);not null;default:0"`
	CustomerID          uuid.UUID         `gorm:"column:customer_id;type:uuid;not null"`
	CreatedBy           uuid.UUID         `gorm:"column:created_by;type:uuid;not null"`
	UpdatedBy           uuid.UUID         `gorm:"column:updated_by;type:uuid;not null"`
	AssignedTo          *uuid.UUID        `gorm:"column:assigned_to;type:uuid"`
	MotorInfo           *MotorInfo        `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Items               []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	History             []OrderHistory    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt           time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
