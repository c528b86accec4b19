package workorders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/motorforge/workshop-backend/pkg/enums"
)

// Actor identifies who is performing a lifecycle operation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.Role
}

// CreateOrderItemInput describes one component group submitted at intake.
type CreateOrderItemInput struct {
	Type       enums.ItemType
	Components []string
}

// CreateOrderInput carries the validated intake fields.
type CreateOrderInput struct {
	Title               string
	Description         *string
	Priority            enums.Priority
	CategoryID          *uuid.UUID
	Notes               *string
	EstimatedCompletion *time.Time
	CustomerID          uuid.UUID
	DownPayment         *decimal.Decimal
	Items               []CreateOrderItemInput
	// MotorItemsEnabled is the feature decision resolved by the caller; when
	// false the motor-info/items step is skipped entirely.
	MotorItemsEnabled bool
	Actor             Actor
}

// ServiceLineInput is one budget line keyed by catalog service.
type ServiceLineInput struct {
	OrderItemID uuid.UUID
	ServiceKey  string
	Measurement *string
}

// SubmitBudgetInput carries the reviewer's budget lines.
type SubmitBudgetInput struct {
	OrderID uuid.UUID
	Lines   []ServiceLineInput
	Actor   Actor
}

// CustomerApprovalInput authorizes budgeted services, optionally with a down payment.
type CustomerApprovalInput struct {
	OrderID     uuid.UUID
	ServiceIDs  []uuid.UUID
	DownPayment *decimal.Decimal
	Actor       Actor
}

// MarkWorkCompletedInput flags the named services as done.
type MarkWorkCompletedInput struct {
	OrderID    uuid.UUID
	ServiceIDs []uuid.UUID
	Actor      Actor
}

// TransitionInput drives the single-step lifecycle operations.
type TransitionInput struct {
	OrderID uuid.UUID
	Actor   Actor
}

// RecordPaymentInput settles the outstanding balance on a delivered order.
type RecordPaymentInput struct {
	OrderID uuid.UUID
	Amount  decimal.Decimal
	Actor   Actor
}

// UpdateOrderDetailsInput edits tracked non-status fields. Nil pointers leave
// the current value untouched.
type UpdateOrderDetailsInput struct {
	OrderID             uuid.UUID
	Title               *string
	Description         *string
	Notes               *string
	Priority            *enums.Priority
	CategoryID          *uuid.UUID
	AssignedTo          *uuid.UUID
	EstimatedCompletion *time.Time
	Actor               Actor
}

// ListFilters describe the inputs supported by the orders list.
type ListFilters struct {
	Status     *enums.OrderStatus
	Priority   *enums.Priority
	CustomerID *uuid.UUID
	// StaffScopeID restricts results to orders the given staff user created or
	// is assigned to (employee visibility rule).
	StaffScopeID *uuid.UUID
	DateFrom     *time.Time
	DateTo       *time.Time
	Query        string
}

// OrderSummary exposes the aggregated fields returned in the orders list.
type OrderSummary struct {
	ID             uuid.UUID            `json:"id"`
	OrderNumber    int64                `json:"order_number"`
	Title          string               `json:"title"`
	Status         enums.OrderStatus    `json:"status"`
	StatusLabel    string               `json:"status_label"`
	TrackingStatus enums.TrackingStatus `json:"tracking_status"`
	Priority       enums.Priority       `json:"priority"`
	TotalCost      decimal.Decimal      `json:"total_cost"`
	CustomerID     uuid.UUID            `json:"customer_id"`
	AssignedTo     *uuid.UUID           `json:"assigned_to,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
}

// OrderList wraps the paginated orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderSummary `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}
