package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/motorforge/workshop-backend/pkg/enums"
)

// OrderCreatedEvent signals a freshly intaken work order.
type OrderCreatedEvent struct {
	OrderID     uuid.UUID          `json:"order_id"`
	OrderNumber int64              `json:"order_number"`
	CustomerID  uuid.UUID          `json:"customer_id"`
	Status      enums.OrderStatus  `json:"status"`
	Priority    enums.Priority     `json:"priority"`
	ItemTypes   []enums.ItemType   `json:"item_types,omitempty"`
	CreatedBy   uuid.UUID          `json:"created_by"`
}

// OrderStatusChangedEvent is emitted on every lifecycle transition.
type OrderStatusChangedEvent struct {
	OrderID        uuid.UUID            `json:"order_id"`
	OrderNumber    int64                `json:"order_number"`
	CustomerID     uuid.UUID            `json:"customer_id"`
	OldStatus      enums.OrderStatus    `json:"old_status"`
	NewStatus      enums.OrderStatus    `json:"new_status"`
	TrackingStatus enums.TrackingStatus `json:"tracking_status"`
	ChangedBy      uuid.UUID            `json:"changed_by"`
}

// FieldChange describes one audited attribute change.
type FieldChange struct {
	Field    string  `json:"field"`
	OldValue *string `json:"old_value,omitempty"`
	NewValue *string `json:"new_value,omitempty"`
}

// OrderFieldsChangedEvent carries non-status attribute changes.
type OrderFieldsChangedEvent struct {
	OrderID     uuid.UUID     `json:"order_id"`
	OrderNumber int64         `json:"order_number"`
	CustomerID  uuid.UUID     `json:"customer_id"`
	Changes     []FieldChange `json:"changes"`
	ChangedBy   uuid.UUID     `json:"changed_by"`
}

// OrderBudgetedEvent is emitted once the budget review is submitted.
type OrderBudgetedEvent struct {
	OrderID      uuid.UUID       `json:"order_id"`
	OrderNumber  int64           `json:"order_number"`
	CustomerID   uuid.UUID       `json:"customer_id"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	ServiceCount int             `json:"service_count"`
}

// OrderApprovedEvent reports the customer's decision over budgeted services.
type OrderApprovedEvent struct {
	OrderID      uuid.UUID       `json:"order_id"`
	OrderNumber  int64           `json:"order_number"`
	CustomerID   uuid.UUID       `json:"customer_id"`
	ApprovedKeys []string        `json:"approved_keys"`
	DeclinedKeys []string        `json:"declined_keys,omitempty"`
	TotalCost    decimal.Decimal `json:"total_cost"`
}

// OrderReadyForPickupEvent tells the customer the engine can be collected.
type OrderReadyForPickupEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber int64     `json:"order_number"`
	CustomerID  uuid.UUID `json:"customer_id"`
}

// OrderDeliveredEvent confirms the engine left the shop.
type OrderDeliveredEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber int64     `json:"order_number"`
	CustomerID  uuid.UUID `json:"customer_id"`
	DeliveredAt time.Time `json:"delivered_at"`
}

// OrderPaidEvent closes the billing loop for an order.
type OrderPaidEvent struct {
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber int64           `json:"order_number"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	Amount      decimal.Decimal `json:"amount"`
	PaidAt      time.Time       `json:"paid_at"`
}

// NotificationRequestedEvent asks the notification worker to address a
// specific user directly, outside the order milestone fan-out.
type NotificationRequestedEvent struct {
	OrderID uuid.UUID              `json:"order_id"`
	UserID  uuid.UUID              `json:"user_id"`
	Type    enums.NotificationType `json:"type"`
	Title   string                 `json:"title"`
	Message string                 `json:"message"`
	Link    *string                `json:"link,omitempty"`
}
