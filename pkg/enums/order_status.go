package enums

import "fmt"

// OrderStatus tracks the lifecycle of a work order from intake to payment.
type OrderStatus string

const (
	OrderStatusReceived                 OrderStatus = "received"
	OrderStatusAwaitingReview           OrderStatus = "awaiting_review"
	OrderStatusReviewed                 OrderStatus = "reviewed"
	OrderStatusAwaitingCustomerApproval OrderStatus = "awaiting_customer_approval"
	OrderStatusReadyForWork             OrderStatus = "ready_for_work"
	OrderStatusOpen                     OrderStatus = "open"
	OrderStatusInProgress               OrderStatus = "in_progress"
	OrderStatusReadyForDelivery         OrderStatus = "ready_for_delivery"
	OrderStatusCompleted                OrderStatus = "completed"
	OrderStatusDelivered                OrderStatus = "delivered"
	OrderStatusPaid                     OrderStatus = "paid"
	OrderStatusReturned                 OrderStatus = "returned"
	OrderStatusNotPaid                  OrderStatus = "not_paid"
	OrderStatusOnHold                   OrderStatus = "on_hold"
	OrderStatusCancelled                OrderStatus = "cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusReceived,
	OrderStatusAwaitingReview,
	OrderStatusReviewed,
	OrderStatusAwaitingCustomerApproval,
	OrderStatusReadyForWork,
	OrderStatusOpen,
	OrderStatusInProgress,
	OrderStatusReadyForDelivery,
	OrderStatusCompleted,
	OrderStatusDelivered,
	OrderStatusPaid,
	OrderStatusReturned,
	OrderStatusNotPaid,
	OrderStatusOnHold,
	OrderStatusCancelled,
}

var orderStatusLabels = map[OrderStatus]string{
	OrderStatusReceived:                 "Received",
	OrderStatusAwaitingReview:           "Awaiting Review",
	OrderStatusReviewed:                 "Reviewed",
	OrderStatusAwaitingCustomerApproval: "Awaiting Customer Approval",
	OrderStatusReadyForWork:             "Ready For Work",
	OrderStatusOpen:                     "Open",
	OrderStatusInProgress:               "In Progress",
	OrderStatusReadyForDelivery:         "Ready For Delivery",
	OrderStatusCompleted:                "Completed",
	OrderStatusDelivered:                "Delivered",
	OrderStatusPaid:                     "Paid",
	OrderStatusReturned:                 "Returned",
	OrderStatusNotPaid:                  "Not Paid",
	OrderStatusOnHold:                   "On Hold",
	OrderStatusCancelled:                "Cancelled",
}

// OrderStatuses returns the full closed set in declaration order.
func OrderStatuses() []OrderStatus {
	out := make([]OrderStatus, len(validOrderStatuses))
	copy(out, validOrderStatuses)
	return out
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// Label returns the human-facing display label.
func (o OrderStatus) Label() string {
	if label, ok := orderStatusLabels[o]; ok {
		return label
	}
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further lifecycle transition is allowed.
func (o OrderStatus) IsTerminal() bool {
	switch o {
	case OrderStatusPaid, OrderStatusReturned, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
