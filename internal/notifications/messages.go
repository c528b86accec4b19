package notifications

import (
	"fmt"

	"github.com/motorforge/workshop-backend/pkg/enums"
	"github.com/motorforge/workshop-backend/pkg/outbox/payloads"
)

// statusMessages maps lifecycle statuses to the customer-facing copy. Statuses
// absent here fall back to a generic line built from the status label.
var statusMessages = map[enums.OrderStatus]struct {
	title   string
	message string
}{
	enums.OrderStatusAwaitingReview: {
		title:   "Order received",
		message: "We received your engine and will review it shortly.",
	},
	enums.OrderStatusAwaitingCustomerApproval: {
		title:   "Quote ready",
		message: "Your repair quote is ready. Please review and approve the services.",
	},
	enums.OrderStatusReadyForWork: {
		title:   "Approval recorded",
		message: "Thanks for approving. Your repair is scheduled to start.",
	},
	enums.OrderStatusInProgress: {
		title:   "Work started",
		message: "Our technicians have started working on your engine.",
	},
	enums.OrderStatusOnHold: {
		title:   "Order on hold",
		message: "Your order was placed on hold. We will contact you with details.",
	},
	enums.OrderStatusReadyForDelivery: {
		title:   "Ready for pickup",
		message: "Your engine is ready. You can pick it up at the shop.",
	},
	enums.OrderStatusDelivered: {
		title:   "Order delivered",
		message: "Your engine has been delivered. Thank you for trusting us.",
	},
	enums.OrderStatusPaid: {
		title:   "Payment received",
		message: "We received your payment. The order is now closed.",
	},
	enums.OrderStatusNotPaid: {
		title:   "Payment pending",
		message: "Your order was delivered with an outstanding balance.",
	},
	enums.OrderStatusCancelled: {
		title:   "Order cancelled",
		message: "Your order was cancelled. Contact us if this is unexpected.",
	},
}

func customerStatusCopy(payload payloads.OrderStatusChangedEvent) (string, string) {
	if copyFor, ok := statusMessages[payload.NewStatus]; ok {
		return copyFor.title, fmt.Sprintf("Order #%d: %s", payload.OrderNumber, copyFor.message)
	}
	return "Order updated", fmt.Sprintf("Order #%d status changed to %s.",
		payload.OrderNumber, payload.NewStatus.Label())
}

func adminAuditCopy(payload payloads.OrderStatusChangedEvent) (string, string) {
	return fmt.Sprintf("Order #%d status change", payload.OrderNumber),
		fmt.Sprintf("Order #%d moved from %s to %s.",
			payload.OrderNumber, payload.OldStatus.Label(), payload.NewStatus.Label())
}

func adminFieldsCopy(payload payloads.OrderFieldsChangedEvent) (string, string) {
	return fmt.Sprintf("Order #%d updated", payload.OrderNumber),
		fmt.Sprintf("Order #%d had %d field(s) changed.", payload.OrderNumber, len(payload.Changes))
}

func orderLink(orderID fmt.Stringer) *string {
	link := fmt.Sprintf("/orders/%s", orderID)
	return &link
}
