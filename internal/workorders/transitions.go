package workorders

import (
	"fmt"
	"strings"

	"github.com/motorforge/workshop-backend/pkg/enums"
	pkgerrors "github.com/motorforge/workshop-backend/pkg/errors"
)

// followupTransitions chains an automatic second transition after the keyed
// status commits. The engine loops over this table until no follow-up is
// defined, guarded against cycles.
var followupTransitions = map[enums.OrderStatus]enums.OrderStatus{
	enums.OrderStatusReviewed: enums.OrderStatusAwaitingCustomerApproval,
}

// maxFollowupDepth bounds the follow-up loop should the table ever grow a cycle.
const maxFollowupDepth = 16

// holdableStatuses are the active states an order can be suspended from.
var holdableStatuses = []enums.OrderStatus{
	enums.OrderStatusReceived,
	enums.OrderStatusAwaitingReview,
	enums.OrderStatusReviewed,
	enums.OrderStatusAwaitingCustomerApproval,
	enums.OrderStatusReadyForWork,
	enums.OrderStatusOpen,
	enums.OrderStatusInProgress,
	enums.OrderStatusReadyForDelivery,
}

// ensureStatus validates the transition precondition against the current
// status. The resulting error names both the allowed set and the actual
// status so callers can correct the request.
func ensureStatus(current, target enums.OrderStatus, allowed ...enums.OrderStatus) error {
	return ensureStatusIn(current, fmt.Sprintf("transition to %s", target), allowed...)
}

// ensureStatusIn is the precondition check for operations that mutate an order
// without changing its status; operation names the attempted action.
func ensureStatusIn(current enums.OrderStatus, operation string, allowed ...enums.OrderStatus) error {
	for _, status := range allowed {
		if current == status {
			return nil
		}
	}
	names := make([]string, 0, len(allowed))
	for _, status := range allowed {
		names = append(names, status.String())
	}
	return pkgerrors.New(
		pkgerrors.CodeStateConflict,
		fmt.Sprintf("cannot %s: status must be one of [%s], got %s",
			operation, strings.Join(names, ", "), current),
	)
}

// cancellableStatuses returns every non-terminal status.
func cancellableStatuses() []enums.OrderStatus {
	var out []enums.OrderStatus
	for _, status := range enums.OrderStatuses() {
		if status.IsTerminal() {
			continue
		}
		out = append(out, status)
	}
	return out
}
