package enums

import "fmt"

// TrackingStatus is the simplified status set shown on the public tracking
// view. It collapses the full OrderStatus machine into eight customer-facing
// states.
type TrackingStatus string

const (
	TrackingStatusReceived         TrackingStatus = "received"
	TrackingStatusInReview         TrackingStatus = "in_review"
	TrackingStatusApproved         TrackingStatus = "approved"
	TrackingStatusInProgress       TrackingStatus = "in_progress"
	TrackingStatusReadyForDelivery TrackingStatus = "ready_for_delivery"
	TrackingStatusDelivered        TrackingStatus = "delivered"
	TrackingStatusOnHold           TrackingStatus = "on_hold"
	TrackingStatusCancelled        TrackingStatus = "cancelled"
)

var validTrackingStatuses = []TrackingStatus{
	TrackingStatusReceived,
	TrackingStatusInReview,
	TrackingStatusApproved,
	TrackingStatusInProgress,
	TrackingStatusReadyForDelivery,
	TrackingStatusDelivered,
	TrackingStatusOnHold,
	TrackingStatusCancelled,
}

var trackingByOrderStatus = map[OrderStatus]TrackingStatus{
	OrderStatusReceived:                 TrackingStatusReceived,
	OrderStatusAwaitingReview:           TrackingStatusInReview,
	OrderStatusReviewed:                 TrackingStatusInReview,
	OrderStatusAwaitingCustomerApproval: TrackingStatusInReview,
	OrderStatusReadyForWork:             TrackingStatusApproved,
	OrderStatusOpen:                     TrackingStatusApproved,
	OrderStatusInProgress:               TrackingStatusInProgress,
	OrderStatusReadyForDelivery:         TrackingStatusReadyForDelivery,
	OrderStatusCompleted:                TrackingStatusReadyForDelivery,
	OrderStatusDelivered:                TrackingStatusDelivered,
	OrderStatusPaid:                     TrackingStatusDelivered,
	OrderStatusNotPaid:                  TrackingStatusDelivered,
	OrderStatusReturned:                 TrackingStatusDelivered,
	OrderStatusOnHold:                   TrackingStatusOnHold,
	OrderStatusCancelled:                TrackingStatusCancelled,
}

// TrackingStatusFor maps a full lifecycle status onto the simplified set.
func TrackingStatusFor(status OrderStatus) TrackingStatus {
	if tracking, ok := trackingByOrderStatus[status]; ok {
		return tracking
	}
	return TrackingStatusReceived
}

// String implements fmt.Stringer.
func (t TrackingStatus) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TrackingStatus.
func (t TrackingStatus) IsValid() bool {
	for _, candidate := range validTrackingStatuses {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTrackingStatus converts raw input into a TrackingStatus.
func ParseTrackingStatus(value string) (TrackingStatus, error) {
	for _, candidate := range validTrackingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid tracking status %q", value)
}
