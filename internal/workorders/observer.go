package workorders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/motorforge/workshop-backend/pkg/db/models"
	"github.com/motorforge/workshop-backend/pkg/enums"
	pkgerrors "github.com/motorforge/workshop-backend/pkg/errors"
	"github.com/motorforge/workshop-backend/pkg/outbox"
	"github.com/motorforge/workshop-backend/pkg/outbox/payloads"
)

// Tracked field names recorded in order_histories.
const (
	trackedFieldStatus              = "status"
	trackedFieldPriority            = "priority"
	trackedFieldAssignedTo          = "assigned_to"
	trackedFieldEstimatedCompletion = "estimated_completion"
	trackedFieldTitle               = "title"
	trackedFieldDescription         = "description"
	trackedFieldNotes               = "notes"
	trackedFieldCategoryID          = "category_id"
)

// Change records one tracked-field mutation as string snapshots.
type Change struct {
	Field string
	Old   *string
	New   *string
}

// Observer reacts to persisted order mutations: it appends one immutable
// history row per changed tracked field and queues the matching outbox
// events. It owns no state of its own.
type Observer struct {
	outbox outboxPublisher
}

// NewObserver builds the change observer.
func NewObserver(publisher outboxPublisher) (*Observer, error) {
	if publisher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "outbox publisher required")
	}
	return &Observer{outbox: publisher}, nil
}

// Observe must be called inside the same transaction that persisted the
// mutation; history rows and outbox rows commit or roll back with it.
func (o *Observer) Observe(ctx context.Context, tx *gorm.DB, repo Repository, order *models.Order, changes []Change, actor Actor) error {
	if len(changes) == 0 {
		return nil
	}

	actorID := actor.UserID
	if actorID == uuid.Nil {
		// system-initiated mutation: attribute to the order's last updater
		actorID = order.UpdatedBy
	}

	rows := make([]models.OrderHistory, 0, len(changes))
	for _, change := range changes {
		rows = append(rows, models.OrderHistory{
			OrderID:   order.ID,
			Field:     change.Field,
			OldValue:  change.Old,
			NewValue:  change.New,
			ChangedBy: actorID,
		})
	}
	if err := repo.InsertHistory(ctx, rows); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert order history")
	}

	statusChange, fieldChanges := splitChanges(changes)

	if statusChange != nil {
		event := outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: actorID, Role: actor.Role.String()},
			Data: payloads.OrderStatusChangedEvent{
				OrderID:        order.ID,
				OrderNumber:    order.OrderNumber,
				CustomerID:     order.CustomerID,
				OldStatus:      derefStatus(statusChange.Old),
				NewStatus:      order.Status,
				TrackingStatus: enums.TrackingStatusFor(order.Status),
				ChangedBy:      actorID,
			},
		}
		if err := o.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue status change event")
		}
	}

	if len(fieldChanges) > 0 {
		eventChanges := make([]payloads.FieldChange, 0, len(fieldChanges))
		for _, change := range fieldChanges {
			eventChanges = append(eventChanges, payloads.FieldChange{
				Field:    change.Field,
				OldValue: change.Old,
				NewValue: change.New,
			})
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventOrderFieldsChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: actorID, Role: actor.Role.String()},
			Data: payloads.OrderFieldsChangedEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				CustomerID:  order.CustomerID,
				Changes:     eventChanges,
				ChangedBy:   actorID,
			},
		}
		if err := o.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue fields change event")
		}
	}

	return nil
}

func splitChanges(changes []Change) (*Change, []Change) {
	var statusChange *Change
	fields := make([]Change, 0, len(changes))
	for i := range changes {
		if changes[i].Field == trackedFieldStatus {
			statusChange = &changes[i]
			continue
		}
		fields = append(fields, changes[i])
	}
	return statusChange, fields
}

func derefStatus(value *string) enums.OrderStatus {
	if value == nil {
		return ""
	}
	return enums.OrderStatus(*value)
}
