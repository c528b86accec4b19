package workorders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/motorforge/workshop-backend/pkg/db/models"
	"github.com/motorforge/workshop-backend/pkg/enums"
	pkgerrors "github.com/motorforge/workshop-backend/pkg/errors"
	"github.com/motorforge/workshop-backend/pkg/outbox"
	"github.com/motorforge/workshop-backend/pkg/outbox/payloads"
	"github.com/motorforge/workshop-backend/pkg/pagination"
)

const orderNumberSequence = "order_number"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type sequenceSource interface {
	NextSequence(ctx context.Context, name string) (int64, error)
}

type catalogSource interface {
	FindActiveByKeys(ctx context.Context, keys []string) (map[string]models.CatalogService, error)
}

// Service defines the work-order lifecycle operations.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	SubmitBudget(ctx context.Context, input SubmitBudgetInput) (*models.Order, error)
	CustomerApproval(ctx context.Context, input CustomerApprovalInput) (*models.Order, error)
	MarkWorkCompleted(ctx context.Context, input MarkWorkCompletedInput) error
	MarkReadyForDelivery(ctx context.Context, input TransitionInput) error
	DeliverOrder(ctx context.Context, input TransitionInput) error
	StartWork(ctx context.Context, input TransitionInput) error
	RecordPayment(ctx context.Context, input RecordPaymentInput) error
	HoldOrder(ctx context.Context, input TransitionInput) error
	ResumeOrder(ctx context.Context, input TransitionInput) error
	CancelOrder(ctx context.Context, input TransitionInput) error
	UpdateOrderDetails(ctx context.Context, input UpdateOrderDetailsInput) (*models.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	outbox    outboxPublisher
	observer  *Observer
	catalog   catalogSource
	sequences sequenceSource
}

// ServiceParams bundles the lifecycle engine dependencies.
type ServiceParams struct {
	Repo      Repository
	Tx        txRunner
	Outbox    outboxPublisher
	Observer  *Observer
	Catalog   catalogSource
	Sequences sequenceSource
}

// NewService builds the lifecycle engine with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("work-order repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if params.Observer == nil {
		return nil, fmt.Errorf("change observer required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog source required")
	}
	if params.Sequences == nil {
		return nil, fmt.Errorf("sequence source required")
	}
	return &service{
		repo:      params.Repo,
		tx:        params.Tx,
		outbox:    params.Outbox,
		observer:  params.Observer,
		catalog:   params.Catalog,
		sequences: params.Sequences,
	}, nil
}

// CreateOrder persists the aggregate in one transaction, then advances
// received → awaiting_review as a second step. A follow-up failure leaves the
// order in received and is surfaced together with the created order so the
// caller can retry the advance.
func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if input.Title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order title required")
	}
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	priority := input.Priority
	if priority == "" {
		priority = enums.PriorityNormal
	}
	if !priority.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid priority %q", input.Priority))
	}
	for _, item := range input.Items {
		if !item.Type.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid item type %q", item.Type))
		}
	}

	number, err := s.sequences.NextSequence(ctx, orderNumberSequence)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate order number")
	}

	order := &models.Order{
		OrderNumber:         number,
		Title:               input.Title,
		Description:         input.Description,
		Status:              enums.OrderStatusReceived,
		Priority:            priority,
		CategoryID:          input.CategoryID,
		Notes:               input.Notes,
		EstimatedCompletion: input.EstimatedCompletion,
		TotalCost:           decimal.Zero,
		CustomerID:          input.CustomerID,
		CreatedBy:           input.Actor.UserID,
		UpdatedBy:           input.Actor.UserID,
	}
	if input.MotorItemsEnabled {
		downPayment := decimal.Zero
		if input.DownPayment != nil {
			downPayment = *input.DownPayment
		}
		order.MotorInfo = &models.MotorInfo{DownPayment: downPayment}
		for _, item := range input.Items {
			orderItem := models.OrderItem{Type: item.Type, Received: true}
			for _, name := range item.Components {
				orderItem.Components = append(orderItem.Components, models.OrderItemComponent{
					Name:     name,
					Received: true,
				})
			}
			order.Items = append(order.Items, orderItem)
		}
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		itemTypes := make([]enums.ItemType, 0, len(order.Items))
		for _, item := range order.Items {
			itemTypes = append(itemTypes, item.Type)
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         actorRef(input.Actor),
			Data: payloads.OrderCreatedEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				CustomerID:  order.CustomerID,
				Status:      order.Status,
				Priority:    order.Priority,
				ItemTypes:   itemTypes,
				CreatedBy:   order.CreatedBy,
			},
		}
		return s.outbox.EmitIfNotExists(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}

	// Second phase: advance to awaiting_review. Not rolled into the creation
	// transaction; on failure the order stays in received and the error is
	// returned alongside the created aggregate.
	advanceErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		locked, err := repo.FindOrderForUpdate(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		if err := ensureStatus(locked.Status, enums.OrderStatusAwaitingReview, enums.OrderStatusReceived); err != nil {
			return err
		}
		return s.transition(ctx, tx, repo, locked, enums.OrderStatusAwaitingReview, input.Actor)
	})

	created, loadErr := s.repo.FindOrder(ctx, order.ID)
	if loadErr != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, loadErr, "reload created order")
	}
	if advanceErr != nil {
		return created, pkgerrors.Wrap(pkgerrors.CodeDependency, advanceErr, "order created but advance to awaiting_review failed")
	}
	return created, nil
}

func (s *service) SubmitBudget(ctx context.Context, input SubmitBudgetInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one budget line required")
	}
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	keys := make([]string, 0, len(input.Lines))
	for _, line := range input.Lines {
		if line.OrderItemID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "order item id required on every budget line")
		}
		if line.ServiceKey == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "service key required on every budget line")
		}
		keys = append(keys, line.ServiceKey)
	}

	catalog, err := s.catalog.FindActiveByKeys(ctx, keys)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load service catalog")
	}
	for _, key := range keys {
		if _, ok := catalog[key]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("catalog service %q not found", key))
		}
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.lockOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if err := ensureStatus(order.Status, enums.OrderStatusReviewed, enums.OrderStatusAwaitingReview); err != nil {
			return err
		}

		itemIDs, err := repo.FindItemIDsByOrder(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order items")
		}
		known := make(map[uuid.UUID]struct{}, len(itemIDs))
		for _, id := range itemIDs {
			known[id] = struct{}{}
		}

		rows := make([]models.OrderService, 0, len(input.Lines))
		for _, line := range input.Lines {
			if _, ok := known[line.OrderItemID]; !ok {
				return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("order item %s does not belong to order", line.OrderItemID))
			}
			entry := catalog[line.ServiceKey]
			rows = append(rows, models.OrderService{
				OrderID:     order.ID,
				OrderItemID: line.OrderItemID,
				ServiceKey:  line.ServiceKey,
				Measurement: line.Measurement,
				IsBudgeted:  true,
				BasePrice:   entry.BasePrice,
				NetPrice:    entry.NetPrice,
			})
		}
		if err := repo.UpsertOrderServices(ctx, rows); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert budget lines")
		}

		total, err := s.recomputeTotals(ctx, repo, order, totalsBudgeted)
		if err != nil {
			return err
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderBudgeted,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         actorRef(input.Actor),
			Data: payloads.OrderBudgetedEvent{
				OrderID:      order.ID,
				OrderNumber:  order.OrderNumber,
				CustomerID:   order.CustomerID,
				TotalCost:    total,
				ServiceCount: len(rows),
			},
		}
		if err := s.outbox.EmitIfNotExists(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue budget event")
		}

		return s.transition(ctx, tx, repo, order, enums.OrderStatusReviewed, input.Actor)
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, input.OrderID)
}

func (s *service) CustomerApproval(ctx context.Context, input CustomerApprovalInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if len(input.ServiceIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one service must be authorized")
	}
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.DownPayment != nil && input.DownPayment.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "down payment cannot be negative")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.lockOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if err := ensureStatus(order.Status, enums.OrderStatusReadyForWork, enums.OrderStatusAwaitingCustomerApproval); err != nil {
			return err
		}

		affected, err := repo.AuthorizeServices(ctx, order.ID, input.ServiceIDs)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "authorize services")
		}
		if affected != int64(len(input.ServiceIDs)) {
			return pkgerrors.New(pkgerrors.CodeValidation, "one or more services do not belong to the order")
		}

		if input.DownPayment != nil {
			if err := s.ensureMotorInfo(ctx, repo, order.ID); err != nil {
				return err
			}
			if err := repo.UpdateMotorInfo(ctx, order.ID, map[string]any{"down_payment": *input.DownPayment}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update down payment")
			}
		}

		total, err := s.recomputeTotals(ctx, repo, order, totalsAuthorized)
		if err != nil {
			return err
		}

		services, err := repo.FindServicesByOrder(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload services")
		}
		var approved, declined []string
		for _, svc := range services {
			if svc.IsAuthorized {
				approved = append(approved, svc.ServiceKey)
			} else if svc.IsBudgeted {
				declined = append(declined, svc.ServiceKey)
			}
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderApproved,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         actorRef(input.Actor),
			Data: payloads.OrderApprovedEvent{
				OrderID:      order.ID,
				OrderNumber:  order.OrderNumber,
				CustomerID:   order.CustomerID,
				ApprovedKeys: approved,
				DeclinedKeys: declined,
				TotalCost:    total,
			},
		}
		if err := s.outbox.EmitIfNotExists(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue approval event")
		}

		return s.transition(ctx, tx, repo, order, enums.OrderStatusReadyForWork, input.Actor)
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, input.OrderID)
}

func (s *service) MarkWorkCompleted(ctx context.Context, input MarkWorkCompletedInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if len(input.ServiceIDs) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one service must be completed")
	}
	if input.Actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.lockOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if err := ensureStatusIn(order.Status, "mark work completed",
			enums.OrderStatusReadyForWork, enums.OrderStatusInProgress); err != nil {
			return err
		}

		affected, err := repo.CompleteServices(ctx, order.ID, input.ServiceIDs)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete services")
		}
		if affected != int64(len(input.ServiceIDs)) {
			return pkgerrors.New(pkgerrors.CodeValidation, "one or more services do not belong to the order")
		}
		// completion does not affect pricing; no totals recompute, no transition
		return nil
	})
}

func (s *service) MarkReadyForDelivery(ctx context.Context, input TransitionInput) error {
	return s.guardedTransition(ctx, input, enums.OrderStatusReadyForDelivery,
		[]enums.OrderStatus{enums.OrderStatusReadyForWork, enums.OrderStatusInProgress},
		func(tx *gorm.DB, repo Repository, order *models.Order) error {
			if _, err := s.recomputeTotals(ctx, repo, order, totalsAuthorized); err != nil {
				return err
			}
			event := outbox.DomainEvent{
				EventType:     enums.EventOrderReadyForPickup,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Version:       1,
				Actor:         actorRef(input.Actor),
				Data: payloads.OrderReadyForPickupEvent{
					OrderID:     order.ID,
					OrderNumber: order.OrderNumber,
					CustomerID:  order.CustomerID,
				},
			}
			return s.outbox.EmitIfNotExists(ctx, tx, event)
		})
}

func (s *service) DeliverOrder(ctx context.Context, input TransitionInput) error {
	return s.guardedTransition(ctx, input, enums.OrderStatusDelivered,
		[]enums.OrderStatus{enums.OrderStatusReadyForDelivery, enums.OrderStatusCompleted},
		func(tx *gorm.DB, repo Repository, order *models.Order) error {
			now := time.Now()
			if err := repo.UpdateOrder(ctx, order.ID, map[string]any{"actual_completion": now}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set actual completion")
			}
			order.ActualCompletion = &now
			event := outbox.DomainEvent{
				EventType:     enums.EventOrderDelivered,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Version:       1,
				Actor:         actorRef(input.Actor),
				Data: payloads.OrderDeliveredEvent{
					OrderID:     order.ID,
					OrderNumber: order.OrderNumber,
					CustomerID:  order.CustomerID,
					DeliveredAt: now,
				},
			}
			return s.outbox.EmitIfNotExists(ctx, tx, event)
		})
}

func (s *service) StartWork(ctx context.Context, input TransitionInput) error {
	return s.guardedTransition(ctx, input, enums.OrderStatusInProgress,
		[]enums.OrderStatus{enums.OrderStatusReadyForWork, enums.OrderStatusOpen}, nil)
}

func (s *service) RecordPayment(ctx context.Context, input RecordPaymentInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.Actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.Amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.lockOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if err := ensureStatus(order.Status, enums.OrderStatusPaid,
			enums.OrderStatusDelivered, enums.OrderStatusNotPaid); err != nil {
			return err
		}

		if err := s.ensureMotorInfo(ctx, repo, order.ID); err != nil {
			return err
		}
		if err := repo.UpdateMotorInfo(ctx, order.ID, map[string]any{"is_fully_paid": true}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark motor info paid")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderPaid,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         actorRef(input.Actor),
			Data: payloads.OrderPaidEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				CustomerID:  order.CustomerID,
				Amount:      input.Amount,
				PaidAt:      time.Now(),
			},
		}
		if err := s.outbox.EmitIfNotExists(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue payment event")
		}

		return s.transition(ctx, tx, repo, order, enums.OrderStatusPaid, input.Actor)
	})
}

// ensureMotorInfo backfills the 1:1 motor info row for orders created with
// motor items disabled, so payment fields always have a row to land on.
func (s *service) ensureMotorInfo(ctx context.Context, repo Repository, orderID uuid.UUID) error {
	_, err := repo.FindMotorInfo(ctx, orderID)
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load motor info")
	}
	info := &models.MotorInfo{
		ID:          uuid.New(),
		OrderID:     orderID,
		DownPayment: decimal.Zero,
		TotalCost:   decimal.Zero,
	}
	if err := repo.InsertMotorInfo(ctx, info); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create motor info")
	}
	return nil
}

func (s *service) HoldOrder(ctx context.Context, input TransitionInput) error {
	return s.guardedTransition(ctx, input, enums.OrderStatusOnHold, holdableStatuses, nil)
}

// ResumeOrder returns a held order to its pre-hold status, read back from the
// status history trail.
func (s *service) ResumeOrder(ctx context.Context, input TransitionInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.Actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.lockOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if order.Status != enums.OrderStatusOnHold {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot resume: status must be one of [on_hold], got %s", order.Status))
		}

		last, err := repo.FindLastStatusChange(ctx, order.ID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "no pre-hold status recorded")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load status history")
		}
		if last.OldValue == nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "no pre-hold status recorded")
		}
		previous, err := enums.ParseOrderStatus(*last.OldValue)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "corrupt status history")
		}

		return s.transition(ctx, tx, repo, order, previous, input.Actor)
	})
}

func (s *service) CancelOrder(ctx context.Context, input TransitionInput) error {
	return s.guardedTransition(ctx, input, enums.OrderStatusCancelled, cancellableStatuses(), nil)
}

func (s *service) UpdateOrderDetails(ctx context.Context, input UpdateOrderDetailsInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Priority != nil && !input.Priority.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid priority %q", *input.Priority))
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.lockOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("order is closed (%s); details can no longer change", order.Status))
		}

		updates := map[string]any{}
		var changes []Change

		if input.Title != nil && *input.Title != order.Title {
			changes = append(changes, Change{Field: trackedFieldTitle, Old: strPtr(order.Title), New: input.Title})
			updates["title"] = *input.Title
		}
		if input.Description != nil && !strPtrEqual(input.Description, order.Description) {
			changes = append(changes, Change{Field: trackedFieldDescription, Old: order.Description, New: input.Description})
			updates["description"] = *input.Description
		}
		if input.Notes != nil && !strPtrEqual(input.Notes, order.Notes) {
			changes = append(changes, Change{Field: trackedFieldNotes, Old: order.Notes, New: input.Notes})
			updates["notes"] = *input.Notes
		}
		if input.Priority != nil && *input.Priority != order.Priority {
			changes = append(changes, Change{
				Field: trackedFieldPriority,
				Old:   strPtr(order.Priority.String()),
				New:   strPtr(input.Priority.String()),
			})
			updates["priority"] = *input.Priority
		}
		if input.CategoryID != nil && !uuidPtrEqual(input.CategoryID, order.CategoryID) {
			changes = append(changes, Change{
				Field: trackedFieldCategoryID,
				Old:   uuidPtrString(order.CategoryID),
				New:   uuidPtrString(input.CategoryID),
			})
			updates["category_id"] = *input.CategoryID
		}
		if input.AssignedTo != nil && !uuidPtrEqual(input.AssignedTo, order.AssignedTo) {
			changes = append(changes, Change{
				Field: trackedFieldAssignedTo,
				Old:   uuidPtrString(order.AssignedTo),
				New:   uuidPtrString(input.AssignedTo),
			})
			updates["assigned_to"] = *input.AssignedTo
		}
		if input.EstimatedCompletion != nil && !timePtrEqual(input.EstimatedCompletion, order.EstimatedCompletion) {
			changes = append(changes, Change{
				Field: trackedFieldEstimatedCompletion,
				Old:   timePtrString(order.EstimatedCompletion),
				New:   timePtrString(input.EstimatedCompletion),
			})
			updates["estimated_completion"] = *input.EstimatedCompletion
		}

		if len(changes) == 0 {
			return nil
		}

		updates["updated_by"] = input.Actor.UserID
		if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order details")
		}
		order.UpdatedBy = input.Actor.UserID

		return s.observer.Observe(ctx, tx, repo, order, changes, input.Actor)
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, input.OrderID)
}

func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindOrder(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) ListOrders(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error) {
	list, err := s.repo.ListOrders(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

// guardedTransition wraps the common single-step transition: lock, check the
// allow-list, run the optional in-transaction step, then transition.
func (s *service) guardedTransition(ctx context.Context, input TransitionInput, target enums.OrderStatus, allowed []enums.OrderStatus, step func(tx *gorm.DB, repo Repository, order *models.Order) error) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.Actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.lockOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if err := ensureStatus(order.Status, target, allowed...); err != nil {
			return err
		}
		if step != nil {
			if err := step(tx, repo, order); err != nil {
				return err
			}
		}
		return s.transition(ctx, tx, repo, order, target, input.Actor)
	})
}

// transition sets status and updated_by together, invokes the observer, and
// chains any follow-up transition from the lookup table.
func (s *service) transition(ctx context.Context, tx *gorm.DB, repo Repository, order *models.Order, target enums.OrderStatus, actor Actor) error {
	depth := 0
	for {
		old := order.Status
		updates := map[string]any{
			"status":     target,
			"updated_by": actor.UserID,
		}
		if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		order.Status = target
		order.UpdatedBy = actor.UserID

		change := Change{
			Field: trackedFieldStatus,
			Old:   strPtr(old.String()),
			New:   strPtr(target.String()),
		}
		if err := s.observer.Observe(ctx, tx, repo, order, []Change{change}, actor); err != nil {
			return err
		}

		next, ok := followupTransitions[target]
		if !ok {
			return nil
		}
		depth++
		if depth >= maxFollowupDepth {
			return pkgerrors.New(pkgerrors.CodeInternal,
				fmt.Sprintf("follow-up transition loop exceeded depth %d at %s", maxFollowupDepth, target))
		}
		target = next
	}
}

func (s *service) lockOrder(ctx context.Context, repo Repository, id uuid.UUID) (*models.Order, error) {
	order, err := repo.FindOrderForUpdate(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func actorRef(actor Actor) *outbox.ActorRef {
	return &outbox.ActorRef{UserID: actor.UserID, Role: actor.Role.String()}
}

func strPtr(s string) *string { return &s }

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func uuidPtrEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func uuidPtrString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	return strPtr(id.String())
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func timePtrString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	return strPtr(t.UTC().Format(time.RFC3339))
}
