package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/motorforge/workshop-backend/pkg/db/models"
	"github.com/motorforge/workshop-backend/pkg/enums"
	"github.com/motorforge/workshop-backend/pkg/logger"
	"github.com/motorforge/workshop-backend/pkg/outbox"
	"github.com/motorforge/workshop-backend/pkg/outbox/idempotency"
	"github.com/motorforge/workshop-backend/pkg/outbox/payloads"
)

const orderNotificationConsumer = "order-notifications"

type repository interface {
	Create(ctx context.Context, notification *models.Notification) error
	CreateBatch(ctx context.Context, notifications []models.Notification) error
}

type userDirectory interface {
	FindEmail(ctx context.Context, userID uuid.UUID) (string, error)
	ListActiveAdminIDs(ctx context.Context) ([]uuid.UUID, error)
}

// Consumer turns order lifecycle events into in-app notifications and
// customer emails. One instance serves one subscription; the handler covers
// every event type so the same consumer can drain both the orders and the
// notification streams.
type Consumer struct {
	repo         repository
	users        userDirectory
	mail         *MailDispatcher
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds an order notification consumer.
func NewConsumer(repo repository, users userDirectory, mail *MailDispatcher, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("user directory required")
	}
	if mail == nil {
		return nil, fmt.Errorf("mail dispatcher required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		users:        users,
		mail:         mail,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := enums.OutboxEventType(msg.Attributes["event_type"])
	fields := map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	}
	logCtx := c.logg.WithFields(ctx, fields)

	if !eventType.IsValid() {
		c.logg.Info(logCtx, "skipping unknown event")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, orderNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := c.handle(ctx, eventType, envelope.Data, logCtx); err != nil {
		c.logg.Error(logCtx, "notification handling failed", err)
		_ = c.idempotency.Delete(ctx, orderNotificationConsumer, eventID)
		return processResult{nack: true}
	}
	return processResult{ack: true}
}

func (c *Consumer) handle(ctx context.Context, eventType enums.OutboxEventType, data json.RawMessage, logCtx context.Context) error {
	switch eventType {
	case enums.EventOrderStatusChanged:
		return c.handleStatusChanged(ctx, data, logCtx)
	case enums.EventOrderFieldsChanged:
		return c.handleFieldsChanged(ctx, data, logCtx)
	case enums.EventOrderCreated:
		return c.handleCreated(ctx, data, logCtx)
	case enums.EventOrderBudgeted:
		return c.handleMilestoneMail(ctx, data, "Your repair quote is ready",
			"Your repair quote is ready for review. Log in to approve the services.")
	case enums.EventOrderApproved:
		return c.handleMilestoneMail(ctx, data, "Approval confirmed",
			"We recorded your approval. Work on your engine is scheduled.")
	case enums.EventOrderReadyForPickup:
		return c.handleMilestoneMail(ctx, data, "Your engine is ready",
			"Your engine is ready for pickup at the shop.")
	case enums.EventOrderDelivered:
		return c.handleMilestoneMail(ctx, data, "Order delivered",
			"Your order was delivered. Thank you for choosing us.")
	case enums.EventOrderPaid:
		return c.handlePaid(ctx, data, logCtx)
	case enums.EventNotificationRequested:
		return c.handleRequested(ctx, data, logCtx)
	default:
		c.logg.Info(logCtx, "event not handled")
		return nil
	}
}

func (c *Consumer) handleStatusChanged(ctx context.Context, data json.RawMessage, logCtx context.Context) error {
	var payload payloads.OrderStatusChangedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse status payload: %w", err)
	}
	if payload.CustomerID == uuid.Nil {
		return fmt.Errorf("customer id missing")
	}

	title, message := customerStatusCopy(payload)
	customerNote := &models.Notification{
		UserID:  payload.CustomerID,
		OrderID: &payload.OrderID,
		Type:    enums.NotificationTypeOrderUpdate,
		Title:   title,
		Message: message,
		Link:    orderLink(payload.OrderID),
	}
	if err := c.repo.Create(ctx, customerNote); err != nil {
		return err
	}

	auditTitle, auditMessage := adminAuditCopy(payload)
	if err := c.notifyAdmins(ctx, payload.OrderID, enums.NotificationTypeAudit, auditTitle, auditMessage); err != nil {
		return err
	}
	c.logg.Info(logCtx, "status change notifications created")
	return nil
}

func (c *Consumer) handleFieldsChanged(ctx context.Context, data json.RawMessage, logCtx context.Context) error {
	var payload payloads.OrderFieldsChangedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse fields payload: %w", err)
	}
	auditTitle, auditMessage := adminFieldsCopy(payload)
	if err := c.notifyAdmins(ctx, payload.OrderID, enums.NotificationTypeAudit, auditTitle, auditMessage); err != nil {
		return err
	}
	c.logg.Info(logCtx, "field change audit created")
	return nil
}

func (c *Consumer) handleCreated(ctx context.Context, data json.RawMessage, logCtx context.Context) error {
	var payload payloads.OrderCreatedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse created payload: %w", err)
	}
	if payload.CustomerID == uuid.Nil {
		return fmt.Errorf("customer id missing")
	}

	notification := &models.Notification{
		UserID:  payload.CustomerID,
		OrderID: &payload.OrderID,
		Type:    enums.NotificationTypeOrderUpdate,
		Title:   "Order created",
		Message: fmt.Sprintf("Order #%d was created for your engine repair.", payload.OrderNumber),
		Link:    orderLink(payload.OrderID),
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}

	email, err := c.users.FindEmail(ctx, payload.CustomerID)
	if err != nil {
		return fmt.Errorf("resolve customer email: %w", err)
	}
	c.mail.Dispatch(ctx, MailMessage{
		To:      email,
		Subject: fmt.Sprintf("Order #%d received", payload.OrderNumber),
		Body:    fmt.Sprintf("We created order #%d for your engine repair and will review it shortly.", payload.OrderNumber),
	})
	c.logg.Info(logCtx, "order created notification sent")
	return nil
}

type milestonePayload struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber int64     `json:"order_number"`
	CustomerID  uuid.UUID `json:"customer_id"`
}

func (c *Consumer) handleMilestoneMail(ctx context.Context, data json.RawMessage, subject, body string) error {
	var payload milestonePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse milestone payload: %w", err)
	}
	if payload.CustomerID == uuid.Nil {
		return fmt.Errorf("customer id missing")
	}
	email, err := c.users.FindEmail(ctx, payload.CustomerID)
	if err != nil {
		return fmt.Errorf("resolve customer email: %w", err)
	}
	c.mail.Dispatch(ctx, MailMessage{
		To:      email,
		Subject: fmt.Sprintf("%s (order #%d)", subject, payload.OrderNumber),
		Body:    body,
	})
	return nil
}

func (c *Consumer) handlePaid(ctx context.Context, data json.RawMessage, logCtx context.Context) error {
	var payload payloads.OrderPaidEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse paid payload: %w", err)
	}
	if payload.CustomerID == uuid.Nil {
		return fmt.Errorf("customer id missing")
	}

	notification := &models.Notification{
		UserID:  payload.CustomerID,
		OrderID: &payload.OrderID,
		Type:    enums.NotificationTypePayment,
		Title:   "Payment received",
		Message: fmt.Sprintf("We received your payment of %s for order #%d.", payload.Amount.StringFixed(2), payload.OrderNumber),
		Link:    orderLink(payload.OrderID),
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}

	email, err := c.users.FindEmail(ctx, payload.CustomerID)
	if err != nil {
		return fmt.Errorf("resolve customer email: %w", err)
	}
	c.mail.Dispatch(ctx, MailMessage{
		To:      email,
		Subject: fmt.Sprintf("Payment receipt for order #%d", payload.OrderNumber),
		Body:    fmt.Sprintf("We received %s. Order #%d is now closed. Thank you.", payload.Amount.StringFixed(2), payload.OrderNumber),
	})
	c.logg.Info(logCtx, "payment notifications sent")
	return nil
}

func (c *Consumer) handleRequested(ctx context.Context, data json.RawMessage, logCtx context.Context) error {
	var payload payloads.NotificationRequestedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse requested payload: %w", err)
	}
	if payload.UserID == uuid.Nil {
		return fmt.Errorf("user id missing")
	}
	notificationType := payload.Type
	if !notificationType.IsValid() {
		notificationType = enums.NotificationTypeSystem
	}
	notification := &models.Notification{
		UserID:  payload.UserID,
		Type:    notificationType,
		Title:   payload.Title,
		Message: payload.Message,
		Link:    payload.Link,
	}
	if payload.OrderID != uuid.Nil {
		orderID := payload.OrderID
		notification.OrderID = &orderID
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "requested notification created")
	return nil
}

func (c *Consumer) notifyAdmins(ctx context.Context, orderID uuid.UUID, notificationType enums.NotificationType, title, message string) error {
	adminIDs, err := c.users.ListActiveAdminIDs(ctx)
	if err != nil {
		return fmt.Errorf("resolve admin recipients: %w", err)
	}
	if len(adminIDs) == 0 {
		return nil
	}
	rows := make([]models.Notification, 0, len(adminIDs))
	for _, adminID := range adminIDs {
		id := orderID
		rows = append(rows, models.Notification{
			UserID:  adminID,
			OrderID: &id,
			Type:    notificationType,
			Title:   title,
			Message: message,
			Link:    orderLink(orderID),
		})
	}
	return c.repo.CreateBatch(ctx, rows)
}
