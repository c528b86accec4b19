package workorders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/motorforge/workshop-backend/pkg/db/models"
	"github.com/motorforge/workshop-backend/pkg/enums"
	"github.com/motorforge/workshop-backend/pkg/pagination"
)

func setupWorkOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// one named in-memory database per test, so rows never leak between tests
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number INTEGER NOT NULL UNIQUE,
  title TEXT NOT NULL,
  description TEXT,
  status TEXT NOT NULL DEFAULT 'received',
  priority TEXT NOT NULL DEFAULT 'normal',
  category_id TEXT,
  notes TEXT,
  estimated_completion DATETIME,
  actual_completion DATETIME,
  total_cost NUMERIC NOT NULL DEFAULT 0,
  customer_id TEXT NOT NULL,
  created_by TEXT NOT NULL,
  updated_by TEXT NOT NULL,
  assigned_to TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  type TEXT NOT NULL,
  received INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	components := `
CREATE TABLE IF NOT EXISTS order_item_components (
  id TEXT PRIMARY KEY,
  order_item_id TEXT NOT NULL,
  name TEXT NOT NULL,
  received INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`
	orderServices := `
CREATE TABLE IF NOT EXISTS order_services (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  order_item_id TEXT NOT NULL,
  service_key TEXT NOT NULL,
  measurement TEXT,
  is_budgeted INTEGER NOT NULL DEFAULT 0,
  base_price NUMERIC NOT NULL DEFAULT 0,
  net_price NUMERIC NOT NULL DEFAULT 0,
  is_authorized INTEGER NOT NULL DEFAULT 0,
  is_completed INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (order_item_id, service_key)
);`
	motorInfos := `
CREATE TABLE IF NOT EXISTS motor_infos (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL UNIQUE,
  down_payment NUMERIC NOT NULL DEFAULT 0,
  total_cost NUMERIC NOT NULL DEFAULT 0,
  is_fully_paid INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	histories := `
CREATE TABLE IF NOT EXISTS order_histories (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  field TEXT NOT NULL,
  old_value TEXT,
  new_value TEXT,
  changed_by TEXT NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderItems).Error)
	require.NoError(t, db.Exec(components).Error)
	require.NoError(t, db.Exec(orderServices).Error)
	require.NoError(t, db.Exec(motorInfos).Error)
	require.NoError(t, db.Exec(histories).Error)
	return db
}

func insertOrder(t *testing.T, db *gorm.DB, number int64, status enums.OrderStatus, customerID uuid.UUID, created time.Time) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:          uuid.New(),
		OrderNumber: number,
		Title:       "Engine rebuild",
		Status:      status,
		Priority:    enums.PriorityNormal,
		TotalCost:   decimal.Zero,
		CustomerID:  customerID,
		CreatedBy:   uuid.New(),
		UpdatedBy:   uuid.New(),
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestRepositoryListOrders_pagination(t *testing.T) {
	db := setupWorkOrdersTestDB(t)
	repo := NewRepository(db)

	customer := uuid.New()
	now := time.Now().UTC()
	insertOrder(t, db, 1, enums.OrderStatusInProgress, customer, now.Add(-time.Hour))
	insertOrder(t, db, 2, enums.OrderStatusAwaitingReview, customer, now)

	list, err := repo.ListOrders(context.Background(), pagination.Params{Limit: 1}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	assert.NotEmpty(t, list.NextCursor)
	assert.Equal(t, int64(2), list.Orders[0].OrderNumber)
	assert.Equal(t, enums.TrackingStatusFor(enums.OrderStatusAwaitingReview), list.Orders[0].TrackingStatus)

	second, err := repo.ListOrders(context.Background(), pagination.Params{Limit: 1, Cursor: list.NextCursor}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, second.Orders, 1)
	assert.Equal(t, int64(1), second.Orders[0].OrderNumber)
	assert.Empty(t, second.NextCursor)
}

func TestRepositoryListOrders_filters(t *testing.T) {
	db := setupWorkOrdersTestDB(t)
	repo := NewRepository(db)

	customerA := uuid.New()
	customerB := uuid.New()
	now := time.Now().UTC()
	insertOrder(t, db, 1, enums.OrderStatusInProgress, customerA, now.Add(-2*time.Hour))
	insertOrder(t, db, 2, enums.OrderStatusDelivered, customerA, now.Add(-time.Hour))
	insertOrder(t, db, 3, enums.OrderStatusInProgress, customerB, now)

	status := enums.OrderStatusInProgress
	list, err := repo.ListOrders(context.Background(), pagination.Params{}, ListFilters{
		Status:     &status,
		CustomerID: &customerA,
	})
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, int64(1), list.Orders[0].OrderNumber)
}

func TestRepositoryUpsertOrderServices(t *testing.T) {
	db := setupWorkOrdersTestDB(t)
	repo := NewRepository(db)

	order := insertOrder(t, db, 1, enums.OrderStatusAwaitingReview, uuid.New(), time.Now().UTC())
	itemID := uuid.New()

	first := models.OrderService{
		ID:          uuid.New(),
		OrderID:     order.ID,
		OrderItemID: itemID,
		ServiceKey:  "bore_hone",
		IsBudgeted:  true,
		BasePrice:   decimal.NewFromInt(100),
		NetPrice:    decimal.NewFromInt(90),
	}
	require.NoError(t, repo.UpsertOrderServices(context.Background(), []models.OrderService{first}))

	resubmitted := first
	resubmitted.ID = uuid.New()
	resubmitted.NetPrice = decimal.NewFromInt(120)
	require.NoError(t, repo.UpsertOrderServices(context.Background(), []models.OrderService{resubmitted}))

	services, err := repo.FindServicesByOrder(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.True(t, services[0].NetPrice.Equal(decimal.NewFromInt(120)))
}

func TestRepositoryAuthorizeServicesScopedToOrder(t *testing.T) {
	db := setupWorkOrdersTestDB(t)
	repo := NewRepository(db)

	order := insertOrder(t, db, 1, enums.OrderStatusAwaitingCustomerApproval, uuid.New(), time.Now().UTC())
	other := insertOrder(t, db, 2, enums.OrderStatusAwaitingCustomerApproval, uuid.New(), time.Now().UTC())

	mine := models.OrderService{
		ID: uuid.New(), OrderID: order.ID, OrderItemID: uuid.New(),
		ServiceKey: "bore_hone", IsBudgeted: true,
	}
	foreign := models.OrderService{
		ID: uuid.New(), OrderID: other.ID, OrderItemID: uuid.New(),
		ServiceKey: "deck_mill", IsBudgeted: true,
	}
	require.NoError(t, db.Create(&mine).Error)
	require.NoError(t, db.Create(&foreign).Error)

	affected, err := repo.AuthorizeServices(context.Background(), order.ID, []uuid.UUID{mine.ID, foreign.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
}

func TestRepositoryFindLastStatusChange(t *testing.T) {
	db := setupWorkOrdersTestDB(t)
	repo := NewRepository(db)

	order := insertOrder(t, db, 1, enums.OrderStatusOnHold, uuid.New(), time.Now().UTC())
	actor := uuid.New()
	older := models.OrderHistory{
		ID: uuid.New(), OrderID: order.ID, Field: "status",
		OldValue: strPtr("received"), NewValue: strPtr("in_progress"),
		ChangedBy: actor, CreatedAt: time.Now().UTC().Add(-time.Minute),
	}
	newer := models.OrderHistory{
		ID: uuid.New(), OrderID: order.ID, Field: "status",
		OldValue: strPtr("in_progress"), NewValue: strPtr("on_hold"),
		ChangedBy: actor, CreatedAt: time.Now().UTC(),
	}
	priorityRow := models.OrderHistory{
		ID: uuid.New(), OrderID: order.ID, Field: "priority",
		OldValue: strPtr("normal"), NewValue: strPtr("urgent"),
		ChangedBy: actor, CreatedAt: time.Now().UTC().Add(time.Minute),
	}
	require.NoError(t, repo.InsertHistory(context.Background(), []models.OrderHistory{older, newer, priorityRow}))

	last, err := repo.FindLastStatusChange(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, last.OldValue)
	assert.Equal(t, "in_progress", *last.OldValue)
	assert.Equal(t, "on_hold", *last.NewValue)
}
