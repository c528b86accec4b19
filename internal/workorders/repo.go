package workorders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/motorforge/workshop-backend/pkg/db/models"
	"github.com/motorforge/workshop-backend/pkg/enums"
	"github.com/motorforge/workshop-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a work-order repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("MotorInfo").
		Preload("Items.Components").
		Preload("Items.Services").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindOrderForUpdate loads the bare order row under a row lock so concurrent
// transitions serialize on the same aggregate.
func (r *repository) FindOrderForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) UpdateOrder(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) FindItemIDsByOrder(ctx context.Context, orderID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("order_id = ?", orderID).
		Pluck("id", &ids).Error
	return ids, err
}

// UpsertOrderServices inserts budget lines, updating the snapshot fields when
// the (order_item_id, service_key) pair already exists.
func (r *repository) UpsertOrderServices(ctx context.Context, services []models.OrderService) error {
	if len(services) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "order_item_id"}, {Name: "service_key"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"measurement", "is_budgeted", "base_price", "net_price", "updated_at",
			}),
		}).
		Create(&services).Error
}

func (r *repository) FindServicesByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderService, error) {
	var services []models.OrderService
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&services).Error
	return services, err
}

func (r *repository) AuthorizeServices(ctx context.Context, orderID uuid.UUID, serviceIDs []uuid.UUID) (int64, error) {
	if len(serviceIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&models.OrderService{}).
		Where("order_id = ? AND id IN ?", orderID, serviceIDs).
		Update("is_authorized", true)
	return res.RowsAffected, res.Error
}

func (r *repository) CompleteServices(ctx context.Context, orderID uuid.UUID, serviceIDs []uuid.UUID) (int64, error) {
	if len(serviceIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&models.OrderService{}).
		Where("order_id = ? AND id IN ?", orderID, serviceIDs).
		Update("is_completed", true)
	return res.RowsAffected, res.Error
}

func (r *repository) FindMotorInfo(ctx context.Context, orderID uuid.UUID) (*models.MotorInfo, error) {
	var info models.MotorInfo
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&info).Error
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (r *repository) InsertMotorInfo(ctx context.Context, info *models.MotorInfo) error {
	return r.db.WithContext(ctx).Create(info).Error
}

func (r *repository) UpdateMotorInfo(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.MotorInfo{}).
		Where("order_id = ?", orderID).
		Updates(updates).Error
}

func (r *repository) InsertHistory(ctx context.Context, rows []models.OrderHistory) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// FindLastStatusChange returns the most recent status history row, used to
// resume a held order into its pre-hold status.
func (r *repository) FindLastStatusChange(ctx context.Context, orderID uuid.UUID) (*models.OrderHistory, error) {
	var row models.OrderHistory
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND field = ?", orderID, trackedFieldStatus).
		Order("created_at DESC").
		Order("id DESC").
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) FindHistoryByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderHistory, error) {
	var rows []models.OrderHistory
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListOrders(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).Model(&models.Order{})
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Priority != nil {
		query = query.Where("priority = ?", *filters.Priority)
	}
	if filters.CustomerID != nil {
		query = query.Where("customer_id = ?", *filters.CustomerID)
	}
	if filters.StaffScopeID != nil {
		query = query.Where("created_by = ? OR assigned_to = ?", *filters.StaffScopeID, *filters.StaffScopeID)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	if q := filters.Query; q != "" {
		query = query.Where("title ILIKE ?", "%"+q+"%")
	}
	if cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Order
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit + 1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &OrderList{Orders: make([]OrderSummary, 0, len(rows))}
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	for _, row := range rows {
		list.Orders = append(list.Orders, summarize(row))
	}
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return list, nil
}

func summarize(order models.Order) OrderSummary {
	return OrderSummary{
		ID:             order.ID,
		OrderNumber:    order.OrderNumber,
		Title:          order.Title,
		Status:         order.Status,
		StatusLabel:    order.Status.Label(),
		TrackingStatus: enums.TrackingStatusFor(order.Status),
		Priority:       order.Priority,
		TotalCost:      order.TotalCost,
		CustomerID:     order.CustomerID,
		AssignedTo:     order.AssignedTo,
		CreatedAt:      order.CreatedAt,
	}
}
