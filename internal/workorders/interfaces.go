package workorders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/motorforge/workshop-backend/pkg/db/models"
	"github.com/motorforge/workshop-backend/pkg/pagination"
)

// Repository defines persistence operations for the work-order tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindOrderForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, updates map[string]any) error
	FindItemIDsByOrder(ctx context.Context, orderID uuid.UUID) ([]uuid.UUID, error)
	UpsertOrderServices(ctx context.Context, services []models.OrderService) error
	FindServicesByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderService, error)
	AuthorizeServices(ctx context.Context, orderID uuid.UUID, serviceIDs []uuid.UUID) (int64, error)
	CompleteServices(ctx context.Context, orderID uuid.UUID, serviceIDs []uuid.UUID) (int64, error)
	FindMotorInfo(ctx context.Context, orderID uuid.UUID) (*models.MotorInfo, error)
	InsertMotorInfo(ctx context.Context, info *models.MotorInfo) error
	UpdateMotorInfo(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
	InsertHistory(ctx context.Context, rows []models.OrderHistory) error
	FindLastStatusChange(ctx context.Context, orderID uuid.UUID) (*models.OrderHistory, error)
	FindHistoryByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderHistory, error)
	ListOrders(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error)
}
