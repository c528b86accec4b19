package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/motorforge/workshop-backend/pkg/db/models"
)

// Repository exposes read access to the service catalog and categories.
type Repository interface {
	FindActiveByKeys(ctx context.Context, keys []string) (map[string]models.CatalogService, error)
	ListServices(ctx context.Context) ([]models.CatalogService, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	FindCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindActiveByKeys(ctx context.Context, keys []string) (map[string]models.CatalogService, error) {
	if len(keys) == 0 {
		return map[string]models.CatalogService{}, nil
	}
	var rows []models.CatalogService
	err := r.db.WithContext(ctx).
		Where("key IN ? AND is_active = ?", keys, true).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.CatalogService, len(rows))
	for _, row := range rows {
		out[row.Key] = row
	}
	return out, nil
}

func (r *repository) ListServices(ctx context.Context) ([]models.CatalogService, error) {
	var rows []models.CatalogService
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("label ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var row models.Category
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}
