package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/motorforge/workshop-backend/pkg/db/models"
	pkgerrors "github.com/motorforge/workshop-backend/pkg/errors"
)

// Service exposes the reference data used by budgeting and intake.
type Service interface {
	FindActiveByKeys(ctx context.Context, keys []string) (map[string]models.CatalogService, error)
	ListServices(ctx context.Context) ([]models.CatalogService, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
}

type service struct {
	repo Repository
}

// NewService builds the catalog read service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) FindActiveByKeys(ctx context.Context, keys []string) (map[string]models.CatalogService, error) {
	entries, err := s.repo.FindActiveByKeys(ctx, keys)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog services")
	}
	return entries, nil
}

func (s *service) ListServices(ctx context.Context) ([]models.CatalogService, error) {
	rows, err := s.repo.ListServices(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list catalog services")
	}
	return rows, nil
}

func (s *service) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return rows, nil
}

func (s *service) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	row, err := s.repo.FindCategory(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	return row, nil
}
