package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/suteetoe/storefront/internal/model"
	"go.uber.org/zap"
)

const categoriesTable = "categories"

// GetAllCategories lists the store's categories, newest first. Stores whose
// schema has no categories table, or none defined, get the built-in list.
func (s *TenantStorage) GetAllCategories(ctx context.Context) []model.Category {
	if !s.probe.HasTable(ctx, s.db, s.schema, categoriesTable) {
		s.metrics.RecordFallback("categories", "table_missing")
		return model.DefaultCategories()
	}

	defer s.observe("category", "list")()

	var categories []model.Category
	if err := s.conn(ctx).Order("created_at DESC").Find(&categories).Error; err != nil {
		s.logFor(ctx).Warn("Failed to list categories, serving defaults", errorFields(err)...)
		s.metrics.RecordFallback("categories", "query_failed")
		return model.DefaultCategories()
	}
	if len(categories) == 0 {
		return model.DefaultCategories()
	}
	return categories
}

// CreateCategory inserts an active category
func (s *TenantStorage) CreateCategory(ctx context.Context, in model.NewCategory) (*model.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrValidation)
	}
	if !s.probe.HasTable(ctx, s.db, s.schema, categoriesTable) {
		return nil, fmt.Errorf("%w: schema %s has no %s table", ErrFeatureUnavailable, s.schema, categoriesTable)
	}

	defer s.observe("category", "create")()

	now := s.timestamp()
	category := model.Category{
		Name:        name,
		Description: valueOr(in.Description, ""),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.conn(ctx).Create(&category).Error; err != nil {
		s.logFor(ctx).Error("Failed to create category", append(errorFields(err), zap.String("name", name))...)
		return nil, err
	}

	s.logFor(ctx).Info("Category created", zap.Int64("category_id", category.ID), zap.String("name", name))
	return &category, nil
}
