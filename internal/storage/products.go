package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/suteetoe/storefront/internal/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetAllProducts lists the store's products, newest first
func (s *TenantStorage) GetAllProducts(ctx context.Context) []model.Product {
	return listRows[model.Product](ctx, s, "product", "list", func(q *gorm.DB) *gorm.DB {
		return q.Where("store_id = ?", s.storeID)
	})
}

// GetProductByID returns the product or nil
func (s *TenantStorage) GetProductByID(ctx context.Context, id int64) *model.Product {
	return findRow[model.Product](ctx, s, "product", "get", "id = ? AND store_id = ?", id, s.storeID)
}

// CreateProduct inserts a product, filling every unset field with its default
func (s *TenantStorage) CreateProduct(ctx context.Context, in model.NewProduct) (*model.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: product name is required", ErrValidation)
	}

	defer s.observe("product", "create")()
	log := s.logFor(ctx)

	images := pq.StringArray{}
	if in.Images != nil {
		images = pq.StringArray(in.Images)
	}

	now := s.timestamp()
	product := model.Product{
		Name:        name,
		Description: valueOr(in.Description, ""),
		Price:       valueOr(in.Price, zeroMoney),
		CategoryID:  in.CategoryID,
		Category:    valueOr(in.Category, ""),
		Status:      valueOr(in.Status, model.ProductStatusActive),
		Available:   valueOr(in.Available, true),
		Stock:       valueOr(in.Stock, 0),
		MinStock:    valueOr(in.MinStock, 0),
		Images:      images,
		SKU:         valueOr(in.SKU, ""),
		StoreID:     s.storeID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := parseMoney(product.Price); err != nil {
		return nil, err
	}

	if err := s.conn(ctx).Create(&product).Error; err != nil {
		log.Error("Failed to create product", append(errorFields(err), zap.String("name", name))...)
		return nil, err
	}

	log.Info("Product created",
		zap.Int64("product_id", product.ID),
		zap.String("name", product.Name),
		zap.String("sku", product.SKU))
	return &product, nil
}

// UpdateProduct applies the set fields of patch; nil when the product does not exist
func (s *TenantStorage) UpdateProduct(ctx context.Context, id int64, patch model.ProductPatch) (*model.Product, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, fmt.Errorf("%w: product name cannot be empty", ErrValidation)
	}
	return updateRow[model.Product](ctx, s, "product", id, patch.Updates(s.timestamp()))
}

// DeleteProduct removes a product
func (s *TenantStorage) DeleteProduct(ctx context.Context, id int64) error {
	return deleteRow[model.Product](ctx, s, "product", id)
}

// UpdateProductStock adjusts stock by delta in a single statement and returns
// the updated product; nil when the product does not exist
func (s *TenantStorage) UpdateProductStock(ctx context.Context, id int64, delta int) (*model.Product, error) {
	defer s.observe("product", "update_stock")()
	log := s.logFor(ctx)

	var product model.Product
	result := s.conn(ctx).Model(&product).
		Clauses(clause.Returning{}).
		Where("id = ? AND store_id = ?", id, s.storeID).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock + ?", delta),
			"updated_at": s.timestamp(),
		})
	if result.Error != nil {
		log.Error("Failed to adjust product stock", append(errorFields(result.Error), zap.Int64("product_id", id))...)
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}

	if product.Stock <= product.MinStock {
		log.Warn("Product stock at or below minimum",
			zap.Int64("product_id", id),
			zap.Int("stock", product.Stock),
			zap.Int("min_stock", product.MinStock))
	}
	return &product, nil
}
