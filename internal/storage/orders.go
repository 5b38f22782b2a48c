package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/suteetoe/storefront/internal/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GetAllOrders lists the store's orders, newest first
func (s *TenantStorage) GetAllOrders(ctx context.Context) []model.Order {
	return listRows[model.Order](ctx, s, "order", "list", nil)
}

// GetOrderByID returns the order or nil
func (s *TenantStorage) GetOrderByID(ctx context.Context, id int64) *model.Order {
	return findRow[model.Order](ctx, s, "order", "get", "id = ?", id)
}

// GetOrdersByCustomerID lists a customer's orders, newest first
func (s *TenantStorage) GetOrdersByCustomerID(ctx context.Context, customerID int64) []model.Order {
	return listRows[model.Order](ctx, s, "order", "list_by_customer", func(q *gorm.DB) *gorm.DB {
		return q.Where("customer_id = ?", customerID)
	})
}

// GetOrdersByStatus lists orders in status, newest first
func (s *TenantStorage) GetOrdersByStatus(ctx context.Context, status string) []model.Order {
	return listRows[model.Order](ctx, s, "order", "list_by_status", func(q *gorm.DB) *gorm.DB {
		return q.Where("status = ?", status)
	})
}

// CreateOrder inserts an order and its items in one transaction. Unset
// totals are derived from the items.
func (s *TenantStorage) CreateOrder(ctx context.Context, in model.NewOrder, items []model.NewOrderItem) (*model.Order, []model.OrderItem, error) {
	defer s.observe("order", "create")()
	log := s.logFor(ctx)

	now := s.timestamp()
	rows := make([]model.OrderItem, 0, len(items))
	for i, item := range items {
		row, err := buildOrderItem(item, now)
		if err != nil {
			return nil, nil, fmt.Errorf("item %d: %w", i, err)
		}
		rows = append(rows, row)
	}

	order, err := buildOrder(in, rows, now)
	if err != nil {
		return nil, nil, err
	}

	err = s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		for i := range rows {
			rows[i].OrderID = order.ID
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to insert order items: %w", err)
		}
		return nil
	})
	if err != nil {
		log.Error("Failed to create order", append(errorFields(err), zap.String("order_number", order.OrderNumber))...)
		return nil, nil, err
	}

	log.Info("Order created",
		zap.Int64("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.Int("items", len(rows)))
	return &order, rows, nil
}

// UpdateOrder applies the set fields of patch; nil when the order does not exist
func (s *TenantStorage) UpdateOrder(ctx context.Context, id int64, patch model.OrderPatch) (*model.Order, error) {
	return updateRow[model.Order](ctx, s, "order", id, patch.Updates(s.timestamp()))
}

// DeleteOrder removes an order and its items in one transaction
func (s *TenantStorage) DeleteOrder(ctx context.Context, id int64) error {
	defer s.observe("order", "delete")()
	log := s.logFor(ctx)

	var removedItems int64
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("order_id = ?", id).Delete(&model.OrderItem{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete order items: %w", result.Error)
		}
		removedItems = result.RowsAffected
		if err := tx.Where("id = ?", id).Delete(&model.Order{}).Error; err != nil {
			return fmt.Errorf("failed to delete order: %w", err)
		}
		return nil
	})
	if err != nil {
		log.Error("Failed to delete order", append(errorFields(err), zap.Int64("order_id", id))...)
		return err
	}

	log.Info("Order deleted", zap.Int64("order_id", id), zap.Int64("items", removedItems))
	return nil
}

// GetOrderItemsByOrderID lists an order's items joined with product display data
func (s *TenantStorage) GetOrderItemsByOrderID(ctx context.Context, orderID int64) []model.OrderItemWithProduct {
	defer s.observe("order_item", "list_by_order")()

	items := []model.OrderItemWithProduct{}
	err := s.conn(ctx).Table("order_items").
		Select(`order_items.*,
			COALESCE(products.name, '') AS product_name,
			COALESCE(products.description, '') AS product_description,
			COALESCE(products.price, 0) AS product_price,
			COALESCE(products.category, '') AS product_category`).
		Joins("LEFT JOIN products ON products.id = order_items.product_id").
		Where("order_items.order_id = ?", orderID).
		Order("order_items.created_at DESC").
		Scan(&items).Error
	if err != nil {
		s.logFor(ctx).Error("Failed to list order items", append(errorFields(err), zap.Int64("order_id", orderID))...)
		return []model.OrderItemWithProduct{}
	}
	return items
}

// CreateOrderItem adds an item to an existing order
func (s *TenantStorage) CreateOrderItem(ctx context.Context, in model.NewOrderItem) (*model.OrderItem, error) {
	defer s.observe("order_item", "create")()
	log := s.logFor(ctx)

	row, err := buildOrderItem(in, s.timestamp())
	if err != nil {
		return nil, err
	}
	row.OrderID = in.OrderID

	var orders int64
	if err := s.conn(ctx).Model(&model.Order{}).Where("id = ?", in.OrderID).Count(&orders).Error; err != nil {
		log.Error("Failed to check order", append(errorFields(err), zap.Int64("order_id", in.OrderID))...)
		return nil, err
	}
	if orders == 0 {
		return nil, fmt.Errorf("%w: order %d does not exist", ErrValidation, in.OrderID)
	}

	if err := s.conn(ctx).Create(&row).Error; err != nil {
		log.Error("Failed to create order item", append(errorFields(err), zap.Int64("order_id", in.OrderID))...)
		return nil, err
	}

	log.Info("Order item created", zap.Int64("order_item_id", row.ID), zap.Int64("order_id", row.OrderID))
	return &row, nil
}

// UpdateOrderItem applies the set fields of patch
func (s *TenantStorage) UpdateOrderItem(ctx context.Context, id int64, patch model.OrderItemPatch) (*model.OrderItem, error) {
	if patch.Quantity != nil && *patch.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}
	return updateRow[model.OrderItem](ctx, s, "order_item", id, patch.Updates(s.timestamp()))
}

// DeleteOrderItem removes a single item
func (s *TenantStorage) DeleteOrderItem(ctx context.Context, id int64) error {
	return deleteRow[model.OrderItem](ctx, s, "order_item", id)
}

func newOrderNumber() string {
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

func buildOrderItem(in model.NewOrderItem, now time.Time) (model.OrderItem, error) {
	if in.Quantity <= 0 {
		return model.OrderItem{}, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}

	total := ""
	if in.TotalPrice != nil {
		total = *in.TotalPrice
	} else {
		t, err := lineTotal(in.UnitPrice, in.Quantity)
		if err != nil {
			return model.OrderItem{}, err
		}
		total = t
	}

	return model.OrderItem{
		ProductID:        in.ProductID,
		Quantity:         in.Quantity,
		UnitPrice:        in.UnitPrice,
		TotalPrice:       total,
		InstallationCost: in.InstallationCost,
		LaborCost:        in.LaborCost,
		DeliveryCost:     in.DeliveryCost,
		Notes:            valueOr(in.Notes, ""),
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

func buildOrder(in model.NewOrder, items []model.OrderItem, now time.Time) (model.Order, error) {
	var err error
	order := model.Order{
		OrderNumber:    valueOr(in.OrderNumber, ""),
		CustomerID:     in.CustomerID,
		Status:         valueOr(in.Status, model.OrderStatusPending),
		Notes:          valueOr(in.Notes, ""),
		AssignedUserID: in.AssignedUserID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if order.OrderNumber == "" {
		order.OrderNumber = newOrderNumber()
	}

	lines := make([]*string, 0, len(items))
	installation := make([]*string, 0, len(items))
	delivery := make([]*string, 0, len(items))
	for i := range items {
		lines = append(lines, &items[i].TotalPrice)
		installation = append(installation, items[i].InstallationCost)
		delivery = append(delivery, items[i].DeliveryCost)
	}

	if order.Subtotal, err = amountOr(in.Subtotal, lines...); err != nil {
		return model.Order{}, err
	}
	if order.InstallationTotal, err = amountOr(in.InstallationTotal, installation...); err != nil {
		return model.Order{}, err
	}
	if order.DeliveryTotal, err = amountOr(in.DeliveryTotal, delivery...); err != nil {
		return model.Order{}, err
	}
	if order.TotalAmount, err = amountOr(in.TotalAmount, &order.Subtotal, &order.InstallationTotal, &order.DeliveryTotal); err != nil {
		return model.Order{}, err
	}
	return order, nil
}

// amountOr returns the explicit amount, or the sum of parts when unset
func amountOr(explicit *string, parts ...*string) (string, error) {
	if explicit != nil {
		return *explicit, nil
	}
	return sumMoney(parts...)
}

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
