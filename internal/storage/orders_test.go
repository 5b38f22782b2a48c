package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suteetoe/storefront/internal/model"
)

func TestBuildOrder_DerivesTotalsFromItems(t *testing.T) {
	items := []model.OrderItem{
		{TotalPrice: "20.00", InstallationCost: strPtr("5.00"), DeliveryCost: strPtr("2.50")},
		{TotalPrice: "25.50", DeliveryCost: strPtr("1.25")},
	}

	order, err := buildOrder(model.NewOrder{}, items, fixedNow)

	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, "45.50", order.Subtotal)
	assert.Equal(t, "5.00", order.InstallationTotal)
	assert.Equal(t, "3.75", order.DeliveryTotal)
	assert.Equal(t, "54.25", order.TotalAmount)
	assert.True(t, strings.HasPrefix(order.OrderNumber, "ORD-"))
	assert.Equal(t, fixedNow, order.CreatedAt)
}

func TestBuildOrder_ExplicitValuesWin(t *testing.T) {
	order, err := buildOrder(model.NewOrder{
		OrderNumber: strPtr("ORD-1"),
		Status:      strPtr(model.OrderStatusConfirmed),
		TotalAmount: strPtr("99.00"),
	}, nil, fixedNow)

	require.NoError(t, err)
	assert.Equal(t, "ORD-1", order.OrderNumber)
	assert.Equal(t, model.OrderStatusConfirmed, order.Status)
	assert.Equal(t, "0.00", order.Subtotal)
	assert.Equal(t, "99.00", order.TotalAmount)
}

func TestBuildOrderItem_LineTotal(t *testing.T) {
	item, err := buildOrderItem(model.NewOrderItem{ProductID: 3, Quantity: 3, UnitPrice: "10.50"}, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "31.50", item.TotalPrice)

	_, err = buildOrderItem(model.NewOrderItem{ProductID: 3, Quantity: 0, UnitPrice: "10.50"}, fixedNow)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = buildOrderItem(model.NewOrderItem{ProductID: 3, Quantity: 1, UnitPrice: "ten"}, fixedNow)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateOrder_ItemFailureRollsBack(t *testing.T) {
	s, mock := setupStorage(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "orders"`).WillReturnRows(idRows(10))
	mock.ExpectQuery(`INSERT INTO "order_items"`).WillReturnError(errors.New("violates foreign key constraint"))
	mock.ExpectRollback()

	order, items, err := s.CreateOrder(context.Background(), model.NewOrder{},
		[]model.NewOrderItem{{ProductID: 404, Quantity: 1, UnitPrice: "1.00"}})

	require.Error(t, err)
	assert.Nil(t, order)
	assert.Nil(t, items)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrder_InvalidItemSkipsDatabase(t *testing.T) {
	s, mock := setupStorage(t)

	_, _, err := s.CreateOrder(context.Background(), model.NewOrder{},
		[]model.NewOrderItem{{ProductID: 1, Quantity: -1, UnitPrice: "1.00"}})

	assert.ErrorIs(t, err, ErrValidation)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrdersByStatus(t *testing.T) {
	s, mock := setupStorage(t)

	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE status = \$1 ORDER BY created_at DESC`).
		WithArgs(model.OrderStatusPending).
		WillReturnRows(orderRows().
			AddRow(2, "ORD-2", 1, "pending", "5.00", "0.00", "0.00", "5.00", "", nil, fixedNow, fixedNow).
			AddRow(1, "ORD-1", 1, "pending", "3.00", "0.00", "0.00", "3.00", "", nil, fixedNow, fixedNow))

	orders := s.GetOrdersByStatus(context.Background(), model.OrderStatusPending)

	require.Len(t, orders, 2)
	assert.Equal(t, int64(2), orders[0].ID)
	require.NotNil(t, orders[0].CustomerID)
	assert.Equal(t, int64(1), *orders[0].CustomerID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrdersByCustomerID(t *testing.T) {
	s, mock := setupStorage(t)

	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE customer_id = \$1 ORDER BY created_at DESC`).
		WithArgs(7).
		WillReturnRows(orderRows())

	assert.Empty(t, s.GetOrdersByCustomerID(context.Background(), 7))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOrder_Sparse(t *testing.T) {
	s, mock := setupStorage(t)

	mock.ExpectQuery(`UPDATE "orders" SET "status"=\$1,"updated_at"=\$2 WHERE id = \$3 RETURNING \*`).
		WithArgs(model.OrderStatusCompleted, fixedNow, 10).
		WillReturnRows(orderRows().AddRow(10, "ORD-10", nil, "completed", "5.00", "0.00", "0.00", "5.00", "keep me", nil, fixedNow, fixedNow))

	order, err := s.UpdateOrder(context.Background(), 10, model.OrderPatch{Status: strPtr(model.OrderStatusCompleted)})

	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCompleted, order.Status)
	assert.Equal(t, "keep me", order.Notes)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderItem_RequiresExistingOrder(t *testing.T) {
	s, mock := setupStorage(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "orders" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	item, err := s.CreateOrderItem(context.Background(), model.NewOrderItem{OrderID: 99, ProductID: 1, Quantity: 1, UnitPrice: "1.00"})

	assert.ErrorIs(t, err, ErrValidation)
	assert.Nil(t, item)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderItem(t *testing.T) {
	s, mock := setupStorage(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "orders" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`INSERT INTO "order_items"`).WillReturnRows(idRows(55))

	item, err := s.CreateOrderItem(context.Background(), model.NewOrderItem{
		OrderID: 10, ProductID: 1, Quantity: 4, UnitPrice: "2.25", LaborCost: strPtr("3.00"),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(55), item.ID)
	assert.Equal(t, int64(10), item.OrderID)
	assert.Equal(t, "9.00", item.TotalPrice)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOrderItem_RejectsZeroQuantity(t *testing.T) {
	s, mock := setupStorage(t)
	zero := 0

	_, err := s.UpdateOrderItem(context.Background(), 1, model.OrderItemPatch{Quantity: &zero})

	assert.ErrorIs(t, err, ErrValidation)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteOrder_RollsBackOnFailure(t *testing.T) {
	s, mock := setupStorage(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "order_items"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "orders"`).WillReturnError(errors.New("lock timeout"))
	mock.ExpectRollback()

	require.Error(t, s.DeleteOrder(context.Background(), 10))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteOrderItem(t *testing.T) {
	s, mock := setupStorage(t)

	mock.ExpectExec(`DELETE FROM "order_items" WHERE id = \$1`).WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.DeleteOrderItem(context.Background(), 3))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrderItemsByOrderID_ErrorReturnsEmpty(t *testing.T) {
	s, mock := setupStorage(t)

	mock.ExpectQuery(`FROM "order_items"`).WillReturnError(errors.New("boom"))

	items := s.GetOrderItemsByOrderID(context.Background(), 1)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}
