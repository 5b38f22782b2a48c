package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suteetoe/storefront/internal/model"
	"github.com/suteetoe/storefront/internal/tenant"
	"github.com/suteetoe/storefront/pkg/database"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := database.OpenConn(conn, gormlogger.Silent)
	require.NoError(t, err)

	t.Cleanup(func() { conn.Close() })
	return db, mock
}

func setupStorage(t *testing.T, opts ...Option) (*TenantStorage, sqlmock.Sqlmock) {
	db, mock := setupMockDB(t)

	base := []Option{
		WithSchema("store_1"),
		WithLogger(zap.NewNop()),
		WithClock(func() time.Time { return fixedNow }),
	}
	return New(db, 1, append(base, opts...)...), mock
}

func customerRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "phone", "name", "email", "whatsapp_id", "address", "notes", "last_contact", "created_at", "updated_at"})
}

func orderRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "order_number", "customer_id", "status", "subtotal", "installation_total", "delivery_total", "total_amount", "notes", "assigned_user_id", "created_at", "updated_at"})
}

func idRows(ids ...int64) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id"})
	for _, id := range ids {
		rows.AddRow(id)
	}
	return rows
}

func strPtr(s string) *string { return &s }

func int64Ptr(i int64) *int64 { return &i }

// fakeProvider hands out fixed pools per store
type fakeProvider struct {
	pools map[int64]*gorm.DB
}

func (f *fakeProvider) Acquire(_ context.Context, storeID int64) (*gorm.DB, string, error) {
	db, ok := f.pools[storeID]
	if !ok {
		return nil, "", tenant.ErrTenantNotFound
	}
	return db, fmt.Sprintf("store_%d", storeID), nil
}

func (f *fakeProvider) Close() error { return nil }

func TestNew_Defaults(t *testing.T) {
	db, _ := setupMockDB(t)
	s := New(db, 7)

	assert.Equal(t, int64(7), s.StoreID())
	assert.Equal(t, tenant.DefaultSchema, s.Schema())
}

func TestFactory_ForStore(t *testing.T) {
	dbA, _ := setupMockDB(t)
	dbB, _ := setupMockDB(t)
	f := NewFactory(&fakeProvider{pools: map[int64]*gorm.DB{1: dbA, 2: dbB}}, WithLogger(zap.NewNop()))

	a, err := f.ForStore(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "store_1", a.Schema())
	assert.Equal(t, int64(1), a.StoreID())

	b, err := f.ForStore(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "store_2", b.Schema())

	_, err = f.ForStore(context.Background(), 9)
	assert.ErrorIs(t, err, ErrTenantNotFound)
}

func TestSchemaIsolation(t *testing.T) {
	dbA, mockA := setupMockDB(t)
	dbB, mockB := setupMockDB(t)
	clock := WithClock(func() time.Time { return fixedNow })
	f := NewFactory(&fakeProvider{pools: map[int64]*gorm.DB{1: dbA, 2: dbB}}, clock)

	a, err := f.ForStore(context.Background(), 1)
	require.NoError(t, err)
	b, err := f.ForStore(context.Background(), 2)
	require.NoError(t, err)

	mockA.ExpectBegin()
	mockA.ExpectQuery(`INSERT INTO "orders"`).WillReturnRows(idRows(10))
	mockA.ExpectCommit()
	mockA.ExpectQuery(`SELECT \* FROM "orders" ORDER BY created_at DESC`).
		WillReturnRows(orderRows().AddRow(10, "ORD-A", nil, "pending", "0.00", "0.00", "0.00", "0.00", "", nil, fixedNow, fixedNow))
	mockB.ExpectQuery(`SELECT \* FROM "orders" ORDER BY created_at DESC`).WillReturnRows(orderRows())

	order, _, err := a.CreateOrder(context.Background(), model.NewOrder{OrderNumber: strPtr("ORD-A")}, nil)
	require.NoError(t, err)

	ordersA := a.GetAllOrders(context.Background())
	require.Len(t, ordersA, 1)
	assert.Equal(t, order.ID, ordersA[0].ID)

	// B's pool never saw the insert
	assert.Empty(t, b.GetAllOrders(context.Background()))
	require.NoError(t, mockA.ExpectationsWereMet())
	require.NoError(t, mockB.ExpectationsWereMet())
}

func TestEndToEnd_CustomerOrderLifecycle(t *testing.T) {
	s, mock := setupStorage(t)
	ctx := context.Background()
	phone := "5215512345678"

	// Create customer
	mock.ExpectQuery(`SELECT \* FROM "customers" WHERE phone = \$1`).WillReturnRows(customerRows())
	mock.ExpectQuery(`INSERT INTO "customers"`).WillReturnRows(idRows(1))

	customer, err := s.CreateCustomer(ctx, model.NewCustomer{Phone: phone, Name: strPtr("Ana")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), customer.ID)

	// Create order with two items
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "orders"`).WillReturnRows(idRows(10))
	mock.ExpectQuery(`INSERT INTO "order_items"`).WillReturnRows(idRows(100, 101))
	mock.ExpectCommit()

	order, items, err := s.CreateOrder(ctx,
		model.NewOrder{CustomerID: &customer.ID},
		[]model.NewOrderItem{
			{ProductID: 5, Quantity: 2, UnitPrice: "10.00"},
			{ProductID: 6, Quantity: 1, UnitPrice: "25.50"},
		})
	require.NoError(t, err)
	assert.Equal(t, int64(10), order.ID)
	require.Len(t, items, 2)
	assert.Equal(t, int64(10), items[0].OrderID)
	assert.Equal(t, int64(10), items[1].OrderID)

	// Items come back joined with product data
	itemRows := sqlmock.NewRows([]string{"id", "order_id", "product_id", "quantity", "unit_price", "total_price", "product_name", "product_description", "product_price", "product_category"}).
		AddRow(101, 10, 6, 1, "25.50", "25.50", "Lamp", "Desk lamp", "25.50", "Furniture").
		AddRow(100, 10, 5, 2, "10.00", "20.00", "Chair", "Office chair", "10.00", "Furniture")
	mock.ExpectQuery(`LEFT JOIN products ON products.id = order_items.product_id`).WillReturnRows(itemRows)

	joined := s.GetOrderItemsByOrderID(ctx, order.ID)
	require.Len(t, joined, 2)
	assert.Equal(t, "Lamp", joined[0].ProductName)
	assert.Equal(t, "Chair", joined[1].ProductName)
	assert.Equal(t, int64(10), joined[1].OrderID)

	// Same phone returns the same customer without inserting
	mock.ExpectQuery(`SELECT \* FROM "customers" WHERE phone = \$1`).
		WillReturnRows(customerRows().AddRow(1, phone, "Ana", "", "", "", "", nil, fixedNow, fixedNow))

	again, err := s.CreateCustomer(ctx, model.NewCustomer{Phone: phone})
	require.NoError(t, err)
	assert.Equal(t, int64(1), again.ID)

	// Delete the order and its items
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "order_items" WHERE order_id = \$1`).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM "orders" WHERE id = \$1`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	require.NoError(t, s.DeleteOrder(ctx, order.ID))

	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE id = \$1`).WillReturnRows(orderRows())
	assert.Nil(t, s.GetOrderByID(ctx, order.ID))

	require.NoError(t, mock.ExpectationsWereMet())
}
