package tenant

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/suteetoe/storefront/internal/model"
	"github.com/suteetoe/storefront/pkg/database"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := database.OpenConn(conn, gormlogger.Silent)
	require.NoError(t, err)

	t.Cleanup(func() { conn.Close() })
	return db, mock
}

func storeRows(stores ...model.Store) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "name", "database_url", "is_active", "created_at", "updated_at"})
	for _, s := range stores {
		rows.AddRow(s.ID, s.Name, s.DatabaseURL, s.IsActive, time.Now(), time.Now())
	}
	return rows
}

// fakeLookup is an in-memory store directory
type fakeLookup struct {
	mu      sync.Mutex
	stores  map[int64]model.Store
	lookups int
}

func newFakeLookup(stores ...model.Store) *fakeLookup {
	f := &fakeLookup{stores: make(map[int64]model.Store)}
	for _, s := range stores {
		f.stores[s.ID] = s
	}
	return f
}

func (f *fakeLookup) Store(_ context.Context, storeID int64) (*model.Store, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++

	s, ok := f.stores[storeID]
	if !ok {
		return nil, ErrTenantNotFound
	}
	return &s, nil
}

func (f *fakeLookup) ResolveSchema(ctx context.Context, storeID int64) (string, error) {
	s, err := f.Store(ctx, storeID)
	if err != nil {
		return "", err
	}
	return SchemaFromURL(s.DatabaseURL), nil
}
