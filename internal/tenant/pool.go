package tenant

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/suteetoe/storefront/internal/model"
	"github.com/suteetoe/storefront/pkg/database"
	"github.com/suteetoe/storefront/pkg/logger"
	prom "github.com/suteetoe/storefront/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// StoreLookup finds stores and their schemas. *Resolver implements it.
type StoreLookup interface {
	ResolveSchema(ctx context.Context, storeID int64) (string, error)
	Store(ctx context.Context, storeID int64) (*model.Store, error)
}

// Provider hands out the long-lived pool for a store's schema
type Provider interface {
	Acquire(ctx context.Context, storeID int64) (db *gorm.DB, schema string, err error)
	Close() error
}

// PoolConfig sizes the pools a Registry opens
type PoolConfig struct {
	Pool                database.PoolSettings
	LogLevel            gormlogger.LogLevel
	FallbackIdleTimeout time.Duration
}

// Registry keeps one gorm pool per schema for the life of the process and
// opens short-lived single-connection pools for fallback queries.
type Registry struct {
	resolver StoreLookup
	cfg      PoolConfig
	log      *zap.Logger
	metrics  *prom.StorageMetrics

	openGorm func(dsn string) (*gorm.DB, error)
	openSQL  func(driverName, dsn string) (*sql.DB, error)

	mu    sync.Mutex
	pools map[string]*gorm.DB
}

// RegistryOption configures a Registry
type RegistryOption func(*Registry)

// WithRegistryLogger sets the registry's logger
func WithRegistryLogger(l *zap.Logger) RegistryOption {
	return func(r *Registry) { r.log = l }
}

// WithRegistryMetrics records pool counts on m
func WithRegistryMetrics(m *prom.StorageMetrics) RegistryOption {
	return func(r *Registry) { r.metrics = m }
}

// WithGormOpener replaces how primary pools are opened
func WithGormOpener(open func(dsn string) (*gorm.DB, error)) RegistryOption {
	return func(r *Registry) { r.openGorm = open }
}

// WithSQLOpener replaces how fallback pools are opened
func WithSQLOpener(open func(driverName, dsn string) (*sql.DB, error)) RegistryOption {
	return func(r *Registry) { r.openSQL = open }
}

// NewRegistry creates an empty pool registry
func NewRegistry(resolver StoreLookup, cfg PoolConfig, opts ...RegistryOption) *Registry {
	if cfg.FallbackIdleTimeout <= 0 {
		cfg.FallbackIdleTimeout = 5 * time.Second
	}
	r := &Registry{
		resolver: resolver,
		cfg:      cfg,
		log:      zap.NewNop(),
		openSQL:  sql.Open,
		pools:    make(map[string]*gorm.DB),
	}
	r.openGorm = func(dsn string) (*gorm.DB, error) {
		return database.Open(dsn, r.cfg.Pool, r.cfg.LogLevel)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Acquire returns the shared pool for the store's schema, opening it on
// first use. Concurrent callers for the same schema get the same pool.
func (r *Registry) Acquire(ctx context.Context, storeID int64) (*gorm.DB, string, error) {
	log := logger.FromContext(ctx, r.log)

	schema, err := r.resolver.ResolveSchema(ctx, storeID)
	if err != nil {
		return nil, "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if db, ok := r.pools[schema]; ok {
		return db, schema, nil
	}

	store, err := r.resolver.Store(ctx, storeID)
	if err != nil {
		return nil, "", err
	}
	dsn, err := ScopedDSN(store.DatabaseURL, schema, true)
	if err != nil {
		return nil, "", err
	}

	db, err := r.openGorm(dsn)
	if err != nil {
		log.Error("Failed to open tenant pool",
			zap.Int64("store_id", storeID),
			zap.String("schema", schema),
			zap.Error(err))
		return nil, "", fmt.Errorf("failed to open pool for schema %s: %w", schema, err)
	}

	r.pools[schema] = db
	r.metrics.SetTenantPools(len(r.pools))
	log.Info("Opened tenant pool",
		zap.Int64("store_id", storeID),
		zap.String("schema", schema),
		zap.Int("open_pools", len(r.pools)))

	return db, schema, nil
}

// Len reports how many schema pools are open
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pools)
}

// Close disposes every registered pool
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for schema, db := range r.pools {
		if err := database.Close(db); err != nil {
			r.log.Warn("Failed to close tenant pool", zap.String("schema", schema), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
		delete(r.pools, schema)
	}
	r.metrics.SetTenantPools(0)
	return firstErr
}

// FallbackConn is one pinned connection in a private single-connection
// pool with search_path set to the store schema.
type FallbackConn struct {
	db     *sql.DB
	conn   *sql.Conn
	schema string
}

// Schema returns the schema the connection is scoped to
func (f *FallbackConn) Schema() string {
	return f.schema
}

// QueryRowContext runs a single-row query on the pinned connection
func (f *FallbackConn) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return f.conn.QueryRowContext(ctx, query, args...)
}

// Close releases the connection and disposes of the pool
func (f *FallbackConn) Close() error {
	var connErr error
	if f.conn != nil {
		connErr = f.conn.Close()
	}
	if err := f.db.Close(); err != nil {
		return err
	}
	return connErr
}

// OpenFallback resolves the store schema on its own, opens a minimal pool
// and pins a connection with an explicit search_path. The caller must Close
// the returned connection.
func (r *Registry) OpenFallback(ctx context.Context, storeID int64) (*FallbackConn, error) {
	store, err := r.resolver.Store(ctx, storeID)
	if err != nil {
		return nil, err
	}
	schema := SchemaFromURL(store.DatabaseURL)

	dsn, err := ScopedDSN(store.DatabaseURL, schema, false)
	if err != nil {
		return nil, err
	}

	db, err := r.openSQL("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open fallback pool: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxIdleTime(r.cfg.FallbackIdleTimeout)

	fc := &FallbackConn{db: db, schema: schema}

	conn, err := db.Conn(ctx)
	if err != nil {
		fc.Close()
		return nil, fmt.Errorf("failed to acquire fallback connection: %w", err)
	}
	fc.conn = conn

	if _, err := conn.ExecContext(ctx, "SET search_path TO "+pq.QuoteIdentifier(schema)); err != nil {
		fc.Close()
		return nil, fmt.Errorf("failed to set search_path %s: %w", schema, err)
	}

	return fc, nil
}
