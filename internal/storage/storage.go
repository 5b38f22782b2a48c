// Package storage is the per-store data access facade. A TenantStorage is
// bound to one store's schema-scoped pool; reads degrade to nil or empty
// results and writes return errors.
package storage

import (
	"context"
	"time"

	"github.com/suteetoe/storefront/internal/tenant"
	"github.com/suteetoe/storefront/pkg/logger"
	prom "github.com/suteetoe/storefront/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FallbackOpener opens a private connection scoped to a store's schema.
// *tenant.Registry implements it.
type FallbackOpener interface {
	OpenFallback(ctx context.Context, storeID int64) (*tenant.FallbackConn, error)
}

// TenantStorage exposes the CRUD operations of one store
type TenantStorage struct {
	db       *gorm.DB
	storeID  int64
	schema   string
	log      *zap.Logger
	metrics  *prom.StorageMetrics
	probe    *tenant.Probe
	fallback FallbackOpener
	now      func() time.Time
}

// Option configures a TenantStorage
type Option func(*TenantStorage)

// WithLogger sets the base logger. Request loggers carried in the context
// take precedence.
func WithLogger(l *zap.Logger) Option {
	return func(s *TenantStorage) { s.log = l }
}

// WithMetrics records operation metrics on m
func WithMetrics(m *prom.StorageMetrics) Option {
	return func(s *TenantStorage) { s.metrics = m }
}

// WithProbe shares a capability probe between storages
func WithProbe(p *tenant.Probe) Option {
	return func(s *TenantStorage) { s.probe = p }
}

// WithSchema records the schema the pool is scoped to
func WithSchema(schema string) Option {
	return func(s *TenantStorage) { s.schema = schema }
}

// WithFallback enables the fallback path for notification counts
func WithFallback(f FallbackOpener) Option {
	return func(s *TenantStorage) { s.fallback = f }
}

// WithClock replaces the timestamp source
func WithClock(now func() time.Time) Option {
	return func(s *TenantStorage) { s.now = now }
}

// New binds a storage facade to db, a pool already scoped to the store's schema
func New(db *gorm.DB, storeID int64, opts ...Option) *TenantStorage {
	s := &TenantStorage{
		db:      db,
		storeID: storeID,
		schema:  tenant.DefaultSchema,
		log:     zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.probe == nil {
		s.probe = tenant.NewProbe(nil, 10*time.Minute, s.log)
	}
	return s
}

// StoreID returns the store the facade is bound to
func (s *TenantStorage) StoreID() int64 {
	return s.storeID
}

// Schema returns the schema the facade reads and writes
func (s *TenantStorage) Schema() string {
	return s.schema
}

func (s *TenantStorage) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func (s *TenantStorage) logFor(ctx context.Context) *zap.Logger {
	return logger.FromContext(ctx, s.log).With(
		zap.Int64("store_id", s.storeID),
		zap.String("schema", s.schema))
}

// observe starts timing an operation; call the returned func when done
func (s *TenantStorage) observe(entity, operation string) func() {
	start := time.Now()
	return func() {
		s.metrics.TrackDBOperation(entity + "." + operation)(start)
		s.metrics.RecordOperation(entity, operation)
	}
}

func (s *TenantStorage) timestamp() time.Time {
	return s.now().UTC()
}

// Factory builds facades for stores on demand
type Factory struct {
	provider tenant.Provider
	opts     []Option
}

// NewFactory creates a factory acquiring pools from provider. opts are
// applied to every facade it builds.
func NewFactory(provider tenant.Provider, opts ...Option) *Factory {
	return &Factory{provider: provider, opts: opts}
}

// ForStore resolves the store's schema, acquires its pool and returns a
// facade bound to it
func (f *Factory) ForStore(ctx context.Context, storeID int64) (*TenantStorage, error) {
	db, schema, err := f.provider.Acquire(ctx, storeID)
	if err != nil {
		return nil, err
	}

	opts := make([]Option, 0, len(f.opts)+1)
	opts = append(opts, f.opts...)
	opts = append(opts, WithSchema(schema))
	return New(db, storeID, opts...), nil
}
