// Package tenant resolves stores to their database schemas and manages the
// connection pools scoped to those schemas.
package tenant

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/suteetoe/storefront/internal/model"
	"github.com/suteetoe/storefront/pkg/cache"
	"github.com/suteetoe/storefront/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultSchema is used for descriptors without a schema parameter
const DefaultSchema = "public"

var (
	// ErrTenantNotFound is returned when no store row exists for an id
	ErrTenantNotFound = errors.New("tenant not found")
	// ErrTenantInactive is returned for stores that are switched off
	ErrTenantInactive = errors.New("tenant inactive")
)

var schemaPattern = regexp.MustCompile(`schema=([^&\s]+)`)

// SchemaFromURL extracts the schema name from a connection descriptor,
// defaulting to public.
func SchemaFromURL(descriptor string) string {
	m := schemaPattern.FindStringSubmatch(descriptor)
	if len(m) < 2 || m[1] == "" {
		return DefaultSchema
	}
	return m[1]
}

// Resolver maps store ids to schema names using the control database
type Resolver struct {
	db    *gorm.DB
	cache cache.Cache
	ttl   time.Duration
	log   *zap.Logger
}

// ResolverOption configures a Resolver
type ResolverOption func(*Resolver)

// WithCache caches resolved schema names for ttl
func WithCache(c cache.Cache, ttl time.Duration) ResolverOption {
	return func(r *Resolver) {
		r.cache = c
		r.ttl = ttl
	}
}

// WithResolverLogger sets the resolver's logger
func WithResolverLogger(l *zap.Logger) ResolverOption {
	return func(r *Resolver) { r.log = l }
}

// NewResolver creates a resolver reading stores from control
func NewResolver(control *gorm.DB, opts ...ResolverOption) *Resolver {
	r := &Resolver{db: control, log: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Store loads the store row. A missing row yields ErrTenantNotFound and an
// inactive one ErrTenantInactive.
func (r *Resolver) Store(ctx context.Context, storeID int64) (*model.Store, error) {
	var store model.Store
	err := r.db.WithContext(ctx).Where("id = ?", storeID).Take(&store).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("store %d: %w", storeID, ErrTenantNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load store %d: %w", storeID, err)
	}
	if !store.IsActive {
		return nil, fmt.Errorf("store %d: %w", storeID, ErrTenantInactive)
	}
	return &store, nil
}

// ResolveSchema returns the schema that holds the store's data
func (r *Resolver) ResolveSchema(ctx context.Context, storeID int64) (string, error) {
	log := logger.FromContext(ctx, r.log)
	key := schemaCacheKey(storeID)

	if r.cache != nil {
		schema, ok, err := r.cache.Get(ctx, key)
		if err != nil {
			log.Warn("Schema cache read failed", zap.Int64("store_id", storeID), zap.Error(err))
		} else if ok {
			return schema, nil
		}
	}

	store, err := r.Store(ctx, storeID)
	if err != nil {
		return "", err
	}
	schema := SchemaFromURL(store.DatabaseURL)

	if r.cache != nil {
		if err := r.cache.Set(ctx, key, schema, r.ttl); err != nil {
			log.Warn("Schema cache write failed", zap.Int64("store_id", storeID), zap.Error(err))
		}
	}

	log.Debug("Resolved store schema", zap.Int64("store_id", storeID), zap.String("schema", schema))
	return schema, nil
}

// Forget drops the cached schema for a store
func (r *Resolver) Forget(ctx context.Context, storeID int64) error {
	if r.cache == nil {
		return nil
	}
	return r.cache.Delete(ctx, schemaCacheKey(storeID))
}

func schemaCacheKey(storeID int64) string {
	return "schema:" + strconv.FormatInt(storeID, 10)
}
