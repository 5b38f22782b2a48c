package tenant

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/suteetoe/storefront/pkg/cache"
	"github.com/suteetoe/storefront/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Probe answers whether a schema has the tables and columns a query needs.
// Answers are cached per schema so the check runs once per TTL.
type Probe struct {
	cache cache.Cache
	ttl   time.Duration
	log   *zap.Logger
}

// NewProbe creates a probe caching answers in c
func NewProbe(c cache.Cache, ttl time.Duration, l *zap.Logger) *Probe {
	if c == nil {
		c = cache.NewMemory()
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &Probe{cache: c, ttl: ttl, log: l}
}

// HasTable reports whether table exists in the connection's current schema.
// An unanswerable probe reports true and is not cached, so the caller's own
// error handling decides.
func (p *Probe) HasTable(ctx context.Context, db *gorm.DB, schema, table string) bool {
	key := tableKey(schema, table)
	if v, ok := p.lookup(ctx, key); ok {
		return v
	}

	var count int64
	err := db.WithContext(ctx).
		Raw("SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = ?", table).
		Scan(&count).Error
	if err != nil {
		logger.FromContext(ctx, p.log).Warn("Table probe failed",
			zap.String("schema", schema), zap.String("table", table), zap.Error(err))
		return true
	}

	p.store(ctx, key, count > 0)
	return count > 0
}

// HasColumns reports whether table has every one of columns
func (p *Probe) HasColumns(ctx context.Context, db *gorm.DB, schema, table string, columns ...string) bool {
	key := columnsKey(schema, table, columns)
	if v, ok := p.lookup(ctx, key); ok {
		return v
	}

	var present []string
	err := db.WithContext(ctx).
		Raw("SELECT column_name FROM information_schema.columns WHERE table_schema = current_schema() AND table_name = ?", table).
		Scan(&present).Error
	if err != nil {
		logger.FromContext(ctx, p.log).Warn("Column probe failed",
			zap.String("schema", schema), zap.String("table", table), zap.Error(err))
		return true
	}

	have := make(map[string]bool, len(present))
	for _, c := range present {
		have[c] = true
	}
	ok := true
	for _, c := range columns {
		if !have[c] {
			ok = false
			break
		}
	}

	p.store(ctx, key, ok)
	return ok
}

// MarkColumnsMissing records that a query over columns failed for schema
func (p *Probe) MarkColumnsMissing(ctx context.Context, schema, table string, columns ...string) {
	p.store(ctx, columnsKey(schema, table, columns), false)
}

func (p *Probe) lookup(ctx context.Context, key string) (bool, bool) {
	v, ok, err := p.cache.Get(ctx, key)
	if err != nil {
		logger.FromContext(ctx, p.log).Warn("Capability cache read failed", zap.String("key", key), zap.Error(err))
		return false, false
	}
	if !ok {
		return false, false
	}
	return v == "1", true
}

func (p *Probe) store(ctx context.Context, key string, value bool) {
	v := "0"
	if value {
		v = "1"
	}
	if err := p.cache.Set(ctx, key, v, p.ttl); err != nil {
		logger.FromContext(ctx, p.log).Warn("Capability cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func tableKey(schema, table string) string {
	return "capability:" + schema + ":" + table
}

func columnsKey(schema, table string, columns []string) string {
	sorted := append([]string(nil), columns...)
	sort.Strings(sorted)
	return tableKey(schema, table) + ":" + strings.Join(sorted, ",")
}
