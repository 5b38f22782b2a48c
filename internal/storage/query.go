package storage

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// listRows runs a list query ordered newest first. Failures are logged and
// yield an empty list.
func listRows[T any](ctx context.Context, s *TenantStorage, entity, operation string, scope func(*gorm.DB) *gorm.DB) []T {
	defer s.observe(entity, operation)()

	rows := []T{}
	q := s.conn(ctx).Model(new(T))
	if scope != nil {
		q = scope(q)
	}
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		s.logFor(ctx).Error("Failed to list "+entity, append(errorFields(err), zap.String("operation", operation))...)
		return []T{}
	}
	return rows
}

// findRow returns the first row matching the condition, or nil on a miss or
// failure
func findRow[T any](ctx context.Context, s *TenantStorage, entity, operation, condition string, args ...interface{}) *T {
	defer s.observe(entity, operation)()

	var row T
	err := s.conn(ctx).Where(condition, args...).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		s.logFor(ctx).Error("Failed to get "+entity, append(errorFields(err), zap.String("operation", operation))...)
		return nil
	}
	return &row
}

// updateRow applies updates to the row with id and returns the updated row,
// or nil when no row matched
func updateRow[T any](ctx context.Context, s *TenantStorage, entity string, id int64, updates map[string]interface{}) (*T, error) {
	defer s.observe(entity, "update")()
	log := s.logFor(ctx)

	var row T
	result := s.conn(ctx).Model(&row).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		log.Error("Failed to update "+entity, append(errorFields(result.Error), zap.Int64("id", id))...)
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		log.Debug(entity+" not found for update", zap.Int64("id", id))
		return nil, nil
	}

	log.Info(entity+" updated", zap.Int64("id", id), zap.Int("fields", len(updates)))
	return &row, nil
}

// deleteRow removes the row with id. Deleting a missing row is not an error.
func deleteRow[T any](ctx context.Context, s *TenantStorage, entity string, id int64) error {
	defer s.observe(entity, "delete")()

	result := s.conn(ctx).Where("id = ?", id).Delete(new(T))
	if result.Error != nil {
		s.logFor(ctx).Error("Failed to delete "+entity, append(errorFields(result.Error), zap.Int64("id", id))...)
		return result.Error
	}

	s.logFor(ctx).Info(entity+" deleted", zap.Int64("id", id), zap.Int64("rows", result.RowsAffected))
	return nil
}
