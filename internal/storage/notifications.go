package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/suteetoe/storefront/internal/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const notificationsTable = "notifications"

// notificationCountColumns are the columns the primary count query reads
var notificationCountColumns = []string{"id", "user_id", "is_read", "created_at"}

const fallbackCountQuery = `SELECT COUNT(*), COUNT(*) FILTER (WHERE is_read = false) FROM notifications WHERE user_id = $1`

// countStrategy computes a user's notification counts one way
type countStrategy func(ctx context.Context, userID int64) (model.NotificationCounts, error)

// GetNotificationsByUserID lists a user's notifications, newest first
func (s *TenantStorage) GetNotificationsByUserID(ctx context.Context, userID int64) []model.Notification {
	return listRows[model.Notification](ctx, s, "notification", "list_by_user", func(q *gorm.DB) *gorm.DB {
		return q.Where("user_id = ?", userID)
	})
}

// CreateNotification inserts an unread notification
func (s *TenantStorage) CreateNotification(ctx context.Context, in model.NewNotification) (*model.Notification, error) {
	defer s.observe("notification", "create")()
	log := s.logFor(ctx)

	n := model.Notification{
		UserID:         in.UserID,
		Type:           in.Type,
		Title:          in.Title,
		Message:        in.Message,
		IsRead:         false,
		RelatedOrderID: in.RelatedOrderID,
		CreatedAt:      s.timestamp(),
	}
	if err := s.conn(ctx).Create(&n).Error; err != nil {
		log.Error("Failed to create notification", append(errorFields(err), zap.Int64("user_id", in.UserID))...)
		return nil, err
	}

	log.Info("Notification created", zap.Int64("notification_id", n.ID), zap.Int64("user_id", n.UserID))
	return &n, nil
}

// MarkNotificationAsRead flags one notification read; nil when it does not exist
func (s *TenantStorage) MarkNotificationAsRead(ctx context.Context, id int64) (*model.Notification, error) {
	return updateRow[model.Notification](ctx, s, "notification", id, map[string]interface{}{"is_read": true})
}

// MarkAllNotificationsAsRead flags every unread notification of a user read
// and reports how many changed
func (s *TenantStorage) MarkAllNotificationsAsRead(ctx context.Context, userID int64) (int64, error) {
	defer s.observe("notification", "mark_all_read")()

	result := s.conn(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if result.Error != nil {
		s.logFor(ctx).Error("Failed to mark notifications read", append(errorFields(result.Error), zap.Int64("user_id", userID))...)
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// DeleteNotification removes a notification
func (s *TenantStorage) DeleteNotification(ctx context.Context, id int64) error {
	return deleteRow[model.Notification](ctx, s, "notification", id)
}

// GetNotificationCounts returns total and unread counts for a user. The
// primary query runs when the schema has the expected columns; otherwise, or
// when it fails, counts come from a raw query on a private connection. If
// both fail the counts are zero.
func (s *TenantStorage) GetNotificationCounts(ctx context.Context, userID int64) model.NotificationCounts {
	defer s.observe("notification", "counts")()
	log := s.logFor(ctx).With(zap.Int64("user_id", userID))
	primary, alternate := countStrategy(s.primaryCounts), countStrategy(s.fallbackCounts)

	if s.probe.HasColumns(ctx, s.db, s.schema, notificationsTable, notificationCountColumns...) {
		counts, err := primary(ctx, userID)
		if err == nil {
			return counts
		}
		log.Warn("Primary notification count failed, using fallback", errorFields(err)...)
		s.probe.MarkColumnsMissing(ctx, s.schema, notificationsTable, notificationCountColumns...)
		s.metrics.RecordFallback("notification_counts", "primary_failed")
	} else {
		s.metrics.RecordFallback("notification_counts", "capability_missing")
	}

	counts, err := alternate(ctx, userID)
	if err != nil {
		log.Error("Fallback notification count failed", errorFields(err)...)
		return model.NotificationCounts{}
	}
	return counts
}

// primaryCounts reads the minimal column set and counts in memory
func (s *TenantStorage) primaryCounts(ctx context.Context, userID int64) (model.NotificationCounts, error) {
	var rows []struct {
		ID     int64
		IsRead bool
	}
	err := s.conn(ctx).Model(&model.Notification{}).
		Select("id", "is_read").
		Where("user_id = ?", userID).
		Find(&rows).Error
	if err != nil {
		return model.NotificationCounts{}, err
	}

	counts := model.NotificationCounts{Total: int64(len(rows))}
	for _, r := range rows {
		if !r.IsRead {
			counts.Unread++
		}
	}
	return counts, nil
}

// fallbackCounts resolves the schema on its own and counts on a private
// single-connection pool
func (s *TenantStorage) fallbackCounts(ctx context.Context, userID int64) (model.NotificationCounts, error) {
	if s.fallback == nil {
		return model.NotificationCounts{}, errors.New("no fallback connection configured")
	}

	fc, err := s.fallback.OpenFallback(ctx, s.storeID)
	if err != nil {
		return model.NotificationCounts{}, err
	}
	defer func() {
		if err := fc.Close(); err != nil {
			s.logFor(ctx).Warn("Failed to close fallback connection", zap.Error(err))
		}
	}()

	var counts model.NotificationCounts
	if err := fc.QueryRowContext(ctx, fallbackCountQuery, userID).Scan(&counts.Total, &counts.Unread); err != nil {
		return model.NotificationCounts{}, fmt.Errorf("fallback count in schema %s: %w", fc.Schema(), err)
	}
	return counts, nil
}

