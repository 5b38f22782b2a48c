package storage

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/suteetoe/storefront/internal/tenant"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrTenantNotFound = tenant.ErrTenantNotFound
	ErrTenantInactive = tenant.ErrTenantInactive

	// ErrValidation is returned before any database call for invalid input
	ErrValidation = errors.New("validation failed")
	// ErrInconsistentState means a duplicate was reported but the existing
	// row could not be read back
	ErrInconsistentState = errors.New("inconsistent state")
	// ErrFeatureUnavailable is returned when the store schema lacks the
	// table an operation writes to
	ErrFeatureUnavailable = errors.New("feature unavailable for store")
)

const (
	uniqueViolation = "23505"
	maxDetailLen    = 200
)

// sqlState returns the SQLSTATE code and detail carried by err, if any
func sqlState(err error) (code, detail string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.Detail
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Detail
	}
	return "", ""
}

func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	code, _ := sqlState(err)
	return code == uniqueViolation
}

// errorFields describes a database error for logging
func errorFields(err error) []zap.Field {
	fields := []zap.Field{zap.Error(err)}
	code, detail := sqlState(err)
	if code != "" {
		fields = append(fields, zap.String("sqlstate", code))
	}
	if detail != "" {
		if len(detail) > maxDetailLen {
			detail = detail[:maxDetailLen] + "..."
		}
		fields = append(fields, zap.String("detail", detail))
	}
	return fields
}
