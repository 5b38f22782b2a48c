package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/storefront/internal/storage"
	"github.com/suteetoe/storefront/pkg/logger"
	"go.uber.org/zap"
)

// StoreIDHeader names the store a request operates on
const StoreIDHeader = "X-Store-ID"

const storageContextKey = "tenant_storage"

// StorageFactory builds a storage facade for a store. *storage.Factory
// implements it.
type StorageFactory interface {
	ForStore(ctx context.Context, storeID int64) (*storage.TenantStorage, error)
}

// TenantStorage resolves the X-Store-ID header to a storage facade and makes
// it available to handlers through StorageFromContext
func TenantStorage(factory StorageFactory) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			raw := c.Request().Header.Get(StoreIDHeader)
			if raw == "" {
				return c.JSON(http.StatusBadRequest, echo.Map{
					"error": "X-Store-ID header is required",
				})
			}
			storeID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || storeID <= 0 {
				log.Warn("Invalid store id", zap.String("store_id", raw))
				return c.JSON(http.StatusBadRequest, echo.Map{
					"error": "Invalid X-Store-ID header",
				})
			}

			s, err := factory.ForStore(c.Request().Context(), storeID)
			switch {
			case errors.Is(err, storage.ErrTenantNotFound):
				log.Warn("Unknown store", zap.Int64("store_id", storeID))
				return c.JSON(http.StatusNotFound, echo.Map{
					"error": "Store not found",
				})
			case errors.Is(err, storage.ErrTenantInactive):
				log.Warn("Inactive store", zap.Int64("store_id", storeID))
				return c.JSON(http.StatusForbidden, echo.Map{
					"error": "Store is inactive",
				})
			case err != nil:
				log.Error("Failed to bind store storage", zap.Int64("store_id", storeID), zap.Error(err))
				return c.JSON(http.StatusServiceUnavailable, echo.Map{
					"error": "Store storage unavailable",
				})
			}

			c.Set(storageContextKey, s)
			return next(c)
		}
	}
}

// StorageFromContext returns the facade bound by TenantStorage, or nil
func StorageFromContext(c echo.Context) *storage.TenantStorage {
	s, _ := c.Get(storageContextKey).(*storage.TenantStorage)
	return s
}
