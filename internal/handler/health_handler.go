package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/storefront/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PoolCounter reports how many tenant pools are open
type PoolCounter interface {
	Len() int
}

// HealthHandler serves the health check endpoint
type HealthHandler struct {
	control *gorm.DB
	pools   PoolCounter
}

// NewHealthHandler checks the control database and reports tenant pools
func NewHealthHandler(control *gorm.DB, pools PoolCounter) *HealthHandler {
	return &HealthHandler{control: control, pools: pools}
}

// HealthCheck handles the health check endpoint
func (h *HealthHandler) HealthCheck(c echo.Context) error {
	log := logger.FromEcho(c)
	log.Debug("Health check requested")

	response := map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	}
	if h.pools != nil {
		response["tenant_pools"] = h.pools.Len()
	}

	// Check database connection if requested
	if c.QueryParam("check") == "db" {
		sqlDB, err := h.control.DB()
		if err != nil {
			log.Error("Database connection error", zap.Error(err))
			response["status"] = "error"
			response["db_status"] = "error"
			response["db_error"] = "Failed to get database connection"
			return c.JSON(http.StatusInternalServerError, response)
		}

		if err := sqlDB.PingContext(c.Request().Context()); err != nil {
			log.Error("Database ping error", zap.Error(err))
			response["status"] = "error"
			response["db_status"] = "error"
			response["db_error"] = "Failed to ping database"
			return c.JSON(http.StatusServiceUnavailable, response)
		}

		response["db_status"] = "ok"
	}

	return c.JSON(http.StatusOK, response)
}
