package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/suteetoe/storefront/internal/handler"
	"github.com/suteetoe/storefront/internal/middleware"
	"github.com/suteetoe/storefront/internal/storage"
	"github.com/suteetoe/storefront/internal/tenant"
	"github.com/suteetoe/storefront/pkg/cache"
	"github.com/suteetoe/storefront/pkg/config"
	"github.com/suteetoe/storefront/pkg/database"
	"github.com/suteetoe/storefront/pkg/logger"
	"github.com/suteetoe/storefront/prometheus"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()
	log.Info("Starting storefront storage service...", zap.String("environment", cfg.Server.Env))

	control, err := database.InitDB(&cfg.DB)
	if err != nil {
		log.Fatal("Failed to connect to control database", zap.Error(err))
	}
	defer database.Close(control)
	log.Info("Control database connection established")

	storageMetrics := prometheus.NewStorageMetrics(promclient.DefaultRegisterer, cfg.Metrics.Prefix)
	httpMetrics := prometheus.NewHTTPMetrics(promclient.DefaultRegisterer, cfg.Metrics.Prefix)
	log.Info("Prometheus metrics initialized")

	shared := cache.New(&cfg.Cache)
	if r, ok := shared.(*cache.Redis); ok {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := r.Ping(ctx); err != nil {
			log.Warn("Redis unavailable, using in-process cache", zap.Error(err))
			shared = cache.NewMemory()
		}
		cancel()
	}

	resolver := tenant.NewResolver(control,
		tenant.WithCache(shared, cfg.Cache.TTL),
		tenant.WithResolverLogger(log))

	registry := tenant.NewRegistry(resolver, tenant.PoolConfig{
		Pool: database.PoolSettings{
			MaxIdleConns:    cfg.TenantPool.MaxIdleConns,
			MaxOpenConns:    cfg.TenantPool.MaxOpenConns,
			ConnMaxLifetime: cfg.TenantPool.ConnMaxLifetime,
		},
		LogLevel:            cfg.DB.LogLevel,
		FallbackIdleTimeout: cfg.TenantPool.FallbackIdleTimeout,
	}, tenant.WithRegistryLogger(log), tenant.WithRegistryMetrics(storageMetrics))
	defer registry.Close()

	probe := tenant.NewProbe(shared, cfg.Cache.TTL, log)
	factory := storage.NewFactory(registry,
		storage.WithLogger(log),
		storage.WithMetrics(storageMetrics),
		storage.WithProbe(probe),
		storage.WithFallback(registry))

	health := handler.NewHealthHandler(control, registry)

	e := echo.New()
	e.HideBanner = true

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(middleware.RequestID(log))
	e.Use(logger.Middleware(log))
	e.Use(httpMetrics.Middleware())

	e.GET("/health", health.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Store-scoped routes are mounted by the API handlers on this group
	api := e.Group("/api")
	api.Use(middleware.TenantStorage(factory))
	api.GET("/stores/current", func(c echo.Context) error {
		s := middleware.StorageFromContext(c)
		return c.JSON(http.StatusOK, echo.Map{
			"store_id": s.StoreID(),
			"schema":   s.Schema(),
		})
	})

	go func() {
		port := cfg.Server.Port
		log.Info("Starting server", zap.String("port", port))
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
}
