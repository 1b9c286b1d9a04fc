package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"family-ledger/internal/config"
	"family-ledger/internal/database"
	"family-ledger/internal/handlers"
	appmiddleware "family-ledger/internal/middleware"
	"family-ledger/internal/repositories"
	"family-ledger/internal/services"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := config.Load()

	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	db, err := database.New(&cfg.Database)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	sqlDB, err := db.DB.DB()
	if err != nil {
		slog.Error("failed to get database handle", "error", err)
		os.Exit(1)
	}
	if err := database.RunMigrationsIfEnabled(sqlDB); err != nil {
		slog.Error("database migration failed", "error", err)
		os.Exit(1)
	}

	if err := db.AutoMigrate(); err != nil {
		slog.Error("auto-migration failed", "error", err)
		os.Exit(1)
	}
	if err := db.CreateIndexes(); err != nil {
		slog.Error("index creation failed", "error", err)
		os.Exit(1)
	}

	e := buildServer(cfg, db, logger)

	go func() {
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		slog.Info("starting server", "addr", addr, "environment", cfg.Server.Environment)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			slog.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}
}

func buildServer(cfg *config.Config, db *database.DB, logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	e.Validator = handlers.NewValidator()
	e.HTTPErrorHandler = appmiddleware.CustomHTTPErrorHandler

	e.Use(appmiddleware.RequestID())
	e.Use(appmiddleware.PanicRecovery())
	e.Use(appmiddleware.SecurityHeaders())
	e.Use(appmiddleware.RateLimiterWithConfig(cfg.Security.RateLimitPerSecond, cfg.Security.RateLimitPerSecond*2))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.Server.CORSAllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
	}))

	tokenService := services.NewTokenService(&cfg.JWT)
	metrics := services.NewPrometheusMetrics()
	circuitBreaker := services.NewCircuitBreaker(services.DefaultCircuitBreakerConfig())
	transformClient := services.NewTransformClient(cfg.Transform, circuitBreaker, logger)
	importService := services.NewImportService(db, transformClient, metrics, logger)

	auditRepo := repositories.NewAuditLogRepository(db.DB)
	categoryService := services.NewCategoryService(repositories.NewCategoryRepository(db.DB), auditRepo, logger)
	transactionService := services.NewTransactionService(repositories.NewTransactionRepository(db.DB), auditRepo, logger)

	healthHandler := handlers.NewHealthCheckHandler(db.DB)
	statementHandler := handlers.NewStatementHandler(importService, cfg.Security.MaxUploadBytes)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)

	e.GET("/health", healthHandler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1", appmiddleware.RequireAuth(tokenService))

	importGroup := api.Group("/statements",
		appmiddleware.ImportRateLimiter(cfg.Security.ImportsPerMinute, cfg.Security.ImportBurst))
	importGroup.POST("/import", statementHandler.ImportStatement)

	api.POST("/transactions/recategorize", statementHandler.Recategorize)
	api.GET("/transactions", transactionHandler.ListTransactions)
	api.DELETE("/transactions/:id", transactionHandler.DeleteTransaction)

	api.GET("/categories", categoryHandler.ListCategories)
	api.POST("/categories", categoryHandler.CreateCategory)
	api.PUT("/categories/:id", categoryHandler.UpdateCategory)
	api.DELETE("/categories/:id", categoryHandler.DeleteCategory)

	return e
}
