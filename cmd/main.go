package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	_ "userapi/docs"
	"userapi/internal/caching"
	"userapi/internal/config"
	"userapi/internal/handlers"
	"userapi/internal/logging"
	"userapi/internal/middleware"
	"userapi/internal/migrations"
	"userapi/internal/repositories"
	"userapi/internal/services"
	"userapi/internal/validation"
	"userapi/pkg/database"
)

// @title userapi
// @version 1.0.0
// @description User registration, token login and activity reports.
// @BasePath /
// @securityDefinitions.apikey TokenAuth
// @in header
// @name Authorization
// @description Token <key>
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewZapLogger(cfg.Log.Logger(cfg.Server.Debug))
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Database.MigrateOnStart {
		if err := migrations.Run(ctx, cfg.Database.URL, logger); err != nil {
			logger.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	pool, err := database.NewPool(ctx, cfg.Database.URL, database.PoolOptions{
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	// Create cache service
	var cacheSvc caching.CacheService
	if cfg.Redis.Enabled {
		redisClient, err := caching.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal("Failed to configure redis", zap.Error(err))
		}
		defer redisClient.Close()
		cacheSvc = caching.NewRedisCacheService(redisClient, cfg.Redis.TokenTTL, logger)
	} else {
		cacheSvc = caching.NewNoopCacheService()
	}

	// Create repositories
	userRepo := repositories.NewUserRepo(pool)
	tokenRepo := repositories.NewTokenRepo(pool)
	activityRepo := repositories.NewActivityReportRepo(pool)
	tx := repositories.NewTransactor(pool)

	// Create services
	validator := validation.NewValidator(cfg.Auth.PasswordPolicy(), userRepo)
	authSvc := services.NewAuthService(userRepo, tokenRepo, activityRepo, tx, cacheSvc, validator, logger)
	userSvc := services.NewUserService(userRepo, tokenRepo, tx, cacheSvc, validator, cfg.Auth.BcryptCost, logger)
	reportSvc := services.NewReportService(activityRepo)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger = logging.NewEchoZapLogger(logger)
	e.HTTPErrorHandler = handlers.ErrorHandler(logger)

	// Global middleware
	e.Pre(echoMiddleware.RemoveTrailingSlash())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestID())
	e.Use(logging.NewEchoRequestLogger(logger))
	e.Use(echoMiddleware.CORS())
	e.Use(middleware.VersionHeader(cfg.Server.Version))

	handlers.RegisterRoutes(e,
		middleware.NewTokenAuthMiddleware(authSvc, logger),
		handlers.NewUserHandlers(userSvc, authSvc),
		handlers.NewReportHandlers(reportSvc),
		handlers.NewHealthHandlers(pool, cacheSvc, cfg.Server.Version, logger),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      e,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("userapi server starting",
			zap.String("version", cfg.Server.Version),
			zap.String("addr", server.Addr),
		)
		if err := e.StartServer(server); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
	logger.Info("Server stopped")
}
