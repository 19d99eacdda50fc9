package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"storerating/internal/auth"
	"storerating/internal/cache"
	"storerating/internal/config"
	"storerating/internal/db"
	"storerating/internal/handler"
	"storerating/internal/logger"
	"storerating/internal/middleware"
	"storerating/internal/repository"
	"storerating/internal/router"
	"storerating/internal/service"
)

const shutdownTimeout = 10 * time.Second

// @title Store Rating API
// @version 1.0
// @description Role-based store rating service: admins manage users and stores, owners see their store's ratings, users rate stores.
// @host localhost:5000
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog, err := logger.New(logger.Config{Level: cfg.LogLevel, Dev: cfg.LogDev})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := db.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		zlog.Fatal("database init", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	if err := db.Migrate(gormDB); err != nil {
		zlog.Fatal("auto-migrate", zap.Error(err))
	}

	cacheClient := cache.New(cache.Options{
		Addr:      cfg.RedisAddr,
		Password:  cfg.RedisPass,
		DB:        cfg.RedisDB,
		Namespace: "storerating",
	})
	defer func() { _ = cacheClient.Close() }()
	if !cacheClient.Enabled() {
		zlog.Info("REDIS_ADDR not set, logout will not revoke tokens")
	} else if err := cacheClient.Ping(ctx); err != nil {
		zlog.Warn("redis unreachable, token revocation degraded", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	storeRepo := repository.NewStoreRepository(gormDB)
	ratingRepo := repository.NewRatingRepository(gormDB)

	// Initialize auth components
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTExpiresIn)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, hasher, jwtService, tokenStore, zlog.Named("auth"))
	userService := service.NewUserService(userRepo, storeRepo, hasher)
	storeService := service.NewStoreService(storeRepo, userRepo)
	ratingService := service.NewRatingService(ratingRepo, storeRepo)
	dashboardService := service.NewDashboardService(userRepo, storeRepo, ratingRepo)

	if cfg.BootstrapAdmin() {
		created, err := userService.EnsureAdmin(ctx, service.NewUser{
			Name:     cfg.AdminName,
			Email:    cfg.AdminEmail,
			Password: cfg.AdminPassword,
		})
		if err != nil {
			zlog.Fatal("bootstrap admin", zap.Error(err))
		}
		if created {
			zlog.Info("bootstrap admin created", zap.String("email", cfg.AdminEmail))
		}
	}

	metrics := middleware.NewMetrics()

	e := echo.New()
	router.Register(e, router.Options{
		Logger:      zlog.Named("http"),
		Gate:        middleware.NewGate(authService, zlog.Named("gate")),
		Metrics:     metrics,
		CORSOrigins: cfg.CORSOrigins,
		SwaggerHost: cfg.SwaggerHost,
	}, router.Handlers{
		Auth:   handler.NewAuthHandler(authService),
		Admin:  handler.NewAdminHandler(userService, storeService, dashboardService),
		Owner:  handler.NewOwnerHandler(dashboardService),
		Rating: handler.NewRatingHandler(storeService, ratingService, metrics),
	})

	addr := ":" + cfg.ServerPort
	go func() {
		zlog.Info("server starting", zap.String("addr", addr), zap.String("db_driver", cfg.DBDriver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zlog.Error("server shutdown", zap.Error(err))
	}
}
