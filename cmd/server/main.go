package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"wellnesshub/docs"
	"wellnesshub/internal/auth"
	"wellnesshub/internal/cache"
	"wellnesshub/internal/config"
	"wellnesshub/internal/db"
	apperr "wellnesshub/internal/errors"
	"wellnesshub/internal/handler"
	"wellnesshub/internal/keepalive"
	"wellnesshub/internal/logger"
	"wellnesshub/internal/notify"
	"wellnesshub/internal/repository"
	"wellnesshub/internal/router"
	"wellnesshub/internal/service"
	"wellnesshub/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// @title Wellness Hub API
// @version 1.0
// @description Practitioner directory, events calendar and staff administration API with JWT authentication.
// @host localhost:5000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.Env)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.MasterCode == "" {
		log.Warn("MASTER_CODE is not set; employee deletion and password resets are disabled")
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN, db.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		log.Fatal("database init", zap.Error(err))
	}
	if cfg.ResetDB {
		log.Warn("RESET_DB=true detected, dropping all tables")
	}
	if err := db.Migrate(gormDB, cfg.ResetDB); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer func() { _ = cacheClient.Close() }()

	store, err := newStore(cfg)
	if err != nil {
		log.Fatal("storage init", zap.Error(err))
	}

	var notifier notify.Notifier = notify.Disabled{}
	if cfg.MailEnabled() {
		notifier = notify.NewSMTPNotifier(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.SMTPFrom,
		})
	} else {
		log.Warn("SMTP is not configured; password resets cannot be delivered")
	}

	// Repositories
	accountRepo := repository.NewAccountRepository(gormDB)
	practitionerRepo := repository.NewPractitionerRepository(gormDB)
	eventRepo := repository.NewEventRepository(gormDB)

	// Auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTExpiresIn)
	tokenStore := auth.NewTokenStore(cacheClient)
	verifier := auth.NewVerifier(jwtService, tokenStore, service.NewPrincipalLookup(accountRepo))

	// Services
	authService := service.NewAuthService(accountRepo, jwtService, tokenStore, logger.WithComponent(log, "auth"))
	employeeService := service.NewEmployeeService(accountRepo, notifier, cfg.MasterCode, logger.WithComponent(log, "employees"))
	practitionerService := service.NewPractitionerService(practitionerRepo, cacheClient, logger.WithComponent(log, "practitioners"))
	eventService := service.NewEventService(eventRepo, cacheClient, logger.WithComponent(log, "events"))
	uploadService := service.NewUploadService(store, cfg.MaxFileSize, logger.WithComponent(log, "uploads"))

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = apperr.HTTPErrorHandler(log, cfg.IsProduction())

	router.Register(e, cfg, log, verifier, router.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Employee:     handler.NewEmployeeHandler(employeeService),
		Practitioner: handler.NewPractitionerHandler(practitionerService),
		Event:        handler.NewEventHandler(eventService),
		Upload:       handler.NewUploadHandler(uploadService),
		Health:       handler.NewHealthHandler(accountRepo, cacheClient, log),
	})

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "http://"), "https://")
	}
	log.Info("swagger documentation available", zap.String("path", "/swagger/index.html"))

	scheduler, err := keepalive.New(keepalive.Config{
		Schedule: cfg.KeepAliveSchedule,
		URL:      cfg.KeepAliveURL,
	}, accountRepo, logger.WithComponent(log, "keepalive"))
	if err != nil {
		log.Fatal("keepalive init", zap.Error(err))
	}
	if err := scheduler.Start(ctx); err != nil {
		log.Fatal("keepalive start", zap.Error(err))
	}

	go func() {
		addr := ":" + cfg.ServerPort
		log.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	scheduler.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func newStore(cfg *config.Config) (storage.Store, error) {
	if cfg.CloudinaryURL != "" {
		return storage.NewCloudinaryStore(cfg.CloudinaryURL, "wellness")
	}
	return storage.NewLocalStore(cfg.UploadDir, "/uploads")
}
