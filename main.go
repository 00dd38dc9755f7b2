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
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/salus-app/salus_backend/config"
	"github.com/salus-app/salus_backend/controllers"
	"github.com/salus-app/salus_backend/middleware"
	"github.com/salus-app/salus_backend/repositories"
	"github.com/salus-app/salus_backend/routes"
	"github.com/salus-app/salus_backend/services"
	"github.com/salus-app/salus_backend/utils"
)

func main() {
	cfg, cfgErr := config.Load()

	logger, err := config.NewLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if cfgErr != nil {
		logger.Fatal("invalid configuration", zap.Error(cfgErr))
	}
	if !cfg.EnvFileLoaded {
		logger.Warn(".env file not found, using process environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := config.ConnectDB(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("connect to MongoDB", zap.Error(err))
	}
	db := client.Database(cfg.DBName)

	rdb := config.ConnectRedis(ctx, cfg, logger)

	userRepo := repositories.NewUserRepository(db)
	otpRepo := repositories.NewOtpSessionRepository(db)

	tokens := services.NewTokenService(cfg)
	notifier := services.NewNotificationService(cfg, logger)
	limiter := services.NewOtpSendLimiter(rdb, cfg.OTPSendLimit, logger)
	sessions := services.NewSessionStore(rdb, cfg.SessionMaxAge)
	google := services.NewGoogleAuthService(ctx, cfg.GoogleClientID)

	authService := services.NewAuthService(userRepo, otpRepo, notifier, tokens, limiter, logger)
	userService := services.NewUserService(userRepo, logger)

	authController := controllers.NewAuthController(authService, google, sessions, controllers.AuthControllerConfig{
		SessionSecret: cfg.SessionSecret,
		AccessTTL:     tokens.AccessTTL(),
		RefreshTTL:    tokens.RefreshTTL(),
	}, logger)
	userController := controllers.NewUserController(userService)

	e := echo.New()
	e.HideBanner = true
	e.Validator = utils.NewValidator()
	e.HTTPErrorHandler = middleware.ErrorHandler(cfg.IsProduction(), logger)

	rateLimiter := middleware.NewRateLimiter(ctx)

	e.Use(echoMiddleware.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.CORS(cfg.CORSAllowedOrigins, cfg.IsProduction()))
	e.Use(middleware.SecurityHeaders(middleware.SecurityConfig{AllowedDomains: cfg.CORSAllowedOrigins}))
	e.Use(echoMiddleware.BodyLimit("1M"))
	e.Use(rateLimiter.RateLimit())

	health := map[string]routes.HealthCheck{
		"database": func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) },
	}
	if rdb != nil {
		health["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	deps := routes.Dependencies{
		Auth:          authController,
		Users:         userController,
		Authenticator: middleware.NewAuthenticator(userRepo, tokens, logger),
		UserFinder:    userRepo,
		SessionSecret: cfg.SessionSecret,
		Health:        health,
		Logger:        logger,
	}
	if sessions.Enabled() {
		deps.Sessions = sessions
	}
	routes.SetupRoutes(e, deps)

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Port), zap.String("env", cfg.AppEnv))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if err := client.Disconnect(shutdownCtx); err != nil {
		logger.Error("mongo disconnect", zap.Error(err))
	}
}
