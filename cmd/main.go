package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storeauth/api/handler"
	apiMiddleware "storeauth/api/middleware"
	"storeauth/api/routes"
	"storeauth/config"
	"storeauth/internal/device"
	"storeauth/internal/repository"
	"storeauth/internal/service"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.WithError(err).Fatal("load config")
	}
	logger.SetLevel(cfg.Level())

	db, err := config.ConnectionDb(cfg.DatabaseURL)
	if err != nil {
		logger.WithError(err).Fatal("database")
	}
	if err := config.Migrate(ctx, db); err != nil {
		logger.WithError(err).Fatal("migrations")
	}

	rdb, err := config.ConnectionRedis(ctx, cfg.Redis)
	if err != nil {
		logger.WithError(err).Fatal("redis")
	}

	tokens, err := service.NewTokenService(cfg.TokenService(), service.RealClock{})
	if err != nil {
		logger.WithError(err).Fatal("token service")
	}
	codes := service.NewOTPEngine(cfg.OTPEngine(), service.RealClock{})

	var mailer service.Mailer = service.LogMailer{Logger: logger}
	if cfg.Mail.ResendAPIKey != "" {
		mailer = service.NewResendMailer(cfg.Mail.ResendAPIKey, cfg.Mail.From)
	} else {
		logger.Warn("RESEND_API_KEY not set, mail is written to the log")
	}

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	securityRepo := repository.NewSecurityLogRepository(db)

	tracker := service.NewSessionTracker(sessionRepo, device.NewParser(1024, time.Hour), logger)
	authService := service.NewAuthService(
		userRepo,
		tracker,
		mailer,
		service.BcryptPasswordHasher{Cost: cfg.BcryptCost},
		codes,
		tokens,
	)
	if cfg.OTP.ReplayGuard {
		authService.WithReplayGuard(service.NewRedisReplayGuard(rdb, codes.Period()))
		logger.Info("otp replay guard enabled")
	}
	userService := service.NewUserService(userRepo, tracker)

	validate := handler.NewValidator()
	audit := &handler.AuditRecorder{Logs: securityRepo, Log: logger}
	authHandler := handler.NewAuthHandler(authService, validate, audit)
	userHandler := handler.NewUserHandler(userService, validate, audit)

	checks := map[string]handler.Check{
		"postgres": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}
	}
	healthHandler := handler.NewHealthHandler(checks)

	app := echo.New()
	app.HideBanner = true
	app.HidePort = true
	app.HTTPErrorHandler = handler.NewHTTPErrorHandler(logger)
	if cfg.TrustProxy {
		app.IPExtractor = echo.ExtractIPFromXFFHeader()
	} else {
		app.IPExtractor = echo.ExtractIPDirect()
	}
	app.Use(echoMiddleware.Recover())
	app.Use(echoprometheus.NewMiddleware("storeauth"))
	app.Use(echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogStatus:   true,
		LogMethod:   true,
		LogURI:      true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"status": v.Status,
				"method": v.Method,
				"uri":    v.URI,
				"ip":     v.RemoteIP,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Error("request")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))

	authMiddleware := apiMiddleware.AuthMiddleware{Tokens: tokens, Sessions: tracker}
	router := routes.NewRouter(app, authHandler, userHandler, healthHandler, authMiddleware)
	router.RegisterRoutes()

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.WithField("addr", cfg.HTTPAddr).Info("server started")
		if err := app.StartServer(server); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server stopped")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("shutdown")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("server stopped")
}
