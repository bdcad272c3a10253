package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/athletenexus-api/internal/repository"
	"github.com/noah-isme/athletenexus-api/internal/service"
	"github.com/noah-isme/athletenexus-api/migrations"
	"github.com/noah-isme/athletenexus-api/pkg/cache"
	"github.com/noah-isme/athletenexus-api/pkg/config"
	"github.com/noah-isme/athletenexus-api/pkg/database"
	"github.com/noah-isme/athletenexus-api/pkg/jobs"
	"github.com/noah-isme/athletenexus-api/pkg/logger"
	"github.com/noah-isme/athletenexus-api/pkg/notify"
	"github.com/noah-isme/athletenexus-api/pkg/payment"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Migrations.Auto {
		migrator, err := database.NewMigrator(db.DB, migrations.FS, logr)
		if err != nil {
			return err
		}
		if err := migrator.Up(ctx); err != nil {
			return err
		}
	}

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
			cfg.Cache.Enabled = false
		}
	}

	processor, err := newProcessor(cfg.Payments)
	if err != nil {
		return err
	}
	notifier, err := newNotifier(cfg.Notifications, logr)
	if err != nil {
		return err
	}

	app := buildApp(cfg, db, redisClient, processor, notifier, logr)
	if app.cache != nil {
		defer app.cache.Close() //nolint:errcheck
	}
	app.notifications.Start(ctx)
	defer app.notifications.Stop()
	go app.reconciler.Run(ctx)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           newRouter(cfg, app, logr),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.String("payment_provider", processor.Name()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// app holds the wired services shared by the router and background workers.
type app struct {
	db            *sqlx.DB
	metrics       *service.MetricsService
	auth          *service.AuthService
	classes       *service.ClassService
	selections    *service.SelectionService
	intents       *service.PaymentIntentService
	payments      *service.PaymentService
	exports       *service.ExportService
	users         *service.UserService
	notifications *service.NotificationService
	reconciler    *service.ReconciliationService
	audit         *repository.AuditRepository
	cache         *repository.CacheRepository
}

func buildApp(cfg *config.Config, db *sqlx.DB, redisClient *redis.Client, processor payment.Processor, notifier notify.Notifier, logr *zap.Logger) *app {
	validate := validator.New()
	metrics := service.NewMetricsService()

	var cacheRepo *repository.CacheRepository
	var cacheStore service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
		cacheStore = cacheRepo
	}
	cacheSvc := service.NewCacheService(cacheStore, metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled)

	classRepo := repository.NewClassRepository(db)
	selectionRepo := repository.NewSelectionRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	intentRepo := repository.NewPaymentIntentRepository(db)
	userRepo := repository.NewUserRepository(db)

	classes := service.NewClassService(classRepo, cacheSvc, validate, logr)
	notifications := service.NewNotificationService(notifier, metrics, jobs.QueueConfig{
		Workers:    cfg.Notifications.Workers,
		MaxRetries: cfg.Notifications.Retries,
	}, logr)
	payments := service.NewPaymentService(service.PaymentServiceDeps{
		Tx:         db,
		Payments:   paymentRepo,
		Seats:      classes,
		Selections: selectionRepo,
		Intents:    intentRepo,
		Notifier:   notifications,
		Metrics:    metrics,
		Validator:  validate,
		Logger:     logr,
	})

	auth := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})

	return &app{
		db:            db,
		metrics:       metrics,
		auth:          auth,
		classes:       classes,
		selections:    service.NewSelectionService(selectionRepo, classes, validate, logr),
		intents:       service.NewPaymentIntentService(processor, intentRepo, cfg.Payments.Currency, metrics, validate, logr),
		payments:      payments,
		exports:       service.NewExportService(payments, nil, nil, logr),
		users:         service.NewUserService(userRepo, validate, logr),
		notifications: notifications,
		reconciler:    service.NewReconciliationService(intentRepo, notifications, metrics, cfg.Payments.IntentStaleAfter, cfg.Payments.ReconcileInterval, logr),
		audit:         repository.NewAuditRepository(db),
		cache:         cacheRepo,
	}
}

func newProcessor(cfg config.PaymentsConfig) (payment.Processor, error) {
	switch cfg.Provider {
	case config.ProviderStripe:
		return payment.NewStripeProcessor(cfg.StripeSecretKey, nil), nil
	case config.ProviderMidtrans:
		return payment.NewMidtransProcessor(cfg.MidtransServerKey, cfg.MidtransProduction), nil
	default:
		return nil, fmt.Errorf("unsupported payment provider %q", cfg.Provider)
	}
}

func newNotifier(cfg config.NotificationsConfig, logr *zap.Logger) (notify.Notifier, error) {
	if cfg.TelegramBotToken == "" || cfg.TelegramChatID == 0 {
		return notify.NewLog(logr), nil
	}
	return notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID)
}
