package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	portsrepo "github.com/SscSPs/payledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/payledger/internal/core/ports/services"
	"github.com/SscSPs/payledger/internal/core/services"
	"github.com/SscSPs/payledger/internal/handlers"
	"github.com/SscSPs/payledger/internal/middleware"
	"github.com/SscSPs/payledger/internal/platform/config"
	"github.com/SscSPs/payledger/internal/platform/lock"
	"github.com/SscSPs/payledger/internal/platform/otel"
	"github.com/SscSPs/payledger/internal/providers"
	"github.com/SscSPs/payledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/payledger/internal/repositories/memory"
	"github.com/SscSPs/payledger/migrations"
	"github.com/SscSPs/payledger/pkg/database"
)

const serviceName = "payledger"

// @title payledger API
// @version 1.0
// @description Payment webhook ingestion and financial ledger reconciliation.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey SharedSecret
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the reconciliation secret.
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("Server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	shutdownTracing, err := otel.Setup(ctx, serviceName, cfg.OTelEnabled, cfg.OTelEndpoint)
	if err != nil {
		logger.Warn("Tracing disabled, exporter setup failed", slog.String("error", err.Error()))
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("Failed to flush traces", slog.String("error", err.Error()))
		}
	}()

	repos, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	adapters := providers.NewAdapters(providers.Secrets{
		Stripe:      cfg.StripeWebhookSecret,
		Paystack:    cfg.PaystackSecretKey,
		Flutterwave: cfg.FlutterwaveWebhookHash,
		PayPal:      cfg.PayPalWebhookSecret,
	}, time.Now)
	for _, a := range adapters {
		if !a.Configured() {
			logger.Warn("Webhook secret not configured, endpoint will answer 503", slog.String("provider", a.Name()))
		}
	}

	container := services.NewServiceContainer(cfg, repos, adapters)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	if err := r.SetTrustedProxies(nil); err != nil {
		return err
	}
	if err := handlers.RegisterRoutes(r, cfg, container); err != nil {
		return err
	}

	go startScheduler(ctx, cfg, container, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("driver", cfg.DatabaseDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStore builds the repository provider for the configured driver. The
// returned close function releases the pool.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	if cfg.DatabaseDriver == config.DriverMemory {
		logger.Warn("Using in-memory store, data is lost on restart")
		return memory.New().Provider(), func() {}, nil
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, err
	}
	logger.Info("Database connection pool established.")

	logger.Info("Running database migrations...")
	applied, err := migrations.Up(cfg.DatabaseURL)
	if err != nil {
		database.ClosePgxPool(dbPool)
		return portsrepo.RepositoryProvider{}, nil, err
	}
	if applied {
		logger.Info("Database migrations applied successfully.")
	} else {
		logger.Info("No new migrations to apply.")
	}

	return pgsql.NewRepositoryProvider(dbPool), func() { database.ClosePgxPool(dbPool) }, nil
}

// startScheduler runs periodic reconciliation until ctx is cancelled. It is a
// no-op when RECONCILE_INTERVAL is zero.
func startScheduler(ctx context.Context, cfg *config.Config, container *portssvc.ServiceContainer, logger *slog.Logger) {
	if cfg.ReconcileInterval <= 0 {
		return
	}

	var locker portssvc.RunLocker
	if cfg.RedisURL != "" {
		redisLocker, err := lock.NewRedisLocker(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("Redis unavailable, scheduled runs are not coordinated across replicas", slog.String("error", err.Error()))
		} else {
			defer redisLocker.Close()
			locker = redisLocker
		}
	}

	services.NewReconcileScheduler(container.Reconciliation, locker, cfg.ReconcileInterval, cfg.ReconcileDefaultLimit).Start(ctx)
}
