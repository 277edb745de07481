package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/dealroom-backend/internal/audit"
	"github.com/angelmondragon/dealroom-backend/internal/cron"
	"github.com/angelmondragon/dealroom-backend/internal/entitlements"
	"github.com/angelmondragon/dealroom-backend/internal/orders"
	"github.com/angelmondragon/dealroom-backend/internal/promos"
	"github.com/angelmondragon/dealroom-backend/pkg/config"
	"github.com/angelmondragon/dealroom-backend/pkg/db"
	"github.com/angelmondragon/dealroom-backend/pkg/logger"
	"github.com/angelmondragon/dealroom-backend/pkg/metrics"
	"github.com/angelmondragon/dealroom-backend/pkg/migrate"
	"github.com/angelmondragon/dealroom-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	conn := dbClient.DB()
	auditRepo := audit.NewRepository(conn)
	ordersRepo := orders.NewRepository(conn)
	promosRepo := promos.NewRepository(conn)
	entitlementsRepo := entitlements.NewRepository(conn)

	promosService, err := promos.NewService(promosRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create promos service", err)
		os.Exit(1)
	}
	entitlementsService, err := entitlements.NewService(entitlementsRepo, dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create entitlements service", err)
		os.Exit(1)
	}
	ordersService, err := orders.NewService(ordersRepo, auditRepo, promosService, entitlementsService, dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)

	activationJob, err := cron.NewActivationReconcileJob(cron.ActivationReconcileJobParams{
		Logger: logg,
		Orders: ordersService,
		Batch:  cfg.Cron.ActivationReconcileBatch,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create activation reconcile job", err)
		os.Exit(1)
	}
	expiryJob, err := cron.NewMembershipExpiryJob(cron.MembershipExpiryJobParams{
		Logger:       logg,
		Entitlements: entitlementsService,
		Batch:        cfg.Cron.MembershipExpiryBatch,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create membership expiry job", err)
		os.Exit(1)
	}

	activationService, err := newLoop(cfg, logg, redisClient, metricsCollector, activationJob, cfg.Cron.ActivationReconcileInterval)
	if err != nil {
		logg.Error(context.Background(), "failed to create activation reconcile loop", err)
		os.Exit(1)
	}
	expiryService, err := newLoop(cfg, logg, redisClient, metricsCollector, expiryJob, cfg.Cron.MembershipExpiryInterval)
	if err != nil {
		logg.Error(context.Background(), "failed to create membership expiry loop", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")

	metricsServer := &http.Server{
		Addr:    ":" + cfg.Cron.MetricsPort,
		Handler: promhttp.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "metrics server stopped unexpectedly", err)
		}
	}()
	defer func() { _ = metricsServer.Close() }()

	var wg sync.WaitGroup
	for _, service := range []*cron.Service{activationService, expiryService} {
		wg.Add(1)
		go func(s *cron.Service) {
			defer wg.Done()
			if err := s.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logg.Error(ctx, "cron loop stopped unexpectedly", err)
			}
		}(service)
	}
	wg.Wait()

	logg.Info(ctx, "cron worker shutting down gracefully")
}

// newLoop wires a single job into its own service so each cadence gets its
// own ticker and cross-instance lock.
func newLoop(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient *redis.Client,
	collector *metrics.CronJobMetrics,
	job cron.Job,
	interval time.Duration,
) (*cron.Service, error) {
	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(job.Name()), cfg.Cron.LockTTL)
	if err != nil {
		return nil, err
	}
	return cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(job),
		Lock:     lock,
		Metrics:  collector,
		Interval: interval,
	})
}
