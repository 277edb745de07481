package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/dealroom-backend/api/routes"
	"github.com/angelmondragon/dealroom-backend/internal/audit"
	"github.com/angelmondragon/dealroom-backend/internal/entitlements"
	"github.com/angelmondragon/dealroom-backend/internal/gate"
	"github.com/angelmondragon/dealroom-backend/internal/listings"
	"github.com/angelmondragon/dealroom-backend/internal/ndas"
	"github.com/angelmondragon/dealroom-backend/internal/orders"
	"github.com/angelmondragon/dealroom-backend/internal/promos"
	"github.com/angelmondragon/dealroom-backend/internal/verifications"
	"github.com/angelmondragon/dealroom-backend/pkg/config"
	"github.com/angelmondragon/dealroom-backend/pkg/db"
	"github.com/angelmondragon/dealroom-backend/pkg/logger"
	"github.com/angelmondragon/dealroom-backend/pkg/migrate"
	"github.com/angelmondragon/dealroom-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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
	listingsRepo := listings.NewRepository(conn)
	ndasRepo := ndas.NewRepository(conn)
	verificationsRepo := verifications.NewRepository(conn)
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

	ndasService, err := ndas.NewService(ndasRepo, listingsRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create nda service", err)
		os.Exit(1)
	}

	verificationsService, err := verifications.NewService(verificationsRepo, auditRepo, dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create verifications service", err)
		os.Exit(1)
	}

	gateService, err := gate.NewService(listingsRepo, ndasRepo, verificationsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create gate service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			gateService,
			ordersService,
			promosService,
			entitlementsService,
			ndasService,
			verificationsService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
