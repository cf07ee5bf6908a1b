package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/rafidahmed/tinbari-backend/api/routes"
	"github.com/rafidahmed/tinbari-backend/internal/catalog"
	"github.com/rafidahmed/tinbari-backend/internal/expenses"
	"github.com/rafidahmed/tinbari-backend/internal/payroll"
	"github.com/rafidahmed/tinbari-backend/internal/reports"
	"github.com/rafidahmed/tinbari-backend/internal/sales"
	"github.com/rafidahmed/tinbari-backend/internal/stock"
	"github.com/rafidahmed/tinbari-backend/internal/users"
	"github.com/rafidahmed/tinbari-backend/pkg/config"
	"github.com/rafidahmed/tinbari-backend/pkg/db"
	"github.com/rafidahmed/tinbari-backend/pkg/logger"
	"github.com/rafidahmed/tinbari-backend/pkg/metrics"
	"github.com/rafidahmed/tinbari-backend/pkg/migrate"
	"github.com/rafidahmed/tinbari-backend/pkg/redis"
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

	ctx := context.Background()

	dbClient, err := db.New(ctx, cfg.DB, cfg.Features.UseSQLite, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
	} else {
		logg.Info(ctx, "redis not configured, report cache disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	opMetrics := metrics.NewOperationMetrics(registry)

	svcs, err := buildServices(cfg, logg, dbClient, redisClient)
	if err != nil {
		logg.Error(ctx, "failed to wire services", err)
		os.Exit(1)
	}

	if err := svcs.Users.EnsureAdmin(ctx); err != nil {
		logg.Error(ctx, "failed to seed admin account", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, dbClient, pingerOrNil(redisClient), registry, opMetrics, svcs),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logg.Error(ctx, "api server stopped unexpectedly", err)
	case sig := <-stopCh:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var closeErr error
	closeErr = multierr.Append(closeErr, server.Shutdown(shutdownCtx))
	if redisClient != nil {
		closeErr = multierr.Append(closeErr, redisClient.Close())
	}
	closeErr = multierr.Append(closeErr, dbClient.Close())
	if closeErr != nil {
		logg.Error(ctx, "shutdown finished with errors", closeErr)
		os.Exit(1)
	}
	logg.Info(ctx, "shutdown complete")
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client) (routes.Services, error) {
	gormDB := dbClient.DB()

	usersSvc, err := users.NewService(users.NewRepository(gormDB), cfg.JWT, cfg.Password, cfg.Admin, logg)
	if err != nil {
		return routes.Services{}, err
	}

	catalogRepo := catalog.NewRepository(gormDB)
	catalogSvc, err := catalog.NewService(dbClient, catalogRepo, logg)
	if err != nil {
		return routes.Services{}, err
	}

	stockSvc, err := stock.NewService(dbClient, stock.NewRepository(gormDB), logg)
	if err != nil {
		return routes.Services{}, err
	}

	salesSvc, err := sales.NewService(dbClient, sales.NewRepository(gormDB), catalogRepo, nil, cfg.Shop, logg)
	if err != nil {
		return routes.Services{}, err
	}

	var cache reports.Cache
	if redisClient != nil {
		cache = redisClient
	}
	reportsSvc, err := reports.NewService(reports.NewRepository(gormDB), cache, cfg.Shop.ReportCacheTTL, logg)
	if err != nil {
		return routes.Services{}, err
	}

	expensesSvc, err := expenses.NewService(expenses.NewRepository(gormDB))
	if err != nil {
		return routes.Services{}, err
	}

	payrollSvc, err := payroll.NewService(payroll.NewRepository(gormDB), logg)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Users:    usersSvc,
		Catalog:  catalogSvc,
		Stock:    stockSvc,
		Sales:    salesSvc,
		Reports:  reportsSvc,
		Expenses: expensesSvc,
		Payroll:  payrollSvc,
	}, nil
}

func pingerOrNil(client *redis.Client) redis.Pinger {
	if client == nil {
		return nil
	}
	return client
}
