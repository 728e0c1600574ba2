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

	"github.com/osse101/PullBot_Go/internal/bootstrap"
	"github.com/osse101/PullBot_Go/internal/clock"
	"github.com/osse101/PullBot_Go/internal/config"
	"github.com/osse101/PullBot_Go/internal/database"
	"github.com/osse101/PullBot_Go/internal/eventlog"
	"github.com/osse101/PullBot_Go/internal/ratelimit"
	"github.com/osse101/PullBot_Go/internal/scheduler"
	"github.com/osse101/PullBot_Go/internal/server"
	"github.com/osse101/PullBot_Go/internal/worker"
	"github.com/osse101/PullBot_Go/migrations"
)

const shutdownTimeout = 15 * time.Second

// @title PullBot API
// @version 1.0
// @description Card packet pulls, allowances, inventory and bulk conversion.
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Configuration failed", "error", err)
		os.Exit(1)
	}

	logFile, err := bootstrap.SetupLogger(cfg)
	if err != nil {
		slog.Error("Logger setup failed", "error", err)
		os.Exit(1)
	}
	for _, w := range cfg.Warnings() {
		slog.Warn("Configuration warning", "detail", w)
	}

	err = run(cfg)
	if err != nil {
		slog.Error("PullBot exited with error", "error", err)
	}
	logFile.Close()
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	game, err := config.LoadGame(cfg.GameConfigPath)
	if err != nil {
		return err
	}

	dbPool, err := database.NewPool(cfg.GetDBConnString(), cfg.DBMaxConns, cfg.DBMaxConnIdleTime, cfg.DBMaxConnLifetime)
	if err != nil {
		return err
	}
	components := bootstrap.ShutdownComponents{Database: dbPool}

	if err := database.Migrate(ctx, dbPool, migrations.FS); err != nil {
		dbPool.Close()
		return err
	}

	eventBus, publisher, err := bootstrap.InitializeEventSystem(cfg)
	if err != nil {
		dbPool.Close()
		return err
	}
	components.ResilientPublisher = publisher

	assetRoot := game.Draw.AssetRoot
	if cfg.AssetRoot != "" {
		assetRoot = cfg.AssetRoot
	}

	clk := clock.NewRealClock()
	repos := bootstrap.InitializeRepositories(dbPool)
	services, err := bootstrap.InitializeServices(bootstrap.ServiceDependencies{
		Repos:     repos,
		Game:      game,
		Assets:    os.DirFS(assetRoot),
		Publisher: publisher,
		Clock:     clk,
	})
	if err != nil {
		shutdown(components)
		return err
	}

	if err := bootstrap.SyncMilestones(ctx, services.Ledger, game); err != nil {
		shutdown(components)
		return err
	}

	if err := bootstrap.RegisterEventHandlers(bootstrap.EventHandlerDependencies{
		EventBus:        eventBus,
		EventLogService: services.EventLog,
	}); err != nil {
		shutdown(components)
		return err
	}

	var limiter ratelimit.Limiter
	if cfg.RateLimitEnabled() {
		redisClient, err := ratelimit.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			shutdown(components)
			return err
		}
		components.Redis = redisClient

		bucket, err := ratelimit.NewTokenBucket(redisClient, cfg.PullRateCapacity, cfg.PullRateInterval)
		if err != nil {
			shutdown(components)
			return err
		}
		limiter = bucket
	} else {
		slog.Warn("REDIS_ADDR not set, pull rate limiting disabled")
	}

	pool := worker.NewPool(cfg.WorkerCount, cfg.WorkerQueueSize)
	pool.Start()
	sched := scheduler.New(pool)
	components.WorkerPool = pool
	components.Scheduler = sched

	if cfg.DailyGrantCredits > 0 {
		grantWorker := worker.NewDailyGrantWorker(services.Quota, publisher, clk, cfg.DailyGrantTarget, cfg.DailyGrantCredits)
		sched.Schedule(cfg.DailyGrantInterval, grantWorker, true)
	}
	retention := cfg.EventRetentionDays
	if retention <= 0 {
		retention = eventlog.DefaultRetentionDays
	}
	sched.Schedule(cfg.EventCleanupEvery, eventlog.NewCleanupJob(services.EventLog, retention), false)

	srv := server.NewServer(server.Options{
		Port:           cfg.Port,
		APIKey:         cfg.APIKey,
		Version:        cfg.Version,
		TrustedProxies: cfg.TrustedProxies,
	}, server.Services{
		DB:        dbPool,
		Quota:     services.Quota,
		Pull:      services.Pull,
		Burn:      services.Burn,
		Inventory: services.Inventory,
		Ledger:    services.Ledger,
		EventLog:  services.EventLog,
		Publisher: publisher,
		Limiter:   limiter,
		Clock:     clk,
	})
	components.Server = srv

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		err = nil
	case err = <-serverErr:
	}

	shutdown(components)
	return err
}

func shutdown(components bootstrap.ShutdownComponents) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	bootstrap.GracefulShutdown(ctx, components)
}
