package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/retailops/allocator/internal/catalog"
	"github.com/retailops/allocator/internal/config"
	"github.com/retailops/allocator/internal/importer"
	"github.com/retailops/allocator/internal/logging"
	"github.com/retailops/allocator/internal/sync"
	"github.com/retailops/allocator/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_max_conns", cfg.Database.MaxConns,
		"import_max_concurrent", cfg.Import.MaxConcurrent,
		"sync_enabled", cfg.Sync.Enabled,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		slog.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}

	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	if u, err := url.Parse(cfg.Database.URL); err == nil {
		dbName := strings.TrimPrefix(u.Path, "/")
		slog.Info("connected to database", "name", dbName)
	} else {
		slog.Info("connected to database")
	}

	// Load the catalogs once at startup so matching works even when the
	// upstream sync is disabled or unreachable.
	cache := &catalog.Cache{}
	repo := catalog.NewRepository(pool)
	if snap, err := repo.Load(ctx); err != nil {
		slog.Warn("failed to load catalogs, matching starts empty", "error", err)
	} else {
		cache.Set(snap)
		slog.Info("catalogs loaded",
			"items", len(snap.Items),
			"stores", len(snap.Stores),
		)
	}

	service := importer.NewService(pool, cache, cfg.Import)

	// Cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())

	var scheduler *sync.Scheduler
	if cfg.Sync.Enabled {
		client := sync.NewClient(cfg.Sync.URL, cfg.Sync.APIKey, cfg.Sync.Timeout)
		scheduler = sync.NewScheduler(client, repo, cache, cfg.Sync.Interval)
		go scheduler.Run(jobCtx)
	}

	go service.StartRetentionScheduler(jobCtx, cfg.Retention)

	var refresher web.Refresher
	if scheduler != nil {
		refresher = scheduler
	}
	server := web.NewServer(service, cache, refresher, cfg)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
