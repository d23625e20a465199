package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Duly330AI/Matheheftt-sub000/internal/api"
	"github.com/Duly330AI/Matheheftt-sub000/internal/cleanup"
	"github.com/Duly330AI/Matheheftt-sub000/internal/config"
	"github.com/Duly330AI/Matheheftt-sub000/internal/engine/builtin"
	"github.com/Duly330AI/Matheheftt-sub000/internal/practice"
	"github.com/Duly330AI/Matheheftt-sub000/internal/services"
	"github.com/Duly330AI/Matheheftt-sub000/internal/storage"
	"github.com/Duly330AI/Matheheftt-sub000/internal/templates"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup structured logging
	level, _ := cfg.Log.SlogLevel()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})))

	slog.Info("starting matheheft",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"database", cfg.Database.Enabled,
		"redis", cfg.Redis.Enabled,
		"auth", cfg.Auth.Enabled,
	)

	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	backing := services.NewRegistry()
	opts := practice.Options{IdleTimeout: cfg.Sessions.IdleTimeout}

	var repo storage.Repository
	if cfg.Database.Enabled {
		pg, err := storage.NewPostgresRepository(initCtx, storage.PostgresConfig{DSN: cfg.Database.DSN})
		if err != nil {
			slog.Error("failed to create database repository", "error", err)
			os.Exit(1)
		}
		slog.Info("database connected successfully")

		migrations, err := storage.Migrations(cfg.Database.MigrationsDir)
		if err != nil {
			slog.Error("failed to open migrations", "error", err)
			os.Exit(1)
		}
		if err := storage.RunMigrations(initCtx, pg.Pool(), migrations); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		repo = pg

		sink, err := services.NewPostgresEventSink(cfg.Database.DSN)
		if err != nil {
			slog.Error("failed to create attempt event sink", "error", err)
			os.Exit(1)
		}
		backing.Register("postgres", sink)
		opts.Events = sink
	} else {
		slog.Warn("database disabled, sessions are kept in memory")
		repo = storage.NewMemoryRepository()
		opts.Events = services.NewMemorySink()
	}

	if cfg.Redis.Enabled {
		cache, err := services.NewRedisStateCache(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, cfg.Sessions.StateTTL)
		if err != nil {
			slog.Error("failed to create redis state cache", "error", err)
			os.Exit(1)
		}
		backing.Register("redis", cache)
		opts.Cache = cache
	}

	engines := builtin.NewRegistry()

	// Presets are checked against the engines they name while loading
	catalog := templates.NewLoader(func(engineID string, params map[string]any) error {
		_, _, err := engines.Generate(engineID, params)
		return err
	})
	if err := catalog.LoadFromDir(cfg.Catalog.Dir); err != nil {
		slog.Warn("failed to load catalog from dir", "dir", cfg.Catalog.Dir, "error", err)
	}

	manager := practice.NewManager(engines, catalog, repo, opts)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cleanup.NewCleaner(manager, cfg.Cleanup.Interval).Start(ctx)

	server := api.NewServer(cfg.Server, engines, manager, catalog, repo, backing, cfg.Auth.Enabled)
	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down gracefully...")

	// Stop background workers
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	if err := backing.CloseAll(); err != nil {
		slog.Error("backing service close error", "error", err)
	}
	if err := repo.Close(); err != nil {
		slog.Error("repository close error", "error", err)
	}

	slog.Info("matheheft stopped")
}
