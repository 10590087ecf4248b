package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/activity-heatmap/internal/api/http"
	"github.com/i474232898/activity-heatmap/internal/auth"
	"github.com/i474232898/activity-heatmap/internal/commands"
	"github.com/i474232898/activity-heatmap/internal/config"
	"github.com/i474232898/activity-heatmap/internal/heatmap"
	applog "github.com/i474232898/activity-heatmap/internal/logger"
	"github.com/i474232898/activity-heatmap/internal/scheduler"
	"github.com/i474232898/activity-heatmap/internal/store"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "hash-password" {
		os.Exit(commands.HashPassword(os.Args[2:]))
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	lggr, err := applog.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = lggr.Sync() }()

	if cfg.EnvFileErr != nil {
		lggr.Infow("no .env file loaded", "reason", cfg.EnvFileErr)
	}

	// File-backed key-value store, with writes behind a circuit breaker.
	fileStore, err := store.RecoverFileStore(cfg.DataFile, lggr)
	if err != nil {
		lggr.Fatalw("failed to open data file", "file", cfg.DataFile, "error", err)
	}
	kv := store.NewBreakerStore(fileStore, store.BreakerConfig{
		MaxFailures: cfg.StoreMaxFailures,
		Timeout:     cfg.StoreBreakerTimeout,
	}, lggr)

	creds, err := auth.Load(cfg.AuthFile, lggr)
	if err != nil {
		lggr.Fatalw("failed to load auth credentials", "error", err)
	}

	widget := heatmap.NewWidget(
		heatmap.NewActivityStore(kv, lggr),
		lggr,
		heatmap.WithLocation(cfg.Location),
	)

	// Periodic snapshots of the data file.
	sched := scheduler.New(fileStore, cfg.BackupDir, cfg.BackupKeep, cfg.BackupInterval, lggr)
	if err := sched.Start(); err != nil {
		lggr.Fatalw("failed to start scheduler", "error", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "activity-heatmap",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "activity-heatmap",
			"storage": kv.State(),
		})
	})

	httpapi.RegisterRoutes(app, widget, creds)

	go func() {
		lggr.Infow("starting activity heatmap", "addr", fmt.Sprintf("http://localhost:%s", cfg.Port), "data", fileStore.Path())
		if err := app.Listen(":" + cfg.Port); err != nil {
			lggr.Errorw("fiber server stopped", "error", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		lggr.Errorw("error during shutdown", "error", err)
	}
}
