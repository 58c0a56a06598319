// Package main is the entry point for the Academy Hub background worker.
//
// The worker polls the remote record store on an interval and records each
// sync round in the postgres event log. Its course state is process-local;
// the durable output is the audit trail of catalog syncs and remote drift,
// which is also a liveness check on the record store credentials.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/snapx-edu/academy-hub/config"
	"github.com/snapx-edu/academy-hub/internal/application/coursestate"
	"github.com/snapx-edu/academy-hub/internal/application/eventhandler"
	"github.com/snapx-edu/academy-hub/internal/infrastructure/external/recordstore"
	"github.com/snapx-edu/academy-hub/internal/infrastructure/fallback"
	"github.com/snapx-edu/academy-hub/internal/infrastructure/messaging"
	"github.com/snapx-edu/academy-hub/internal/infrastructure/persistence/postgres"
	"github.com/snapx-edu/academy-hub/internal/infrastructure/scheduler"
	"github.com/snapx-edu/academy-hub/internal/infrastructure/scheduler/jobs"
	"github.com/snapx-edu/academy-hub/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := logger.Setup(logger.Options{
		Level:     cfg.Observability.LogLevel,
		Format:    cfg.Observability.LogFormat,
		AddSource: cfg.Observability.LogSource,
	})
	log.Info("starting academy hub worker",
		"env", string(cfg.App.Environment),
		"refresh_interval", cfg.Scheduler.RefreshInterval.String(),
	)

	if !cfg.Scheduler.Enabled {
		log.Info("scheduler disabled, nothing to do")
		return nil
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 3. SYNC JOURNAL (PostgreSQL, optional)
	// ─────────────────────────────────────────────────────────────────────────
	var journal *postgres.SyncJournal
	if cfg.Database.URL != "" {
		dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer dbConn.Close()

		migrator := postgres.NewMigrator(dbConn)
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		journal = postgres.NewSyncJournal(dbConn)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. EVENT BUS + SYNC AUDIT TRAIL
	// ─────────────────────────────────────────────────────────────────────────
	busCfg := messaging.DefaultInMemoryEventBusConfig()
	busCfg.Logger = log
	bus := messaging.NewInMemoryEventBus(busCfg)
	defer func() { _ = bus.Close() }()

	if journal != nil {
		recorder := eventhandler.NewEventRecorder(journal, log)
		if err := recorder.Register(bus); err != nil {
			return fmt.Errorf("failed to register event recorder: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. COURSE STATE
	// ─────────────────────────────────────────────────────────────────────────
	rsCfg := recordstore.DefaultClientConfig(
		cfg.RecordStore.Instance,
		cfg.RecordStore.Username,
		cfg.RecordStore.Password,
	)
	rsCfg.Timeout = cfg.RecordStore.Timeout
	rsCfg.Logger = log
	records := recordstore.NewClient(rsCfg)

	storeCfg := coursestate.StoreConfig{
		Client: records,
		Events: bus,
		Logger: log,
	}
	if journal != nil {
		storeCfg.Journal = journal
	}
	store := coursestate.NewStore(storeCfg)
	store.Bind(fallback.StudentUser().Email)

	// ─────────────────────────────────────────────────────────────────────────
	// 6. SCHEDULER
	// ─────────────────────────────────────────────────────────────────────────
	sched := scheduler.NewScheduler(scheduler.SchedulerConfig{
		Logger:   log,
		Timezone: cfg.App.Location,
	})

	refresh := jobs.NewRefreshCatalogJob(store, log)
	if err := sched.Register(refresh, scheduler.NewIntervalSchedule(cfg.Scheduler.RefreshInterval)); err != nil {
		return fmt.Errorf("failed to register refresh job: %w", err)
	}

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	// Run once at startup so the first refresh does not wait a full interval.
	if _, err := sched.RunNow(ctx, refresh.Name()); err != nil {
		log.Warn("initial catalog refresh failed", "error", err)
	}

	log.Info("academy hub worker is running")

	// ─────────────────────────────────────────────────────────────────────────
	// 7. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	<-ctx.Done()
	log.Info("shutdown signal received")

	if err := sched.Stop(); err != nil {
		return fmt.Errorf("failed to stop scheduler: %w", err)
	}

	log.Info("shutdown completed")
	return nil
}
