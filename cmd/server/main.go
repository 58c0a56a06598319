// Package main is the entry point for the Academy Hub API server.
//
// The server exposes the dashboard REST API: course catalog with optimistic
// enrollment state, session and role switching, the calendar, assessments and
// the advisory endpoints. It degrades gracefully: without record store
// credentials it serves the sample catalog, without a database it skips the
// sync journal, and without Redis preferences reset on restart.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/snapx-edu/academy-hub/config"
	"github.com/snapx-edu/academy-hub/internal/application/command"
	"github.com/snapx-edu/academy-hub/internal/application/coursestate"
	"github.com/snapx-edu/academy-hub/internal/application/eventhandler"
	"github.com/snapx-edu/academy-hub/internal/application/query"
	"github.com/snapx-edu/academy-hub/internal/application/session"
	"github.com/snapx-edu/academy-hub/internal/infrastructure/external/advisor"
	"github.com/snapx-edu/academy-hub/internal/infrastructure/external/recordstore"
	"github.com/snapx-edu/academy-hub/internal/infrastructure/messaging"
	"github.com/snapx-edu/academy-hub/internal/infrastructure/persistence/postgres"
	"github.com/snapx-edu/academy-hub/internal/infrastructure/persistence/redis"
	httpapi "github.com/snapx-edu/academy-hub/internal/interface/http"
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
	log.Info("starting academy hub server",
		"env", string(cfg.App.Environment),
		"version", cfg.App.Version,
		"record_store_configured", cfg.RecordStore.Configured(),
		"advisor_configured", cfg.Advisor.Configured(),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. SYNC JOURNAL (PostgreSQL, optional)
	// ─────────────────────────────────────────────────────────────────────────
	var (
		dbConn  *postgres.Connection
		journal *postgres.SyncJournal
	)
	if cfg.Database.URL != "" {
		dbConn, err = postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer dbConn.Close()

		migrator := postgres.NewMigrator(dbConn)
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		journal = postgres.NewSyncJournal(dbConn)
		log.Info("sync journal enabled")
	} else {
		log.Info("DATABASE_URL not set, sync journal disabled")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. PREFERENCE STORE (Redis, optional)
	// ─────────────────────────────────────────────────────────────────────────
	var prefs *redis.PreferenceStore
	if !cfg.Redis.Disabled {
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		prefs, err = redis.NewPreferenceStore(redisCfg)
		if err != nil {
			log.Warn("redis unavailable, preferences will not persist", "error", err)
			prefs = nil
		} else {
			defer prefs.Close()
			log.Info("preference store enabled")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. EVENT BUS
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
	// 6. EXTERNAL CLIENTS
	// ─────────────────────────────────────────────────────────────────────────
	rsCfg := recordstore.DefaultClientConfig(
		cfg.RecordStore.Instance,
		cfg.RecordStore.Username,
		cfg.RecordStore.Password,
	)
	rsCfg.Timeout = cfg.RecordStore.Timeout
	rsCfg.Logger = log
	records := recordstore.NewClient(rsCfg)

	advCfg := advisor.DefaultClientConfig(cfg.Advisor.APIKey)
	if cfg.Advisor.BaseURL != "" {
		advCfg.BaseURL = cfg.Advisor.BaseURL
	}
	if cfg.Advisor.FlashModel != "" {
		advCfg.FlashModel = cfg.Advisor.FlashModel
	}
	if cfg.Advisor.ProModel != "" {
		advCfg.ProModel = cfg.Advisor.ProModel
	}
	advCfg.Timeout = cfg.Advisor.Timeout
	advCfg.MaxAttempts = cfg.Advisor.MaxAttempts
	advCfg.Logger = log
	advisorClient := advisor.NewClient(advCfg)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. APPLICATION LAYER
	// ─────────────────────────────────────────────────────────────────────────
	storeCfg := coursestate.StoreConfig{
		Client: records,
		Events: bus,
		Logger: log,
	}
	if journal != nil {
		storeCfg.Journal = journal
	}
	courses := coursestate.NewStore(storeCfg)

	sessionCfg := session.ManagerConfig{
		Courses: courses,
		Events:  bus,
		Logger:  log,
	}
	if prefs != nil {
		sessionCfg.Prefs = prefs
	}
	sessions := session.NewManager(sessionCfg)
	sessions.Start(ctx)
	courses.Load(ctx)

	dashboard := query.NewDashboardService(records, log)
	createEvent := command.NewCreateEventHandler(records, bus, log)
	createAssessment := command.NewCreateAssessmentHandler(records, bus, log)
	saveRecords := command.NewSaveRecordsHandler(records, log)

	// ─────────────────────────────────────────────────────────────────────────
	// 8. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	httpCfg := httpapi.DefaultConfig()
	httpCfg.Host = cfg.HTTP.Host
	httpCfg.Port = cfg.HTTP.Port
	httpCfg.ReadTimeout = cfg.HTTP.ReadTimeout
	httpCfg.WriteTimeout = cfg.HTTP.WriteTimeout
	httpCfg.IdleTimeout = cfg.HTTP.IdleTimeout
	httpCfg.EnableCORS = cfg.HTTP.EnableCORS
	httpCfg.AllowedOrigins = cfg.HTTP.AllowedOrigins
	httpCfg.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute
	httpCfg.StaffKeyHash = cfg.HTTP.StaffKeyHash

	checkers := make(map[string]httpapi.HealthChecker)
	if dbConn != nil {
		checkers["postgres"] = healthFunc(dbConn.Ping)
	}
	if prefs != nil {
		checkers["redis"] = healthFunc(prefs.Ping)
	}

	server := httpapi.NewServer(httpCfg, httpapi.Dependencies{
		Session:          sessions,
		Courses:          courses,
		Dashboard:        dashboard,
		CreateEvent:      createEvent,
		CreateAssessment: createAssessment,
		SaveRecords:      saveRecords,
		Advisor:          advisorClient,
		HealthCheckers:   checkers,
		Logger:           log,
	})

	errCh := server.StartAsync()
	log.Info("academy hub server is running", "address", httpCfg.Address())

	// ─────────────────────────────────────────────────────────────────────────
	// 9. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutdown signal received", "timeout", cfg.App.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	log.Info("shutdown completed")
	return nil
}

// healthFunc adapts a ping function to the HealthChecker interface.
type healthFunc func(ctx context.Context) error

func (f healthFunc) Health(ctx context.Context) error { return f(ctx) }
