// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/cftracker/internal/api"
	"github.com/tomtom215/cftracker/internal/auth"
	"github.com/tomtom215/cftracker/internal/authz"
	"github.com/tomtom215/cftracker/internal/codeforces"
	"github.com/tomtom215/cftracker/internal/config"
	"github.com/tomtom215/cftracker/internal/database"
	"github.com/tomtom215/cftracker/internal/logging"
	"github.com/tomtom215/cftracker/internal/notifier"
	"github.com/tomtom215/cftracker/internal/notifier/delivery"
	"github.com/tomtom215/cftracker/internal/scheduler"
	"github.com/tomtom215/cftracker/internal/supervisor"
	"github.com/tomtom215/cftracker/internal/supervisor/services"
	"github.com/tomtom215/cftracker/internal/sync"
)

const checkpointInterval = 5 * time.Minute

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("CFTracker exited with error")
	}
}

//nolint:gocyclo // sequential wiring
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("email_provider", cfg.Email.Provider).
		Str("default_cron", cfg.Sync.DefaultCron).
		Msg("Starting CFTracker")

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	client := codeforces.NewClient(&cfg.Codeforces)
	engine := sync.NewEngine(db, client, &cfg.Sync, cfg.Notifier.WindowDays)

	channel, err := delivery.New(&cfg.Email)
	if err != nil {
		return fmt.Errorf("failed to configure email channel: %w", err)
	}
	engine.SetNotifier(notifier.New(db, channel, &cfg.Notifier))
	logging.Info().Str("channel", channel.Name()).Msg("Inactivity notifier enabled")

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		return fmt.Errorf("failed to initialize JWT manager: %w", err)
	}
	revocations, err := auth.OpenRevocationStore(cfg.Security.RevocationPath)
	if err != nil {
		return fmt.Errorf("failed to open revocation store: %w", err)
	}
	defer func() {
		if err := revocations.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing revocation store")
		}
	}()
	authMW := auth.NewMiddleware(jwtManager, revocations, db, &cfg.Security)

	enforcer, err := authz.NewEnforcer()
	if err != nil {
		return fmt.Errorf("failed to initialize authorization: %w", err)
	}
	authzMW := authz.NewMiddleware(enforcer, api.WriteError)

	// The scheduler job needs the handler to drop cached reports, and the
	// handler needs the scheduler for the settings endpoints.
	var handler *api.Handler
	sched := scheduler.New(db, func(ctx context.Context) error {
		err := engine.RunCycle(ctx)
		if handler != nil {
			handler.InvalidateAll()
		}
		return err
	}, cfg.Sync.DefaultCron)

	handler = api.NewHandler(db, engine, sched, authMW, jwtManager, cfg)
	defer handler.Close()

	chiMW := api.NewChiMiddleware(api.NewChiMiddlewareConfig(&cfg.Security))
	router := api.NewRouter(handler, authMW, authzMW, chiMW)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create supervisor tree: %w", err)
	}
	tree.AddDataService(services.NewCheckpointService(db, checkpointInterval))
	tree.AddSchedulingService(services.NewSchedulerService(sched))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logging.Info().Str("addr", server.Addr).Msg("Server listening")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree failed: %w", err)
	}

	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop within timeout")
		}
	}

	logging.Info().Msg("CFTracker stopped")
	return nil
}
