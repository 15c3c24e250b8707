// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

/*
Package supervisor runs the long-lived services of the tracker under a
suture v4 supervisor tree.

	RootSupervisor ("cftracker")
	├── DataSupervisor ("data-layer")
	│   └── CheckpointService (periodic DuckDB CHECKPOINT)
	├── SchedulingSupervisor ("scheduling-layer")
	│   └── SchedulerService (cron trigger for sync cycles)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A crashed service is restarted with backoff without touching the other
layers. Supervisor events are logged through sutureslog, which writes to the
zerolog-backed slog adapter from internal/logging.

Usage in main.go:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewCheckpointService(db, 5*time.Minute))
	tree.AddSchedulingService(services.NewSchedulerService(sched))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}
*/
package supervisor
