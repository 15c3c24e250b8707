// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

// Package logging provides the zerolog-based structured logger used across CFTracker.
//
// A single global logger is configured once from main via Init and then used
// through the package-level level functions:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("handle", h).Msg("Student synced")
//	logging.Error().Err(err).Msg("Sync failed")
//
// Components that log a lot derive a child logger once:
//
//	logger := logging.WithComponent("sync")
//
// Request handlers use Ctx so request_id and correlation_id travel with every
// line written while serving the request:
//
//	logging.Ctx(r.Context()).Warn().Msg("Student not found")
//
// # Configuration
//
//	LOG_LEVEL   trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  json, console (default: json)
//	LOG_CALLER  include caller file:line (default: false)
//
// # Suture integration
//
// NewSlogLogger returns a *slog.Logger that writes through zerolog, which is
// what sutureslog expects for supervisor event hooks.
package logging
