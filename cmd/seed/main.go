// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

// Command seed performs maintenance tasks against the CFTracker database.
//
//	seed user <username> <password> [role]
//
// creates a dashboard login. Role is admin or user and defaults to admin.
// The database path comes from --db, then DUCKDB_PATH, then the server
// default. Run it while the server is stopped: DuckDB allows one writer
// process per file.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/cftracker/internal/auth"
	"github.com/tomtom215/cftracker/internal/config"
	"github.com/tomtom215/cftracker/internal/database"
	"github.com/tomtom215/cftracker/internal/logging"
	"github.com/tomtom215/cftracker/internal/models"
)

const (
	exitSuccess = 0
	exitError   = 1

	defaultDBPath = "/data/cftracker.duckdb"
)

func main() {
	logging.Init(logging.Config{Level: "warn", Format: "console", Output: os.Stderr})

	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(exitError)
	}
	os.Exit(exitSuccess)
}

func newRootCmd(out io.Writer) *cobra.Command {
	var dbPath string

	root := &cobra.Command{
		Use:           "seed",
		Short:         "CFTracker maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&dbPath, "db", envOr("DUCKDB_PATH", defaultDBPath), "DuckDB database file")

	userCmd := &cobra.Command{
		Use:   "user <username> <password> [role]",
		Short: "Create a dashboard login",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			role := models.RoleAdmin
			if len(args) == 3 {
				role = args[2]
			}
			return seedUser(cmd.Context(), dbPath, args[0], args[1], role, out)
		},
	}
	root.AddCommand(userCmd)
	return root
}

func seedUser(ctx context.Context, dbPath, username, password, role string, out io.Writer) error {
	if !models.ValidRole(role) {
		return fmt.Errorf("invalid role %q: must be %s or %s", role, models.RoleAdmin, models.RoleUser)
	}
	if username == "" {
		return errors.New("username must not be empty")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	db, err := database.New(&config.DatabaseConfig{Path: dbPath})
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	user, err := db.CreateUser(ctx, username, hash, role)
	if errors.Is(err, database.ErrDuplicateUsername) {
		return fmt.Errorf("user %q already exists", username)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "created %s user %q (%s)\n", user.Role, user.Username, user.ID)
	return err
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
