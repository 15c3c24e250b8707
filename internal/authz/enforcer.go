// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

// Package authz provides role-based authorization using Casbin.
//
// Subjects are roles. The embedded model and policy grant readers access to
// students, settings and their own session, and let admins, who inherit the
// user role, modify students, settings and trigger syncs.
package authz

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/tomtom215/cftracker/internal/metrics"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Objects guarded by the policy.
const (
	ObjectStudents = "students"
	ObjectSettings = "settings"
	ObjectSync     = "sync"
	ObjectSession  = "session"
)

// Actions.
const (
	ActionRead   = "read"
	ActionWrite  = "write"
	ActionDelete = "delete"
)

// Enforcer wraps the Casbin enforcer.
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
}

// NewEnforcer creates an enforcer from the embedded model and policy.
func NewEnforcer() (*Enforcer, error) {
	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}
	if err := loadEmbeddedPolicy(enforcer, embeddedPolicy); err != nil {
		return nil, err
	}
	return &Enforcer{enforcer: enforcer}, nil
}

// loadEmbeddedPolicy parses and loads the embedded policy CSV.
func loadEmbeddedPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		switch {
		case parts[0] == "p" && len(parts) == 4:
			if _, err := enforcer.AddPolicy(parts[1], parts[2], parts[3]); err != nil {
				return fmt.Errorf("failed to add policy %v: %w", parts[1:], err)
			}
		case parts[0] == "g" && len(parts) == 3:
			if _, err := enforcer.AddGroupingPolicy(parts[1], parts[2]); err != nil {
				return fmt.Errorf("failed to add grouping policy %v: %w", parts[1:], err)
			}
		default:
			return fmt.Errorf("malformed policy line %q", line)
		}
	}
	return nil
}

// Enforce reports whether role may perform action on object.
func (e *Enforcer) Enforce(role, object, action string) (bool, error) {
	allowed, err := e.enforcer.Enforce(role, object, action)
	if err != nil {
		return false, fmt.Errorf("enforcement failed: %w", err)
	}
	metrics.RecordAuthzDecision(object, action, allowed)
	return allowed, nil
}
