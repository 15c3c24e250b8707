// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/cftracker/internal/logging"
)

const revokedKeyPrefix = "revoked:"

// revokedEntry is the value stored for a revoked token id.
type revokedEntry struct {
	JTI       string    `json:"jti"`
	UserID    string    `json:"sub"`
	RevokedAt time.Time `json:"revoked_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RevocationStore records logged-out token ids until they would have expired.
// Entries carry a badger TTL so expired tokens drop out without a sweep.
type RevocationStore struct {
	db     *badger.DB
	owned  bool
	mu     sync.RWMutex
	closed bool
}

// OpenRevocationStore opens a BadgerDB at path. An empty path keeps the
// store in memory, losing revocations on restart.
func OpenRevocationStore(path string) (*RevocationStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for revocations: %w", err)
	}
	return &RevocationStore{db: db, owned: true}, nil
}

// NewRevocationStore wraps an existing BadgerDB. Close does not close db.
func NewRevocationStore(db *badger.DB) *RevocationStore {
	return &RevocationStore{db: db}
}

func revokedKey(jti string) []byte {
	return []byte(revokedKeyPrefix + jti)
}

// Revoke marks the token in claims as revoked for its remaining lifetime.
// Already expired tokens are ignored.
func (s *RevocationStore) Revoke(ctx context.Context, claims *Claims) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrRevocationStoreClosed
	}

	ttl := claims.Remaining()
	if ttl <= 0 {
		return nil
	}

	now := time.Now()
	data, err := json.Marshal(revokedEntry{
		JTI:       claims.TokenID(),
		UserID:    claims.UserID(),
		RevokedAt: now,
		ExpiresAt: now.Add(ttl),
	})
	if err != nil {
		return fmt.Errorf("marshal revocation: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(revokedKey(claims.TokenID()), data).WithTTL(ttl))
	})
	if err != nil {
		return fmt.Errorf("store revocation: %w", err)
	}

	logging.Ctx(ctx).Debug().Str("jti", claims.TokenID()).Str("user_id", claims.UserID()).
		Dur("ttl", ttl).Msg("Token revoked")
	return nil
}

// IsRevoked reports whether jti was revoked and has not yet expired.
func (s *RevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false, ErrRevocationStoreClosed
	}

	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(revokedKey(jti))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get revocation: %w", err)
	}
	return true, nil
}

// Close closes the underlying database when the store opened it.
func (s *RevocationStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.owned {
		return s.db.Close()
	}
	return nil
}
