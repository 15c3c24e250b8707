// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package cache

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/cftracker/internal/metrics"
)

const keySeparator = ":"

// cleanupInterval bounds how long expired entries linger in memory.
const cleanupInterval = 5 * time.Minute

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// HitRate returns hits as a percentage of lookups.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Cache is a TTL cache safe for concurrent use.
type Cache[V any] struct {
	name    string
	mu      sync.RWMutex
	entries map[string]entry[V]
	ttl     time.Duration
	now     func() time.Time

	statsMu sync.Mutex
	stats   Stats

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a cache with the given default TTL and starts its cleanup loop.
// Call Close to stop the loop.
func New[V any](ttl time.Duration) *Cache[V] {
	return NewNamed[V]("default", ttl)
}

// NewNamed is New with a name used as the metrics label.
func NewNamed[V any](name string, ttl time.Duration) *Cache[V] {
	c := &Cache[V]{
		name:    name,
		entries: make(map[string]entry[V]),
		ttl:     ttl,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	c.stats.LastCleanup = c.now()
	go c.cleanupLoop()
	return c
}

// Key joins an owner id and qualifiers into a cache key. The owner must come
// first so InvalidateOwner can find the entry.
func Key(owner string, parts ...any) string {
	var b strings.Builder
	b.WriteString(owner)
	for _, p := range parts {
		b.WriteString(keySeparator)
		fmt.Fprint(&b, p)
	}
	return b.String()
}

// Get returns the cached value when present and not expired.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	var zero V
	if !ok {
		c.record(false)
		return zero, false
	}
	if c.now().After(e.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock: a concurrent Set may have refreshed it.
		if cur, still := c.entries[key]; still && c.now().After(cur.expiresAt) {
			delete(c.entries, key)
			c.addEvictions(1)
		}
		c.mu.Unlock()
		c.record(false)
		return zero, false
	}
	c.record(true)
	return e.value, true
}

// Set stores a value with the default TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with a custom TTL.
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, expiresAt: c.now().Add(ttl)}
	n := len(c.entries)
	c.mu.Unlock()

	c.statsMu.Lock()
	c.stats.TotalKeys = int64(n)
	c.statsMu.Unlock()
}

// Delete removes one key.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	_, ok := c.entries[key]
	delete(c.entries, key)
	n := len(c.entries)
	c.mu.Unlock()

	if ok {
		c.addEvictions(1)
	}
	c.setTotal(n)
}

// InvalidateOwner removes every key built by Key with the given owner.
func (c *Cache[V]) InvalidateOwner(owner string) int {
	prefix := owner + keySeparator
	c.mu.Lock()
	removed := 0
	for k := range c.entries {
		if k == owner || strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
			removed++
		}
	}
	n := len(c.entries)
	c.mu.Unlock()

	c.addEvictions(removed)
	c.setTotal(n)
	return removed
}

// Clear removes all entries.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	removed := len(c.entries)
	c.entries = make(map[string]entry[V])
	c.mu.Unlock()

	c.addEvictions(removed)
	c.setTotal(0)
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns a copy of the counters.
func (c *Cache[V]) Stats() Stats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return c.stats
}

// Close stops the cleanup loop. It is safe to call more than once.
func (c *Cache[V]) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Cache[V]) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *Cache[V]) cleanup() {
	now := c.now()
	c.mu.Lock()
	removed := 0
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
			removed++
		}
	}
	n := len(c.entries)
	c.mu.Unlock()

	c.statsMu.Lock()
	c.stats.Evictions += int64(removed)
	c.stats.TotalKeys = int64(n)
	c.stats.LastCleanup = now
	c.statsMu.Unlock()
}

func (c *Cache[V]) record(hit bool) {
	c.statsMu.Lock()
	if hit {
		c.stats.Hits++
	} else {
		c.stats.Misses++
	}
	c.statsMu.Unlock()
	metrics.RecordCacheLookup(c.name, hit)
}

func (c *Cache[V]) addEvictions(n int) {
	if n == 0 {
		return
	}
	c.statsMu.Lock()
	c.stats.Evictions += int64(n)
	c.statsMu.Unlock()
}

func (c *Cache[V]) setTotal(n int) {
	c.statsMu.Lock()
	c.stats.TotalKeys = int64(n)
	c.statsMu.Unlock()
}
