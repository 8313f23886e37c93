package lockout

import (
	"sync"
	"time"
)

// LocalEntries holds the in-process lockout state used when the counter
// store cannot serve a call.
type LocalEntries struct {
	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	failures     int
	firstFailure time.Time
	windowEnd    time.Time
	lockedUntil  time.Time
}

func (e *entry) locked(now time.Time) bool {
	return e.lockedUntil.After(now)
}

// stale reports whether the entry no longer affects anything: it is not
// locked and either its failure window or its lock has run out.
func (e *entry) stale(now time.Time) bool {
	if e.locked(now) {
		return false
	}
	return !e.windowEnd.After(now) || !e.lockedUntil.IsZero()
}

// NewLocalEntries creates an empty entry set.
func NewLocalEntries() *LocalEntries {
	return &LocalEntries{
		entries: make(map[string]*entry),
	}
}

// isLocked reports whether key is locked at now, evicting the entry when it
// has gone stale.
func (l *LocalEntries) isLocked(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		return false
	}
	if e.locked(now) {
		return true
	}
	if e.stale(now) {
		delete(l.entries, key)
	}
	return false
}

// recordFailure counts a failure for key and reports whether the key is
// locked afterwards.
func (l *LocalEntries) recordFailure(key string, now time.Time, cfg Config) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok || !e.windowEnd.After(now) {
		// A new window always starts unlocked, whatever the threshold.
		l.entries[key] = &entry{
			firstFailure: now,
			windowEnd:    now.Add(cfg.Window),
			failures:     1,
		}
		return false
	}

	e.failures++
	if e.failures >= cfg.Threshold {
		e.lockedUntil = now.Add(cfg.Duration)
	}

	return e.locked(now)
}

func (l *LocalEntries) clear(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, key)
}

// Prune drops every stale entry and returns how many were removed.
func (l *LocalEntries) Prune(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, e := range l.entries {
		if e.stale(now) {
			delete(l.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (l *LocalEntries) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
