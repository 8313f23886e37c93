package ratelimit

import (
	"sync"
	"time"
)

// LocalWindows holds the in-process fixed windows used when the counter
// store cannot serve a call. Each limiter needs its own instance.
type LocalWindows struct {
	mu      sync.Mutex
	windows map[string]*window
}

type window struct {
	count int
	start time.Time
	end   time.Time
}

// NewLocalWindows creates an empty window set.
func NewLocalWindows() *LocalWindows {
	return &LocalWindows{
		windows: make(map[string]*window),
	}
}

// hit counts one request for key at now. It returns the post-increment
// count and the time left in the window.
func (w *LocalWindows) hit(key string, now time.Time, length time.Duration) (int, time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	win, ok := w.windows[key]
	if !ok || now.Sub(win.start) >= length {
		w.windows[key] = &window{count: 1, start: now, end: now.Add(length)}
		return 1, length
	}

	win.count++
	return win.count, win.start.Add(length).Sub(now)
}

// Prune drops every window that has ended by now and returns how many
// were removed.
func (w *LocalWindows) Prune(now time.Time) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	removed := 0
	for key, win := range w.windows {
		if !now.Before(win.end) {
			delete(w.windows, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (w *LocalWindows) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.windows)
}
