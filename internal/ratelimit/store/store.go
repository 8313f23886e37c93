// Package store provides the shared counter store used by the rate limiter
// and the lockout tracker.
//
// The store is optional. A Source hands out a CounterStore only when the
// backing Redis instance was reachable at first use; callers keep their own
// in-process state for every call where the store is missing or errors.
package store

import (
	"context"
	"errors"
	"time"
)

// NoExpiry is the TTL reported for a key that exists without an expiry.
const NoExpiry time.Duration = -1

// Missing is the TTL reported for a key that does not exist.
const Missing time.Duration = -2

// ErrUnavailable is returned when the counter store cannot serve a call.
var ErrUnavailable = errors.New("counter store unavailable")

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("counter store closed")

// CounterStore defines the operations the access-control layer needs from
// the distributed store. Every operation is atomic on the server side.
type CounterStore interface {
	// Increment atomically increments key and returns the new value.
	Increment(ctx context.Context, key string) (int64, error)

	// Expire sets a millisecond-precision expiry on key.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// TTL returns the remaining lifetime of key. Values <= 0 mean the key
	// has no expiry (NoExpiry) or does not exist (Missing).
	TTL(ctx context.Context, key string) (time.Duration, error)

	// SetWithExpiry stores value under key with the given expiry.
	SetWithExpiry(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes key.
	Delete(ctx context.Context, key string) error

	// Ping checks connectivity.
	Ping(ctx context.Context) error

	// Close releases the connection.
	Close() error
}

// Source hands out the counter store when one is usable.
type Source interface {
	// Store returns the counter store and true, or nil and false when the
	// distributed path is disabled or unreachable.
	Store(ctx context.Context) (CounterStore, bool)
}
