// Package kvstore defines the minimal shared key-value/list primitives
// that the lock strategy (core/lock) and rate limiter (core/ratelimit)
// compose with, plus two concrete backends: a Valkey-backed adapter for
// production and an in-memory adapter for tests and the local-only mode.
package kvstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get and ListIndex when the key or index has
// no value. Callers that only care about presence should prefer Exists.
var ErrNotFound = errors.New("kvstore: not found")

// Store is the minimal interface to a shared key-value/list store used
// by C2 (lock strategy) and C4 (rate limiter). Implementations must make
// scripted operations evaluate atomically against the backing store, and
// must let callers treat transient failures as failures the caller can
// fail open on rather than as panics.
type Store interface {
	// Get returns the value stored at key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// SetIfAbsentTTL sets key to value only if it does not already
	// exist, with the given TTL. Returns true if the set happened.
	SetIfAbsentTTL(ctx context.Context, key, value string, ttl time.Duration) (bool, error)

	// Delete removes key unconditionally.
	Delete(ctx context.Context, key string) error

	// Exists reports whether key is present.
	Exists(ctx context.Context, key string) (bool, error)

	// ListPushHead pushes value onto the head (newest end) of the list at key.
	ListPushHead(ctx context.Context, key, value string) error

	// ListPopTail removes and returns the tail (oldest end) value, or ErrNotFound.
	ListPopTail(ctx context.Context, key string) (string, error)

	// ListIndex returns the value at the given 0-based position counted
	// from the tail (0 is the oldest / next to be popped), or ErrNotFound.
	ListIndex(ctx context.Context, key string, index int64) (string, error)

	// ListRemove removes up to count occurrences of value from the list.
	// Returns the number of elements removed.
	ListRemove(ctx context.Context, key, value string, count int64) (int64, error)

	// ListLen returns the number of elements in the list at key.
	ListLen(ctx context.Context, key string) (int64, error)

	// CompareAndDelete atomically deletes key only if its current value
	// equals expected, returning true if the delete happened.
	CompareAndDelete(ctx context.Context, key, expected string) (bool, error)

	// IncrWithExpiry atomically increments the integer counter at key by
	// one, returning the post-increment value. When the increment is the
	// key's first write (so the value becomes 1), ttl is applied to the
	// key in the same round trip.
	IncrWithExpiry(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// Ready reports whether the backend is reachable right now. The lock
	// factory (C2.3) uses this to choose between strategies at startup.
	Ready(ctx context.Context) bool

	// Close releases any underlying connection resources.
	Close()
}
