// Package lock implements the per-sender serialization lock: a local
// mutex-cache strategy and a distributed queued lock over a shared
// key-value store, behind one Strategy contract selected by Factory.
package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// SessionKey is the process-generated, unforgeable-by-assumption token
// returned by Acquire and required to Release.
type SessionKey string

// NewSessionKey returns a fresh 128-bit session key.
func NewSessionKey() SessionKey {
	return SessionKey(uuid.New().String())
}

// Result is returned by a successful Acquire.
type Result struct {
	SessionKey SessionKey
	AcquiredAt time.Time
}

// Acquired reports whether the result represents a real acquisition; the
// zero Result means the strategy failed open.
func (r Result) Acquired() bool {
	return r.SessionKey != ""
}

// ErrAcquireTimeout names an acquire that timed out. The strategies in
// this package do not return it: an Acquire whose ctx deadline elapses
// before the lock becomes available returns ctx.Err().
var ErrAcquireTimeout = errors.New("lock: acquire timed out")

// Strategy is the public contract shared by the local and distributed
// implementations. Both normalize lockId to lowercase before deriving
// keys, both fail open (zero Result, nil error) on store errors rather
// than surfacing them to the caller, and both treat Release as
// idempotent and ownership-checked.
type Strategy interface {
	// Acquire blocks the caller until lockId becomes available, ctx is
	// cancelled, or the strategy fails open on a store error. A zero
	// Result with a nil error means "fail open, proceed without the
	// lock"; ctx.Err() is returned only when ctx itself ended the wait.
	Acquire(ctx context.Context, lockID string) (Result, error)

	// Release is idempotent and ownership-checked: presenting the wrong
	// SessionKey, or one whose lock already expired, is a silent no-op.
	Release(ctx context.Context, lockID string, result Result)
}
