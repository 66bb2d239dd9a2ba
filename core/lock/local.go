package lock

import (
	"context"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/hiero-ledger/relay-lockgate/core/lockmetrics"
)

// localState is the bounded-LRU entry for one lockId: a channel-backed
// binary semaphore (so Acquire can select on ctx.Done()) plus the
// bookkeeping needed to auto-release after MaxHold and to guard against
// a stale SessionKey being used to Release.
type localState struct {
	sem chan struct{}

	mu         sync.Mutex
	held       bool
	sessionKey SessionKey
	acquiredAt time.Time
	timer      *time.Timer
	idleTimer  *time.Timer
}

func newLocalState() *localState {
	s := &localState{sem: make(chan struct{}, 1)}
	s.sem <- struct{}{}
	return s
}

// LocalStrategy is the single-process implementation of Strategy: one
// mutex per lockId, held in a bounded LRU so memory never grows past
// MaxEntries (I5). Entries also carry their own TTL so a long-idle key
// is dropped even before the LRU fills up.
type LocalStrategy struct {
	cache   *lru.Cache[string, *localState]
	maxHold time.Duration
	ttl     time.Duration
	metrics *lockmetrics.Metrics
}

// NewLocalStrategy builds a LocalStrategy with the given bounded
// capacity, per-lock idle TTL and max hold duration.
func NewLocalStrategy(maxEntries int, ttl, maxHold time.Duration, metrics *lockmetrics.Metrics) *LocalStrategy {
	if maxEntries <= 0 {
		maxEntries = 1000
	}

	s := &LocalStrategy{maxHold: maxHold, ttl: ttl, metrics: metrics}

	cache, err := lru.NewWithEvict[string, *localState](maxEntries, func(_ string, state *localState) {
		s.forceRelease(state, "evicted")
	})
	if err != nil {
		// Only returns an error for a non-positive size, already guarded above.
		panic(err)
	}
	s.cache = cache
	return s
}

// StrategyName satisfies domains/health.LockStrategyName.
func (s *LocalStrategy) StrategyName() string {
	return "local"
}

func (s *LocalStrategy) stateFor(lockID string) *localState {
	if state, ok := s.cache.Get(lockID); ok {
		return state
	}
	state := newLocalState()
	s.cache.Add(lockID, state)
	s.armIdleTimer(lockID, state)
	return state
}

// armIdleTimer starts (or restarts) the idle-eviction timer for a
// not-currently-held entry: if nothing acquires lockID again within ttl,
// evictIdle drops it from the LRU so a cold key doesn't sit in memory
// until the cache happens to fill up (I5).
func (s *LocalStrategy) armIdleTimer(lockID string, state *localState) {
	if s.ttl <= 0 {
		return
	}
	state.mu.Lock()
	if state.idleTimer != nil {
		state.idleTimer.Stop()
	}
	state.idleTimer = time.AfterFunc(s.ttl, func() {
		s.evictIdle(lockID, state)
	})
	state.mu.Unlock()
}

// evictIdle removes a still-idle entry from the LRU. A state that was
// re-acquired (or already replaced by a fresh entry under the same
// lockId) is left alone.
func (s *LocalStrategy) evictIdle(lockID string, state *localState) {
	state.mu.Lock()
	idle := !state.held
	state.mu.Unlock()
	if !idle {
		return
	}
	if cur, ok := s.cache.Peek(lockID); ok && cur == state {
		s.cache.Remove(lockID)
	}
}

func (s *LocalStrategy) Acquire(ctx context.Context, lockID string) (Result, error) {
	lockID = strings.ToLower(lockID)
	start := time.Now()
	state := s.stateFor(lockID)

	select {
	case <-state.sem:
		// token taken, we hold the mutex
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}

	if s.metrics != nil {
		s.metrics.RecordWait(lockmetrics.StrategyLocal, time.Since(start).Seconds())
	}

	session := NewSessionKey()
	acquiredAt := time.Now()

	state.mu.Lock()
	state.held = true
	state.sessionKey = session
	state.acquiredAt = acquiredAt
	if state.idleTimer != nil {
		state.idleTimer.Stop()
		state.idleTimer = nil
	}
	if s.maxHold > 0 {
		state.timer = time.AfterFunc(s.maxHold, func() {
			s.timeoutRelease(lockID, state, session)
		})
	}
	state.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordAcquisition(lockmetrics.StrategyLocal, lockmetrics.OutcomeAcquired)
		s.metrics.IncActive(lockmetrics.StrategyLocal)
	}

	return Result{SessionKey: session, AcquiredAt: acquiredAt}, nil
}

func (s *LocalStrategy) Release(_ context.Context, lockID string, result Result) {
	if !result.Acquired() {
		return
	}
	lockID = strings.ToLower(lockID)

	state, ok := s.cache.Peek(lockID)
	if !ok {
		return
	}
	s.releaseIfOwner(lockID, state, result.SessionKey, "release")
}

// releaseIfOwner performs the ownership-checked, idempotent release: a
// mismatched or already-cleared SessionKey is a silent no-op. A release
// that isn't itself an eviction rearms the idle timer so the entry is
// still reclaimed if lockID goes cold afterward.
func (s *LocalStrategy) releaseIfOwner(lockID string, state *localState, session SessionKey, reason string) {
	state.mu.Lock()
	if !state.held || state.sessionKey != session {
		state.mu.Unlock()
		return
	}
	if state.timer != nil {
		state.timer.Stop()
		state.timer = nil
	}
	state.held = false
	state.acquiredAt = time.Time{}
	state.sessionKey = ""
	if reason != "evicted" && s.ttl > 0 {
		state.idleTimer = time.AfterFunc(s.ttl, func() {
			s.evictIdle(lockID, state)
		})
	}
	state.mu.Unlock()

	select {
	case state.sem <- struct{}{}:
	default:
		// Token already present: nothing to do, guards against a
		// double-release racing the same path twice.
	}

	if s.metrics != nil {
		s.metrics.DecActive(lockmetrics.StrategyLocal)
		if reason == "timeout" {
			s.metrics.RecordTimeoutRelease()
		}
	}
}

func (s *LocalStrategy) timeoutRelease(lockID string, state *localState, session SessionKey) {
	logrus.WithField("lockId", lockID).Warn("local lock exceeded MaxHold, forcing release")
	s.releaseIfOwner(lockID, state, session, "timeout")
}

// forceRelease is invoked by the LRU's eviction callback (I5): any
// mutex still held by an evicted entry is released so it cannot leak,
// even though a concurrent Acquire for the same lockId will now build a
// fresh entry. The reason "evicted" tells releaseIfOwner not to rearm the
// idle timer, since this entry is on its way out of the cache either way.
func (s *LocalStrategy) forceRelease(state *localState, reason string) {
	state.mu.Lock()
	held := state.held
	session := state.sessionKey
	if state.timer != nil {
		state.timer.Stop()
		state.timer = nil
	}
	if state.idleTimer != nil {
		state.idleTimer.Stop()
		state.idleTimer = nil
	}
	state.mu.Unlock()

	if held {
		logrus.WithField("reason", reason).Warn("releasing local lock evicted from LRU while still held")
		s.releaseIfOwner("", state, session, reason)
	}
}
