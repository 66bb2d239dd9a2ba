package lock

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hiero-ledger/relay-lockgate/core/lockmetrics"
	"github.com/hiero-ledger/relay-lockgate/internal/kvstore"
)

// DistributedStrategy implements Strategy over a shared KV store so
// fairness and liveness hold across a fleet of stateless processes. See
// the acquire/release algorithm description on Acquire and Release.
type DistributedStrategy struct {
	store                kvstore.Store
	keyPrefix            string
	maxHold              time.Duration
	pollInterval         time.Duration
	heartbeatMissedCount int
	metrics              *lockmetrics.Metrics
}

// NewDistributedStrategy builds a DistributedStrategy against store,
// namespacing all keys under keyPrefix (e.g. "relay:").
func NewDistributedStrategy(store kvstore.Store, keyPrefix string, maxHold, pollInterval time.Duration, heartbeatMissedCount int, metrics *lockmetrics.Metrics) *DistributedStrategy {
	if heartbeatMissedCount < 2 {
		heartbeatMissedCount = 2
	}
	return &DistributedStrategy{
		store:                store,
		keyPrefix:            keyPrefix,
		maxHold:              maxHold,
		pollInterval:         pollInterval,
		heartbeatMissedCount: heartbeatMissedCount,
		metrics:              metrics,
	}
}

// StrategyName satisfies domains/health.LockStrategyName.
func (s *DistributedStrategy) StrategyName() string {
	return "distributed"
}

func (s *DistributedStrategy) holderKey(lockID string) string {
	return s.keyPrefix + "lock:" + lockID
}

func (s *DistributedStrategy) queueKey(lockID string) string {
	return s.keyPrefix + "lock:queue:" + lockID
}

func (s *DistributedStrategy) heartbeatKey(session SessionKey) string {
	return s.keyPrefix + "lock:heartbeat:" + string(session)
}

func (s *DistributedStrategy) heartbeatTTL() time.Duration {
	return s.pollInterval * time.Duration(s.heartbeatMissedCount)
}

// refreshHeartbeat renews the proof-of-life key for session. The store
// only exposes set-if-absent, so a refresh is a delete followed by a
// fresh set-if-absent; the brief gap between the two calls is bounded by
// round-trip latency and does not threaten correctness, since a zombie
// sweep only acts on a heartbeat that has been missing for a full
// pollInterval x missedCount window.
func (s *DistributedStrategy) refreshHeartbeat(ctx context.Context, session SessionKey) error {
	_ = s.store.Delete(ctx, s.heartbeatKey(session))
	_, err := s.store.SetIfAbsentTTL(ctx, s.heartbeatKey(session), "alive", s.heartbeatTTL())
	return err
}

func (s *DistributedStrategy) recordAcquisition(outcome lockmetrics.Outcome) {
	if s.metrics != nil {
		s.metrics.RecordAcquisition(lockmetrics.StrategyDistributed, outcome)
	}
}

func (s *DistributedStrategy) recordStoreError(operation string) {
	if s.metrics != nil {
		s.metrics.RecordStoreError(operation)
	}
}

// Acquire implements the numbered algorithm: join the queue, refresh a
// heartbeat each pass, inspect the tail, set-if-absent the holder key
// once we are the tail, and only then pop our own queue entry — never
// before a confirmed acquisition, so a racing set-if-absent cannot let a
// second acquirer jump the queue.
func (s *DistributedStrategy) Acquire(ctx context.Context, lockID string) (Result, error) {
	lockID = strings.ToLower(lockID)
	session := NewSessionKey()
	start := time.Now()

	if err := s.store.ListPushHead(ctx, s.queueKey(lockID), string(session)); err != nil {
		s.recordStoreError("queue_push")
		s.recordAcquisition(lockmetrics.OutcomeFailedOpen)
		return Result{}, nil
	}
	joinedQueue := true
	defer func() {
		if joinedQueue {
			_, _ = s.store.ListRemove(context.Background(), s.queueKey(lockID), string(session), 1)
			_ = s.store.Delete(context.Background(), s.heartbeatKey(session))
		}
	}()

	if s.metrics != nil {
		waiting := s.metrics.Waiting.WithLabelValues(string(lockmetrics.StrategyDistributed))
		waiting.Inc()
		defer waiting.Dec()
	}

	for {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		default:
		}

		if err := s.refreshHeartbeat(ctx, session); err != nil {
			s.recordStoreError("heartbeat_refresh")
			s.recordAcquisition(lockmetrics.OutcomeFailedOpen)
			return Result{}, nil
		}

		tail, err := s.store.ListIndex(ctx, s.queueKey(lockID), 0)
		if err != nil && err != kvstore.ErrNotFound {
			s.recordStoreError("queue_read")
			s.recordAcquisition(lockmetrics.OutcomeFailedOpen)
			return Result{}, nil
		}
		if err == kvstore.ErrNotFound {
			// Transient: our own push may not yet be visible. Retry.
			if !s.sleep(ctx) {
				return Result{}, ctx.Err()
			}
			continue
		}

		if tail == string(session) {
			ok, err := s.store.SetIfAbsentTTL(ctx, s.holderKey(lockID), string(session), s.maxHold)
			if err != nil {
				s.recordStoreError("holder_set")
				s.recordAcquisition(lockmetrics.OutcomeFailedOpen)
				return Result{}, nil
			}
			if ok {
				_, _ = s.store.ListPopTail(ctx, s.queueKey(lockID))
				_ = s.store.Delete(ctx, s.heartbeatKey(session))
				joinedQueue = false

				acquiredAt := time.Now()
				if s.metrics != nil {
					s.metrics.RecordWait(lockmetrics.StrategyDistributed, acquiredAt.Sub(start).Seconds())
					s.metrics.IncActive(lockmetrics.StrategyDistributed)
				}
				s.recordAcquisition(lockmetrics.OutcomeAcquired)
				return Result{SessionKey: session, AcquiredAt: acquiredAt}, nil
			}
			// Previous holder's TTL has not yet elapsed; keep waiting.
			if !s.sleep(ctx) {
				return Result{}, ctx.Err()
			}
			continue
		}

		alive, err := s.store.Exists(ctx, s.heartbeatKey(SessionKey(tail)))
		if err != nil {
			s.recordStoreError("heartbeat_check")
			s.recordAcquisition(lockmetrics.OutcomeFailedOpen)
			return Result{}, nil
		}
		if !alive {
			removed, err := s.store.ListRemove(ctx, s.queueKey(lockID), tail, 1)
			if err != nil {
				s.recordStoreError("zombie_remove")
			} else if removed > 0 && s.metrics != nil {
				s.metrics.RecordZombieCleanup()
			}
			logrus.WithFields(logrus.Fields{"lockId": lockID, "zombie": tail}).Debug("removed zombie queue entry")
			continue // retry immediately, do not sleep
		}

		if !s.sleep(ctx) {
			return Result{}, ctx.Err()
		}
	}
}

// SweepZombies removes every queued entry for lockID whose heartbeat has
// already expired. Acquire already does this reactively for whichever
// entry sits at the tail while a waiter is polling; this catches entries
// left behind once every waiter for lockID has given up or timed out, so
// the janitor's background sweep (not the request hot path) is what
// keeps a cold queue from wedging the next caller behind a dead session.
func (s *DistributedStrategy) SweepZombies(ctx context.Context, lockID string) error {
	lockID = strings.ToLower(lockID)
	queueKey := s.queueKey(lockID)

	length, err := s.store.ListLen(ctx, queueKey)
	if err != nil {
		s.recordStoreError("sweep_queue_len")
		return err
	}

	for i := int64(0); i < length; {
		session, err := s.store.ListIndex(ctx, queueKey, i)
		if err == kvstore.ErrNotFound {
			break
		}
		if err != nil {
			s.recordStoreError("sweep_queue_read")
			return err
		}

		alive, err := s.store.Exists(ctx, s.heartbeatKey(SessionKey(session)))
		if err != nil {
			s.recordStoreError("sweep_heartbeat_check")
			return err
		}
		if alive {
			i++
			continue
		}

		removed, err := s.store.ListRemove(ctx, queueKey, session, 1)
		if err != nil {
			s.recordStoreError("sweep_zombie_remove")
			return err
		}
		if removed == 0 {
			i++
		} else {
			// The entries behind this one shift down by one position.
			length--
			logrus.WithFields(logrus.Fields{"lockId": lockID, "zombie": session}).Debug("background sweep removed zombie queue entry")
			if s.metrics != nil {
				s.metrics.RecordZombieCleanup()
			}
		}
	}
	return nil
}

func (s *DistributedStrategy) sleep(ctx context.Context) bool {
	timer := time.NewTimer(s.pollInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Release atomically deletes the holder key only if it still carries our
// SessionKey. A result of false means the TTL already lapsed (we lost it
// to expiry) or a different owner now holds it; elapsed time since
// AcquiredAt distinguishes a timeout release from an unexplained loss.
func (s *DistributedStrategy) Release(ctx context.Context, lockID string, result Result) {
	if !result.Acquired() {
		return
	}
	lockID = strings.ToLower(lockID)

	ok, err := s.store.CompareAndDelete(ctx, s.holderKey(lockID), string(result.SessionKey))
	if err != nil {
		s.recordStoreError("release")
		return
	}

	if s.metrics != nil {
		s.metrics.DecActive(lockmetrics.StrategyDistributed)
	}

	if ok {
		if s.metrics != nil {
			s.metrics.RecordHold(lockmetrics.StrategyDistributed, time.Since(result.AcquiredAt).Seconds())
		}
		return
	}

	if time.Since(result.AcquiredAt) >= s.maxHold && s.metrics != nil {
		s.metrics.RecordTimeoutRelease()
	}
}
