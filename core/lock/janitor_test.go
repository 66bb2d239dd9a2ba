package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiero-ledger/relay-lockgate/internal/kvstore"
)

// blockingStrategy blocks Acquire for "slow" until unblocked, so a test
// can tell whether the janitor serializes unrelated lockIds behind it.
type blockingStrategy struct {
	unblock chan struct{}
}

func (b *blockingStrategy) Acquire(ctx context.Context, lockID string) (Result, error) {
	if lockID == "slow" {
		select {
		case <-b.unblock:
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	}
	return Result{SessionKey: NewSessionKey(), AcquiredAt: time.Now()}, nil
}

func (b *blockingStrategy) Release(context.Context, string, Result) {}

func TestJanitor_DoesNotStallUnrelatedLockIdsBehindASlowAcquire(t *testing.T) {
	strategy := &blockingStrategy{unblock: make(chan struct{})}
	janitor := NewJanitor(strategy, 1, time.Minute) // single lane: would hash-collide under the old pool design
	defer janitor.Stop()

	slowDone := make(chan struct{})
	go func() {
		_, _ = janitor.Acquire(context.Background(), "slow")
		close(slowDone)
	}()

	// Give the slow Acquire a chance to actually be in flight.
	time.Sleep(20 * time.Millisecond)

	fastCtx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	res, err := janitor.Acquire(fastCtx, "fast")
	require.NoError(t, err)
	assert.True(t, res.Acquired())

	close(strategy.unblock)
	<-slowDone
}

type fakeSweeper struct {
	mu    sync.Mutex
	swept []string
}

func (f *fakeSweeper) Acquire(_ context.Context, lockID string) (Result, error) {
	return Result{SessionKey: NewSessionKey(), AcquiredAt: time.Now()}, nil
}

func (f *fakeSweeper) Release(context.Context, string, Result) {}

func (f *fakeSweeper) SweepZombies(_ context.Context, lockID string) error {
	f.mu.Lock()
	f.swept = append(f.swept, lockID)
	f.mu.Unlock()
	return nil
}

func TestJanitor_BackgroundSweepRevisitsTrackedLockIds(t *testing.T) {
	sweeper := &fakeSweeper{}
	janitor := NewJanitor(sweeper, 4, 10*time.Millisecond)
	defer janitor.Stop()

	_, err := janitor.Acquire(context.Background(), "0xswept")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		sweeper.mu.Lock()
		defer sweeper.mu.Unlock()
		for _, id := range sweeper.swept {
			if id == "0xswept" {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond, "background sweep never revisited the tracked lockId")
}

func TestJanitor_SweepZombiesIntegratesWithDistributedStrategy(t *testing.T) {
	store := kvstore.NewMemoryAdapter()
	strategy := NewDistributedStrategy(store, "test:", 200*time.Millisecond, 5*time.Millisecond, 2, newTestMetrics())
	janitor := NewJanitor(strategy, 4, 10*time.Millisecond)
	defer janitor.Stop()

	ctx := context.Background()
	require.NoError(t, store.ListPushHead(ctx, strategy.queueKey("0xcold"), "dead-session"))
	janitor.track("0xcold")

	require.Eventually(t, func() bool {
		length, err := store.ListLen(ctx, strategy.queueKey("0xcold"))
		require.NoError(t, err)
		return length == 0
	}, time.Second, 5*time.Millisecond, "background sweep never cleaned the cold zombie queue entry")
}
