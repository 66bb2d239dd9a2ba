package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiero-ledger/relay-lockgate/core/lockmetrics"
)

func newTestMetrics() *lockmetrics.Metrics {
	return lockmetrics.New(prometheus.NewRegistry())
}

func TestLocalStrategy_MutualExclusion(t *testing.T) {
	s := NewLocalStrategy(100, time.Minute, time.Minute, newTestMetrics())
	ctx := context.Background()

	var active int32
	var sawOverlap int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.Acquire(ctx, "0xsender")
			require.NoError(t, err)
			require.True(t, res.Acquired())

			if atomic.AddInt32(&active, 1) > 1 {
				atomic.StoreInt32(&sawOverlap, 1)
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&active, -1)

			s.Release(ctx, "0xsender", res)
		}()
	}

	wg.Wait()
	assert.Zero(t, atomic.LoadInt32(&sawOverlap), "two holders were active at the same time")
}

func TestLocalStrategy_ReleaseIsOwnershipChecked(t *testing.T) {
	s := NewLocalStrategy(100, time.Minute, time.Minute, newTestMetrics())
	ctx := context.Background()

	res, err := s.Acquire(ctx, "0xabc")
	require.NoError(t, err)

	s.Release(ctx, "0xabc", Result{SessionKey: "not-the-real-one", AcquiredAt: res.AcquiredAt})

	acquiredCh := make(chan struct{})
	go func() {
		_, _ = s.Acquire(ctx, "0xabc")
		close(acquiredCh)
	}()

	select {
	case <-acquiredCh:
		t.Fatal("a mismatched SessionKey released the lock")
	case <-time.After(20 * time.Millisecond):
	}

	s.Release(ctx, "0xabc", res)
	select {
	case <-acquiredCh:
	case <-time.After(time.Second):
		t.Fatal("the real SessionKey failed to release the lock")
	}
}

func TestLocalStrategy_DoubleReleaseIsNoop(t *testing.T) {
	s := NewLocalStrategy(100, time.Minute, time.Minute, newTestMetrics())
	ctx := context.Background()

	res, err := s.Acquire(ctx, "0xdouble")
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		s.Release(ctx, "0xdouble", res)
		s.Release(ctx, "0xdouble", res)
	})
}

func TestLocalStrategy_AcquireRespectsContextCancellation(t *testing.T) {
	s := NewLocalStrategy(100, time.Minute, time.Minute, newTestMetrics())
	ctx := context.Background()

	held, err := s.Acquire(ctx, "0xblocked")
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()

	_, err = s.Acquire(waitCtx, "0xblocked")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	s.Release(ctx, "0xblocked", held)
}

func TestLocalStrategy_IdleEntryIsEvictedAfterTTL(t *testing.T) {
	s := NewLocalStrategy(100, 20*time.Millisecond, time.Minute, newTestMetrics())
	ctx := context.Background()

	res, err := s.Acquire(ctx, "0xidle")
	require.NoError(t, err)
	s.Release(ctx, "0xidle", res)

	require.Eventually(t, func() bool {
		_, ok := s.cache.Peek("0xidle")
		return !ok
	}, time.Second, 5*time.Millisecond, "idle entry was never evicted after its TTL elapsed")
}

func TestLocalStrategy_ReacquiringBeforeTTLCancelsEviction(t *testing.T) {
	s := NewLocalStrategy(100, 30*time.Millisecond, time.Minute, newTestMetrics())
	ctx := context.Background()

	res, err := s.Acquire(ctx, "0xreacquire")
	require.NoError(t, err)
	s.Release(ctx, "0xreacquire", res)

	time.Sleep(15 * time.Millisecond)
	res, err = s.Acquire(ctx, "0xreacquire")
	require.NoError(t, err)

	time.Sleep(25 * time.Millisecond) // past the original TTL, well within held time
	_, ok := s.cache.Peek("0xreacquire")
	assert.True(t, ok, "a held entry must not be evicted by its idle timer")

	s.Release(ctx, "0xreacquire", res)
}

func TestLocalStrategy_EvictionReleasesHeldMutex(t *testing.T) {
	s := NewLocalStrategy(1, time.Minute, time.Minute, newTestMetrics())
	ctx := context.Background()

	_, err := s.Acquire(ctx, "0xone")
	require.NoError(t, err)

	// Capacity is 1: acquiring a second lockId evicts "0xone" from the
	// LRU while it is still held; the eviction callback must release it.
	_, err = s.Acquire(ctx, "0xtwo")
	require.NoError(t, err)

	acquiredCh := make(chan struct{})
	go func() {
		_, _ = s.Acquire(ctx, "0xone")
		close(acquiredCh)
	}()

	select {
	case <-acquiredCh:
	case <-time.After(time.Second):
		t.Fatal("evicted entry left its mutex permanently held")
	}
}
