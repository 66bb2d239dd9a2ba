package lock

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Sweeper is implemented by a Strategy that can proactively clean up
// zombie queue entries for a lockId even when nobody is actively waiting
// on it right now. DistributedStrategy.Acquire already does this
// reactively for whichever entry a live waiter happens to be polling;
// Sweeper is for the case where every waiter gave up and the queue is
// otherwise cold.
type Sweeper interface {
	SweepZombies(ctx context.Context, lockID string) error
}

// Janitor wraps a Strategy with a background zombie sweep, sharded by
// FNV hash across a fixed set of lanes so a slow sweep pass for one
// lockId cannot delay the sweep pass for another. The request hot path
// (Acquire/Release) talks to the wrapped strategy directly, in the
// caller's own goroutine, and is never queued behind a lane: gating a
// blocking Acquire call through a fixed worker pool would stall every
// other lockId sharing that lane behind it, which defeats the point of
// sharding in the first place.
type Janitor struct {
	strategy Strategy

	lanes  []map[string]struct{}
	laneMu []sync.Mutex

	sweepEvery time.Duration
	stopOnce   sync.Once
	stopCh     chan struct{}
	wg         sync.WaitGroup
}

// NewJanitor wraps strategy and, if it implements Sweeper, starts
// numLanes background sweep loops firing every sweepEvery.
func NewJanitor(strategy Strategy, numLanes int, sweepEvery time.Duration) *Janitor {
	if numLanes <= 0 {
		numLanes = 8
	}
	if sweepEvery <= 0 {
		sweepEvery = 30 * time.Second
	}

	j := &Janitor{
		strategy:   strategy,
		lanes:      make([]map[string]struct{}, numLanes),
		laneMu:     make([]sync.Mutex, numLanes),
		sweepEvery: sweepEvery,
		stopCh:     make(chan struct{}),
	}
	for i := range j.lanes {
		j.lanes[i] = make(map[string]struct{})
	}

	if sweeper, ok := strategy.(Sweeper); ok {
		for i := range j.lanes {
			j.wg.Add(1)
			go j.sweepLoop(i, sweeper)
		}
		logrus.Infof("lock janitor started %d background sweep lanes, interval %s", numLanes, sweepEvery)
	}

	return j
}

func (j *Janitor) laneIndex(lockID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(lockID))
	return int(h.Sum32() % uint32(len(j.lanes)))
}

// track remembers lockID so the background sweep can revisit it later,
// even after the Acquire call that first saw it has long since returned.
func (j *Janitor) track(lockID string) {
	i := j.laneIndex(lockID)
	j.laneMu[i].Lock()
	j.lanes[i][lockID] = struct{}{}
	j.laneMu[i].Unlock()
}

func (j *Janitor) sweepLoop(lane int, sweeper Sweeper) {
	defer j.wg.Done()
	ticker := time.NewTicker(j.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-j.stopCh:
			return
		case <-ticker.C:
			j.sweepLane(lane, sweeper)
		}
	}
}

func (j *Janitor) sweepLane(lane int, sweeper Sweeper) {
	j.laneMu[lane].Lock()
	ids := make([]string, 0, len(j.lanes[lane]))
	for id := range j.lanes[lane] {
		ids = append(ids, id)
	}
	j.laneMu[lane].Unlock()

	for _, id := range ids {
		if err := sweeper.SweepZombies(context.Background(), id); err != nil {
			logrus.WithError(err).WithField("lockId", id).Debug("background zombie sweep failed")
		}
	}
}

// Acquire delegates straight to the wrapped strategy in the caller's own
// goroutine, so unrelated lockIds never contend for a shared lane on the
// request path. lockID is remembered for the next background sweep pass.
func (j *Janitor) Acquire(ctx context.Context, lockID string) (Result, error) {
	j.track(lockID)
	return j.strategy.Acquire(ctx, lockID)
}

// Release delegates straight to the wrapped strategy.
func (j *Janitor) Release(ctx context.Context, lockID string, result Result) {
	j.strategy.Release(ctx, lockID, result)
}

// StrategyName satisfies domains/health.LockStrategyName: the wrapped
// strategy's name with a "+janitor" suffix, or "sharded" when the wrapped
// strategy does not report a name.
func (j *Janitor) StrategyName() string {
	if named, ok := j.strategy.(interface{ StrategyName() string }); ok {
		return named.StrategyName() + "+janitor"
	}
	return "sharded"
}

// Stop shuts down every background sweep lane.
func (j *Janitor) Stop() {
	j.stopOnce.Do(func() {
		close(j.stopCh)
		j.wg.Wait()
		logrus.Info("lock janitor stopped")
	})
}
