package lock

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hiero-ledger/relay-lockgate/core/lockmetrics"
	"github.com/hiero-ledger/relay-lockgate/internal/kvstore"
)

// FactoryOptions carries every tunable the two strategies need, mirroring
// the configuration table's lock-related keys.
type FactoryOptions struct {
	RedisEnabled         bool
	KeyPrefix            string
	MaxHold              time.Duration
	QueuePollInterval    time.Duration
	HeartbeatMissedCount int
	LocalMaxEntries      int
	LocalTTL             time.Duration
}

// Select returns the distributed strategy when the KV store is
// configured and ready, otherwise the local strategy. Selection happens
// once at process startup and is not revisited.
func Select(ctx context.Context, store kvstore.Store, opts FactoryOptions, metrics *lockmetrics.Metrics) Strategy {
	if opts.RedisEnabled && store != nil && store.Ready(ctx) {
		logrus.Info("lock strategy: distributed (KV store ready)")
		return NewDistributedStrategy(store, opts.KeyPrefix, opts.MaxHold, opts.QueuePollInterval, opts.HeartbeatMissedCount, metrics)
	}

	logrus.Warn("lock strategy: local (KV store disabled or unreachable)")
	return NewLocalStrategy(opts.LocalMaxEntries, opts.LocalTTL, opts.MaxHold, metrics)
}
