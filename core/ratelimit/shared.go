package ratelimit

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hiero-ledger/relay-lockgate/internal/kvstore"
)

// SharedLimiter issues INCR-with-expiry against the KV store keyed
// `ratelimit:{ip}:{method}`, so every process sharing the store shares
// the same counter.
type SharedLimiter struct {
	store     kvstore.Store
	keyPrefix string
	duration  time.Duration
}

// NewSharedLimiter builds a SharedLimiter backed by store, namespacing
// keys under keyPrefix.
func NewSharedLimiter(store kvstore.Store, keyPrefix string, duration time.Duration) *SharedLimiter {
	return &SharedLimiter{store: store, keyPrefix: keyPrefix, duration: duration}
}

func (l *SharedLimiter) key(ip, method string) string {
	return l.keyPrefix + "ratelimit:" + ip + ":" + method
}

func (l *SharedLimiter) ShouldLimit(ctx context.Context, ip, method string, limit int, requestID string) bool {
	if limit <= 0 {
		return false
	}

	count, err := l.store.IncrWithExpiry(ctx, l.key(ip, method), l.duration)
	if err != nil {
		logrus.WithError(err).WithField("requestId", requestID).Warn("rate limiter store error, failing open")
		return false
	}

	return count > int64(limit)
}
