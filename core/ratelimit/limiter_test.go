package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiero-ledger/relay-lockgate/internal/kvstore"
)

func TestLocalLimiter_DeniesAfterLimit(t *testing.T) {
	l := NewLocalLimiter(time.Minute)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		assert.False(t, l.ShouldLimit(ctx, "1.2.3.4", "eth_call", 5, "req"))
	}
	assert.True(t, l.ShouldLimit(ctx, "1.2.3.4", "eth_call", 5, "req"))
}

func TestLocalLimiter_ResetsAfterWindow(t *testing.T) {
	l := NewLocalLimiter(10 * time.Millisecond)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		l.ShouldLimit(ctx, "1.2.3.4", "eth_call", 3, "req")
	}
	assert.True(t, l.ShouldLimit(ctx, "1.2.3.4", "eth_call", 3, "req"))

	time.Sleep(20 * time.Millisecond)
	assert.False(t, l.ShouldLimit(ctx, "1.2.3.4", "eth_call", 3, "req"))
}

func TestSharedLimiter_SharesCounterAcrossInstances(t *testing.T) {
	store := kvstore.NewMemoryAdapter()
	ctx := context.Background()

	a := NewSharedLimiter(store, "relay:", time.Minute)
	b := NewSharedLimiter(store, "relay:", time.Minute)

	for i := 0; i < 5; i++ {
		require.False(t, a.ShouldLimit(ctx, "9.9.9.9", "eth_call", 5, "req"))
	}
	assert.True(t, b.ShouldLimit(ctx, "9.9.9.9", "eth_call", 5, "req"))
}

func TestDisabled_NeverLimits(t *testing.T) {
	d := Disabled{}
	assert.False(t, d.ShouldLimit(context.Background(), "ip", "method", 1, "req"))
}
