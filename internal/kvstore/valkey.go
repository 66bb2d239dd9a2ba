package kvstore

import (
	"context"
	"strconv"
	"time"

	valkeylib "github.com/valkey-io/valkey-go"

	"github.com/hiero-ledger/relay-lockgate/infrastructure/valkey"
)

// compareAndDeleteScript deletes a key only when its current value still
// matches the caller's token, so a release can never clobber a holder
// key that has since expired and been re-acquired by someone else.
const compareAndDeleteScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`

// incrWithExpiryScript increments a counter and, only on the
// zero-to-one transition, applies a millisecond expiry to it in the same
// round trip.
const incrWithExpiryScript = `
local v = redis.call("incr", KEYS[1])
if v == 1 then
	redis.call("pexpire", KEYS[1], ARGV[1])
end
return v
`

// ValkeyAdapter implements Store over a Valkey/Redis-compatible backend.
type ValkeyAdapter struct {
	client *valkey.Client
}

// NewValkeyAdapter wraps an already-connected valkey.Client.
func NewValkeyAdapter(client *valkey.Client) *ValkeyAdapter {
	return &ValkeyAdapter{client: client}
}

func (a *ValkeyAdapter) inner() valkeylib.Client {
	return a.client.Inner()
}

func (a *ValkeyAdapter) Get(ctx context.Context, key string) (string, error) {
	cmd := a.inner().B().Get().Key(key).Build()
	val, err := a.inner().Do(ctx, cmd).ToString()
	if err != nil {
		if valkeylib.IsValkeyNil(err) {
			return "", ErrNotFound
		}
		return "", err
	}
	return val, nil
}

func (a *ValkeyAdapter) SetIfAbsentTTL(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	cmd := a.inner().B().Set().Key(key).Value(value).Nx().Px(ttl).Build()
	res := a.inner().Do(ctx, cmd)
	if res.Error() != nil {
		if valkeylib.IsValkeyNil(res.Error()) {
			return false, nil
		}
		return false, res.Error()
	}
	return true, nil
}

func (a *ValkeyAdapter) Delete(ctx context.Context, key string) error {
	cmd := a.inner().B().Del().Key(key).Build()
	return a.inner().Do(ctx, cmd).Error()
}

func (a *ValkeyAdapter) Exists(ctx context.Context, key string) (bool, error) {
	cmd := a.inner().B().Exists().Key(key).Build()
	n, err := a.inner().Do(ctx, cmd).AsInt64()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (a *ValkeyAdapter) ListPushHead(ctx context.Context, key, value string) error {
	cmd := a.inner().B().Lpush().Key(key).Element(value).Build()
	return a.inner().Do(ctx, cmd).Error()
}

func (a *ValkeyAdapter) ListPopTail(ctx context.Context, key string) (string, error) {
	cmd := a.inner().B().Rpop().Key(key).Build()
	val, err := a.inner().Do(ctx, cmd).ToString()
	if err != nil {
		if valkeylib.IsValkeyNil(err) {
			return "", ErrNotFound
		}
		return "", err
	}
	return val, nil
}

// ListIndex addresses elements counted from the tail: 0 is the element
// ListPopTail would return next. A Redis/Valkey list's native index is
// from the head, so we address it as -(index+1).
func (a *ValkeyAdapter) ListIndex(ctx context.Context, key string, index int64) (string, error) {
	cmd := a.inner().B().Lindex().Key(key).Index(-(index + 1)).Build()
	val, err := a.inner().Do(ctx, cmd).ToString()
	if err != nil {
		if valkeylib.IsValkeyNil(err) {
			return "", ErrNotFound
		}
		return "", err
	}
	return val, nil
}

func (a *ValkeyAdapter) ListRemove(ctx context.Context, key, value string, count int64) (int64, error) {
	cmd := a.inner().B().Lrem().Key(key).Count(count).Element(value).Build()
	return a.inner().Do(ctx, cmd).AsInt64()
}

func (a *ValkeyAdapter) ListLen(ctx context.Context, key string) (int64, error) {
	cmd := a.inner().B().Llen().Key(key).Build()
	return a.inner().Do(ctx, cmd).AsInt64()
}

func (a *ValkeyAdapter) CompareAndDelete(ctx context.Context, key, expected string) (bool, error) {
	cmd := a.inner().B().Eval().Script(compareAndDeleteScript).Numkeys(1).Key(key).Arg(expected).Build()
	n, err := a.inner().Do(ctx, cmd).AsInt64()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (a *ValkeyAdapter) IncrWithExpiry(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	cmd := a.inner().B().Eval().Script(incrWithExpiryScript).Numkeys(1).Key(key).Arg(formatMillis(ttl)).Build()
	return a.inner().Do(ctx, cmd).AsInt64()
}

func (a *ValkeyAdapter) Ready(ctx context.Context) bool {
	return a.client.IsConnected()
}

func (a *ValkeyAdapter) Close() {
	a.client.Close()
}

func formatMillis(d time.Duration) string {
	ms := d.Milliseconds()
	if ms <= 0 {
		ms = 1
	}
	return strconv.FormatInt(ms, 10)
}
