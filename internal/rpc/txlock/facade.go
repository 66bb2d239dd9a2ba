// Package txlock implements the sender-serialization facade (C7): it
// recovers the sender address from a raw signed transaction and routes
// the caller's critical section through the lock strategy (C2) so that
// transactions from the same sender never execute concurrently.
package txlock

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"

	"github.com/hiero-ledger/relay-lockgate/core/lock"
	pkgError "github.com/hiero-ledger/relay-lockgate/pkg/error"
)

// CriticalSection is the caller-supplied body executed while the sender
// lock is held (or, on a fail-open path, without it).
type CriticalSection func(ctx context.Context) (any, error)

// Facade serializes transactions per sender via a lock.Strategy.
type Facade struct {
	strategy       lock.Strategy
	chainID        uint64
	acquireTimeout time.Duration
}

// New builds a Facade over strategy. chainID selects the EIP-155 signer
// used to recover the sender from a raw signed transaction. acquireTimeout
// bounds how long RunExclusive will wait to acquire the sender's lock
// before surfacing a LockTimeoutError; zero disables the bound.
func New(strategy lock.Strategy, chainID uint64, acquireTimeout time.Duration) *Facade {
	return &Facade{strategy: strategy, chainID: chainID, acquireTimeout: acquireTimeout}
}

// RunExclusive implements the documented algorithm:
//  1. Recover the sender from rawTx. On failure, skip serialization and
//     run the critical section directly, logging a warning.
//  2. Acquire a lock for the sender. A fail-open acquisition also runs
//     the critical section directly. Exceeding acquireTimeout (via
//     ctx's deadline) surfaces a distinct timeout error.
//  3. Run the critical section and always release the lock afterwards,
//     success or failure.
func (f *Facade) RunExclusive(ctx context.Context, rawTx []byte, section CriticalSection) (any, error) {
	sender, err := recoverSender(rawTx, f.chainID)
	if err != nil {
		logrus.WithError(err).Warn("could not recover sender from raw transaction, running without serialization")
		return section(ctx)
	}

	acquireCtx := ctx
	if f.acquireTimeout > 0 {
		var cancel context.CancelFunc
		acquireCtx, cancel = context.WithTimeout(ctx, f.acquireTimeout)
		defer cancel()
	}

	res, err := f.strategy.Acquire(acquireCtx, sender)
	if err != nil {
		if acquireCtx.Err() != nil {
			return nil, pkgError.LockTimeoutError(fmt.Sprintf("timed out acquiring lock for sender %s", sender))
		}
		// Any other acquire error is already a fail-open signal from
		// the strategy (it never returns a non-nil error otherwise);
		// run unserialized to preserve liveness.
		return section(ctx)
	}
	if !res.Acquired() {
		return section(ctx)
	}

	defer f.strategy.Release(ctx, sender, res)
	return section(ctx)
}

func recoverSender(rawTx []byte, chainID uint64) (string, error) {
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(rawTx); err != nil {
		return "", fmt.Errorf("decode raw transaction: %w", err)
	}

	signer := types.NewEIP155Signer(new(big.Int).SetUint64(chainID))
	addr, err := types.Sender(signer, tx)
	if err != nil {
		return "", fmt.Errorf("recover sender: %w", err)
	}

	return addr.Hex(), nil
}
