// Package health reports the gateway's own readiness: whether the KV
// store backing the distributed lock and rate limiter is reachable, and
// which lock strategy is currently selected.
package health

import (
	"context"
	"time"

	"github.com/hiero-ledger/relay-lockgate/internal/kvstore"
)

type Status string

const (
	StatusOK       Status = "OK"
	StatusDegraded Status = "DEGRADED"
)

// ComponentCheck is the state of one dependency at CheckedAt.
type ComponentCheck struct {
	Name      string    `json:"name"`
	Status    Status    `json:"status"`
	Message   string    `json:"message,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Report is the aggregate result returned by GetStatus.
type Report struct {
	Status     Status           `json:"status"`
	Components []ComponentCheck `json:"components"`
}

// LockStrategyName is implemented by core/lock's concrete strategies and
// its Janitor, so the health report can name which one is active without
// importing core/lock here.
type LockStrategyName interface {
	StrategyName() string
}

// IHealthUsecase is the service the REST layer depends on.
type IHealthUsecase interface {
	GetStatus(ctx context.Context) Report
}

// Usecase is the default IHealthUsecase, backed directly by the KV store
// and the active lock strategy.
type Usecase struct {
	Store        kvstore.Store
	LockStrategy LockStrategyName
	now          func() time.Time
}

// New builds a Usecase. store may be nil when the process runs in
// local-only mode; strategy is whatever core/lock.Select returned.
func New(store kvstore.Store, strategy LockStrategyName) *Usecase {
	return &Usecase{Store: store, LockStrategy: strategy, now: time.Now}
}

func (u *Usecase) GetStatus(ctx context.Context) Report {
	checkedAt := time.Now()
	if u.now != nil {
		checkedAt = u.now()
	}

	components := []ComponentCheck{u.lockStrategyCheck(checkedAt)}
	overall := StatusOK

	if u.Store != nil {
		storeCheck := ComponentCheck{Name: "kv_store", CheckedAt: checkedAt}
		if u.Store.Ready(ctx) {
			storeCheck.Status = StatusOK
			storeCheck.Message = "reachable"
		} else {
			storeCheck.Status = StatusDegraded
			storeCheck.Message = "unreachable, distributed lock and shared rate limiting are unavailable"
			overall = StatusDegraded
		}
		components = append(components, storeCheck)
	}

	return Report{Status: overall, Components: components}
}

func (u *Usecase) lockStrategyCheck(checkedAt time.Time) ComponentCheck {
	name := "unconfigured"
	if u.LockStrategy != nil {
		name = u.LockStrategy.StrategyName()
	}
	return ComponentCheck{Name: "lock_strategy", Status: StatusOK, Message: name, CheckedAt: checkedAt}
}
