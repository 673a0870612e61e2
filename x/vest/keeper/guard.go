package keeper

import (
	"sync"

	"cosmossdk.io/errors"
	"github.com/eden-finance/vest-sub001/x/vest/types"
)

// opGuard is the per-pool operation-in-progress lock. Investor-facing
// operations acquire it at entry and release it on every exit path; a nested
// call into the same pool while one is executing is rejected outright instead
// of observing intermediate state.
type opGuard struct {
	mu     sync.Mutex
	locked map[string]bool
}

func newOpGuard() *opGuard {
	return &opGuard{locked: make(map[string]bool)}
}

// Acquire takes the lock for poolID, failing if it is already held
func (g *opGuard) Acquire(poolID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.locked[poolID] {
		return errors.Wrapf(types.ErrReentrantCall, "operation in progress on pool %s", poolID)
	}
	g.locked[poolID] = true
	return nil
}

// Release frees the lock for poolID. Safe to call on an unheld lock.
func (g *opGuard) Release(poolID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.locked, poolID)
}
