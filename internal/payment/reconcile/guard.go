package reconcile

import "sync"

// guard keeps at most one reconciliation loop per order id within this
// process. Re-entrant starts for the same order are suppressed by the
// caller as idempotent no-ops.
type guard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func newGuard() *guard {
	return &guard{active: map[string]struct{}{}}
}

func (g *guard) acquire(orderID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.active[orderID]; ok {
		return false
	}
	g.active[orderID] = struct{}{}
	return true
}

func (g *guard) release(orderID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.active, orderID)
}
