package domain

import "context"

// Reconciler drains a cart after a confirmed payment. Draining is best-effort
// per item and carries no re-entrancy guard of its own; the reconciliation
// state machine's terminal transition is the sole caller-side guard.
type Reconciler interface {
	Drain(ctx context.Context, identity Identity) error
	// Subscribe registers an observer notified after every drain attempt.
	// Replaces implicit global broadcast with an explicit subscription.
	Subscribe(fn func(DrainResult))
}

// IdentityMinter lazily creates guest cart identities for sessions that do
// not carry one yet. The minted id is persisted until drain clears it.
type IdentityMinter interface {
	MintGuestIdentity(ctx context.Context) (Identity, error)
}
