package domain

import (
	"context"
	"time"

	cartdomain "github.com/Tijo-11/Vector-Ecom-sub001/internal/cart/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Verifier confirms payment against the order service. It holds no mutable
// state between calls and never reports payment without server confirmation.
type Verifier interface {
	Verify(ctx context.Context, orderID string, attempt VerificationAttempt) (Verdict, error)
}

// Starter begins a reconciliation run and streams its state transitions.
// The channel closes after the terminal state.
type Starter interface {
	Reconcile(ctx context.Context, orderID string, proof PaymentProof, cart cartdomain.Identity) (<-chan Transition, error)
}

// Repository persists reconciliation run records.
type Repository interface {
	// InsertRun inserts a run, reporting false when the idempotency key is
	// already recorded.
	InsertRun(ctx context.Context, db *gorm.DB, run *RunRecord) (bool, error)
	FindRunByKey(ctx context.Context, db *gorm.DB, idempotencyKey string) (*RunRecord, error)
	MarkFinished(ctx context.Context, db *gorm.DB, id snowflake.ID, state State, attempts int, finishedAt time.Time) error
	// SweepStaleRuns marks verifying runs started before cutoff as
	// abandoned, reporting how many rows changed.
	SweepStaleRuns(ctx context.Context, db *gorm.DB, cutoff time.Time, finishedAt time.Time, limit int) (int64, error)
}
