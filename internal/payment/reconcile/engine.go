package reconcile

import (
	"context"
	"encoding/json"
	"math/rand"
	"strings"

	cartdomain "github.com/Tijo-11/Vector-Ecom-sub001/internal/cart/domain"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/clock"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/locks"
	obsmetrics "github.com/Tijo-11/Vector-Ecom-sub001/internal/observability/metrics"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/orderapi"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/payment/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Verifier   domain.Verifier
	Carts      cartdomain.Reconciler
	Orders     orderapi.Service
	Repo       domain.Repository
	Locker     *locks.Locker       `optional:"true"`
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
	Config     Config              `optional:"true"`
}

// Engine drives one reconciliation run per order: verifying, bounded retries
// on inconclusive verdicts, cart drain on the terminal success transition.
type Engine struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	verifier   domain.Verifier
	carts      cartdomain.Reconciler
	orders     orderapi.Service
	repo       domain.Repository
	locker     *locks.Locker
	obsMetrics *obsmetrics.Metrics
	cfg        Config
	guard      *guard
}

func NewEngine(p Params) *Engine {
	return &Engine{
		db:         p.DB,
		log:        p.Log.Named("payment.reconcile"),
		genID:      p.GenID,
		clock:      p.Clock,
		verifier:   p.Verifier,
		carts:      p.Carts,
		orders:     p.Orders,
		repo:       p.Repo,
		locker:     p.Locker,
		obsMetrics: p.ObsMetrics,
		cfg:        p.Config.withDefaults(),
		guard:      newGuard(),
	}
}

// Reconcile starts a run and returns its transition stream. The channel
// closes after a terminal state, or without one if ctx is torn down mid-run
// (settlement is idempotent server-side, so an abandoned run is safe).
// A second call for an order with a live run returns ErrRunInFlight.
func (e *Engine) Reconcile(ctx context.Context, orderID string, proof domain.PaymentProof, cart cartdomain.Identity) (<-chan domain.Transition, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, domain.ErrInvalidOrderID
	}
	if err := proof.Validate(); err != nil {
		return nil, err
	}

	if !e.guard.acquire(orderID) {
		return nil, domain.ErrRunInFlight
	}

	lockKey := "reconcile:order:" + orderID
	lockToken, locked, err := e.locker.TryLock(ctx, lockKey, e.cfg.LockTTL)
	if err != nil || !locked {
		e.guard.release(orderID)
		if err != nil {
			return nil, err
		}
		return nil, domain.ErrRunInFlight
	}

	run := e.newRun(orderID, proof)
	if e.db != nil {
		if inserted, err := e.repo.InsertRun(ctx, e.db, run); err != nil {
			e.log.Warn("failed to persist reconciliation run", zap.Error(err))
		} else if !inserted {
			e.log.Warn("reconciliation run already recorded",
				zap.String("idempotency_key", run.IdempotencyKey),
			)
		}
	}

	transitions := make(chan domain.Transition, e.cfg.MaxAttempts+2)
	transitions <- domain.Transition{State: domain.StateVerifying}

	go func() {
		defer close(transitions)
		defer e.guard.release(orderID)
		defer func() {
			if err := e.locker.Release(context.WithoutCancel(ctx), lockKey, lockToken); err != nil {
				e.log.Warn("failed to release reconcile lock", zap.Error(err))
			}
		}()

		e.run(ctx, run, proof, cart, transitions)
	}()

	return transitions, nil
}

func (e *Engine) newRun(orderID string, proof domain.PaymentProof) *domain.RunRecord {
	now := e.clock.Now()
	entropy := ulid.Monotonic(rand.New(rand.NewSource(now.UnixNano())), 0)
	key := ulid.MustNew(ulid.Timestamp(now), entropy).String()

	rawProof, _ := json.Marshal(map[string]string{
		"kind":      string(proof.Kind),
		"reference": proof.Reference(),
	})

	return &domain.RunRecord{
		ID:             e.genID.Generate(),
		OrderID:        orderID,
		ProofKind:      string(proof.Kind),
		IdempotencyKey: key,
		State:          string(domain.StateVerifying),
		Proof:          datatypes.JSON(rawProof),
		StartedAt:      now,
	}
}

func (e *Engine) run(ctx context.Context, run *domain.RunRecord, proof domain.PaymentProof, cart cartdomain.Identity, transitions chan<- domain.Transition) {
	log := e.log.With(
		zap.String("order_id", run.OrderID),
		zap.String("proof_kind", string(proof.Kind)),
		zap.String("idempotency_key", run.IdempotencyKey),
	)

	// Snapshot-only verification settles synchronously (COD, wallet,
	// already-paid reloads): no webhook is pending, so one read decides.
	maxAttempts := e.cfg.MaxAttempts
	if proof.Kind == domain.ProofNone {
		maxAttempts = 1
	} else if err := e.clock.Sleep(ctx, e.cfg.InitialDelay); err != nil {
		e.abandon(log, 0)
		return
	}

	attempts := 0
	for attempts < maxAttempts {
		attempts++

		verdict, err := e.verifier.Verify(ctx, run.OrderID, domain.VerificationAttempt{
			AttemptNumber:  attempts,
			Proof:          proof,
			IdempotencyKey: run.IdempotencyKey,
		})
		if err != nil {
			log.Warn("verification rejected", zap.Int("attempt", attempts), zap.Error(err))
			e.finish(ctx, log, run, domain.StateUnpaid, attempts, cart, transitions)
			return
		}

		if verdict.Terminal() {
			e.finish(ctx, log, run, domain.StateForVerdict(verdict), attempts, cart, transitions)
			return
		}

		if attempts < maxAttempts {
			if err := e.clock.Sleep(ctx, e.cfg.RetryDelay); err != nil {
				e.abandon(log, attempts)
				return
			}
		}
	}

	e.finish(ctx, log, run, domain.StateUnpaid, attempts, cart, transitions)
}

func (e *Engine) finish(ctx context.Context, log *zap.Logger, run *domain.RunRecord, state domain.State, attempts int, cart cartdomain.Identity, transitions chan<- domain.Transition) {
	terminal := domain.Transition{State: state, Attempt: attempts}

	if state.Success() {
		// Drain exactly once, guarded by this terminal transition.
		if err := cart.Validate(); err != nil {
			log.Warn("cart identity missing, skipping drain", zap.Error(err))
		} else if err := e.carts.Drain(ctx, cart); err != nil {
			log.Warn("cart drain failed", zap.Error(err))
		}

		snapshot, err := e.orders.GetOrder(ctx, run.OrderID)
		if err != nil {
			// Payment stands; only the order details display is broken.
			log.Warn("post-success snapshot read failed", zap.Error(err))
			terminal.DisplayErr = err
		} else {
			terminal.Snapshot = snapshot
		}
	}

	if e.db != nil {
		if err := e.repo.MarkFinished(ctx, e.db, run.ID, state, attempts, e.clock.Now()); err != nil {
			log.Warn("failed to finalize reconciliation run", zap.Error(err))
		}
	}
	if e.obsMetrics != nil {
		e.obsMetrics.RecordReconciliation(ctx, string(state), attempts)
	}

	log.Info("reconciliation finished",
		zap.String("state", string(state)),
		zap.Int("attempts", attempts),
	)
	transitions <- terminal
}

// abandon leaves the run unfinished. Server-side settlement is keyed
// independently of the client run, so no inconsistent state results; a later
// run observes already_paid and drains again.
func (e *Engine) abandon(log *zap.Logger, attempts int) {
	log.Info("reconciliation abandoned", zap.Int("attempts", attempts))
}
