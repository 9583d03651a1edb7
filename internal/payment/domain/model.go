package domain

import (
	"strings"
	"time"

	"github.com/Tijo-11/Vector-Ecom-sub001/internal/orderapi"
	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// ProofKind tags the origin of a proof-of-payment.
type ProofKind string

const (
	// ProofNone covers cash-on-delivery, wallet, and already-settled orders:
	// verification is a pure read of order state.
	ProofNone           ProofKind = "none"
	ProofGatewaySession ProofKind = "gateway_session"
	ProofPayPalCapture  ProofKind = "paypal_capture"
)

// PaymentProof is the tagged union over supported payment origins. At most
// one non-none proof is supplied per verification attempt.
type PaymentProof struct {
	Kind      ProofKind
	SessionID string
	CaptureID string
}

func NoProof() PaymentProof {
	return PaymentProof{Kind: ProofNone}
}

func GatewaySessionProof(sessionID string) PaymentProof {
	return PaymentProof{Kind: ProofGatewaySession, SessionID: strings.TrimSpace(sessionID)}
}

func PayPalCaptureProof(captureID string) PaymentProof {
	return PaymentProof{Kind: ProofPayPalCapture, CaptureID: strings.TrimSpace(captureID)}
}

func (p PaymentProof) Validate() error {
	switch p.Kind {
	case ProofNone:
		if p.SessionID != "" || p.CaptureID != "" {
			return ErrInvalidProof
		}
	case ProofGatewaySession:
		if strings.TrimSpace(p.SessionID) == "" || p.CaptureID != "" {
			return ErrInvalidProof
		}
	case ProofPayPalCapture:
		if strings.TrimSpace(p.CaptureID) == "" || p.SessionID != "" {
			return ErrInvalidProof
		}
	default:
		return ErrInvalidProof
	}
	return nil
}

// Reference is the provider-side identifier carried by the proof.
func (p PaymentProof) Reference() string {
	switch p.Kind {
	case ProofGatewaySession:
		return p.SessionID
	case ProofPayPalCapture:
		return p.CaptureID
	default:
		return ""
	}
}

// Verdict is the settlement outcome of one verification attempt.
type Verdict string

const (
	VerdictPaymentSuccessful Verdict = "payment_successful"
	VerdictAlreadyPaid       Verdict = "already_paid"
	VerdictUnpaid            Verdict = "unpaid"
	VerdictCancelled         Verdict = "cancelled"
)

// Terminal reports whether the verdict ends the retry loop.
func (v Verdict) Terminal() bool {
	return v != VerdictUnpaid
}

// VerdictFromSettle maps the order service's settlement verdict string.
// Unknown verdicts are inconclusive.
func VerdictFromSettle(raw string) Verdict {
	switch strings.TrimSpace(raw) {
	case orderapi.SettleVerdictPaymentSuccessful:
		return VerdictPaymentSuccessful
	case orderapi.SettleVerdictAlreadyPaid:
		return VerdictAlreadyPaid
	case orderapi.SettleVerdictCancelled:
		return VerdictCancelled
	default:
		return VerdictUnpaid
	}
}

// State is the reconciliation state machine's exposed value.
type State string

const (
	StateVerifying         State = "verifying"
	StatePaymentSuccessful State = "payment_successful"
	StateAlreadyPaid       State = "already_paid"
	StateUnpaid            State = "unpaid"
	StateCancelled         State = "cancelled"

	// StateAbandoned is a persistence-only status for runs whose process
	// died mid-verification. The live state machine never reaches it.
	StateAbandoned State = "abandoned"
)

// Terminal states have no outgoing transitions; a fresh run starts a new
// machine instead.
func (s State) Terminal() bool {
	return s != StateVerifying
}

// Success folds already_paid into payment_successful for display purposes;
// the distinct state survives so callers can skip celebration UI on reload.
func (s State) Success() bool {
	return s == StatePaymentSuccessful || s == StateAlreadyPaid
}

func stateForVerdict(v Verdict) State {
	switch v {
	case VerdictPaymentSuccessful:
		return StatePaymentSuccessful
	case VerdictAlreadyPaid:
		return StateAlreadyPaid
	case VerdictCancelled:
		return StateCancelled
	default:
		return StateUnpaid
	}
}

// StateForVerdict maps a terminal verdict onto its terminal state.
func StateForVerdict(v Verdict) State {
	return stateForVerdict(v)
}

// Transition is one observed state change of a reconciliation run.
type Transition struct {
	State   State
	Attempt int
	// Snapshot is attached on success-like terminal transitions when the
	// post-success order read succeeded.
	Snapshot *orderapi.OrderSnapshot
	// DisplayErr reports a failed post-success snapshot read. The payment
	// state stands; the caller surfaces a narrow display error instead.
	DisplayErr error
}

// VerificationAttempt is the ephemeral value passed into the verifier. The
// idempotency key is generated once per run, not per attempt.
type VerificationAttempt struct {
	AttemptNumber  int
	Proof          PaymentProof
	IdempotencyKey string
}

// RunRecord persists one reconciliation run. The idempotency key is unique,
// so replayed runs de-duplicate on insert.
type RunRecord struct {
	ID             snowflake.ID   `json:"id" gorm:"primaryKey"`
	OrderID        string         `json:"order_id" gorm:"type:text;not null;index"`
	ProofKind      string         `json:"proof_kind" gorm:"type:text;not null"`
	IdempotencyKey string         `json:"idempotency_key" gorm:"type:text;not null;uniqueIndex"`
	State          string         `json:"state" gorm:"type:text;not null"`
	Attempts       int            `json:"attempts" gorm:"not null"`
	Proof          datatypes.JSON `json:"proof" gorm:"type:jsonb"`
	StartedAt      time.Time      `json:"started_at" gorm:"not null"`
	FinishedAt     *time.Time     `json:"finished_at"`
}

func (RunRecord) TableName() string { return "payment_reconciliation_runs" }
