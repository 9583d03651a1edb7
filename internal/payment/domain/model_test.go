package domain

import (
	"errors"
	"testing"
)

func TestPaymentProofValidate(t *testing.T) {
	cases := []struct {
		name  string
		proof PaymentProof
		ok    bool
	}{
		{"none", NoProof(), true},
		{"gateway session", GatewaySessionProof("cs_1"), true},
		{"paypal capture", PayPalCaptureProof("cap_1"), true},
		{"none with leftover session", PaymentProof{Kind: ProofNone, SessionID: "cs_1"}, false},
		{"session without id", PaymentProof{Kind: ProofGatewaySession}, false},
		{"capture without id", PaymentProof{Kind: ProofPayPalCapture}, false},
		{"mixed proofs", PaymentProof{Kind: ProofGatewaySession, SessionID: "cs", CaptureID: "cap"}, false},
		{"unknown kind", PaymentProof{Kind: "check"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.proof.Validate()
			if tc.ok && err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrInvalidProof) {
				t.Fatalf("err = %v, want ErrInvalidProof", err)
			}
		})
	}
}

func TestVerdictTerminal(t *testing.T) {
	if VerdictUnpaid.Terminal() {
		t.Fatalf("unpaid must stay retryable")
	}
	for _, v := range []Verdict{VerdictPaymentSuccessful, VerdictAlreadyPaid, VerdictCancelled} {
		if !v.Terminal() {
			t.Fatalf("%q should be terminal", v)
		}
	}
}

func TestStateSuccessFoldsAlreadyPaid(t *testing.T) {
	if !StatePaymentSuccessful.Success() || !StateAlreadyPaid.Success() {
		t.Fatalf("both success-like states must report success")
	}
	if StateUnpaid.Success() || StateCancelled.Success() || StateVerifying.Success() {
		t.Fatalf("non-success states must not report success")
	}
	if StateVerifying.Terminal() {
		t.Fatalf("verifying is not terminal")
	}
}

func TestVerdictFromSettle(t *testing.T) {
	cases := map[string]Verdict{
		"payment_successful": VerdictPaymentSuccessful,
		"already_paid":       VerdictAlreadyPaid,
		"cancelled":          VerdictCancelled,
		"unpaid":             VerdictUnpaid,
		"something_new":      VerdictUnpaid,
		"":                   VerdictUnpaid,
	}
	for raw, want := range cases {
		if got := VerdictFromSettle(raw); got != want {
			t.Fatalf("VerdictFromSettle(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestStateForVerdict(t *testing.T) {
	cases := map[Verdict]State{
		VerdictPaymentSuccessful: StatePaymentSuccessful,
		VerdictAlreadyPaid:       StateAlreadyPaid,
		VerdictCancelled:         StateCancelled,
		VerdictUnpaid:            StateUnpaid,
	}
	for verdict, want := range cases {
		if got := StateForVerdict(verdict); got != want {
			t.Fatalf("StateForVerdict(%q) = %q, want %q", verdict, got, want)
		}
	}
}
