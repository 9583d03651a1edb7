package domain

import (
	"context"
	"net/http"

	"github.com/Tijo-11/Vector-Ecom-sub001/internal/orderapi"
)

// AdapterConfig carries per-provider secrets.
type AdapterConfig struct {
	WebhookSecret string
}

// Factory builds provider adapters.
type Factory interface {
	Provider() string
	NewAdapter(cfg AdapterConfig) (Adapter, error)
}

// Adapter is a payment provider integration: it authenticates inbound
// provider callbacks and shapes the settlement request the order service
// expects for the provider's proof kind.
type Adapter interface {
	VerifySignature(ctx context.Context, payload []byte, headers http.Header) error
	ParseCallback(ctx context.Context, payload []byte) (*ProviderCallback, error)
	SettleRequest(attempt VerificationAttempt) (orderapi.SettleRequest, error)
}

// ProviderCallback is the canonical callback parsed by adapters: the proof
// the provider hands back plus the order and cart it belongs to.
type ProviderCallback struct {
	EventID string
	OrderID string
	Proof   PaymentProof
	UserID  string
	CartID  string
}
