package paypal

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Tijo-11/Vector-Ecom-sub001/internal/orderapi"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/payment/domain"
)

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Provider() string {
	return "paypal"
}

// NewAdapter builds the adapter. An empty webhook secret leaves settlement
// request shaping available but rejects every inbound callback.
func (f *Factory) NewAdapter(cfg domain.AdapterConfig) (domain.Adapter, error) {
	return &Adapter{webhookSecret: strings.TrimSpace(cfg.WebhookSecret)}, nil
}

type Adapter struct {
	webhookSecret string
}

func (a *Adapter) VerifySignature(ctx context.Context, payload []byte, headers http.Header) error {
	_ = ctx
	if a.webhookSecret == "" {
		return domain.ErrInvalidConfig
	}
	signature := strings.TrimSpace(headers.Get("Paypal-Transmission-Sig"))
	if signature == "" {
		return domain.ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(a.webhookSecret))
	_, _ = mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return domain.ErrInvalidSignature
	}
	return nil
}

type captureEvent struct {
	ID       string `json:"id"`
	Type     string `json:"event_type"`
	Resource struct {
		CaptureID string `json:"id"`
		CustomID  string `json:"custom_id"`
		Metadata  struct {
			UserID string `json:"user_id"`
			CartID string `json:"cart_id"`
		} `json:"metadata"`
	} `json:"resource"`
}

func (a *Adapter) ParseCallback(ctx context.Context, payload []byte) (*domain.ProviderCallback, error) {
	_ = ctx
	var event captureEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, domain.ErrInvalidPayload
	}
	if strings.TrimSpace(event.ID) == "" {
		return nil, domain.ErrInvalidPayload
	}

	switch strings.TrimSpace(event.Type) {
	case "PAYMENT.CAPTURE.COMPLETED":
	default:
		return nil, domain.ErrEventIgnored
	}

	captureID := strings.TrimSpace(event.Resource.CaptureID)
	// custom_id carries the marketplace order id through PayPal.
	orderID := strings.TrimSpace(event.Resource.CustomID)
	if captureID == "" || orderID == "" {
		return nil, domain.ErrInvalidPayload
	}

	return &domain.ProviderCallback{
		EventID: event.ID,
		OrderID: orderID,
		Proof:   domain.PayPalCaptureProof(captureID),
		UserID:  strings.TrimSpace(event.Resource.Metadata.UserID),
		CartID:  strings.TrimSpace(event.Resource.Metadata.CartID),
	}, nil
}

func (a *Adapter) SettleRequest(attempt domain.VerificationAttempt) (orderapi.SettleRequest, error) {
	if attempt.Proof.Kind != domain.ProofPayPalCapture {
		return orderapi.SettleRequest{}, domain.ErrInvalidProof
	}
	return orderapi.SettleRequest{
		IdempotencyKey: attempt.IdempotencyKey,
		Provider:       "paypal",
		CaptureID:      attempt.Proof.CaptureID,
	}, nil
}
