package cardgate

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Tijo-11/Vector-Ecom-sub001/internal/orderapi"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/payment/domain"
)

// Factory builds adapters for the card/UPI gateway.
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Provider() string {
	return "cardgate"
}

// NewAdapter builds the adapter. An empty webhook secret leaves settlement
// request shaping available but rejects every inbound callback.
func (f *Factory) NewAdapter(cfg domain.AdapterConfig) (domain.Adapter, error) {
	return &Adapter{webhookSecret: strings.TrimSpace(cfg.WebhookSecret)}, nil
}

type Adapter struct {
	webhookSecret string
}

// VerifySignature checks the timestamped HMAC header the gateway attaches to
// callbacks: "t=<unix>,v1=<hex hmac of "<t>.<payload>">".
func (a *Adapter) VerifySignature(ctx context.Context, payload []byte, headers http.Header) error {
	_ = ctx
	if a.webhookSecret == "" {
		return domain.ErrInvalidConfig
	}
	sigHeader := strings.TrimSpace(headers.Get("Cardgate-Signature"))
	if sigHeader == "" {
		return domain.ErrInvalidSignature
	}

	timestamp, signatures, err := parseSignature(sigHeader)
	if err != nil {
		return domain.ErrInvalidSignature
	}

	signedPayload := fmt.Sprintf("%s.%s", timestamp, string(payload))
	mac := hmac.New(sha256.New, []byte(a.webhookSecret))
	_, _ = mac.Write([]byte(signedPayload))
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, signature := range signatures {
		if hmac.Equal([]byte(signature), []byte(expected)) {
			return nil
		}
	}

	return domain.ErrInvalidSignature
}

type gatewayEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		SessionID string `json:"session_id"`
		OrderID   string `json:"order_id"`
		Metadata  struct {
			UserID string `json:"user_id"`
			CartID string `json:"cart_id"`
		} `json:"metadata"`
	} `json:"data"`
}

func (a *Adapter) ParseCallback(ctx context.Context, payload []byte) (*domain.ProviderCallback, error) {
	_ = ctx
	var event gatewayEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, domain.ErrInvalidPayload
	}
	if strings.TrimSpace(event.ID) == "" {
		return nil, domain.ErrInvalidPayload
	}

	switch strings.TrimSpace(event.Type) {
	case "checkout.session.completed":
	default:
		return nil, domain.ErrEventIgnored
	}

	sessionID := strings.TrimSpace(event.Data.SessionID)
	orderID := strings.TrimSpace(event.Data.OrderID)
	if sessionID == "" || orderID == "" {
		return nil, domain.ErrInvalidPayload
	}

	return &domain.ProviderCallback{
		EventID: event.ID,
		OrderID: orderID,
		Proof:   domain.GatewaySessionProof(sessionID),
		UserID:  strings.TrimSpace(event.Data.Metadata.UserID),
		CartID:  strings.TrimSpace(event.Data.Metadata.CartID),
	}, nil
}

func (a *Adapter) SettleRequest(attempt domain.VerificationAttempt) (orderapi.SettleRequest, error) {
	if attempt.Proof.Kind != domain.ProofGatewaySession {
		return orderapi.SettleRequest{}, domain.ErrInvalidProof
	}
	return orderapi.SettleRequest{
		IdempotencyKey: attempt.IdempotencyKey,
		Provider:       "cardgate",
		SessionID:      attempt.Proof.SessionID,
	}, nil
}

func parseSignature(header string) (string, []string, error) {
	var timestamp string
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			timestamp = value
		case "v1":
			signatures = append(signatures, value)
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return "", nil, errors.New("malformed signature header")
	}
	return timestamp, signatures, nil
}
