package verify

import (
	"context"
	"errors"
	"strings"

	obsmetrics "github.com/Tijo-11/Vector-Ecom-sub001/internal/observability/metrics"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/orderapi"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/payment/adapters"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log        *zap.Logger
	Orders     orderapi.Service
	Adapters   *adapters.Registry
	Configs    map[string]domain.AdapterConfig
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

// Service confirms payment against the order service. It prefers an
// inconclusive verdict over a false positive: any transport failure during
// settlement is "unpaid", except an explicit already-paid rejection, which
// the server owns and which therefore counts as success.
type Service struct {
	log        *zap.Logger
	orders     orderapi.Service
	adapters   *adapters.Registry
	configs    map[string]domain.AdapterConfig
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) *Service {
	return &Service{
		log:        p.Log.Named("payment.verify"),
		orders:     p.Orders,
		adapters:   p.Adapters,
		configs:    p.Configs,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) Verify(ctx context.Context, orderID string, attempt domain.VerificationAttempt) (domain.Verdict, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return domain.VerdictUnpaid, domain.ErrInvalidOrderID
	}
	if err := attempt.Proof.Validate(); err != nil {
		return domain.VerdictUnpaid, err
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordVerification(ctx, string(attempt.Proof.Kind))
	}

	if attempt.Proof.Kind == domain.ProofNone {
		return s.verifyFromSnapshot(ctx, orderID)
	}
	return s.submitProof(ctx, orderID, attempt)
}

// verifyFromSnapshot derives the verdict purely from order state, without
// contacting any payment gateway.
func (s *Service) verifyFromSnapshot(ctx context.Context, orderID string) (domain.Verdict, error) {
	snapshot, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		s.log.Warn("order snapshot read failed during verification",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		return domain.VerdictUnpaid, nil
	}
	if snapshot.OrderStatus == orderapi.OrderStatusCancelled {
		return domain.VerdictCancelled, nil
	}
	if snapshot.PaymentStatus.Settled() {
		return domain.VerdictPaymentSuccessful, nil
	}
	return domain.VerdictUnpaid, nil
}

func (s *Service) submitProof(ctx context.Context, orderID string, attempt domain.VerificationAttempt) (domain.Verdict, error) {
	provider, ok := adapters.ForProofKind(attempt.Proof.Kind)
	if !ok {
		return domain.VerdictUnpaid, domain.ErrInvalidProof
	}

	adapter, err := s.adapters.NewAdapter(provider, s.configs[provider])
	if err != nil {
		return domain.VerdictUnpaid, err
	}
	req, err := adapter.SettleRequest(attempt)
	if err != nil {
		return domain.VerdictUnpaid, err
	}

	verdict, err := s.orders.SettlePayment(ctx, orderID, req)
	if err != nil {
		// The order service rejecting a duplicate settlement means the
		// payment already stands; surfacing it as failure would lie to
		// the user.
		if errors.Is(err, orderapi.ErrAlreadyPaid) {
			return domain.VerdictAlreadyPaid, nil
		}
		s.log.Warn("settlement submission failed",
			zap.String("order_id", orderID),
			zap.String("provider", provider),
			zap.Int("attempt", attempt.AttemptNumber),
			zap.Error(err),
		)
		return domain.VerdictUnpaid, nil
	}

	return domain.VerdictFromSettle(verdict), nil
}
