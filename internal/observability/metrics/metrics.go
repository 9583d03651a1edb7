package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	reconciliations       metric.Int64Counter
	reconcileAttempts     metric.Int64Histogram
	verifications         metric.Int64Counter
	cartItemsDrained      metric.Int64Counter
	cartItemDrainFailures metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	return provider, nil
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	ctx := context.Background()
	switch protocol {
	case "http", "http/protobuf":
		return otlpmetrichttp.New(ctx,
			otlpmetrichttp.WithEndpoint(endpoint),
			otlpmetrichttp.WithInsecure(),
		)
	case "", "grpc":
		return otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(endpoint),
			otlpmetricgrpc.WithInsecure(),
		)
	default:
		return nil, fmt.Errorf("unsupported otlp protocol %q", protocol)
	}
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "vector-ecom"
	}
	meter := provider.Meter(name)

	reconciliations, err := meter.Int64Counter("vectorecom_reconciliations_total")
	if err != nil {
		return nil, err
	}
	reconcileAttempts, err := meter.Int64Histogram("vectorecom_reconcile_attempts")
	if err != nil {
		return nil, err
	}
	verifications, err := meter.Int64Counter("vectorecom_payment_verifications_total")
	if err != nil {
		return nil, err
	}
	cartItemsDrained, err := meter.Int64Counter("vectorecom_cart_items_drained_total")
	if err != nil {
		return nil, err
	}
	cartItemDrainFailures, err := meter.Int64Counter("vectorecom_cart_item_drain_failures_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		reconciliations:       reconciliations,
		reconcileAttempts:     reconcileAttempts,
		verifications:         verifications,
		cartItemsDrained:      cartItemsDrained,
		cartItemDrainFailures: cartItemDrainFailures,
	}, nil
}

// RecordReconciliation counts a finished run by terminal state.
func (m *Metrics) RecordReconciliation(ctx context.Context, state string, attempts int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("state", strings.TrimSpace(state)))
	m.reconciliations.Add(ctx, 1, attrs)
	m.reconcileAttempts.Record(ctx, int64(attempts), attrs)
}

// RecordVerification counts one verification attempt by proof kind.
func (m *Metrics) RecordVerification(ctx context.Context, proofKind string) {
	if m == nil {
		return
	}
	m.verifications.Add(ctx, 1, metric.WithAttributes(
		attribute.String("proof_kind", strings.TrimSpace(proofKind)),
	))
}

// RecordCartDrain counts drained and failed cart items.
func (m *Metrics) RecordCartDrain(ctx context.Context, deleted, failed int) {
	if m == nil {
		return
	}
	if deleted > 0 {
		m.cartItemsDrained.Add(ctx, int64(deleted))
	}
	if failed > 0 {
		m.cartItemDrainFailures.Add(ctx, int64(failed))
	}
}
