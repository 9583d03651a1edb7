package observability

import (
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"

	"github.com/Tijo-11/Vector-Ecom-sub001/internal/observability/metrics"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/observability/tracing"
)

func provideMetricsConfig(cfg Config) metrics.Config {
	return metrics.Config{
		Enabled:          cfg.OtelEnabled,
		ExporterEndpoint: cfg.OtelExporterEndpoint,
		ExporterProtocol: cfg.OtelExporterProtocol,
		ServiceName:      cfg.ServiceName,
		Environment:      cfg.Environment,
	}
}

func provideTracingConfig(cfg Config) tracing.Config {
	return tracing.Config{
		Enabled:          cfg.OtelEnabled,
		ExporterEndpoint: cfg.OtelExporterEndpoint,
		ExporterProtocol: cfg.OtelExporterProtocol,
		ServiceName:      cfg.ServiceName,
		ServiceVersion:   cfg.Version,
		Environment:      cfg.Environment,
	}
}

var Module = fx.Module("observability",
	fx.Provide(
		LoadConfig,
		provideMetricsConfig,
		provideTracingConfig,
		metrics.NewProvider,
		metrics.New,
		tracing.NewTracerProvider,
	),
	// Tracing must be registered globally before the first database use.
	fx.Invoke(func(trace.TracerProvider) {}),
)
