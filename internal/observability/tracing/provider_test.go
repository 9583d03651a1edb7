package tracing

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewTracerProviderDisabled(t *testing.T) {
	provider, err := NewTracerProvider(nil, Config{Enabled: false}, nil)
	if err != nil {
		t.Fatalf("NewTracerProvider: %v", err)
	}
	if provider == nil {
		t.Fatalf("expected a provider when tracing is disabled")
	}

	_, span := provider.Tracer("test").Start(t.Context(), "noop")
	span.End()
}

func TestNewTracerProviderRejectsUnknownProtocol(t *testing.T) {
	_, err := NewTracerProvider(nil, Config{
		Enabled:          true,
		ExporterEndpoint: "localhost:4317",
		ExporterProtocol: "carrier-pigeon",
	}, nil)
	if err == nil {
		t.Fatalf("expected error for unsupported protocol")
	}
}

func TestGinMiddlewareRecordsSpans(t *testing.T) {
	gin.SetMode(gin.TestMode)

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	r := gin.New()
	r.Use(GinMiddleware(provider))
	r.GET("/orders/:order_id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/orders/42", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if got := spans[0].Name(); got != "HTTP GET /orders/:order_id" {
		t.Fatalf("unexpected span name %q", got)
	}

	var route string
	var status int64
	for _, attr := range spans[0].Attributes() {
		switch string(attr.Key) {
		case "http.route":
			route = attr.Value.AsString()
		case "http.status_code":
			status = attr.Value.AsInt64()
		}
	}
	if route != "/orders/:order_id" {
		t.Fatalf("unexpected http.route %q", route)
	}
	if status != http.StatusOK {
		t.Fatalf("unexpected http.status_code %d", status)
	}
}
