package telemetry

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// installExporter routes spans to an in-memory exporter for the duration of
// the test.
func installExporter(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return exporter
}

func TestInitTracingDisabledWithoutEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	shutdown, err := InitTracing("test-service", "0.0.0")
	if err != nil {
		t.Fatalf("InitTracing: %v", err)
	}
	shutdown()
	if IsTracingEnabled() {
		t.Error("tracing reported enabled without an endpoint")
	}
}

func TestStartSpanCarriesCorrelation(t *testing.T) {
	exporter := installExporter(t)

	ctx := WithCorrelation(context.Background(), "sess-1")
	_, span := StartSpan(ctx, "test", "op", attribute.String("k", "v"))
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("exported %d spans, want 1", len(spans))
	}
	got := spans[0]
	if got.Name != "op" {
		t.Errorf("span name = %q, want %q", got.Name, "op")
	}
	var corr, custom bool
	for _, a := range got.Attributes {
		if a.Key == "correlation_id" && a.Value.AsString() == "sess-1" {
			corr = true
		}
		if a.Key == "k" && a.Value.AsString() == "v" {
			custom = true
		}
	}
	if !corr {
		t.Error("span missing correlation_id attribute")
	}
	if !custom {
		t.Error("span missing caller-supplied attribute")
	}
}

func TestRecordErrorSetsStatus(t *testing.T) {
	exporter := installExporter(t)

	_, span := StartSpan(context.Background(), "test", "op")
	RecordError(span, errors.New("boom"))
	RecordError(span, nil)
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("exported %d spans, want 1", len(spans))
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("status = %v, want %v", spans[0].Status.Code, codes.Error)
	}
	if spans[0].Status.Description != "boom" {
		t.Errorf("status description = %q", spans[0].Status.Description)
	}
}
