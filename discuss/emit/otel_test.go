package emit

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestTracer(t *testing.T) (*tracetest.InMemoryExporter, *OTelEmitter) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return exporter, NewOTelEmitter(tp.Tracer("test"))
}

func attributeMap(attrs []attribute.KeyValue) map[string]interface{} {
	out := make(map[string]interface{}, len(attrs))
	for _, kv := range attrs {
		out[string(kv.Key)] = kv.Value.AsInterface()
	}
	return out
}

func TestOTelEmitter_Emit(t *testing.T) {
	exporter, emitter := newTestTracer(t)

	emitter.Emit(Event{
		SessionID: "s1",
		Round:     0,
		Provider:  "openai",
		Msg:       MsgProviderResult,
		Meta: map[string]interface{}{
			"status":      "ok",
			"duration_ms": int64(420),
		},
	})

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(spans))
	}
	span := spans[0]

	if span.Name != MsgProviderResult {
		t.Errorf("span name = %q, want %q", span.Name, MsgProviderResult)
	}

	attrs := attributeMap(span.Attributes)
	if got := attrs["session_id"]; got != "s1" {
		t.Errorf("session_id = %v, want s1", got)
	}
	if got := attrs["round"]; got != int64(0) {
		t.Errorf("round = %v, want 0", got)
	}
	if got := attrs["provider"]; got != "openai" {
		t.Errorf("provider = %v, want openai", got)
	}
	if got := attrs["status"]; got != "ok" {
		t.Errorf("status = %v, want ok", got)
	}
	if got := attrs["duration_ms"]; got != int64(420) {
		t.Errorf("duration_ms = %v, want 420", got)
	}
}

func TestOTelEmitter_ErrorStatus(t *testing.T) {
	exporter, emitter := newTestTracer(t)

	emitter.Emit(Event{
		SessionID: "s1",
		Round:     0,
		Provider:  "google",
		Msg:       MsgProviderResult,
		Meta:      map[string]interface{}{"error": "rate limit exceeded"},
	})

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(spans))
	}
	if got := spans[0].Status.Code; got != codes.Error {
		t.Errorf("status code = %v, want Error", got)
	}
	if got := spans[0].Status.Description; got != "rate limit exceeded" {
		t.Errorf("status description = %q", got)
	}
}

func TestOTelEmitter_SkipsOptionalAttributes(t *testing.T) {
	exporter, emitter := newTestTracer(t)

	emitter.Emit(Event{SessionID: "s1", Round: -1, Msg: MsgDiscussionStart})

	attrs := attributeMap(exporter.GetSpans()[0].Attributes)
	if _, ok := attrs["provider"]; ok {
		t.Error("session-level event should not carry a provider attribute")
	}
	if got := attrs["round"]; got != int64(-1) {
		t.Errorf("round = %v, want -1", got)
	}
}
