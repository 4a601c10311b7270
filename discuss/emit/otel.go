package emit

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OTelEmitter implements Emitter by creating one OpenTelemetry span per
// event.
//
// Each span carries:
//   - Name: event.Msg (e.g. "round_start", "provider_result")
//   - Attributes: session ID, round, provider, and all Meta fields
//   - Status: error when event.Meta["error"] is present
//
// Spans are ended immediately; events represent points in time, and call
// durations travel as the "duration_ms" attribute rather than span length.
//
// Usage:
//
//	tracer := otel.Tracer("consensus-ai")
//	emitter := emit.NewOTelEmitter(tracer)
func NewOTelEmitter(tracer trace.Tracer) *OTelEmitter {
	return &OTelEmitter{tracer: tracer}
}

// OTelEmitter turns discussion events into OpenTelemetry spans.
type OTelEmitter struct {
	tracer trace.Tracer
}

// Emit creates and ends a span for the event.
func (o *OTelEmitter) Emit(event Event) {
	_, span := o.tracer.Start(context.Background(), event.Msg)
	defer span.End()

	span.SetAttributes(
		attribute.String("session_id", event.SessionID),
		attribute.Int("round", event.Round),
	)
	if event.Provider != "" {
		span.SetAttributes(attribute.String("provider", event.Provider))
	}

	for key, value := range event.Meta {
		switch v := value.(type) {
		case string:
			span.SetAttributes(attribute.String(key, v))
		case int:
			span.SetAttributes(attribute.Int(key, v))
		case int64:
			span.SetAttributes(attribute.Int64(key, v))
		case float64:
			span.SetAttributes(attribute.Float64(key, v))
		case bool:
			span.SetAttributes(attribute.Bool(key, v))
		default:
			span.SetAttributes(attribute.String(key, fmt.Sprintf("%v", v)))
		}
	}

	if errMsg, ok := event.Meta["error"].(string); ok {
		span.SetStatus(codes.Error, errMsg)
		span.RecordError(fmt.Errorf("%s", errMsg))
	}
}
