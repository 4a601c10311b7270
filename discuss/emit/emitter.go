// Package emit provides observability events for discussion execution.
package emit

// Emitter receives and processes observability events from a discussion.
//
// Emitters enable pluggable observability backends:
//   - Logging: stdout, files
//   - Distributed tracing: OpenTelemetry
//   - In-memory capture for tests and dashboards
//
// Implementations should be:
//   - Non-blocking: never slow down a round
//   - Thread-safe: concurrent provider calls emit concurrently
//   - Resilient: failures must not crash the discussion
type Emitter interface {
	// Emit sends an observability event to the configured backend.
	// Emit must not panic; errors are handled internally.
	Emit(event Event)
}
