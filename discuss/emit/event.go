package emit

// Event represents an observability event emitted during a discussion.
//
// Events cover the discussion lifecycle: session start/end, round open and
// close, individual provider results, quorum failures and mode fallbacks.
type Event struct {
	// SessionID identifies the discussion that emitted this event.
	SessionID string

	// Round is the round index the event belongs to (0-based).
	// Negative for session-level events (start, done, failed).
	Round int

	// Provider identifies which provider the event concerns.
	// Empty for round- and session-level events.
	Provider string

	// Msg is the event name, one of the Msg* constants.
	Msg string

	// Meta contains additional structured data specific to this event.
	// Common keys:
	//   - "duration_ms": call duration in milliseconds
	//   - "status": recorded response status
	//   - "error": failure details
	//   - "mode": discussion mode
	//   - "ok": successful response count for a round
	Meta map[string]interface{}
}

// Event names emitted by the orchestrator and collector.
const (
	MsgDiscussionStart  = "discussion_start"
	MsgDiscussionDone   = "discussion_done"
	MsgDiscussionFailed = "discussion_failed"
	MsgRoundStart       = "round_start"
	MsgRoundClosed      = "round_closed"
	MsgProviderResult   = "provider_result"
	MsgQuorumFailed     = "quorum_failed"
	MsgFallback         = "fallback"
	MsgAggregated       = "aggregated"
)
