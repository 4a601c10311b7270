// Package discuss implements the discussion orchestrator: it fans a paper's
// text out to the active AI providers, optionally runs a critique/revision
// loop across them, and hands the final round to the consensus aggregator.
package discuss

import (
	"fmt"
	"sort"
	"time"
)

// Mode selects the discussion protocol depth.
type Mode string

const (
	// ModeSimple runs one analysis round and aggregates it directly.
	ModeSimple Mode = "simple"

	// ModeDeep runs an analysis round, a cross-critique round, and a
	// revision round, and aggregates the revision round.
	ModeDeep Mode = "deep"
)

// Rounds returns the fixed round count for the mode.
func (m Mode) Rounds() int {
	if m == ModeDeep {
		return 3
	}
	return 1
}

// ParseMode converts a string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSimple, ModeDeep:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q (want %q or %q)", s, ModeSimple, ModeDeep)
}

// Status classifies the outcome of one provider call within a round.
type Status string

const (
	// StatusOK marks a successful answer.
	StatusOK Status = "ok"

	// StatusTimeout marks a call cancelled by the per-call timeout or the
	// round deadline.
	StatusTimeout Status = "timeout"

	// StatusError marks a backend-reported failure (rate limit, malformed
	// response, auth failure, ...).
	StatusError Status = "error"

	// StatusUnavailable marks a provider excluded before the call was made.
	StatusUnavailable Status = "unavailable"
)

// Response is one provider's recorded outcome for one round.
type Response struct {
	// Provider is the answering provider's name.
	Provider string

	// Round is the round index this response belongs to (0-based).
	Round int

	// Content is the answer text. Empty unless Status is StatusOK.
	Content string

	// Claims is the provider-supplied structured claim list, when the
	// backend returned one.
	Claims []string

	// Status classifies the call outcome.
	Status Status

	// Err holds the failure description for non-OK statuses.
	Err string

	// Critiqued marks answers that went through the critique/revision
	// loop. Round-0 answers carried forward for providers without the
	// critique capability keep it false.
	Critiqued bool

	// TokensUsed is the reported external quota consumed by the call.
	TokensUsed int

	// Timestamp records when the response was recorded.
	Timestamp time.Time
}

// OK reports whether the response carries a usable answer.
func (r Response) OK() bool {
	return r.Status == StatusOK
}

// Round is one synchronized batch of provider calls sharing the same
// request shape and deadline.
//
// A Round holds at most one response per provider and becomes immutable
// once closed. Rounds are built by the collector under its own lock; the
// Round type itself is not safe for concurrent mutation.
type Round struct {
	index     int
	responses map[string]Response
	closed    bool
}

// NewRound creates an open round with the given index.
func NewRound(index int) *Round {
	return &Round{
		index:     index,
		responses: make(map[string]Response),
	}
}

// Index returns the round's position in the discussion (0-based).
func (r *Round) Index() int { return r.index }

// Add records a provider's response. It fails on a closed round and on a
// second response for the same provider.
func (r *Round) Add(resp Response) error {
	if r.closed {
		return ErrRoundClosed
	}
	if _, dup := r.responses[resp.Provider]; dup {
		return fmt.Errorf("%w: provider %s round %d", ErrDuplicateResponse, resp.Provider, r.index)
	}
	r.responses[resp.Provider] = resp
	return nil
}

// Close seals the round. Further Add calls fail.
func (r *Round) Close() { r.closed = true }

// Closed reports whether the round has been sealed.
func (r *Round) Closed() bool { return r.closed }

// Response returns the recorded response for a provider, if any.
func (r *Round) Response(providerName string) (Response, bool) {
	resp, ok := r.responses[providerName]
	return resp, ok
}

// Responses returns all recorded responses sorted by provider name.
// The slice is a copy; the round stays immutable.
func (r *Round) Responses() []Response {
	out := make([]Response, 0, len(r.responses))
	for _, resp := range r.responses {
		out = append(out, resp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Provider < out[j].Provider })
	return out
}

// Statuses returns the per-provider status map, for diagnostics.
func (r *Round) Statuses() map[string]Status {
	out := make(map[string]Status, len(r.responses))
	for name, resp := range r.responses {
		out[name] = resp.Status
	}
	return out
}

// CountOK returns the number of successful responses in the round.
func (r *Round) CountOK() int {
	n := 0
	for _, resp := range r.responses {
		if resp.OK() {
			n++
		}
	}
	return n
}

// Len returns the number of recorded responses.
func (r *Round) Len() int { return len(r.responses) }

// Discussion is the ordered, append-only sequence of rounds for one
// analysis session. It has a single writer (the round controller) and is
// read-only once handed to the aggregator.
type Discussion struct {
	sessionID string
	mode      Mode
	rounds    []*Round
}

// NewDiscussion creates an empty discussion for one session.
func NewDiscussion(sessionID string, mode Mode) *Discussion {
	return &Discussion{sessionID: sessionID, mode: mode}
}

// SessionID returns the session identifier.
func (d *Discussion) SessionID() string { return d.sessionID }

// Mode returns the discussion mode.
func (d *Discussion) Mode() Mode { return d.mode }

// Append adds a closed round. Open rounds are rejected so later stages
// never observe a partially populated round.
func (d *Discussion) Append(r *Round) error {
	if !r.Closed() {
		return ErrRoundOpen
	}
	d.rounds = append(d.rounds, r)
	return nil
}

// Len returns the number of rounds recorded so far.
func (d *Discussion) Len() int { return len(d.rounds) }

// RoundAt returns the round at the given index, or nil if out of range.
func (d *Discussion) RoundAt(i int) *Round {
	if i < 0 || i >= len(d.rounds) {
		return nil
	}
	return d.rounds[i]
}

// Final returns the last recorded round, or nil if none.
func (d *Discussion) Final() *Round {
	if len(d.rounds) == 0 {
		return nil
	}
	return d.rounds[len(d.rounds)-1]
}
