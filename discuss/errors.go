package discuss

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrRoundClosed indicates an attempt to record a response on a sealed
// round. Rounds are immutable once closed.
var ErrRoundClosed = errors.New("round is closed")

// ErrRoundOpen indicates an attempt to append a round that has not been
// closed yet. Discussions only ever hold closed rounds.
var ErrRoundOpen = errors.New("round is still open")

// ErrDuplicateResponse indicates a second response for the same provider
// within one round.
var ErrDuplicateResponse = errors.New("duplicate response")

// ErrEmptyText indicates a discussion request with no paper text.
var ErrEmptyText = errors.New("paper text is empty")

// QuorumError is the fatal failure raised when a round that requires quorum
// finishes with fewer than two successful responses. It carries the partial
// round's per-provider statuses for diagnostics.
type QuorumError struct {
	// Round is the index of the failing round.
	Round int

	// Statuses maps provider name to its recorded status in that round.
	Statuses map[string]Status
}

// Error lists the failing providers and their individual statuses.
func (e *QuorumError) Error() string {
	names := make([]string, 0, len(e.Statuses))
	for name := range e.Statuses {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	fmt.Fprintf(&sb, "quorum not met in round %d:", e.Round)
	for _, name := range names {
		fmt.Fprintf(&sb, " %s=%s", name, e.Statuses[name])
	}
	return sb.String()
}
