package emit

import "sync"

// BufferedEmitter implements Emitter by storing events in memory.
//
// Events are organized by session for retrieval and filtering. This emitter
// is intended for tests, debugging and dashboards; it grows without bound,
// so production deployments with long-lived processes should Clear sessions
// they are done with.
//
// Example:
//
//	emitter := emit.NewBufferedEmitter()
//	// ... run a discussion with it ...
//	timeouts := emitter.HistoryWithFilter(sessionID, emit.HistoryFilter{Msg: emit.MsgProviderResult})
type BufferedEmitter struct {
	mu     sync.RWMutex
	events map[string][]Event // sessionID -> events
}

// HistoryFilter specifies criteria for filtering captured events.
// All fields are optional and combine with AND logic.
type HistoryFilter struct {
	// Provider filters by provider name (empty = no filter).
	Provider string

	// Msg filters by event name (empty = no filter).
	Msg string

	// Round filters by round index (nil = no filter).
	Round *int
}

// NewBufferedEmitter creates an empty BufferedEmitter.
func NewBufferedEmitter() *BufferedEmitter {
	return &BufferedEmitter{events: make(map[string][]Event)}
}

// Emit stores the event under its session ID.
func (b *BufferedEmitter) Emit(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events[event.SessionID] = append(b.events[event.SessionID], event)
}

// History returns all events captured for a session, in emission order.
func (b *BufferedEmitter) History(sessionID string) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	events := b.events[sessionID]
	out := make([]Event, len(events))
	copy(out, events)
	return out
}

// HistoryWithFilter returns the session's events matching the filter, in
// emission order.
func (b *BufferedEmitter) HistoryWithFilter(sessionID string, filter HistoryFilter) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []Event
	for _, ev := range b.events[sessionID] {
		if filter.Provider != "" && ev.Provider != filter.Provider {
			continue
		}
		if filter.Msg != "" && ev.Msg != filter.Msg {
			continue
		}
		if filter.Round != nil && ev.Round != *filter.Round {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// Clear removes all events for one session. An empty sessionID clears
// everything.
func (b *BufferedEmitter) Clear(sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sessionID == "" {
		b.events = make(map[string][]Event)
		return
	}
	delete(b.events, sessionID)
}
