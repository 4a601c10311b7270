package emit

// NullEmitter implements Emitter by discarding all events.
//
// Use it when event output is not wanted; it is the default emitter for
// orchestrators constructed without one.
type NullEmitter struct{}

// NewNullEmitter creates a NullEmitter. Safe for concurrent use, zero
// overhead.
func NewNullEmitter() *NullEmitter {
	return &NullEmitter{}
}

// Emit discards the event.
func (n *NullEmitter) Emit(event Event) {}
