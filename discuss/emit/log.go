package emit

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
)

// LogEmitter implements Emitter by writing structured log output to a
// writer.
//
// Supports two output modes:
//   - Text mode (default): human-readable key=value lines
//   - JSON mode: one JSON object per line (JSONL)
//
// Example text output:
//
//	[round_start] session=d8f1 round=0
//	[provider_result] session=d8f1 round=0 provider=openai meta={"status":"ok"}
//
// Example JSON output:
//
//	{"sessionID":"d8f1","round":0,"provider":"openai","msg":"provider_result","meta":{"status":"ok"}}
type LogEmitter struct {
	mu       sync.Mutex
	writer   io.Writer
	jsonMode bool
}

// NewLogEmitter creates a LogEmitter writing to the given writer.
// A nil writer defaults to os.Stdout. jsonMode selects JSONL output.
func NewLogEmitter(writer io.Writer, jsonMode bool) *LogEmitter {
	if writer == nil {
		writer = os.Stdout
	}
	return &LogEmitter{writer: writer, jsonMode: jsonMode}
}

// Emit writes one event in the configured format.
func (l *LogEmitter) Emit(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.jsonMode {
		l.emitJSON(event)
		return
	}
	l.emitText(event)
}

func (l *LogEmitter) emitJSON(event Event) {
	data, err := json.Marshal(struct {
		SessionID string                 `json:"sessionID"`
		Round     int                    `json:"round"`
		Provider  string                 `json:"provider,omitempty"`
		Msg       string                 `json:"msg"`
		Meta      map[string]interface{} `json:"meta,omitempty"`
	}{
		SessionID: event.SessionID,
		Round:     event.Round,
		Provider:  event.Provider,
		Msg:       event.Msg,
		Meta:      event.Meta,
	})
	if err != nil {
		fmt.Fprintf(l.writer, "{\"error\":\"failed to marshal event: %v\"}\n", err)
		return
	}
	fmt.Fprintf(l.writer, "%s\n", data)
}

func (l *LogEmitter) emitText(event Event) {
	fmt.Fprintf(l.writer, "[%s] session=%s round=%d", event.Msg, event.SessionID, event.Round)
	if event.Provider != "" {
		fmt.Fprintf(l.writer, " provider=%s", event.Provider)
	}
	if len(event.Meta) > 0 {
		if metaJSON, err := json.Marshal(event.Meta); err == nil {
			fmt.Fprintf(l.writer, " meta=%s", metaJSON)
		} else {
			fmt.Fprintf(l.writer, " meta=%v", event.Meta)
		}
	}
	fmt.Fprintln(l.writer)
}
