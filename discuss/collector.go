package discuss

import (
	"context"
	"errors"
	"time"

	"github.com/QCWLTF/consensus-Ai/discuss/emit"
	"github.com/QCWLTF/consensus-Ai/discuss/provider"
)

// Default collector deadlines, used when the caller passes zero values.
const (
	DefaultPerCallTimeout = 60 * time.Second
	DefaultRoundDeadline  = 2 * time.Minute
)

// Task is one provider call scheduled into a round. Invoke wraps the
// concrete adapter method (Analyze or Critique) with its request already
// bound, so the collector stays agnostic of the round kind.
type Task struct {
	Provider provider.Provider
	Invoke   func(ctx context.Context) (provider.Result, error)
}

// Collector fans a round's tasks out to all providers concurrently and
// assembles the closed round snapshot.
//
// Each call runs as an independent goroutine under two deadlines: a
// per-call timeout and the round deadline. Results are recorded as they
// return; any call still outstanding when the round deadline elapses is
// cancelled cooperatively and recorded with StatusTimeout. The returned
// Round is closed before the collector hands it back, so callers never
// observe a partially populated round. The collector never retries.
type Collector struct {
	perCallTimeout time.Duration
	roundDeadline  time.Duration
	emitter        emit.Emitter
	metrics        *Metrics
}

// NewCollector creates a collector with the given deadlines. Zero or
// negative values fall back to DefaultPerCallTimeout and
// DefaultRoundDeadline. A nil emitter defaults to the null emitter;
// metrics may be nil.
func NewCollector(perCallTimeout, roundDeadline time.Duration, emitter emit.Emitter, metrics *Metrics) *Collector {
	if perCallTimeout <= 0 {
		perCallTimeout = DefaultPerCallTimeout
	}
	if roundDeadline <= 0 {
		roundDeadline = DefaultRoundDeadline
	}
	if emitter == nil {
		emitter = emit.NewNullEmitter()
	}
	return &Collector{
		perCallTimeout: perCallTimeout,
		roundDeadline:  roundDeadline,
		emitter:        emitter,
		metrics:        metrics,
	}
}

// Collect runs all tasks concurrently and returns the closed round.
//
// The round records exactly one response per task provider: the call's
// answer, its classified failure, or StatusTimeout if the round deadline
// passed first. Collect returns as soon as every call has returned or the
// deadline has elapsed, whichever comes first; it never blocks past the
// deadline on an unresponsive provider.
func (c *Collector) Collect(ctx context.Context, sessionID string, roundIndex int, tasks []Task) *Round {
	round := NewRound(roundIndex)
	if len(tasks) == 0 {
		round.Close()
		return round
	}

	c.emitter.Emit(emit.Event{
		SessionID: sessionID,
		Round:     roundIndex,
		Msg:       emit.MsgRoundStart,
		Meta:      map[string]interface{}{"providers": len(tasks)},
	})

	roundCtx, cancel := context.WithTimeout(ctx, c.roundDeadline)
	defer cancel()

	results := make(chan Response, len(tasks))
	for _, task := range tasks {
		go c.runTask(roundCtx, roundIndex, task, results)
	}

	pending := make(map[string]bool, len(tasks))
	for _, task := range tasks {
		pending[task.Provider.Name()] = true
	}

	for len(pending) > 0 {
		select {
		case resp := <-results:
			delete(pending, resp.Provider)
			_ = round.Add(resp)
			c.emitResult(sessionID, resp)
		case <-roundCtx.Done():
			// Deadline elapsed: record every outstanding call as a
			// timeout. The shared roundCtx cancels the stragglers; quota
			// already spent is not recoverable.
			for name := range pending {
				resp := Response{
					Provider:  name,
					Round:     roundIndex,
					Status:    StatusTimeout,
					Err:       "round deadline exceeded",
					Timestamp: time.Now(),
				}
				_ = round.Add(resp)
				c.emitResult(sessionID, resp)
			}
			pending = nil
		}
	}

	round.Close()
	c.emitter.Emit(emit.Event{
		SessionID: sessionID,
		Round:     roundIndex,
		Msg:       emit.MsgRoundClosed,
		Meta:      map[string]interface{}{"ok": round.CountOK(), "total": round.Len()},
	})
	return round
}

// runTask executes one provider call under the per-call timeout and sends
// its recorded response.
func (c *Collector) runTask(roundCtx context.Context, roundIndex int, task Task, results chan<- Response) {
	name := task.Provider.Name()
	start := time.Now()
	c.metrics.CallStarted()

	callCtx, cancelCall := context.WithTimeout(roundCtx, c.perCallTimeout)
	defer cancelCall()

	result, err := task.Invoke(callCtx)
	elapsed := time.Since(start)

	resp := Response{
		Provider:   name,
		Round:      roundIndex,
		Timestamp:  time.Now(),
		TokensUsed: result.TokensUsed,
	}
	switch {
	case err == nil:
		resp.Status = StatusOK
		resp.Content = result.Content
		resp.Claims = result.Claims
	default:
		resp.Status = classifyCallError(err)
		resp.Err = err.Error()
	}

	c.metrics.CallFinished(name, resp.Status, elapsed)
	results <- resp
}

// classifyCallError maps a call failure onto a response status. Deadline
// and cancellation failures count as timeouts; everything else is a
// backend error.
func classifyCallError(err error) Status {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return StatusTimeout
	}
	var provErr *provider.Error
	if errors.As(err, &provErr) && provErr.Code == "timeout" {
		return StatusTimeout
	}
	return StatusError
}

func (c *Collector) emitResult(sessionID string, resp Response) {
	meta := map[string]interface{}{"status": string(resp.Status)}
	if resp.Err != "" {
		meta["error"] = resp.Err
	}
	c.emitter.Emit(emit.Event{
		SessionID: sessionID,
		Round:     resp.Round,
		Provider:  resp.Provider,
		Msg:       emit.MsgProviderResult,
		Meta:      meta,
	})
}
