package discuss

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/QCWLTF/consensus-Ai/discuss/consensus"
	"github.com/QCWLTF/consensus-Ai/discuss/critique"
	"github.com/QCWLTF/consensus-Ai/discuss/emit"
	"github.com/QCWLTF/consensus-Ai/discuss/provider"
	"github.com/QCWLTF/consensus-Ai/discuss/store"
)

// Quorum is the minimum number of successful responses a round needs when
// more than one provider is active. With a single active provider the
// quorum degenerates to one.
const Quorum = 2

// State is the lifecycle phase of one discussion run.
type State string

const (
	StateIdle               State = "idle"
	StateCollectingInitial  State = "collecting_initial"
	StateCollectingCritique State = "collecting_critique"
	StateSynthesizing       State = "synthesizing"
	StateDone               State = "done"
	StateFailed             State = "failed"
)

// Request describes one paper analysis.
type Request struct {
	// Text is the paper text to analyze. Required.
	Text string

	// Question focuses the analysis. Empty selects the default question.
	Question string

	// Mode selects the protocol depth. Empty selects ModeSimple.
	Mode Mode

	// SessionID identifies the discussion. Empty generates a UUID.
	SessionID string
}

// Orchestrator runs the full discussion protocol: fan-out analysis,
// optional critique and revision rounds, and consensus aggregation.
//
// An Orchestrator is immutable after construction and safe for concurrent
// use; each Run carries its own session state.
type Orchestrator struct {
	registry       *provider.Registry
	collector      *Collector
	critic         critique.Engine
	aggregator     *consensus.Aggregator
	emitter        emit.Emitter
	metrics        *Metrics
	store          store.Store
	perCallTimeout time.Duration
	roundDeadline  time.Duration
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithEmitter sets the observability emitter. Defaults to the null emitter.
func WithEmitter(e emit.Emitter) Option {
	return func(o *Orchestrator) { o.emitter = e }
}

// WithMetrics attaches Prometheus metrics. Defaults to none.
func WithMetrics(m *Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithStore attaches a result archive. Each finished discussion is saved
// under its session ID. Save failures degrade to a result warning; they
// never fail the discussion. Defaults to no persistence.
func WithStore(s store.Store) Option {
	return func(o *Orchestrator) { o.store = s }
}

// WithTimeouts overrides the per-call timeout and the round deadline.
// Zero values keep the defaults.
func WithTimeouts(perCall, round time.Duration) Option {
	return func(o *Orchestrator) {
		o.perCallTimeout = perCall
		o.roundDeadline = round
	}
}

// WithSimilarityThreshold overrides the claim clustering threshold.
func WithSimilarityThreshold(t float64) Option {
	return func(o *Orchestrator) { o.aggregator = consensus.NewAggregator(t) }
}

// NewOrchestrator creates an orchestrator over the registry's active
// providers.
func NewOrchestrator(registry *provider.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry:   registry,
		critic:     critique.NewEngine(),
		aggregator: consensus.NewAggregator(consensus.DefaultSimilarityThreshold),
		emitter:    emit.NewNullEmitter(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.collector = NewCollector(o.perCallTimeout, o.roundDeadline, o.emitter, o.metrics)
	return o
}

// run is the mutable state of one discussion execution.
type run struct {
	sessionID  string
	mode       Mode
	text       string
	question   string
	state      State
	discussion *Discussion
	warnings   []string
}

func (r *run) warn(format string, args ...interface{}) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

// Run executes one full discussion and returns the aggregated result.
//
// Simple mode runs a single analysis round. Deep mode runs analysis,
// cross-critique, and revision rounds, aggregating the revision round;
// providers without the critique capability contribute their initial
// analysis unchanged. Run fails only when no usable discussion can be
// produced at all: empty input, or the initial round finishing below
// quorum. Later-round failures degrade to warnings and fall back to the
// initial round.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*consensus.Result, error) {
	r := &run{
		sessionID: req.SessionID,
		mode:      req.Mode,
		text:      strings.TrimSpace(req.Text),
		question:  strings.TrimSpace(req.Question),
		state:     StateIdle,
	}
	if r.text == "" {
		return nil, ErrEmptyText
	}
	if r.sessionID == "" {
		r.sessionID = uuid.NewString()
	}
	if r.question == "" {
		r.question = critique.DefaultQuestion
	}
	if r.mode == "" {
		r.mode = ModeSimple
	}
	if _, err := ParseMode(string(r.mode)); err != nil {
		return nil, err
	}

	if r.mode == ModeDeep && o.registry.Len() < 2 {
		// A single provider has nobody to debate with.
		r.mode = ModeSimple
		r.warn("only one provider available; falling back to simple mode")
		o.emitter.Emit(emit.Event{
			SessionID: r.sessionID,
			Round:     -1,
			Msg:       emit.MsgFallback,
			Meta:      map[string]interface{}{"reason": "single provider", "mode": string(r.mode)},
		})
	}

	r.discussion = NewDiscussion(r.sessionID, r.mode)
	o.emitter.Emit(emit.Event{
		SessionID: r.sessionID,
		Round:     -1,
		Msg:       emit.MsgDiscussionStart,
		Meta:      map[string]interface{}{"mode": string(r.mode), "providers": o.registry.Len()},
	})

	result, err := o.execute(ctx, r)
	if err != nil {
		r.state = StateFailed
		o.metrics.DiscussionFinished(r.mode, "failed")
		o.emitter.Emit(emit.Event{
			SessionID: r.sessionID,
			Round:     -1,
			Msg:       emit.MsgDiscussionFailed,
			Meta:      map[string]interface{}{"state": string(r.state), "error": err.Error()},
		})
		return nil, err
	}

	r.state = StateDone
	o.metrics.DiscussionFinished(r.mode, "done")
	o.emitter.Emit(emit.Event{
		SessionID: r.sessionID,
		Round:     -1,
		Msg:       emit.MsgDiscussionDone,
		Meta: map[string]interface{}{
			"rounds":    result.Rounds,
			"consensus": len(result.ConsensusClaims),
			"dissents":  len(result.Dissents),
		},
	})
	return result, nil
}

func (o *Orchestrator) execute(ctx context.Context, r *run) (*consensus.Result, error) {
	r.state = StateCollectingInitial
	initial, err := o.runAnalysisRound(ctx, r)
	if err != nil {
		return nil, err
	}

	finalRound := initial
	if r.mode == ModeDeep {
		r.state = StateCollectingCritique
		finalRound = o.runDebate(ctx, r, initial)
	}

	r.state = StateSynthesizing
	return o.synthesize(ctx, r, initial, finalRound), nil
}

// runAnalysisRound fans the paper out to every active provider. This is
// the only round whose failure is fatal: below quorum there is nothing to
// reconcile.
func (o *Orchestrator) runAnalysisRound(ctx context.Context, r *run) (*Round, error) {
	tasks := make([]Task, 0, o.registry.Len())
	for _, p := range o.registry.Active() {
		p := p
		tasks = append(tasks, Task{
			Provider: p,
			Invoke: func(ctx context.Context) (provider.Result, error) {
				return p.Analyze(ctx, provider.AnalyzeRequest{Text: r.text, Question: r.question})
			},
		})
	}

	round := o.collector.Collect(ctx, r.sessionID, 0, tasks)
	o.metrics.RoundClosed(r.mode)
	_ = r.discussion.Append(round)

	for _, resp := range round.Responses() {
		if !resp.OK() {
			r.warn("provider %s failed in round 0: %s (%s)", resp.Provider, resp.Err, resp.Status)
		}
	}

	if round.CountOK() < o.quorum() {
		o.metrics.QuorumFailed()
		o.emitter.Emit(emit.Event{
			SessionID: r.sessionID,
			Round:     0,
			Msg:       emit.MsgQuorumFailed,
			Meta:      map[string]interface{}{"ok": round.CountOK(), "need": o.quorum()},
		})
		return nil, &QuorumError{Round: 0, Statuses: round.Statuses()}
	}
	return round, nil
}

// runDebate runs the critique and revision rounds over the initial
// answers. Any failure that leaves fewer than two debaters standing
// abandons the debate and falls back to the initial round.
func (o *Orchestrator) runDebate(ctx context.Context, r *run, initial *Round) *Round {
	authors, answers := o.okCritiqueAnswers(initial)
	if len(authors) < Quorum {
		r.warn("fewer than two providers support critique; aggregated initial analyses")
		o.emitFallback(r, 1, "not enough critics")
		return initial
	}

	// Round 1: each debater critiques its peers' analyses.
	critiqueRound := o.runCritiqueRound(ctx, r, 1, o.critic.Build(r.text, r.question, authors, answers))
	survivors, critiques := okContents(critiqueRound, authors)
	for _, author := range authors {
		if resp, ok := critiqueRound.Response(author); ok && !resp.OK() {
			r.warn("provider %s dropped after round 1: %s (%s)", author, resp.Err, resp.Status)
		}
	}
	if len(survivors) < Quorum {
		r.warn("critique round finished below quorum; aggregated initial analyses")
		o.emitFallback(r, 1, "critique round below quorum")
		return initial
	}

	// Round 2: each surviving debater revises its own analysis in light of
	// the peer critiques.
	revisionReqs := make(map[string]provider.CritiqueRequest, len(survivors))
	for _, author := range survivors {
		var peers []string
		for _, peer := range survivors {
			if peer == author {
				continue
			}
			peers = append(peers, critiques[peer])
		}
		revisionReqs[author] = provider.CritiqueRequest{
			Text:          r.text,
			Question:      r.question,
			OwnResponse:   answers[author],
			PeerResponses: peers,
		}
	}
	revisionRound := o.runCritiqueRound(ctx, r, 2, revisionReqs)
	for _, author := range survivors {
		if resp, ok := revisionRound.Response(author); ok && !resp.OK() {
			r.warn("provider %s dropped after round 2: %s (%s)", author, resp.Err, resp.Status)
		}
	}
	if revisionRound.CountOK() < Quorum {
		r.warn("revision round finished below quorum; aggregated initial analyses")
		o.emitFallback(r, 2, "revision round below quorum")
		return initial
	}
	return revisionRound
}

// runCritiqueRound collects one critique-shaped round for the given
// per-author requests.
func (o *Orchestrator) runCritiqueRound(ctx context.Context, r *run, index int, reqs map[string]provider.CritiqueRequest) *Round {
	tasks := make([]Task, 0, len(reqs))
	for _, p := range o.registry.Critics() {
		req, ok := reqs[p.Name()]
		if !ok {
			continue
		}
		p, req := p, req
		tasks = append(tasks, Task{
			Provider: p,
			Invoke: func(ctx context.Context) (provider.Result, error) {
				return p.Critique(ctx, req)
			},
		})
	}

	round := o.collector.Collect(ctx, r.sessionID, index, tasks)
	o.metrics.RoundClosed(r.mode)
	_ = r.discussion.Append(round)
	return round
}

// synthesize maps the final round (plus any carried-forward initial
// answers) into the aggregator's input, in registry order, and assembles
// the result.
func (o *Orchestrator) synthesize(ctx context.Context, r *run, initial, final *Round) *consensus.Result {
	debated := final.Index() > 0

	var answers []consensus.Answer
	for _, p := range o.registry.Active() {
		name := p.Name()
		if resp, ok := final.Response(name); ok && resp.OK() {
			answers = append(answers, consensus.Answer{
				Provider:  name,
				Content:   resp.Content,
				Claims:    resp.Claims,
				Critiqued: debated,
			})
			continue
		}
		if !debated || provider.Has(p, provider.CapCritique) {
			continue
		}
		// Analysis-only providers keep their seat at the table with their
		// unrevised initial answer.
		if resp, ok := initial.Response(name); ok && resp.OK() {
			answers = append(answers, consensus.Answer{
				Provider: name,
				Content:  resp.Content,
				Claims:   resp.Claims,
			})
		}
	}

	result := o.aggregator.Aggregate(r.sessionID, string(r.mode), r.discussion.Len(), answers, r.warnings)
	o.emitter.Emit(emit.Event{
		SessionID: r.sessionID,
		Round:     final.Index(),
		Msg:       emit.MsgAggregated,
		Meta: map[string]interface{}{
			"contributors": len(result.Contributors),
			"consensus":    len(result.ConsensusClaims),
			"dissents":     len(result.Dissents),
		},
	})

	o.archive(ctx, r, result)
	return result
}

// archive persists the finished result when a store is configured.
func (o *Orchestrator) archive(ctx context.Context, r *run, result *consensus.Result) {
	if o.store == nil {
		return
	}
	payload, err := json.Marshal(result)
	if err == nil {
		err = o.store.SaveResult(ctx, store.Record{
			SessionID: r.sessionID,
			Mode:      string(r.mode),
			Rounds:    result.Rounds,
			Result:    payload,
			CreatedAt: time.Now().UTC(),
		})
	}
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("failed to archive result: %v", err))
	}
}

// okCritiqueAnswers returns the critique-capable providers that answered
// the round successfully, in registry order, with their contents.
func (o *Orchestrator) okCritiqueAnswers(round *Round) ([]string, map[string]string) {
	var authors []string
	answers := make(map[string]string)
	for _, p := range o.registry.Critics() {
		if resp, ok := round.Response(p.Name()); ok && resp.OK() {
			authors = append(authors, p.Name())
			answers[p.Name()] = resp.Content
		}
	}
	return authors, answers
}

// okContents filters the authors down to those with a successful response
// in the round, preserving order.
func okContents(round *Round, authors []string) ([]string, map[string]string) {
	var ok []string
	contents := make(map[string]string)
	for _, author := range authors {
		if resp, found := round.Response(author); found && resp.OK() {
			ok = append(ok, author)
			contents[author] = resp.Content
		}
	}
	return ok, contents
}

func (o *Orchestrator) quorum() int {
	if o.registry.Len() < Quorum {
		return 1
	}
	return Quorum
}

func (o *Orchestrator) emitFallback(r *run, round int, reason string) {
	o.emitter.Emit(emit.Event{
		SessionID: r.sessionID,
		Round:     round,
		Msg:       emit.MsgFallback,
		Meta:      map[string]interface{}{"reason": reason},
	})
}

// History returns the sessions recorded in the configured store, newest
// first. Returns nil when no store is configured.
func (o *Orchestrator) History(ctx context.Context) ([]string, error) {
	if o.store == nil {
		return nil, nil
	}
	return o.store.ListSessions(ctx)
}

// LoadResult reloads an archived result by session ID.
func (o *Orchestrator) LoadResult(ctx context.Context, sessionID string) (*consensus.Result, error) {
	if o.store == nil {
		return nil, store.ErrNotFound
	}
	rec, err := o.store.LoadResult(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	var result consensus.Result
	if err := json.Unmarshal(rec.Result, &result); err != nil {
		return nil, fmt.Errorf("corrupt archived result for session %s: %w", sessionID, err)
	}
	return &result, nil
}

// ActiveProviders reports the active provider names with their declared
// capabilities, for diagnostics.
func (o *Orchestrator) ActiveProviders() map[string][]string {
	out := make(map[string][]string, o.registry.Len())
	for _, p := range o.registry.Active() {
		caps := make([]string, 0, len(p.Capabilities()))
		for _, c := range p.Capabilities() {
			caps = append(caps, string(c))
		}
		sort.Strings(caps)
		out[p.Name()] = caps
	}
	return out
}
