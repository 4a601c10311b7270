package provider

import (
	"context"
	"sync"
	"time"
)

// MockProvider is a test implementation of Provider.
//
// Use it to exercise orchestration logic without real API calls. It
// provides:
//   - Scripted responses, returned in order (the last one repeats)
//   - Error injection, globally or per call kind
//   - Configurable delay or indefinite blocking (for deadline tests)
//   - Call history tracking
//   - Thread-safe operation
//
// Example:
//
//	mock := &MockProvider{
//	    ProviderName: "alpha",
//	    Caps:         []Capability{CapAnalyze, CapCritique},
//	    Results: []Result{
//	        {Content: "Initial answer.", Claims: []string{"X causes Y"}},
//	        {Content: "Revised answer.", Claims: []string{"X causes Y"}},
//	    },
//	}
type MockProvider struct {
	// ProviderName is returned by Name(). Defaults to "mock".
	ProviderName string

	// Caps is returned by Capabilities(). Defaults to analyze+critique.
	Caps []Capability

	// Results is the scripted sequence of answers. Each call consumes the
	// next entry; once exhausted, the last entry repeats.
	Results []Result

	// Err, if set, is returned by every call instead of a result.
	Err error

	// CritiqueErr, if set, is returned by Critique calls only.
	CritiqueErr error

	// Delay is slept (cancellably) before answering. With Block set the
	// provider never answers and only returns when ctx is done.
	Delay time.Duration
	Block bool

	// AnalyzeCalls and CritiqueCalls record every invocation.
	AnalyzeCalls  []AnalyzeRequest
	CritiqueCalls []CritiqueRequest

	mu        sync.Mutex
	callIndex int
}

// Name implements Provider.
func (m *MockProvider) Name() string {
	if m.ProviderName == "" {
		return "mock"
	}
	return m.ProviderName
}

// Capabilities implements Provider.
func (m *MockProvider) Capabilities() []Capability {
	if m.Caps == nil {
		return []Capability{CapAnalyze, CapCritique}
	}
	return m.Caps
}

// Analyze implements Provider by returning the next scripted result.
func (m *MockProvider) Analyze(ctx context.Context, req AnalyzeRequest) (Result, error) {
	m.mu.Lock()
	m.AnalyzeCalls = append(m.AnalyzeCalls, req)
	m.mu.Unlock()

	if err := m.wait(ctx); err != nil {
		return Result{}, err
	}
	if m.Err != nil {
		return Result{}, m.Err
	}
	return m.next(), nil
}

// Critique implements Provider by returning the next scripted result.
func (m *MockProvider) Critique(ctx context.Context, req CritiqueRequest) (Result, error) {
	m.mu.Lock()
	m.CritiqueCalls = append(m.CritiqueCalls, req)
	m.mu.Unlock()

	if err := m.wait(ctx); err != nil {
		return Result{}, err
	}
	if m.Err != nil {
		return Result{}, m.Err
	}
	if m.CritiqueErr != nil {
		return Result{}, m.CritiqueErr
	}
	return m.next(), nil
}

// wait honors Block and Delay while respecting cancellation.
func (m *MockProvider) wait(ctx context.Context) error {
	if m.Block {
		<-ctx.Done()
		return ctx.Err()
	}
	if m.Delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.Delay):
		}
	}
	return ctx.Err()
}

// next returns the next scripted result, repeating the last one once the
// script is exhausted.
func (m *MockProvider) next() Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Results) == 0 {
		return Result{Content: "mock response"}
	}
	idx := m.callIndex
	if idx >= len(m.Results) {
		idx = len(m.Results) - 1
	}
	m.callIndex++
	return m.Results[idx]
}
