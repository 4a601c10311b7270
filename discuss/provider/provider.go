// Package provider defines the adapter contract between the discussion
// orchestrator and the AI analysis backends.
package provider

import (
	"context"
	"fmt"
)

// Capability is a named ability a provider adapter declares support for.
//
// Every provider supports CapAnalyze. Providers that can also review and
// revise their own answers against peer feedback additionally declare
// CapCritique; providers without it still participate in the initial
// analysis round and are carried forward into aggregation unchanged.
type Capability string

const (
	// CapAnalyze is the ability to analyze paper text into an answer.
	CapAnalyze Capability = "analyze"

	// CapCritique is the ability to critique peer answers and revise
	// the provider's own answer in response.
	CapCritique Capability = "critique"
)

// Provider is the uniform capability interface wrapping one AI backend.
//
// There is deliberately no type hierarchy per backend: one flat interface
// plus the capability set is enough, and the orchestrator never needs to
// know which vendor sits behind an adapter.
//
// Implementations must:
//   - Be safe for concurrent use (one discussion issues concurrent calls).
//   - Honor context cancellation and deadlines on every call.
//   - Translate vendor errors into *Error values so the collector can
//     classify them.
//   - Never retry internally; retry policy belongs to the caller.
//
// A call may consume one unit of external quota whether or not the caller
// later discards the result.
type Provider interface {
	// Name returns the stable provider identifier (e.g. "openai").
	// It is used for attribution in rounds, consensus claims and logs.
	Name() string

	// Capabilities returns the capability set declared by this adapter.
	// The returned slice must not be mutated by callers.
	Capabilities() []Capability

	// Analyze runs a single analysis call over the paper text and returns
	// the provider's answer. The deadline is supplied via ctx.
	Analyze(ctx context.Context, req AnalyzeRequest) (Result, error)

	// Critique reviews anonymized peer answers against the provider's own
	// prior answer and returns a revised answer. Only meaningful when the
	// adapter declares CapCritique; adapters without it return an *Error
	// with code "capability_unsupported".
	Critique(ctx context.Context, req CritiqueRequest) (Result, error)
}

// Has reports whether p declares the given capability.
func Has(p Provider, c Capability) bool {
	for _, pc := range p.Capabilities() {
		if pc == c {
			return true
		}
	}
	return false
}

// AnalyzeRequest is the input for a single analysis call.
type AnalyzeRequest struct {
	// Text is the extracted paper text to analyze.
	Text string

	// Question optionally focuses the analysis (e.g. "summarize the core
	// contributions, methodology, and limitations").
	Question string
}

// CritiqueRequest is the input for a critique/revision call.
//
// PeerResponses carry content only; peer identity is withheld by the
// critique engine to reduce anchoring bias.
type CritiqueRequest struct {
	// Text is the original paper text under discussion.
	Text string

	// Question is the analysis question from the initial round, if any.
	Question string

	// OwnResponse is this provider's own prior answer.
	OwnResponse string

	// PeerResponses holds the anonymized prior answers of the other
	// providers, in a fixed deterministic order.
	PeerResponses []string
}

// Result is a successful provider answer.
//
// Content always holds the full answer text. Claims is optional structure:
// adapters prompt their backend for a JSON claims list and populate Claims
// when the backend complies; the aggregator falls back to sentence
// segmentation of Content otherwise.
type Result struct {
	Content    string
	Claims     []string
	TokensUsed int
}

// Error represents a provider call failure with enough structure for the
// collector to classify it. It distinguishes retryable transient failures
// from permanent ones, though the orchestrator itself never retries.
type Error struct {
	// Code is the machine-readable failure code, e.g. "rate_limited",
	// "invalid_api_key", "timeout", "api_error".
	Code string

	// Message is the human-readable failure description.
	Message string

	// Retryable marks transient failures (rate limits, timeouts, 5xx).
	Retryable bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsRetryable reports whether the failure is transient.
func (e *Error) IsRetryable() bool {
	return e.Retryable
}

// Common provider error sentinels.
var (
	// ErrCapabilityUnsupported is returned by Critique on adapters that
	// declare only CapAnalyze.
	ErrCapabilityUnsupported = &Error{Code: "capability_unsupported", Message: "provider does not support this capability"}

	// ErrRateLimited indicates the backend rate limit was exceeded.
	ErrRateLimited = &Error{Code: "rate_limited", Message: "API rate limit exceeded", Retryable: true}

	// ErrInvalidAPIKey indicates the credential is invalid or expired.
	ErrInvalidAPIKey = &Error{Code: "invalid_api_key", Message: "API key is invalid or expired"}

	// ErrQuotaExceeded indicates the account quota is exhausted.
	ErrQuotaExceeded = &Error{Code: "quota_exceeded", Message: "API quota exceeded"}

	// ErrEmptyResponse indicates the backend returned no usable content.
	ErrEmptyResponse = &Error{Code: "empty_response", Message: "backend returned no content"}
)
