// Package anthropic adapts Anthropic's Messages API to the provider
// interface.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/QCWLTF/consensus-Ai/discuss/critique"
	"github.com/QCWLTF/consensus-Ai/discuss/provider"
)

// DefaultModel is the Claude model used when none is configured.
const DefaultModel = "claude-sonnet-4-6"

// maxTokens caps the answer length per call.
const maxTokens = 4096

// Provider wraps the official Anthropic Go SDK behind the provider
// interface. It supports both analysis and critique.
type Provider struct {
	client *anthropic.Client
	model  string
}

// New creates an Anthropic provider.
//
// model falls back to DefaultModel when empty. Returns an error on an
// empty API key.
func New(apiKey, model string) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("API key cannot be empty")
	}
	if model == "" {
		model = DefaultModel
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Provider{
		client: &client,
		model:  model,
	}, nil
}

// Name returns "anthropic" as the provider identifier.
func (p *Provider) Name() string {
	return "anthropic"
}

// Capabilities implements provider.Provider.
func (p *Provider) Capabilities() []provider.Capability {
	return []provider.Capability{provider.CapAnalyze, provider.CapCritique}
}

// Analyze implements provider.Provider.
func (p *Provider) Analyze(ctx context.Context, req provider.AnalyzeRequest) (provider.Result, error) {
	return p.call(ctx, critique.AnalysisPrompt(req))
}

// Critique implements provider.Provider.
func (p *Provider) Critique(ctx context.Context, req provider.CritiqueRequest) (provider.Result, error) {
	return p.call(ctx, critique.CritiquePrompt(req))
}

func (p *Provider) call(ctx context.Context, prompt string) (provider.Result, error) {
	if err := ctx.Err(); err != nil {
		return provider.Result{}, p.mapError(err)
	}

	message, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return provider.Result{}, p.mapError(err)
	}

	var raw strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			raw.WriteString(block.Text)
		}
	}

	content, claims := provider.ParseAnswer(raw.String())
	if content == "" {
		return provider.Result{}, provider.ErrEmptyResponse
	}

	return provider.Result{
		Content:    content,
		Claims:     claims,
		TokensUsed: int(message.Usage.InputTokens + message.Usage.OutputTokens),
	}, nil
}

// mapError converts Anthropic SDK errors to *provider.Error values.
func (p *Provider) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &provider.Error{
			Code:      "timeout",
			Message:   "Anthropic API request timed out",
			Retryable: true,
		}
	}

	lowerErr := strings.ToLower(err.Error())

	if strings.Contains(lowerErr, "rate limit") ||
		strings.Contains(lowerErr, "429") ||
		strings.Contains(lowerErr, "too many requests") {
		return provider.ErrRateLimited
	}

	if strings.Contains(lowerErr, "401") ||
		strings.Contains(lowerErr, "403") ||
		strings.Contains(lowerErr, "unauthorized") ||
		strings.Contains(lowerErr, "authentication") ||
		strings.Contains(lowerErr, "invalid x-api-key") {
		return provider.ErrInvalidAPIKey
	}

	if strings.Contains(lowerErr, "quota") ||
		strings.Contains(lowerErr, "credit balance") ||
		strings.Contains(lowerErr, "billing") {
		return provider.ErrQuotaExceeded
	}

	if strings.Contains(lowerErr, "overloaded") ||
		strings.Contains(lowerErr, "500") ||
		strings.Contains(lowerErr, "502") ||
		strings.Contains(lowerErr, "503") ||
		strings.Contains(lowerErr, "529") ||
		strings.Contains(lowerErr, "internal server error") ||
		strings.Contains(lowerErr, "service unavailable") {
		return &provider.Error{
			Code:      "server_error",
			Message:   fmt.Sprintf("Anthropic API server error: %v", err),
			Retryable: true,
		}
	}

	if strings.Contains(lowerErr, "connection") ||
		strings.Contains(lowerErr, "timeout") ||
		strings.Contains(lowerErr, "network") {
		return &provider.Error{
			Code:      "network_error",
			Message:   fmt.Sprintf("network error calling Anthropic API: %v", err),
			Retryable: true,
		}
	}

	return &provider.Error{
		Code:    "api_error",
		Message: fmt.Sprintf("Anthropic API error: %v", err),
	}
}
