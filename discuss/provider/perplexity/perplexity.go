// Package perplexity adapts Perplexity's OpenAI-compatible chat API to
// the provider interface.
//
// Perplexity answers with live web grounding, which makes it a useful
// extra voice in the initial analysis round, but its models do not follow
// the critique protocol reliably. The adapter therefore declares analysis
// only; the orchestrator carries its initial answer forward unchanged.
package perplexity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/QCWLTF/consensus-Ai/discuss/critique"
	"github.com/QCWLTF/consensus-Ai/discuss/provider"
)

// DefaultModel is the Perplexity model used when none is configured.
const DefaultModel = "sonar-pro"

// baseURL is Perplexity's OpenAI-compatible endpoint.
const baseURL = "https://api.perplexity.ai"

// Provider wraps Perplexity's API behind the provider interface, reusing
// the OpenAI SDK against Perplexity's compatible endpoint.
type Provider struct {
	client *openai.Client
	model  string
}

// New creates a Perplexity provider.
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

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
	)

	return &Provider{
		client: &client,
		model:  model,
	}, nil
}

// Name returns "perplexity" as the provider identifier.
func (p *Provider) Name() string {
	return "perplexity"
}

// Capabilities implements provider.Provider. Analysis only.
func (p *Provider) Capabilities() []provider.Capability {
	return []provider.Capability{provider.CapAnalyze}
}

// Analyze implements provider.Provider.
func (p *Provider) Analyze(ctx context.Context, req provider.AnalyzeRequest) (provider.Result, error) {
	if err := ctx.Err(); err != nil {
		return provider.Result{}, p.mapError(err)
	}

	// No response_format here: Perplexity does not support OpenAI's JSON
	// mode, so the prompt's output convention has to carry the weight.
	completion, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(critique.AnalysisPrompt(req)),
					},
				},
			},
		},
	})
	if err != nil {
		return provider.Result{}, p.mapError(err)
	}

	if len(completion.Choices) == 0 {
		return provider.Result{}, provider.ErrEmptyResponse
	}

	content, claims := provider.ParseAnswer(completion.Choices[0].Message.Content)
	if content == "" {
		return provider.Result{}, provider.ErrEmptyResponse
	}

	return provider.Result{
		Content:    content,
		Claims:     claims,
		TokensUsed: int(completion.Usage.TotalTokens),
	}, nil
}

// Critique implements provider.Provider. Always unsupported.
func (p *Provider) Critique(ctx context.Context, req provider.CritiqueRequest) (provider.Result, error) {
	return provider.Result{}, provider.ErrCapabilityUnsupported
}

// mapError converts Perplexity API errors to *provider.Error values.
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
			Message:   "Perplexity API request timed out",
			Retryable: true,
		}
	}

	lowerErr := strings.ToLower(err.Error())

	if strings.Contains(lowerErr, "rate limit") ||
		strings.Contains(lowerErr, "429") ||
		strings.Contains(lowerErr, "too many requests") {
		return provider.ErrRateLimited
	}

	if strings.Contains(lowerErr, "invalid api key") ||
		strings.Contains(lowerErr, "401") ||
		strings.Contains(lowerErr, "unauthorized") ||
		strings.Contains(lowerErr, "authentication") {
		return provider.ErrInvalidAPIKey
	}

	if strings.Contains(lowerErr, "quota") ||
		strings.Contains(lowerErr, "billing") {
		return provider.ErrQuotaExceeded
	}

	if strings.Contains(lowerErr, "500") ||
		strings.Contains(lowerErr, "502") ||
		strings.Contains(lowerErr, "503") ||
		strings.Contains(lowerErr, "internal server error") ||
		strings.Contains(lowerErr, "service unavailable") {
		return &provider.Error{
			Code:      "server_error",
			Message:   fmt.Sprintf("Perplexity API server error: %v", err),
			Retryable: true,
		}
	}

	if strings.Contains(lowerErr, "connection") ||
		strings.Contains(lowerErr, "timeout") ||
		strings.Contains(lowerErr, "network") {
		return &provider.Error{
			Code:      "network_error",
			Message:   fmt.Sprintf("network error calling Perplexity API: %v", err),
			Retryable: true,
		}
	}

	return &provider.Error{
		Code:    "api_error",
		Message: fmt.Sprintf("Perplexity API error: %v", err),
	}
}
