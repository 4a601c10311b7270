// Package openai adapts OpenAI's chat completion API to the provider
// interface.
package openai

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

// DefaultModel is the OpenAI model used when none is configured.
const DefaultModel = "gpt-4o"

// Provider wraps the official OpenAI Go SDK behind the provider
// interface. It supports both analysis and critique.
//
// Safe for concurrent use; the underlying client handles thread-safety
// internally.
type Provider struct {
	client *openai.Client
	model  string
}

// New creates an OpenAI provider.
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
	)

	return &Provider{
		client: &client,
		model:  model,
	}, nil
}

// Name returns "openai" as the provider identifier.
func (p *Provider) Name() string {
	return "openai"
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

// call executes one chat completion in JSON mode and parses the answer
// envelope.
func (p *Provider) call(ctx context.Context, prompt string) (provider.Result, error) {
	if err := ctx.Err(); err != nil {
		return provider.Result{}, p.mapError(err)
	}

	completion, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(prompt),
					},
				},
			},
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: openai.Ptr(shared.NewResponseFormatJSONObjectParam()),
		},
		Temperature: openai.Float(1.0), // Some models only support the default
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

// mapError converts OpenAI API errors to *provider.Error values,
// distinguishing retryable transient failures from permanent ones.
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
			Message:   "OpenAI API request timed out",
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
		strings.Contains(lowerErr, "incorrect api key") ||
		strings.Contains(lowerErr, "401") ||
		strings.Contains(lowerErr, "unauthorized") ||
		strings.Contains(lowerErr, "authentication") {
		return provider.ErrInvalidAPIKey
	}

	if strings.Contains(lowerErr, "quota") ||
		strings.Contains(lowerErr, "insufficient_quota") ||
		strings.Contains(lowerErr, "billing") {
		return provider.ErrQuotaExceeded
	}

	if strings.Contains(lowerErr, "500") ||
		strings.Contains(lowerErr, "502") ||
		strings.Contains(lowerErr, "503") ||
		strings.Contains(lowerErr, "504") ||
		strings.Contains(lowerErr, "internal server error") ||
		strings.Contains(lowerErr, "bad gateway") ||
		strings.Contains(lowerErr, "service unavailable") ||
		strings.Contains(lowerErr, "gateway timeout") {
		return &provider.Error{
			Code:      "server_error",
			Message:   fmt.Sprintf("OpenAI API server error: %v", err),
			Retryable: true,
		}
	}

	if strings.Contains(lowerErr, "connection") ||
		strings.Contains(lowerErr, "timeout") ||
		strings.Contains(lowerErr, "network") {
		return &provider.Error{
			Code:      "network_error",
			Message:   fmt.Sprintf("network error calling OpenAI API: %v", err),
			Retryable: true,
		}
	}

	return &provider.Error{
		Code:    "api_error",
		Message: fmt.Sprintf("OpenAI API error: %v", err),
	}
}
