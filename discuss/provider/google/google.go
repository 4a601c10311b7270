// Package google adapts Google's Gemini API to the provider interface.
package google

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/QCWLTF/consensus-Ai/discuss/critique"
	"github.com/QCWLTF/consensus-Ai/discuss/provider"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.0-flash"

// Provider wraps the official generative-ai-go client behind the provider
// interface. It supports both analysis and critique, and requests
// structured JSON output via the model's response MIME type and schema.
type Provider struct {
	client *genai.Client
	model  string
}

// New creates a Gemini provider.
//
// model falls back to DefaultModel when empty. The client holds network
// resources; call Close when the provider is no longer needed.
func New(ctx context.Context, apiKey, model string) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("API key cannot be empty")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Provider{
		client: client,
		model:  model,
	}, nil
}

// Close releases the underlying client's resources.
func (p *Provider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

// Name returns "google" as the provider identifier.
func (p *Provider) Name() string {
	return "google"
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

	model := p.client.GenerativeModel(p.model)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"summary": {Type: genai.TypeString},
			"claims": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
		},
		Required: []string{"summary", "claims"},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return provider.Result{}, p.mapError(err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return provider.Result{}, provider.ErrEmptyResponse
	}

	tokensUsed := 0
	if resp.UsageMetadata != nil {
		tokensUsed = int(resp.UsageMetadata.TotalTokenCount)
	}

	var raw strings.Builder
	candidate := resp.Candidates[0]
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				raw.WriteString(string(text))
			}
		}
	}

	content, claims := provider.ParseAnswer(raw.String())
	if content == "" {
		return provider.Result{}, provider.ErrEmptyResponse
	}

	return provider.Result{
		Content:    content,
		Claims:     claims,
		TokensUsed: tokensUsed,
	}, nil
}

// mapError converts Gemini API errors to *provider.Error values.
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
			Message:   "Gemini API request timed out",
			Retryable: true,
		}
	}

	lowerErr := strings.ToLower(err.Error())

	if strings.Contains(lowerErr, "rate limit") ||
		strings.Contains(lowerErr, "429") ||
		strings.Contains(lowerErr, "resource exhausted") ||
		strings.Contains(lowerErr, "resource_exhausted") {
		return provider.ErrRateLimited
	}

	if strings.Contains(lowerErr, "api key not valid") ||
		strings.Contains(lowerErr, "invalid api key") ||
		strings.Contains(lowerErr, "401") ||
		strings.Contains(lowerErr, "unauthenticated") ||
		strings.Contains(lowerErr, "permission denied") {
		return provider.ErrInvalidAPIKey
	}

	if strings.Contains(lowerErr, "quota") ||
		strings.Contains(lowerErr, "billing") {
		return provider.ErrQuotaExceeded
	}

	if strings.Contains(lowerErr, "500") ||
		strings.Contains(lowerErr, "503") ||
		strings.Contains(lowerErr, "internal") ||
		strings.Contains(lowerErr, "unavailable") {
		return &provider.Error{
			Code:      "server_error",
			Message:   fmt.Sprintf("Gemini API server error: %v", err),
			Retryable: true,
		}
	}

	if strings.Contains(lowerErr, "connection") ||
		strings.Contains(lowerErr, "timeout") ||
		strings.Contains(lowerErr, "network") {
		return &provider.Error{
			Code:      "network_error",
			Message:   fmt.Sprintf("network error calling Gemini API: %v", err),
			Retryable: true,
		}
	}

	return &provider.Error{
		Code:    "api_error",
		Message: fmt.Sprintf("Gemini API error: %v", err),
	}
}
