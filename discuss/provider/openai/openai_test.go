package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/QCWLTF/consensus-Ai/discuss/provider"
)

func TestNew_Validation(t *testing.T) {
	if _, err := New("", "gpt-4o"); err == nil {
		t.Error("expected error for empty API key")
	}

	p, err := New("sk-test", "")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if p.model != DefaultModel {
		t.Errorf("model = %q, want default %q", p.model, DefaultModel)
	}
}

func TestProvider_Identity(t *testing.T) {
	p, err := New("sk-test", "gpt-4o")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if p.Name() != "openai" {
		t.Errorf("Name() = %q", p.Name())
	}
	if !provider.Has(p, provider.CapAnalyze) || !provider.Has(p, provider.CapCritique) {
		t.Errorf("capabilities = %v, want analyze+critique", p.Capabilities())
	}
}

func TestMapError(t *testing.T) {
	p, err := New("sk-test", "gpt-4o")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	tests := []struct {
		name      string
		err       error
		wantCode  string
		retryable bool
	}{
		{"rate limit", errors.New("429 Too Many Requests"), "rate_limited", true},
		{"auth", errors.New("401 Unauthorized: incorrect API key provided"), "invalid_api_key", false},
		{"quota", errors.New("insufficient_quota: billing hard limit reached"), "quota_exceeded", false},
		{"server", errors.New("502 Bad Gateway"), "server_error", true},
		{"network", errors.New("connection reset by peer"), "network_error", true},
		{"deadline", context.DeadlineExceeded, "timeout", true},
		{"unknown", errors.New("something unexpected"), "api_error", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := p.mapError(tt.err)
			var perr *provider.Error
			if !errors.As(mapped, &perr) {
				t.Fatalf("mapError(%v) = %T, want *provider.Error", tt.err, mapped)
			}
			if perr.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", perr.Code, tt.wantCode)
			}
			if perr.Retryable != tt.retryable {
				t.Errorf("retryable = %v, want %v", perr.Retryable, tt.retryable)
			}
		})
	}
}

func TestMapError_ContextCanceledPassesThrough(t *testing.T) {
	p, err := New("sk-test", "gpt-4o")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if got := p.mapError(context.Canceled); !errors.Is(got, context.Canceled) {
		t.Errorf("mapError(Canceled) = %v, want context.Canceled", got)
	}
}
