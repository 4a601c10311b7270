package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/QCWLTF/consensus-Ai/discuss/provider"
	"github.com/QCWLTF/consensus-Ai/discuss/provider/anthropic"
	"github.com/QCWLTF/consensus-Ai/discuss/provider/google"
	"github.com/QCWLTF/consensus-Ai/discuss/provider/openai"
	"github.com/QCWLTF/consensus-Ai/discuss/provider/perplexity"
)

// backendSpec ties a provider name to the environment variable carrying
// its API key. The slice order is the registration order, which also
// drives deterministic tie-breaking in the aggregator.
type backendSpec struct {
	name   string
	envKey string
}

var backends = []backendSpec{
	{"openai", "OPENAI_API_KEY"},
	{"google", "GOOGLE_API_KEY"},
	{"perplexity", "PERPLEXITY_API_KEY"},
	{"anthropic", "ANTHROPIC_API_KEY"},
}

// buildRegistry constructs adapters for every backend whose API key is
// set and filters them into a registry. Availability is decided here,
// once, from key presence.
func buildRegistry(ctx context.Context) (*provider.Registry, error) {
	var all []provider.Provider
	available := make(map[string]bool)

	for _, spec := range backends {
		key := os.Getenv(spec.envKey)
		if key == "" {
			continue
		}

		var (
			p   provider.Provider
			err error
		)
		switch spec.name {
		case "openai":
			p, err = openai.New(key, "")
		case "google":
			p, err = google.New(ctx, key, "")
		case "perplexity":
			p, err = perplexity.New(key, "")
		case "anthropic":
			p, err = anthropic.New(key, "")
		}
		if err != nil {
			return nil, fmt.Errorf("failed to configure %s: %w", spec.name, err)
		}
		all = append(all, p)
		available[spec.name] = true
	}

	return provider.NewRegistry(all, available)
}

func newProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "Show backend availability and capabilities",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, spec := range backends {
				status := "unavailable (set " + spec.envKey + ")"
				caps := ""
				if os.Getenv(spec.envKey) != "" {
					status = "available"
					caps = "  [" + strings.Join(capabilityNames(spec.name), ", ") + "]"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s%s\n", spec.name, status, caps)
			}
			return nil
		},
	}
}

func capabilityNames(name string) []string {
	if name == "perplexity" {
		return []string{string(provider.CapAnalyze)}
	}
	return []string{string(provider.CapAnalyze), string(provider.CapCritique)}
}
