// Command consensus analyzes a scientific paper with several AI backends
// in parallel and merges their answers into an attributed consensus.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "consensus",
		Short: "Multi-AI paper analysis with consensus aggregation",
		Long: "Fans a paper's text out to the configured AI backends (OpenAI, Gemini, Perplexity, Claude),\n" +
			"optionally runs a critique and revision debate between them, and merges the final answers\n" +
			"into consensus claims and attributed dissents.\n\n" +
			"Backends are enabled by their API keys: OPENAI_API_KEY, GOOGLE_API_KEY, PERPLEXITY_API_KEY,\n" +
			"ANTHROPIC_API_KEY. At least one key is required; a real debate needs two.",
	}

	root.AddCommand(newAnalyzeCmd())
	root.AddCommand(newProvidersCmd())
	root.AddCommand(newSessionsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
