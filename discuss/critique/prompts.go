package critique

import (
	"fmt"
	"strings"

	"github.com/QCWLTF/consensus-Ai/discuss/provider"
)

// DefaultQuestion is the analysis focus used when the caller supplies none.
const DefaultQuestion = "Summarize the paper's core contributions, methodology, and limitations."

// jsonInstructions is the shared output convention: every backend is asked
// for the same JSON envelope so the aggregator can consume structured
// claims. Backends that ignore it still work; the aggregator falls back to
// sentence segmentation of the raw content.
const jsonInstructions = `Respond ONLY with a JSON object in this exact format:
{"summary": "your full analysis as prose", "claims": ["one discrete factual claim per entry"]}
Each claim must be a single self-contained statement about the paper.
No markdown fences, no text outside the JSON object.`

// AnalysisPrompt builds the round-0 analysis prompt for a provider.
func AnalysisPrompt(req provider.AnalyzeRequest) string {
	question := req.Question
	if question == "" {
		question = DefaultQuestion
	}

	var sb strings.Builder
	sb.WriteString("You are analyzing a scientific paper from a researcher's perspective.\n\n")
	fmt.Fprintf(&sb, "Analysis question: %s\n\n", question)
	sb.WriteString("Paper text:\n---\n")
	sb.WriteString(req.Text)
	sb.WriteString("\n---\n\n")
	sb.WriteString(jsonInstructions)
	return sb.String()
}

// CritiquePrompt builds the critique/revision prompt for a provider.
//
// The provider sees its own prior answer and the anonymized peer answers,
// acts as a critic of the peers' reasoning, and returns a revised answer
// that accepts valid objections or briefly rebuts invalid ones.
func CritiquePrompt(req provider.CritiqueRequest) string {
	question := req.Question
	if question == "" {
		question = DefaultQuestion
	}

	var sb strings.Builder
	sb.WriteString("You previously analyzed a scientific paper. Other analysts answered the same question; their identities are withheld.\n")
	sb.WriteString("Act as a critic: find logical errors, missing evidence, or gaps in the peer analyses and in your own, then write your revised final analysis. ")
	sb.WriteString("Accept objections you find valid; keep positions you can defend.\n\n")
	fmt.Fprintf(&sb, "Analysis question: %s\n\n", question)
	sb.WriteString("Paper text:\n---\n")
	sb.WriteString(req.Text)
	sb.WriteString("\n---\n\n")
	sb.WriteString("Your previous answer:\n---\n")
	sb.WriteString(req.OwnResponse)
	sb.WriteString("\n---\n\n")
	for i, peer := range req.PeerResponses {
		fmt.Fprintf(&sb, "Peer analysis %d:\n---\n%s\n---\n\n", i+1, peer)
	}
	sb.WriteString(jsonInstructions)
	return sb.String()
}
