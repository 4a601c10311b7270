// Package critique builds the cross-provider critique context for the
// later rounds of a deep discussion.
//
// The engine never calls providers itself; it only assembles per-provider
// requests. The collector executes them with the same timeout and failure
// semantics as the initial analysis round.
package critique

import (
	"github.com/QCWLTF/consensus-Ai/discuss/provider"
)

// Engine constructs critique-round requests from a prior round's answers.
//
// For each author it pairs the author's own answer with the answers of all
// *other* authors as peer context. Peer identity is withheld: peers travel
// as content-only strings, in the fixed author order with the author
// removed, to reduce anchoring bias toward any particular backend.
type Engine struct{}

// NewEngine creates a critique engine.
func NewEngine() Engine {
	return Engine{}
}

// Build returns one CritiqueRequest per author that has an answer.
//
// authors supplies the deterministic ordering (registry order); answers
// maps author name to its prior-round content. Authors without an entry in
// answers are skipped. An author with no surviving peers still gets a
// request with an empty peer list, which degenerates to self-revision.
func (Engine) Build(text, question string, authors []string, answers map[string]string) map[string]provider.CritiqueRequest {
	requests := make(map[string]provider.CritiqueRequest, len(answers))
	for _, author := range authors {
		own, ok := answers[author]
		if !ok {
			continue
		}
		var peers []string
		for _, peer := range authors {
			if peer == author {
				continue
			}
			if content, ok := answers[peer]; ok {
				peers = append(peers, content)
			}
		}
		requests[author] = provider.CritiqueRequest{
			Text:          text,
			Question:      question,
			OwnResponse:   own,
			PeerResponses: peers,
		}
	}
	return requests
}
