// Package consensus merges the final round of a discussion into a single
// attributed result.
//
// The aggregator clusters discrete claims across providers by textual
// similarity, scores each cluster by the fraction of responding providers
// supporting it, and splits clusters into majority consensus claims and
// attributed dissents. The whole pipeline is deterministic for a fixed
// input: claim extraction is a pure function of the answer text, clustering
// is greedy first-match over a fixed ordering, and ties are broken by
// registry order.
package consensus

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// DefaultSimilarityThreshold is the levenshtein similarity ratio above
// which two normalized claims join the same cluster.
const DefaultSimilarityThreshold = 0.72

// Answer is one provider's final-round contribution, in registry order.
type Answer struct {
	// Provider is the contributing provider's name.
	Provider string

	// Content is the full answer text.
	Content string

	// Claims is the provider-supplied structured claim list; when empty
	// the aggregator segments Content into sentences instead.
	Claims []string

	// Critiqued marks answers that went through the critique loop.
	Critiqued bool
}

// Claim is a normalized statement supported by more than half of the
// responding providers.
type Claim struct {
	Claim               string   `json:"claim"`
	SupportingProviders []string `json:"supportingProviders"`
	AgreementScore      float64  `json:"agreementScore"`
}

// Dissent is a minority claim attributed to one contributor.
type Dissent struct {
	Claim    string `json:"claim"`
	Provider string `json:"provider"`
}

// Result is the reconciled output of one discussion.
type Result struct {
	SessionID       string    `json:"sessionId"`
	Mode            string    `json:"mode"`
	Rounds          int       `json:"rounds"`
	FinalSynthesis  string    `json:"finalSynthesis"`
	ConsensusClaims []Claim   `json:"consensusClaims"`
	Dissents        []Dissent `json:"dissents"`
	Contributors    []string  `json:"contributors"`
	Warnings        []string  `json:"warnings"`
}

// Aggregator clusters and scores claims across providers.
type Aggregator struct {
	threshold float64
}

// NewAggregator creates an aggregator with the given similarity threshold.
// Values outside (0, 1] fall back to DefaultSimilarityThreshold.
func NewAggregator(threshold float64) *Aggregator {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultSimilarityThreshold
	}
	return &Aggregator{threshold: threshold}
}

// cluster groups similar claims across providers. The first-seen position
// (provider index, then claim index) is the deterministic tie-break key.
type cluster struct {
	text          string // representative claim, the longest seen
	norm          string // normalized form of the founding claim
	supporters    []string
	supporterSet  map[string]bool
	firstProvider int
	firstClaim    int
}

// Aggregate reconciles the final round's answers into a Result.
//
// answers must be ordered by registry order; that ordering drives both the
// clustering scan and the tie-break between equally scored clusters. The
// agreement score denominator is the number of responding providers, i.e.
// len(answers).
func (a *Aggregator) Aggregate(sessionID, mode string, rounds int, answers []Answer, warnings []string) *Result {
	contributors := make([]string, len(answers))
	for i, ans := range answers {
		contributors[i] = ans.Provider
	}

	clusters := a.clusterClaims(answers)

	responding := len(answers)
	sort.SliceStable(clusters, func(i, j int) bool {
		si := float64(len(clusters[i].supporters)) / float64(responding)
		sj := float64(len(clusters[j].supporters)) / float64(responding)
		if si != sj {
			return si > sj
		}
		if clusters[i].firstProvider != clusters[j].firstProvider {
			return clusters[i].firstProvider < clusters[j].firstProvider
		}
		return clusters[i].firstClaim < clusters[j].firstClaim
	})

	consensusClaims := []Claim{}
	dissents := []Dissent{}
	for _, c := range clusters {
		score := float64(len(c.supporters)) / float64(responding)
		if score > 0.5 {
			consensusClaims = append(consensusClaims, Claim{
				Claim:               c.text,
				SupportingProviders: append([]string(nil), c.supporters...),
				AgreementScore:      score,
			})
			continue
		}
		// Minority cluster: one dissent entry per contributor.
		for _, supporter := range c.supporters {
			dissents = append(dissents, Dissent{Claim: c.text, Provider: supporter})
		}
	}

	result := &Result{
		SessionID:       sessionID,
		Mode:            mode,
		Rounds:          rounds,
		ConsensusClaims: consensusClaims,
		Dissents:        dissents,
		Contributors:    contributors,
		Warnings:        warnings,
	}
	if result.Warnings == nil {
		result.Warnings = []string{}
	}
	result.FinalSynthesis = synthesize(result)
	return result
}

// clusterClaims extracts every answer's claims and greedily assigns each to
// the first sufficiently similar cluster, founding a new one otherwise.
func (a *Aggregator) clusterClaims(answers []Answer) []*cluster {
	var clusters []*cluster
	for providerIdx, ans := range answers {
		for claimIdx, claim := range ExtractClaims(ans) {
			norm := Normalize(claim)
			if norm == "" {
				continue
			}

			var home *cluster
			for _, c := range clusters {
				if norm == c.norm || Similarity(norm, c.norm) >= a.threshold {
					home = c
					break
				}
			}
			if home == nil {
				clusters = append(clusters, &cluster{
					text:          claim,
					norm:          norm,
					supporters:    []string{ans.Provider},
					supporterSet:  map[string]bool{ans.Provider: true},
					firstProvider: providerIdx,
					firstClaim:    claimIdx,
				})
				continue
			}
			if !home.supporterSet[ans.Provider] {
				home.supporterSet[ans.Provider] = true
				home.supporters = append(home.supporters, ans.Provider)
			}
			// Keep the most detailed phrasing as the representative.
			if len(claim) > len(home.text) {
				home.text = claim
			}
		}
	}
	return clusters
}

// Similarity returns the levenshtein similarity ratio of two strings in
// [0, 1], where 1 means identical.
func Similarity(a, b string) float64 {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1
	}
	distance := levenshtein.ComputeDistance(a, b)
	return 1 - float64(distance)/float64(maxLen)
}

// synthesize renders the descriptive report text: consensus claims in rank
// order followed by a labeled dissent section. The text is output only; it
// is never re-sent to any provider.
func synthesize(r *Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Consensus analysis (%s mode, %d round(s), providers: %s)\n\n",
		r.Mode, r.Rounds, strings.Join(r.Contributors, ", "))

	sb.WriteString("## Consensus\n")
	if len(r.ConsensusClaims) == 0 {
		sb.WriteString("No majority consensus emerged among the responding providers.\n")
	}
	for i, c := range r.ConsensusClaims {
		fmt.Fprintf(&sb, "%d. %s (agreement %.2f; %s)\n",
			i+1, c.Claim, c.AgreementScore, strings.Join(c.SupportingProviders, ", "))
	}

	sb.WriteString("\n## Dissents\n")
	if len(r.Dissents) == 0 {
		sb.WriteString("None.\n")
	}
	for _, d := range r.Dissents {
		fmt.Fprintf(&sb, "- %s (%s)\n", d.Claim, d.Provider)
	}
	return sb.String()
}
