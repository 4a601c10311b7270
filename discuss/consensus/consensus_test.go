package consensus

import (
	"reflect"
	"strings"
	"testing"
)

func TestAggregate_MajorityAndDissent(t *testing.T) {
	agg := NewAggregator(DefaultSimilarityThreshold)
	answers := []Answer{
		{Provider: "alpha", Claims: []string{"the method improves accuracy on all benchmarks"}},
		{Provider: "beta", Claims: []string{"the method improves accuracy on all benchmarks"}},
		{Provider: "gamma", Claims: []string{"the experimental setup omits statistical significance tests"}},
	}

	result := agg.Aggregate("s1", "simple", 1, answers, nil)

	if len(result.ConsensusClaims) != 1 {
		t.Fatalf("ConsensusClaims = %+v, want 1", result.ConsensusClaims)
	}
	claim := result.ConsensusClaims[0]
	if claim.AgreementScore != 2.0/3.0 {
		t.Errorf("AgreementScore = %v, want 2/3", claim.AgreementScore)
	}
	if got, want := claim.SupportingProviders, []string{"alpha", "beta"}; !reflect.DeepEqual(got, want) {
		t.Errorf("SupportingProviders = %v, want %v", got, want)
	}

	if len(result.Dissents) != 1 {
		t.Fatalf("Dissents = %+v, want 1", result.Dissents)
	}
	if result.Dissents[0].Provider != "gamma" {
		t.Errorf("dissent provider = %q, want gamma", result.Dissents[0].Provider)
	}
}

func TestAggregate_SimilarClaimsCluster(t *testing.T) {
	agg := NewAggregator(DefaultSimilarityThreshold)
	answers := []Answer{
		{Provider: "alpha", Claims: []string{"The model outperforms all prior baselines."}},
		{Provider: "beta", Claims: []string{"the model outperforms all prior baselines"}},
	}

	result := agg.Aggregate("s1", "simple", 1, answers, nil)

	if len(result.ConsensusClaims) != 1 {
		t.Fatalf("ConsensusClaims = %+v, want 1 merged cluster", result.ConsensusClaims)
	}
	if got := result.ConsensusClaims[0].AgreementScore; got != 1.0 {
		t.Errorf("AgreementScore = %v, want 1.0", got)
	}
}

func TestAggregate_DissimilarClaimsStaySeparate(t *testing.T) {
	agg := NewAggregator(DefaultSimilarityThreshold)
	answers := []Answer{
		{Provider: "alpha", Claims: []string{"the training procedure requires eight gpus"}},
		{Provider: "beta", Claims: []string{"the related work section ignores recent surveys"}},
	}

	result := agg.Aggregate("s1", "simple", 1, answers, nil)

	if len(result.ConsensusClaims) != 0 {
		t.Errorf("ConsensusClaims = %+v, want none", result.ConsensusClaims)
	}
	if len(result.Dissents) != 2 {
		t.Errorf("Dissents = %+v, want 2", result.Dissents)
	}
}

func TestAggregate_HalfSupportIsDissent(t *testing.T) {
	// Consensus requires strictly more than half. 2/4 stays a dissent.
	agg := NewAggregator(DefaultSimilarityThreshold)
	shared := "the dataset is limited to english text"
	answers := []Answer{
		{Provider: "a", Claims: []string{shared}},
		{Provider: "b", Claims: []string{shared}},
		{Provider: "c", Claims: []string{"figure three contradicts the abstract"}},
		{Provider: "d", Claims: []string{"the appendix lacks hyperparameter detail"}},
	}

	result := agg.Aggregate("s1", "simple", 1, answers, nil)

	if len(result.ConsensusClaims) != 0 {
		t.Errorf("ConsensusClaims = %+v, want none at 0.5", result.ConsensusClaims)
	}
	// The shared cluster splits into one dissent per supporter.
	count := 0
	for _, d := range result.Dissents {
		if d.Claim == shared {
			count++
		}
	}
	if count != 2 {
		t.Errorf("dissent entries for the shared claim = %d, want 2", count)
	}
}

func TestAggregate_TieBreakByRegistryOrder(t *testing.T) {
	agg := NewAggregator(DefaultSimilarityThreshold)
	// Two clusters with identical scores; the one founded by the earlier
	// provider must rank first.
	answers := []Answer{
		{Provider: "alpha", Claims: []string{"claim from the first provider ranks first"}},
		{Provider: "beta", Claims: []string{
			"claim from the first provider ranks first",
			"claim founded by the second provider ranks after",
		}},
		{Provider: "gamma", Claims: []string{"claim founded by the second provider ranks after"}},
	}

	result := agg.Aggregate("s1", "simple", 1, answers, nil)

	if len(result.ConsensusClaims) != 2 {
		t.Fatalf("ConsensusClaims = %+v, want 2", result.ConsensusClaims)
	}
	if !strings.Contains(result.ConsensusClaims[0].Claim, "first provider") {
		t.Errorf("rank 1 claim = %q, want the alpha-founded cluster", result.ConsensusClaims[0].Claim)
	}
	if !strings.Contains(result.ConsensusClaims[1].Claim, "second provider") {
		t.Errorf("rank 2 claim = %q, want the beta-founded cluster", result.ConsensusClaims[1].Claim)
	}
}

func TestAggregate_KeepsLongestPhrasing(t *testing.T) {
	agg := NewAggregator(DefaultSimilarityThreshold)
	short := "the model outperforms the baselines"
	long := "the model outperforms the baselines!!"
	answers := []Answer{
		{Provider: "alpha", Claims: []string{short}},
		{Provider: "beta", Claims: []string{long}},
	}

	result := agg.Aggregate("s1", "simple", 1, answers, nil)

	if len(result.ConsensusClaims) != 1 {
		t.Fatalf("ConsensusClaims = %+v, want 1", result.ConsensusClaims)
	}
	if got := result.ConsensusClaims[0].Claim; got != long {
		t.Errorf("representative = %q, want the longer phrasing %q", got, long)
	}
}

func TestAggregate_DuplicateClaimsFromOneProviderCountOnce(t *testing.T) {
	agg := NewAggregator(DefaultSimilarityThreshold)
	answers := []Answer{
		{Provider: "alpha", Claims: []string{
			"the ablation supports the main claim",
			"the ablation supports the main claim",
		}},
		{Provider: "beta", Claims: []string{"the ablation supports the main claim"}},
	}

	result := agg.Aggregate("s1", "simple", 1, answers, nil)

	if len(result.ConsensusClaims) != 1 {
		t.Fatalf("ConsensusClaims = %+v, want 1", result.ConsensusClaims)
	}
	if got := result.ConsensusClaims[0].SupportingProviders; len(got) != 2 {
		t.Errorf("SupportingProviders = %v, want alpha counted once", got)
	}
}

func TestAggregate_WarningsNeverNil(t *testing.T) {
	agg := NewAggregator(DefaultSimilarityThreshold)
	result := agg.Aggregate("s1", "simple", 1, nil, nil)

	if result.Warnings == nil {
		t.Error("Warnings should be an empty slice, not nil")
	}
}

func TestAggregate_Synthesis(t *testing.T) {
	agg := NewAggregator(DefaultSimilarityThreshold)
	answers := []Answer{
		{Provider: "alpha", Claims: []string{"the core claim is well supported"}},
		{Provider: "beta", Claims: []string{"the core claim is well supported"}},
		{Provider: "gamma", Claims: []string{"reproducibility is not addressed at all"}},
	}

	result := agg.Aggregate("s1", "deep", 3, answers, nil)

	for _, want := range []string{
		"deep mode, 3 round(s)",
		"alpha, beta, gamma",
		"## Consensus",
		"the core claim is well supported",
		"## Dissents",
		"reproducibility is not addressed at all (gamma)",
	} {
		if !strings.Contains(result.FinalSynthesis, want) {
			t.Errorf("FinalSynthesis missing %q:\n%s", want, result.FinalSynthesis)
		}
	}
}

func TestNewAggregator_ThresholdBounds(t *testing.T) {
	for _, bad := range []float64{-1, 0, 1.5} {
		agg := NewAggregator(bad)
		if agg.threshold != DefaultSimilarityThreshold {
			t.Errorf("threshold(%v) = %v, want default", bad, agg.threshold)
		}
	}
	if agg := NewAggregator(0.9); agg.threshold != 0.9 {
		t.Errorf("threshold(0.9) = %v", agg.threshold)
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 1},
		{"abcd", "abcd", 1},
		{"abcd", "abce", 0.75},
		{"abcd", "wxyz", 0},
	}

	for _, tt := range tests {
		if got := Similarity(tt.a, tt.b); got != tt.want {
			t.Errorf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
