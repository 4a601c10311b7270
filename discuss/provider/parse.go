package provider

import (
	"encoding/json"
	"strings"
)

// answerEnvelope is the JSON output convention every backend is prompted
// for: the full analysis as prose plus a list of discrete claims.
type answerEnvelope struct {
	Summary string   `json:"summary"`
	Claims  []string `json:"claims"`
}

// ParseAnswer extracts the structured answer from raw backend output.
//
// Backends are asked for a {"summary": ..., "claims": [...]} JSON object
// but do not always comply: some wrap it in markdown fences, some prepend
// prose, some ignore the convention entirely. ParseAnswer degrades
// gracefully: a parseable envelope yields prose content plus claims, and
// anything else yields the raw text as content with no claims, leaving
// claim extraction to the aggregator's sentence segmentation.
func ParseAnswer(raw string) (content string, claims []string) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", nil
	}

	if env, ok := decodeEnvelope(stripFences(trimmed)); ok {
		return env.Summary, cleanClaims(env.Claims)
	}

	// Some backends prepend prose before the JSON object. Try the
	// outermost brace span before giving up.
	if start, end := strings.Index(trimmed, "{"), strings.LastIndex(trimmed, "}"); start >= 0 && end > start {
		if env, ok := decodeEnvelope(trimmed[start : end+1]); ok {
			return env.Summary, cleanClaims(env.Claims)
		}
	}

	return trimmed, nil
}

func decodeEnvelope(s string) (answerEnvelope, bool) {
	var env answerEnvelope
	if err := json.Unmarshal([]byte(s), &env); err != nil {
		return answerEnvelope{}, false
	}
	if strings.TrimSpace(env.Summary) == "" {
		return answerEnvelope{}, false
	}
	env.Summary = strings.TrimSpace(env.Summary)
	return env, true
}

// stripFences removes a wrapping markdown code fence, if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func cleanClaims(claims []string) []string {
	out := make([]string, 0, len(claims))
	for _, c := range claims {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
