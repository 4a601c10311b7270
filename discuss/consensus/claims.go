package consensus

import "strings"

// minClaimWords drops fragments too short to be a meaningful claim.
const minClaimWords = 3

// ExtractClaims returns the discrete claims of one answer.
//
// Provider-supplied structured claims win when present; otherwise the
// answer content is segmented into sentences. Both paths are pure functions
// of the input, so extraction is deterministic.
func ExtractClaims(ans Answer) []string {
	if len(ans.Claims) > 0 {
		var out []string
		for _, claim := range ans.Claims {
			claim = strings.TrimSpace(claim)
			if claim != "" {
				out = append(out, claim)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return SplitSentences(ans.Content)
}

// SplitSentences segments free text into claim-sized sentences.
//
// Segmentation happens on sentence terminators (. ! ?) and newlines;
// leading bullet and numbering markers are stripped; fragments shorter
// than minClaimWords words are dropped.
func SplitSentences(text string) []string {
	var out []string
	var current strings.Builder

	flush := func() {
		sentence := cleanFragment(current.String())
		current.Reset()
		if sentence != "" {
			out = append(out, sentence)
		}
	}

	for _, r := range text {
		switch r {
		case '.', '!', '?', '\n':
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return out
}

// cleanFragment trims a raw fragment, strips list markers, and discards
// fragments with too few words.
func cleanFragment(s string) string {
	s = strings.TrimSpace(s)
	for _, marker := range []string{"- ", "* ", "• "} {
		s = strings.TrimPrefix(s, marker)
	}
	// Strip "1) " / "1:" style numbering left over from list output.
	if i := strings.IndexAny(s, ")"); i > 0 && i <= 3 && isDigits(s[:i]) {
		s = strings.TrimSpace(s[i+1:])
	}
	if len(strings.Fields(s)) < minClaimWords {
		return ""
	}
	return s
}

// Normalize maps a claim to its comparison form: lowercase, punctuation
// removed, whitespace collapsed.
func Normalize(claim string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(claim) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == ' ' || r == '\t':
			sb.WriteRune(' ')
		case r > 127:
			// Keep non-ASCII letters; papers and answers are not always
			// English.
			sb.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
