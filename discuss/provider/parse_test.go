package provider

import (
	"reflect"
	"testing"
)

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantContent string
		wantClaims  []string
	}{
		{
			name:        "clean envelope",
			raw:         `{"summary": "The paper proposes X.", "claims": ["X improves Y", "Z is unaffected"]}`,
			wantContent: "The paper proposes X.",
			wantClaims:  []string{"X improves Y", "Z is unaffected"},
		},
		{
			name:        "fenced envelope",
			raw:         "```json\n{\"summary\": \"Fenced.\", \"claims\": [\"A\"]}\n```",
			wantContent: "Fenced.",
			wantClaims:  []string{"A"},
		},
		{
			name:        "prose before JSON",
			raw:         "Here is my analysis:\n{\"summary\": \"Wrapped.\", \"claims\": [\"B\"]}",
			wantContent: "Wrapped.",
			wantClaims:  []string{"B"},
		},
		{
			name:        "no claims in envelope",
			raw:         `{"summary": "Only prose.", "claims": []}`,
			wantContent: "Only prose.",
			wantClaims:  nil,
		},
		{
			name:        "blank claims dropped",
			raw:         `{"summary": "S.", "claims": ["  ", "real claim"]}`,
			wantContent: "S.",
			wantClaims:  []string{"real claim"},
		},
		{
			name:        "raw prose fallback",
			raw:         "The model ignored the format. It wrote prose instead.",
			wantContent: "The model ignored the format. It wrote prose instead.",
			wantClaims:  nil,
		},
		{
			name:        "invalid JSON falls back to raw",
			raw:         `{"summary": "broken`,
			wantContent: `{"summary": "broken`,
			wantClaims:  nil,
		},
		{
			name:        "empty summary falls back to raw",
			raw:         `{"summary": "", "claims": ["orphan"]}`,
			wantContent: `{"summary": "", "claims": ["orphan"]}`,
			wantClaims:  nil,
		},
		{
			name:        "empty input",
			raw:         "   ",
			wantContent: "",
			wantClaims:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, claims := ParseAnswer(tt.raw)
			if content != tt.wantContent {
				t.Errorf("content = %q, want %q", content, tt.wantContent)
			}
			if !reflect.DeepEqual(claims, tt.wantClaims) {
				t.Errorf("claims = %v, want %v", claims, tt.wantClaims)
			}
		})
	}
}
