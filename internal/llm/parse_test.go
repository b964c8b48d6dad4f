package llm

import (
	"errors"
	"testing"
)

func TestParseLoose(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantKey string
		wantErr bool
	}{
		{"plain object", `{"tone": "Neutral"}`, "tone", false},
		{"json fence", "```json\n{\"tone\": \"Neutral\"}\n```", "tone", false},
		{"bare fence", "```\n{\"claims\": []}\n```", "claims", false},
		{"prose wrapper", "Here is the answer:\n{\"overall_consistency\": 72}\nHope that helps.", "overall_consistency", false},
		{"nested braces", `Result: {"temporal_details": {"date": "1861"}} done`, "temporal_details", false},
		{"empty", "", "", true},
		{"pure prose", "I cannot determine this.", "", true},
		{"truncated", `{"claims": ["one", "tw`, "", true},
		{"array only", `["a", "b"]`, "", true},
		{"reversed braces", `} nothing {`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := ParseLoose(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error for %q, got tree %v", tt.raw, tree)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLoose(%q) failed: %v", tt.raw, err)
			}
			if _, ok := tree[tt.wantKey]; !ok {
				t.Errorf("Expected key %q in %v", tt.wantKey, tree)
			}
		})
	}
}

func TestParseLoose_NoObjectSentinel(t *testing.T) {
	_, err := ParseLoose("no braces here")
	if !errors.Is(err, ErrNoJSONObject) {
		t.Errorf("Expected ErrNoJSONObject, got %v", err)
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"```json\n{}\n```", "{}"},
		{"```JSON {} ```", "{}"},
		{"  {}  ", "{}"},
		{"text ```{}```", "text ```{}```"},
	}
	for _, tt := range tests {
		if got := StripFences(tt.in); got != tt.want {
			t.Errorf("StripFences(%q) = %q, expected %q", tt.in, got, tt.want)
		}
	}
}

func TestSnippet(t *testing.T) {
	if got := Snippet("   "); got != "<empty>" {
		t.Errorf("Expected <empty>, got %q", got)
	}
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'a'
	}
	if got := Snippet(string(long)); len(got) != 163 {
		t.Errorf("Expected truncated snippet of 163 bytes, got %d", len(got))
	}
}
