package textnorm

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "mixed case with punctuation and stop words",
			input: "The Quick, Brown Fox!",
			want:  "quick brown fox",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
		{
			name:  "whitespace only",
			input: "   \t\n  ",
			want:  "",
		},
		{
			name:  "stop words only",
			input: "the and of",
			want:  "",
		},
		{
			name:  "collapses whitespace runs",
			input: "what   is\tyour    name",
			want:  "what is your name",
		},
		{
			name:  "question with trailing punctuation",
			input: "What is your name?",
			want:  "what is your name",
		},
		{
			name:  "stop word matching is case insensitive",
			input: "COULD you Please explain THE refund policy",
			want:  "you explain refund policy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"The Quick, Brown Fox!",
		"What is your name?",
		"already normalized text",
		"",
	}

	for _, input := range inputs {
		once := Normalize(input)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first=%q second=%q", input, once, twice)
		}
	}
}
