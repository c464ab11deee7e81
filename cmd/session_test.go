package cmd

import (
	"testing"
	"unicode/utf8"
)

func TestClipKeepsMultibyteTitlesIntact(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten chars!", 18, "exactly ten chars!"},
		{"a very long session title here", 10, "a very lo…"},
		{"日本語のタイトルです", 6, "日本語のタ…"},
		{"naïve café session", 8, "naïve c…"},
	}
	for _, tt := range tests {
		got := clip(tt.in, tt.n)
		if got != tt.want {
			t.Errorf("clip(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("clip(%q, %d) produced invalid UTF-8: %q", tt.in, tt.n, got)
		}
	}
}
