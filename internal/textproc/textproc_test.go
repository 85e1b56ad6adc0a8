package textproc

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"already clean", "one two three", "one two three"},
		{"collapses runs", "one   two\t\tthree", "one two three"},
		{"newlines and tabs", "line one\nline two\r\n\tline three", "line one line two line three"},
		{"nul bytes", "before\x00after", "before after"},
		{"leading and trailing", "  padded  ", "padded"},
		{"only whitespace", " \n\t ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestChunk_EmptyInput(t *testing.T) {
	if got := Chunk("", 100, 10); len(got) != 0 {
		t.Errorf("Chunk(\"\") = %v, want empty", got)
	}
}

func TestChunk_ShortInputSingleChunk(t *testing.T) {
	got := Chunk("a few short words", 100, 10)
	if len(got) != 1 {
		t.Fatalf("got %d chunks, want 1", len(got))
	}
	if got[0] != "a few short words" {
		t.Errorf("chunk = %q", got[0])
	}
}

func TestChunk_SplitsAtBoundary(t *testing.T) {
	// 26 words of 4 chars each: 5 chars per word with separator.
	words := make([]string, 26)
	for i := range words {
		words[i] = "word"
	}
	text := strings.Join(words, " ")

	got := Chunk(text, 50, 0)
	if len(got) < 2 {
		t.Fatalf("got %d chunks, want at least 2", len(got))
	}
	for i, c := range got[:len(got)-1] {
		if len(c) < 50-5 {
			t.Errorf("chunk %d unexpectedly short: %d chars", i, len(c))
		}
	}
}

func TestChunk_OverlapSeedsNextChunk(t *testing.T) {
	words := make([]string, 40)
	for i := range words {
		words[i] = "word"
	}
	text := strings.Join(words, " ")

	got := Chunk(text, 60, 12)
	if len(got) < 2 {
		t.Fatalf("got %d chunks, want at least 2", len(got))
	}
	tail := got[0][len(got[0])-12:]
	if !strings.HasPrefix(got[1], tail) {
		t.Errorf("chunk 1 %q does not start with overlap %q", got[1], tail)
	}
}

func TestChunk_WordLongerThanMax(t *testing.T) {
	// Degenerate input must still terminate and keep every word.
	text := "tiny " + strings.Repeat("x", 30) + " tail"
	got := Chunk(text, 10, 0)
	joined := strings.Join(got, " ")
	for _, w := range strings.Fields(text) {
		if !strings.Contains(joined, w) {
			t.Errorf("word %q missing from chunks %v", w, got)
		}
	}
}
