package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitShortText(t *testing.T) {
	if got := Split("Hello world.", 100); len(got) != 1 || got[0] != "Hello world." {
		t.Fatalf("got %q", got)
	}
	if got := Split("", 100); got != nil {
		t.Fatalf("empty text should give no chunks, got %q", got)
	}
}

func TestSplitIsLossless(t *testing.T) {
	texts := []string{
		"First paragraph. It has two sentences.\n\nSecond paragraph is here.\nWith a second line.\n\nThird.",
		strings.Repeat("word ", 200),
		strings.Repeat("一二三四五六七八九十。", 30),
		strings.Repeat("x", 95),
	}
	for _, text := range texts {
		for _, max := range []int{10, 25, 60} {
			chunks := Split(text, max)
			if joined := strings.Join(chunks, ""); joined != text {
				t.Fatalf("max %d: chunks do not rebuild the text", max)
			}
			for _, c := range chunks {
				if n := utf8.RuneCountInString(c); n > max || n == 0 {
					t.Fatalf("max %d: chunk of %d runes: %q", max, n, c)
				}
			}
		}
	}
}

func TestSplitPrefersParagraphs(t *testing.T) {
	text := "Alpha alpha.\n\nBeta beta.\n\nGamma gamma."
	got := Split(text, 28)
	want := []string{"Alpha alpha.\n\nBeta beta.\n\n", "Gamma gamma."}
	if len(got) != len(want) {
		t.Fatalf("got %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("chunk %d: got %q, want %q", i, got[i], want[i])
		}
	}
}
