// Package chunker splits long documents into pieces small enough for a
// single translation request.
package chunker

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxRunes keeps a chunk below the size the DeepL web translator
// accepts in one request.
const DefaultMaxRunes = 4500

// separators are tried in order; a piece that is still too long after
// splitting on one is split on the next.
var separators = []string{"\n\n", "\n", ". ", "。", " "}

// Split breaks text into chunks of at most maxRunes runes, preferring
// paragraph, then line, then sentence, then word boundaries. Separators stay
// attached to the preceding chunk, so concatenating the chunks yields text.
func Split(text string, maxRunes int) []string {
	if text == "" {
		return nil
	}
	if maxRunes <= 0 {
		maxRunes = DefaultMaxRunes
	}
	return splitRecursive(text, separators, maxRunes)
}

func splitRecursive(text string, seps []string, maxRunes int) []string {
	if utf8.RuneCountInString(text) <= maxRunes {
		return []string{text}
	}

	if len(seps) == 0 {
		var result []string
		runes := []rune(text)
		for i := 0; i < len(runes); i += maxRunes {
			end := min(i+maxRunes, len(runes))
			result = append(result, string(runes[i:end]))
		}
		return result
	}

	var (
		result  []string
		current strings.Builder
		size    int
	)
	flush := func() {
		if size > 0 {
			result = append(result, current.String())
			current.Reset()
			size = 0
		}
	}

	for _, part := range strings.SplitAfter(text, seps[0]) {
		if part == "" {
			continue
		}
		n := utf8.RuneCountInString(part)
		if size+n > maxRunes {
			flush()
		}
		if n > maxRunes {
			result = append(result, splitRecursive(part, seps[1:], maxRunes)...)
			continue
		}
		current.WriteString(part)
		size += n
	}
	flush()

	return result
}
