package preview

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/leth4/leto-sub000/internal/domain"
)

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}']+`)

// SpellOverlay builds the misspelling layer drawn over a text card's preview.
// The overlay has the same text as the preview with every misspelled word
// outside excluded wrapped in a mark. It returns the byte ranges of those
// words as well. An inactive or missing checker yields an empty overlay.
func SpellOverlay(raw string, excluded []domain.Range, sc domain.Spellchecker) (string, []domain.Range) {
	if sc == nil || !sc.Active() {
		return "", nil
	}
	src := displayText(raw)

	var spans []span
	var bad []domain.Range
	for _, m := range wordPattern.FindAllStringIndex(src, -1) {
		start, end := trimApostrophes(src, m[0], m[1])
		if start >= end || inAny(excluded, start) {
			continue
		}
		word := src[start:end]
		if hasDigit(word) || sc.IsCorrect(word) {
			continue
		}
		spans = append(spans, span{start, end, ClassMisspelled})
		bad = append(bad, domain.Range{Start: start, End: end})
	}
	return decorate(src, spans), bad
}

func trimApostrophes(s string, start, end int) (int, int) {
	for start < end && s[start] == '\'' {
		start++
	}
	for end > start && s[end-1] == '\'' {
		end--
	}
	return start, end
}

func hasDigit(word string) bool {
	return strings.IndexFunc(word, unicode.IsDigit) >= 0
}
