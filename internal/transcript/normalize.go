package transcript

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// decomposer strips combining marks so accented dialogue folds onto its base
// letters before the alphanumeric filter runs.
var decomposer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

// Normalize reduces display text to the transcript index alphabet: lowercase
// ASCII letters and digits, everything else removed. The same function is
// applied to search terms and to subtitle text at ingest time so character
// offsets always agree.
func Normalize(text string) string {
	folded, _, err := transform.String(decomposer, text)
	if err != nil {
		folded = text
	}
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
