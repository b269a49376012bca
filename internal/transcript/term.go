package transcript

import (
	"fmt"
	"strings"

	"linguo/internal/services"
)

// GapMarker splits a search term into ordered sub-phrases that must all
// appear, in order, within one contiguous span of the transcript index.
const GapMarker = "[...]"

// Span is a half-open [Begin, End) character range in a transcript index.
type Span struct {
	Begin int
	End   int
}

// Term is a normalized, possibly gapped search term.
type Term struct {
	phrases []string
}

// ParseTerm normalizes a raw search term, honoring the gap marker. Terms
// whose normalized length falls below minLength are rejected before any I/O.
func ParseTerm(raw string, minLength int) (Term, error) {
	parts := strings.Split(raw, GapMarker)
	phrases := make([]string, 0, len(parts))
	total := 0
	for _, part := range parts {
		normalized := Normalize(part)
		if normalized == "" {
			continue
		}
		phrases = append(phrases, normalized)
		total += len(normalized)
	}
	if len(phrases) == 0 || total < minLength {
		return Term{}, services.Wrap(services.ErrValidation, "search", "term",
			fmt.Sprintf("term must normalize to at least %d characters", minLength), nil)
	}
	return Term{phrases: phrases}, nil
}

// Phrases returns the ordered normalized sub-phrases.
func (t Term) Phrases() []string {
	return append([]string{}, t.phrases...)
}

// IsGapped reports whether the term carries more than one sub-phrase.
func (t Term) IsGapped() bool {
	return len(t.phrases) > 1
}

// LikePattern renders the term as a SQL LIKE pattern for candidate episode
// selection, with gaps mapped to the multi-character wildcard.
func (t Term) LikePattern() string {
	return "%" + strings.Join(t.phrases, "%") + "%"
}

// FindAt locates the next occurrence of the term at or after the from offset.
// The returned span runs from the start of the first sub-phrase to the end of
// the last, with every intermediate sub-phrase appearing in order between
// them. ok is false when no further occurrence exists.
func (t Term) FindAt(index string, from int) (Span, bool) {
	if len(t.phrases) == 0 || from < 0 || from > len(index) {
		return Span{}, false
	}
	first := t.phrases[0]
	i := strings.Index(index[from:], first)
	if i < 0 {
		return Span{}, false
	}
	begin := from + i
	cursor := begin + len(first)
	for _, phrase := range t.phrases[1:] {
		j := strings.Index(index[cursor:], phrase)
		if j < 0 {
			return Span{}, false
		}
		cursor += j + len(phrase)
	}
	return Span{Begin: begin, End: cursor}, true
}

// Occurrences returns every non-overlapping occurrence of the term, each
// search resuming just past the previous span's end.
func (t Term) Occurrences(index string) []Span {
	var spans []Span
	from := 0
	for {
		span, ok := t.FindAt(index, from)
		if !ok {
			return spans
		}
		spans = append(spans, span)
		from = span.End
	}
}
