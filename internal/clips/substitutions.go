package clips

import (
	"fmt"
	"strings"

	"linguo/internal/services"
)

// substitutionKeep marks a position whose original subtitle text survives.
const substitutionKeep = "~"

// parseSubstitutions splits a raw comma-separated substitution set into one
// replacement per subtitle. Entries may be double-quoted to carry literal
// commas; the keep marker leaves that subtitle's text untouched. The entry
// count must match the clip's subtitle count exactly.
func parseSubstitutions(raw string, subtitleCount int) ([]string, error) {
	entries := splitQuoted(raw)
	if len(entries) != subtitleCount {
		return nil, services.Wrap(services.ErrValidation, "clips", "substitutions",
			fmt.Sprintf("%d entries for %d subtitles", len(entries), subtitleCount), nil)
	}
	return entries, nil
}

// applySubstitutions returns the cue text for each subtitle with its
// replacement applied.
func applySubstitutions(texts, substitutions []string) []string {
	if len(substitutions) == 0 {
		return texts
	}
	out := make([]string, len(texts))
	for i, text := range texts {
		if i < len(substitutions) && substitutions[i] != substitutionKeep {
			out[i] = substitutions[i]
			continue
		}
		out[i] = text
	}
	return out
}

// splitQuoted splits on commas outside double quotes. Quotes wrapping a whole
// entry are stripped; doubled quotes inside a quoted entry collapse to one.
func splitQuoted(raw string) []string {
	var (
		entries []string
		current strings.Builder
		quoted  bool
	)
	runes := []rune(raw)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"':
			if quoted && i+1 < len(runes) && runes[i+1] == '"' {
				current.WriteRune('"')
				i++
				continue
			}
			quoted = !quoted
		case r == ',' && !quoted:
			entries = append(entries, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	entries = append(entries, current.String())
	return entries
}

// canonicalSubstitutions renders the parsed set back into the exact string
// stored on the generation record and hashed into the artifact fingerprint,
// so equivalent quotings share one cache entry.
func canonicalSubstitutions(entries []string) string {
	quoted := make([]string, len(entries))
	for i, entry := range entries {
		if strings.ContainsAny(entry, `,"`) {
			quoted[i] = `"` + strings.ReplaceAll(entry, `"`, `""`) + `"`
			continue
		}
		quoted[i] = entry
	}
	return strings.Join(quoted, ",")
}
