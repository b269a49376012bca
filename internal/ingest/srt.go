package ingest

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Cue is one parsed subtitle cue. Timestamps are canonicalized to the
// HH:MM:SS.mmm form the catalog stores.
type Cue struct {
	Begin string
	End   string
	Text  string
}

var timingLine = regexp.MustCompile(
	`^(\d{2}:\d{2}:\d{2}[,.]\d{1,3})\s*-->\s*(\d{2}:\d{2}:\d{2}[,.]\d{1,3})`)

// ParseSRT reads a SubRip document. Cue counters are ignored; blocks without
// a timing line are malformed. Multi-line cue text is joined with newlines.
func ParseSRT(r io.Reader) ([]Cue, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		cues    []Cue
		current *Cue
		block   int
	)
	flush := func() {
		if current != nil {
			current.Text = strings.TrimSpace(current.Text)
			cues = append(cues, *current)
			current = nil
		}
	}

	first := true
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
			first = false
		}
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			flush()
			continue
		}
		if m := timingLine.FindStringSubmatch(trimmed); m != nil {
			flush()
			block++
			current = &Cue{Begin: canonicalTimestamp(m[1]), End: canonicalTimestamp(m[2])}
			continue
		}
		if current == nil {
			// A lone counter before the timing line.
			if isCounter(trimmed) {
				continue
			}
			return nil, fmt.Errorf("block %d: text before timing line: %q", block+1, trimmed)
		}
		if current.Text != "" {
			current.Text += "\n"
		}
		current.Text += line
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read subtitles: %w", err)
	}
	flush()

	if len(cues) == 0 {
		return nil, fmt.Errorf("no cues found")
	}
	return cues, nil
}

func isCounter(line string) bool {
	for _, r := range line {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func canonicalTimestamp(ts string) string {
	return strings.Replace(ts, ",", ".", 1)
}
