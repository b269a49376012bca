package clips

import (
	"fmt"
	"strings"

	"linguo/internal/catalog"
	"linguo/internal/timecode"
)

// composeCues renders the clip's subtitles as a WEBVTT document with cue
// times rebased so the clip starts at zero. texts carries the display text
// per subtitle, already substituted where requested.
func composeCues(subtitles []*catalog.Subtitle, texts []string, base float64) (string, error) {
	cues := make([]string, 0, len(subtitles))
	for i, subtitle := range subtitles {
		begin, err := timecode.ToSeconds(subtitle.TimeBegin)
		if err != nil {
			return "", fmt.Errorf("cue %d begin: %w", i, err)
		}
		end, err := timecode.ToSeconds(subtitle.TimeEnd)
		if err != nil {
			return "", fmt.Errorf("cue %d end: %w", i, err)
		}
		cues = append(cues, fmt.Sprintf("%s --> %s\n%s",
			timecode.ToTimestamp(begin-base),
			timecode.ToTimestamp(end-base),
			texts[i]))
	}
	return "WEBVTT\n\n" + strings.Join(cues, "\n\n") + "\n", nil
}
