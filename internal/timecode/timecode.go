// Package timecode converts between subtitle timestamp strings and seconds.
// Timestamps use the HH:MM:SS.mmm form stored with every subtitle record.
package timecode

import (
	"fmt"
	"strconv"
	"strings"
)

// ToSeconds parses an HH:MM:SS(.mmm) timestamp into seconds.
func ToSeconds(ts string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(ts), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("malformed timestamp %q", ts)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("malformed timestamp %q: %w", ts, err)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("malformed timestamp %q: %w", ts, err)
	}
	// Some subtitle sources use a comma for the millisecond separator.
	seconds, err := strconv.ParseFloat(strings.Replace(parts[2], ",", ".", 1), 64)
	if err != nil {
		return 0, fmt.Errorf("malformed timestamp %q: %w", ts, err)
	}
	if hours < 0 || minutes < 0 || minutes > 59 || seconds < 0 || seconds >= 60 {
		return 0, fmt.Errorf("timestamp out of range %q", ts)
	}
	return float64(hours)*3600 + float64(minutes)*60 + seconds, nil
}

// ToTimestamp renders seconds as a zero-padded HH:MM:SS.mmm timestamp, the
// form WEBVTT cues expect. Negative inputs clamp to zero.
func ToTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	whole := int(seconds)
	hours := whole / 3600
	minutes := (whole % 3600) / 60
	secs := seconds - float64(hours*3600+minutes*60)
	return fmt.Sprintf("%02d:%02d:%06.3f", hours, minutes, secs)
}
