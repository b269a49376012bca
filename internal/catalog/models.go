package catalog

import "time"

// Season is immutable reference data identifying one season of the show.
type Season struct {
	ID         int64
	Identifier string
	Title      string
}

// Episode carries the per-episode transcript index and the render-time
// subtitle correction in milliseconds.
type Episode struct {
	ID              int64
	Identifier      string
	SeasonID        int64
	IDInSeason      int
	Title           string
	TranscriptIndex string
	CorrectionMS    int64
}

// Correction returns the episode's subtitle correction in seconds, the unit
// the transcoding engine's seek offset uses.
func (e *Episode) Correction() float64 {
	return float64(e.CorrectionMS) / 1000
}

// EpisodeMeta is an episode joined with its season title for responses.
type EpisodeMeta struct {
	Episode
	SeasonTitle string
}

// Subtitle is one timed dialogue record. IDs are globally ordered and, within
// an episode, id order equals time order; IndexBegin/IndexEnd are the
// character offsets the subtitle occupies in its episode's transcript index.
type Subtitle struct {
	ID         int64
	EpisodeID  int64
	TimeBegin  string
	TimeEnd    string
	Text       string
	IndexBegin int
	IndexEnd   int
}

// Clip is a deduplicated selection of a contiguous subtitle range with a
// temporal offset and extension. Identity is the
// (subtitle_begin, subtitle_end, offset, extend) tuple.
type Clip struct {
	UUID          string
	EpisodeID     int64
	SubtitleBegin int64
	SubtitleEnd   int64
	Transcript    string
	Offset        float64
	Extend        float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// GenerationKey is the cache key of one rendered artifact of a clip.
type GenerationKey struct {
	ClipUUID      string
	Filetype      string
	Resolution    int
	Subtitles     bool
	Substitutions string
}

// Generation is one rendered artifact of a clip under a specific set of
// render options. Counters mutate monotonically upward.
type Generation struct {
	UUID          string
	ClipUUID      string
	Filetype      string
	Resolution    int
	Subtitles     bool
	Substitutions string
	// Artifact is the clip file name inside its filetype directory.
	Artifact string
	// Snapshot is the reference still frame, relative to the data directory.
	Snapshot  string
	Views     int64
	Copies    int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Key returns the generation's cache key.
func (g *Generation) Key() GenerationKey {
	return GenerationKey{
		ClipUUID:      g.ClipUUID,
		Filetype:      g.Filetype,
		Resolution:    g.Resolution,
		Subtitles:     g.Subtitles,
		Substitutions: g.Substitutions,
	}
}

// Counts aggregates catalog totals for the stats reporter.
type Counts struct {
	Seasons     int64
	Episodes    int64
	Subtitles   int64
	Clips       int64
	Generations int64
}
