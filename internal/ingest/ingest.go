// Package ingest loads SubRip transcripts into the catalog. Each file maps to
// one episode; the transcript index and per-subtitle character ranges are
// built during ingestion so search never recomputes them.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"linguo/internal/catalog"
	"linguo/internal/logging"
	"linguo/internal/services"
	"linguo/internal/transcript"
)

// Ingestor writes parsed transcripts into the catalog.
type Ingestor struct {
	store  *catalog.Store
	logger *slog.Logger
}

// New constructs an Ingestor.
func New(store *catalog.Store, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Ingestor{store: store, logger: logger.With(slog.String("component", "ingest"))}
}

// Report summarizes one ingestion run.
type Report struct {
	Episodes  int
	Subtitles int
	Skipped   []string
}

var episodePattern = regexp.MustCompile(`(?i)s(\d{1,2})\s*e(\d{1,3})`)

// IngestFile loads a single transcript into the given season and episode
// slot, replacing any previous transcript at that position.
func (i *Ingestor) IngestFile(ctx context.Context, path string, season, episodeNum int, title string) (*catalog.Episode, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open transcript: %w", err)
	}
	defer file.Close()

	cues, err := ParseSRT(file)
	if err != nil {
		return nil, 0, services.Wrap(services.ErrValidation, "ingest", "parse",
			filepath.Base(path), err)
	}

	if err := i.store.UpsertSeason(ctx, &catalog.Season{
		ID:         int64(season),
		Identifier: fmt.Sprintf("season-%d", season),
		Title:      fmt.Sprintf("Season %d", season),
	}); err != nil {
		return nil, 0, err
	}

	texts := make([]string, len(cues))
	for j, cue := range cues {
		texts[j] = cue.Text
	}
	index, ranges := transcript.BuildIndex(texts)

	subtitles := make([]*catalog.Subtitle, len(cues))
	for j, cue := range cues {
		subtitles[j] = &catalog.Subtitle{
			TimeBegin:  cue.Begin,
			TimeEnd:    cue.End,
			Text:       cue.Text,
			IndexBegin: ranges[j].Begin,
			IndexEnd:   ranges[j].End,
		}
	}

	episode := &catalog.Episode{
		Identifier:      uuid.NewString(),
		SeasonID:        int64(season),
		IDInSeason:      episodeNum,
		Title:           title,
		TranscriptIndex: index,
	}
	if err := i.store.SaveEpisode(ctx, episode, subtitles); err != nil {
		return nil, 0, err
	}

	i.logger.Info("ingested episode",
		slog.Int("season", season),
		slog.Int("episode", episodeNum),
		slog.Int("subtitles", len(subtitles)))
	return episode, len(subtitles), nil
}

// IngestDir walks a directory of .srt files, deriving season and episode
// numbers from the SxxEyy convention in each file name. Files without a
// recognizable slot are skipped and reported, not fatal.
func (i *Ingestor) IngestDir(ctx context.Context, dir string) (*Report, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read transcript directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".srt") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	report := &Report{}
	for _, name := range names {
		season, episodeNum, ok := parseSlot(name)
		if !ok {
			report.Skipped = append(report.Skipped, name)
			i.logger.Warn("no episode slot in file name", slog.String("file", name))
			continue
		}
		_, count, err := i.IngestFile(ctx, filepath.Join(dir, name), season, episodeNum, titleFromName(name))
		if err != nil {
			return report, fmt.Errorf("ingest %s: %w", name, err)
		}
		report.Episodes++
		report.Subtitles += count
	}
	return report, nil
}

func parseSlot(name string) (int, int, bool) {
	m := episodePattern.FindStringSubmatch(name)
	if m == nil {
		return 0, 0, false
	}
	season, err := strconv.Atoi(m[1])
	if err != nil || season == 0 {
		return 0, 0, false
	}
	episode, err := strconv.Atoi(m[2])
	if err != nil || episode == 0 {
		return 0, 0, false
	}
	return season, episode, true
}

// titleFromName derives a display title from the file name remainder after
// the episode slot, falling back to the bare slot.
func titleFromName(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	loc := episodePattern.FindStringIndex(base)
	if loc == nil {
		return base
	}
	rest := base[loc[1]:]
	rest = strings.Trim(rest, " .-_")
	if rest == "" {
		return strings.ToUpper(base[loc[0]:loc[1]])
	}
	return strings.ReplaceAll(rest, ".", " ")
}
