package testsupport

import (
	"context"
	"fmt"
	"testing"

	"linguo/internal/catalog"
	"linguo/internal/config"
	"linguo/internal/transcript"
)

// MustOpenStore opens a catalog.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// Line is one subtitle of a seeded episode. Times are optional; when empty
// they default to consecutive five second windows.
type Line struct {
	Begin string
	End   string
	Text  string
}

// SeedEpisode stores a season and an episode whose transcript index and
// subtitle ranges are built from the provided lines, mirroring ingestion.
// Returns the saved episode and its subtitles with assigned IDs.
func SeedEpisode(t testing.TB, store *catalog.Store, seasonID int64, idInSeason int, lines []Line) (*catalog.Episode, []*catalog.Subtitle) {
	t.Helper()

	season := &catalog.Season{
		ID:         seasonID,
		Identifier: fmt.Sprintf("season-%d", seasonID),
		Title:      fmt.Sprintf("Season %d", seasonID),
	}
	if err := store.UpsertSeason(context.Background(), season); err != nil {
		t.Fatalf("UpsertSeason: %v", err)
	}

	texts := make([]string, len(lines))
	for i, line := range lines {
		texts[i] = line.Text
	}
	index, ranges := transcript.BuildIndex(texts)

	subtitles := make([]*catalog.Subtitle, len(lines))
	for i, line := range lines {
		begin, end := line.Begin, line.End
		if begin == "" {
			begin = fmt.Sprintf("00:00:%02d.000", i*5)
		}
		if end == "" {
			end = fmt.Sprintf("00:00:%02d.000", i*5+4)
		}
		subtitles[i] = &catalog.Subtitle{
			TimeBegin:  begin,
			TimeEnd:    end,
			Text:       line.Text,
			IndexBegin: ranges[i].Begin,
			IndexEnd:   ranges[i].End,
		}
	}

	episode := &catalog.Episode{
		Identifier:      fmt.Sprintf("episode-%d-%d", seasonID, idInSeason),
		SeasonID:        seasonID,
		IDInSeason:      idInSeason,
		Title:           fmt.Sprintf("Episode %d", idInSeason),
		TranscriptIndex: index,
	}
	if err := store.SaveEpisode(context.Background(), episode, subtitles); err != nil {
		t.Fatalf("SaveEpisode: %v", err)
	}
	return episode, subtitles
}
