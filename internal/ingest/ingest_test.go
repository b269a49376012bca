package ingest_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"linguo/internal/ingest"
	"linguo/internal/logging"
	"linguo/internal/services"
	"linguo/internal/testsupport"
)

const sampleSRT = "1\r\n" +
	"00:01:00,000 --> 00:01:02,500\r\n" +
	"Hi-diddly-ho, neighborino!\r\n" +
	"\r\n" +
	"2\r\n" +
	"00:01:03,000 --> 00:01:05,000\r\n" +
	"Feels like I'm wearing\r\n" +
	"nothing at all.\r\n" +
	"\r\n"

func TestParseSRT(t *testing.T) {
	cues, err := ingest.ParseSRT(strings.NewReader("\ufeff" + sampleSRT))
	if err != nil {
		t.Fatalf("ParseSRT: %v", err)
	}
	if len(cues) != 2 {
		t.Fatalf("cues = %d, want 2", len(cues))
	}
	if cues[0].Begin != "00:01:00.000" || cues[0].End != "00:01:02.500" {
		t.Fatalf("cue 0 times = %s -> %s", cues[0].Begin, cues[0].End)
	}
	if cues[0].Text != "Hi-diddly-ho, neighborino!" {
		t.Fatalf("cue 0 text = %q", cues[0].Text)
	}
	if cues[1].Text != "Feels like I'm wearing\nnothing at all." {
		t.Fatalf("cue 1 text = %q", cues[1].Text)
	}
}

func TestParseSRTWithoutTrailingBlankLine(t *testing.T) {
	cues, err := ingest.ParseSRT(strings.NewReader("1\n00:00:01.000 --> 00:00:02.000\nLast cue"))
	if err != nil {
		t.Fatalf("ParseSRT: %v", err)
	}
	if len(cues) != 1 || cues[0].Text != "Last cue" {
		t.Fatalf("cues = %+v", cues)
	}
}

func TestParseSRTErrors(t *testing.T) {
	if _, err := ingest.ParseSRT(strings.NewReader("")); err == nil {
		t.Fatal("empty document should fail")
	}
	if _, err := ingest.ParseSRT(strings.NewReader("dialogue without timing\n")); err == nil {
		t.Fatal("text before a timing line should fail")
	}
}

func TestIngestFileBuildsSearchableEpisode(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ingestor := ingest.New(store, logging.NewNop())

	path := filepath.Join(t.TempDir(), "show.S01E01.srt")
	if err := os.WriteFile(path, []byte(sampleSRT), 0o644); err != nil {
		t.Fatalf("write srt: %v", err)
	}

	episode, count, err := ingestor.IngestFile(context.Background(), path, 1, 1, "Pilot")
	if err != nil {
		t.Fatalf("IngestFile: %v", err)
	}
	if count != 2 {
		t.Fatalf("subtitle count = %d", count)
	}
	if !strings.Contains(episode.TranscriptIndex, "hididdlyho") {
		t.Fatalf("transcript index = %q", episode.TranscriptIndex)
	}

	subtitles, err := store.SubtitlesInRange(context.Background(), 0, 1<<30)
	if err != nil {
		t.Fatalf("SubtitlesInRange: %v", err)
	}
	if len(subtitles) != 2 {
		t.Fatalf("stored subtitles = %d", len(subtitles))
	}
	if subtitles[0].IndexEnd != subtitles[1].IndexBegin {
		t.Fatal("subtitle index ranges should be contiguous")
	}
	if subtitles[1].IndexEnd != len(episode.TranscriptIndex) {
		t.Fatal("last subtitle range should end at the index boundary")
	}
}

func TestIngestFileRejectsMalformed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ingestor := ingest.New(store, logging.NewNop())

	path := filepath.Join(t.TempDir(), "broken.S01E01.srt")
	if err := os.WriteFile(path, []byte("not a subtitle file\n"), 0o644); err != nil {
		t.Fatalf("write srt: %v", err)
	}
	_, _, err := ingestor.IngestFile(context.Background(), path, 1, 1, "Broken")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestIngestDir(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ingestor := ingest.New(store, logging.NewNop())

	dir := t.TempDir()
	files := map[string]string{
		"show.S01E01.Pilot.srt":  sampleSRT,
		"show.s1e2.srt":          sampleSRT,
		"extras-no-slot.srt":     sampleSRT,
		"notes.txt":              "ignored",
		"show.S01E03.Title.html": "ignored",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	report, err := ingestor.IngestDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("IngestDir: %v", err)
	}
	if report.Episodes != 2 || report.Subtitles != 4 {
		t.Fatalf("report = %+v", report)
	}
	if len(report.Skipped) != 1 || report.Skipped[0] != "extras-no-slot.srt" {
		t.Fatalf("skipped = %v", report.Skipped)
	}

	episodes, err := store.Episodes(context.Background())
	if err != nil {
		t.Fatalf("Episodes: %v", err)
	}
	if len(episodes) != 2 {
		t.Fatalf("episodes = %d", len(episodes))
	}
	if episodes[0].Title != "Pilot" {
		t.Fatalf("title = %q", episodes[0].Title)
	}
}
