package catalog_test

import (
	"context"
	"testing"

	"linguo/internal/catalog"
	"linguo/internal/testsupport"
)

func seedTwoEpisodes(t *testing.T, store *catalog.Store) (*catalog.Episode, []*catalog.Subtitle, *catalog.Episode, []*catalog.Subtitle) {
	t.Helper()
	ep1, subs1 := testsupport.SeedEpisode(t, store, 1, 1, []testsupport.Line{
		{Text: "Hi-diddly-ho, neighborino!"},
		{Text: "You know what they say."},
		{Text: "Everything's coming up Milhouse!"},
	})
	ep2, subs2 := testsupport.SeedEpisode(t, store, 1, 2, []testsupport.Line{
		{Text: "I call the big one Bitey."},
		{Text: "Everything's coming up roses."},
	})
	return ep1, subs1, ep2, subs2
}

func TestSaveEpisodeAssignsOrderedIDs(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	_, subs, _, _ := seedTwoEpisodes(t, store)

	for i := 1; i < len(subs); i++ {
		if subs[i].ID <= subs[i-1].ID {
			t.Fatalf("subtitle IDs not ascending: %d then %d", subs[i-1].ID, subs[i].ID)
		}
	}
}

func TestSaveEpisodeReplacesExisting(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	first, _ := testsupport.SeedEpisode(t, store, 1, 1, []testsupport.Line{{Text: "Old dialogue here."}})
	second, subs := testsupport.SeedEpisode(t, store, 1, 1, []testsupport.Line{{Text: "New dialogue here."}})

	if first.ID == second.ID {
		t.Fatal("replacement should assign a fresh episode id")
	}

	meta, err := store.EpisodeByID(context.Background(), first.ID)
	if err != nil {
		t.Fatalf("EpisodeByID: %v", err)
	}
	if meta != nil {
		t.Fatal("replaced episode should be gone")
	}

	remaining, err := store.SubtitlesInRange(context.Background(), 0, 1<<30)
	if err != nil {
		t.Fatalf("SubtitlesInRange: %v", err)
	}
	if len(remaining) != len(subs) {
		t.Fatalf("expected %d subtitles after replacement, got %d", len(subs), len(remaining))
	}
	for _, subtitle := range remaining {
		if subtitle.EpisodeID != second.ID {
			t.Fatalf("stale subtitle for episode %d", subtitle.EpisodeID)
		}
	}
}

func TestSearchEpisodesPatternAndFilters(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ep1, _, ep2, _ := seedTwoEpisodes(t, store)

	matches, total, err := store.SearchEpisodes(context.Background(), catalog.EpisodeQuery{
		Pattern: "%everythingscomingup%",
	})
	if err != nil {
		t.Fatalf("SearchEpisodes: %v", err)
	}
	if total != 2 || len(matches) != 2 {
		t.Fatalf("expected both episodes, got total=%d len=%d", total, len(matches))
	}
	if matches[0].ID != ep1.ID || matches[1].ID != ep2.ID {
		t.Fatal("candidates should come back in id order")
	}

	matches, total, err = store.SearchEpisodes(context.Background(), catalog.EpisodeQuery{
		Pattern: "%everythingscomingup%",
		Limit:   1,
		Offset:  1,
	})
	if err != nil {
		t.Fatalf("SearchEpisodes offset: %v", err)
	}
	if total != 2 || len(matches) != 1 || matches[0].ID != ep2.ID {
		t.Fatalf("offset should step to the second candidate, got total=%d len=%d", total, len(matches))
	}

	matches, total, err = store.SearchEpisodes(context.Background(), catalog.EpisodeQuery{
		Pattern:    "%everythingscomingup%",
		SeasonID:   1,
		IDInSeason: 2,
	})
	if err != nil {
		t.Fatalf("SearchEpisodes filtered: %v", err)
	}
	if total != 1 || len(matches) != 1 || matches[0].ID != ep2.ID {
		t.Fatal("season/episode filter should narrow to the second episode")
	}
}

func TestSubtitlesOverlapping(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ep, subs := testsupport.SeedEpisode(t, store, 3, 4, []testsupport.Line{
		{Text: "First line of dialogue."},
		{Text: "Second line of dialogue."},
		{Text: "Third line of dialogue."},
	})

	// A span strictly inside the second subtitle's range.
	begin := subs[1].IndexBegin + 1
	end := subs[1].IndexEnd - 1
	hits, err := store.SubtitlesOverlapping(context.Background(), ep.ID, begin, end)
	if err != nil {
		t.Fatalf("SubtitlesOverlapping: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != subs[1].ID {
		t.Fatalf("expected exactly the middle subtitle, got %d hits", len(hits))
	}

	// A span from inside the first to inside the third touches all three.
	hits, err = store.SubtitlesOverlapping(context.Background(), ep.ID, subs[0].IndexBegin+2, subs[2].IndexBegin+2)
	if err != nil {
		t.Fatalf("SubtitlesOverlapping: %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("expected all three subtitles, got %d", len(hits))
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].ID <= hits[i-1].ID {
			t.Fatal("overlap results should be id ordered")
		}
	}
}

func TestSubtitlesBeforeAndAfterClampAtBoundaries(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	_, subs := testsupport.SeedEpisode(t, store, 1, 1, []testsupport.Line{
		{Text: "Line one."},
		{Text: "Line two."},
		{Text: "Line three."},
	})

	before, err := store.SubtitlesBefore(context.Background(), subs[1].ID, 5)
	if err != nil {
		t.Fatalf("SubtitlesBefore: %v", err)
	}
	if len(before) != 1 || before[0].ID != subs[0].ID {
		t.Fatalf("expected only the first subtitle before, got %d", len(before))
	}

	after, err := store.SubtitlesAfter(context.Background(), subs[1].ID, 5)
	if err != nil {
		t.Fatalf("SubtitlesAfter: %v", err)
	}
	if len(after) != 1 || after[0].ID != subs[2].ID {
		t.Fatalf("expected only the last subtitle after, got %d", len(after))
	}

	before, err = store.SubtitlesBefore(context.Background(), subs[2].ID+10, 2)
	if err != nil {
		t.Fatalf("SubtitlesBefore limit: %v", err)
	}
	if len(before) != 2 || before[0].ID != subs[1].ID || before[1].ID != subs[2].ID {
		t.Fatal("limited lookback should return the nearest rows in ascending order")
	}
}

func TestClipDedupAndUniqueViolation(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ep, subs := testsupport.SeedEpisode(t, store, 1, 1, []testsupport.Line{
		{Text: "Worst episode ever."},
	})

	clip := &catalog.Clip{
		EpisodeID:     ep.ID,
		SubtitleBegin: subs[0].ID,
		SubtitleEnd:   subs[0].ID,
		Transcript:    "worstepisodeever",
	}
	if err := store.InsertClip(context.Background(), clip); err != nil {
		t.Fatalf("InsertClip: %v", err)
	}
	if clip.UUID == "" {
		t.Fatal("InsertClip should assign a uuid")
	}

	dup := &catalog.Clip{
		EpisodeID:     ep.ID,
		SubtitleBegin: subs[0].ID,
		SubtitleEnd:   subs[0].ID,
		Transcript:    "worstepisodeever",
	}
	err := store.InsertClip(context.Background(), dup)
	if err == nil {
		t.Fatal("duplicate tuple should violate the unique constraint")
	}
	if !catalog.IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}

	found, err := store.FindClip(context.Background(), subs[0].ID, subs[0].ID, 0, 0)
	if err != nil {
		t.Fatalf("FindClip: %v", err)
	}
	if found == nil || found.UUID != clip.UUID {
		t.Fatal("FindClip should return the original clip")
	}

	other, err := store.FindClip(context.Background(), subs[0].ID, subs[0].ID, 1.5, 0)
	if err != nil {
		t.Fatalf("FindClip distinct tuple: %v", err)
	}
	if other != nil {
		t.Fatal("a different offset is a different identity")
	}
}

func TestGenerationLifecycle(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ep, subs := testsupport.SeedEpisode(t, store, 1, 1, []testsupport.Line{
		{Text: "Do it for her."},
	})

	clip := &catalog.Clip{EpisodeID: ep.ID, SubtitleBegin: subs[0].ID, SubtitleEnd: subs[0].ID, Transcript: "doitforher"}
	if err := store.InsertClip(context.Background(), clip); err != nil {
		t.Fatalf("InsertClip: %v", err)
	}

	generation := &catalog.Generation{
		ClipUUID:   clip.UUID,
		Filetype:   "gif",
		Resolution: 480,
		Subtitles:  true,
		Artifact:   "x480sb1e1.gif",
		Snapshot:   "jpg/x480sb1e1.jpg",
	}
	if err := store.InsertGeneration(context.Background(), generation); err != nil {
		t.Fatalf("InsertGeneration: %v", err)
	}

	found, err := store.FindGeneration(context.Background(), generation.Key())
	if err != nil {
		t.Fatalf("FindGeneration: %v", err)
	}
	if found == nil || found.UUID != generation.UUID {
		t.Fatal("FindGeneration should return the inserted record")
	}
	if found.Artifact != "x480sb1e1.gif" || found.Snapshot != "jpg/x480sb1e1.jpg" {
		t.Fatalf("file columns did not round-trip: %q %q", found.Artifact, found.Snapshot)
	}
	if found.Views != 0 || found.Copies != 0 {
		t.Fatal("fresh generation should have zeroed counters")
	}

	if err := store.AddView(context.Background(), generation.UUID); err != nil {
		t.Fatalf("AddView: %v", err)
	}
	if err := store.AddView(context.Background(), generation.UUID); err != nil {
		t.Fatalf("AddView: %v", err)
	}
	if err := store.AddCopy(context.Background(), generation.UUID); err != nil {
		t.Fatalf("AddCopy: %v", err)
	}

	found, err = store.GenerationByUUID(context.Background(), generation.UUID)
	if err != nil {
		t.Fatalf("GenerationByUUID: %v", err)
	}
	if found.Views != 2 || found.Copies != 1 {
		t.Fatalf("counters = %d views, %d copies", found.Views, found.Copies)
	}

	deleted, err := store.DeleteGenerationsForEpisode(context.Background(), ep.ID)
	if err != nil {
		t.Fatalf("DeleteGenerationsForEpisode: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected one purged generation, got %d", deleted)
	}
	found, err = store.FindGeneration(context.Background(), generation.Key())
	if err != nil {
		t.Fatalf("FindGeneration after purge: %v", err)
	}
	if found != nil {
		t.Fatal("generation should be purged")
	}
}

func TestSetCorrectionAndCounts(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ep, _, _, _ := seedTwoEpisodes(t, store)

	ok, err := store.SetCorrection(context.Background(), ep.ID, -1500)
	if err != nil {
		t.Fatalf("SetCorrection: %v", err)
	}
	if !ok {
		t.Fatal("existing episode should accept a correction")
	}

	meta, err := store.EpisodeByID(context.Background(), ep.ID)
	if err != nil {
		t.Fatalf("EpisodeByID: %v", err)
	}
	if meta.CorrectionMS != -1500 {
		t.Fatalf("correction = %d", meta.CorrectionMS)
	}
	if got := meta.Correction(); got != -1.5 {
		t.Fatalf("correction seconds = %v", got)
	}

	ok, err = store.SetCorrection(context.Background(), 99999, 100)
	if err != nil {
		t.Fatalf("SetCorrection missing: %v", err)
	}
	if ok {
		t.Fatal("missing episode should report false")
	}

	counts, err := store.CountAll(context.Background())
	if err != nil {
		t.Fatalf("CountAll: %v", err)
	}
	if counts.Seasons != 1 || counts.Episodes != 2 || counts.Subtitles != 5 {
		t.Fatalf("counts = %+v", counts)
	}
}
