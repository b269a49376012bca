package clips_test

import (
	"context"
	"testing"

	"linguo/internal/clips"
)

func clipsOptionsGIF() clips.Options {
	return clips.Options{Filetype: "gif", Resolution: 480, Subtitles: true}
}

func TestTrackViewFromPath(t *testing.T) {
	f := newFixture(t)
	begin, end := f.rangeIDs()

	result, err := f.service.Generate(context.Background(), begin, end, 0, 0, clipsOptionsGIF())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	tracked, err := f.service.TrackViewFromPath(context.Background(), "gif/"+result.Name.String())
	if err != nil {
		t.Fatalf("TrackViewFromPath: %v", err)
	}
	if !tracked {
		t.Fatal("reversible artifact should be tracked")
	}
	f.service.TrackCopy(result.Generation.UUID)

	// Close drains the queue before returning.
	f.service.Close()

	generation, err := f.store.GenerationByUUID(context.Background(), result.Generation.UUID)
	if err != nil {
		t.Fatalf("GenerationByUUID: %v", err)
	}
	if generation.Views != 1 || generation.Copies != 1 {
		t.Fatalf("counters = %d views, %d copies", generation.Views, generation.Copies)
	}
}

func TestTrackViewFromPathSkipsUntrackable(t *testing.T) {
	f := newFixture(t)

	tracked, err := f.service.TrackViewFromPath(context.Background(), "gif/not-an-artifact.gif")
	if err != nil {
		t.Fatalf("TrackViewFromPath: %v", err)
	}
	if tracked {
		t.Fatal("undecodable name must not be tracked")
	}

	tracked, err = f.service.TrackViewFromPath(context.Background(), "gif/x480sb1e2_deadbeef.gif")
	if err != nil {
		t.Fatalf("TrackViewFromPath fingerprinted: %v", err)
	}
	if tracked {
		t.Fatal("fingerprinted name must not be tracked")
	}

	tracked, err = f.service.TrackViewFromPath(context.Background(), "gif/x480sb999888e999889.gif")
	if err != nil {
		t.Fatalf("TrackViewFromPath unknown: %v", err)
	}
	if tracked {
		t.Fatal("unknown tuple must not be tracked")
	}
}
