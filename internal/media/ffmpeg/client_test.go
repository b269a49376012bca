package ffmpeg

import (
	"strings"
	"testing"
)

func TestSnippetArgsGIF(t *testing.T) {
	args, err := snippetArgs(SnippetRequest{
		Input:      "/media/s07e01.mp4",
		Offset:     12.5,
		Duration:   4,
		Resolution: 480,
		Subtitles:  "/data/vtt/b100e105.vtt",
		Filetype:   "gif",
		Output:     "/data/gif/x480sb100e105.gif",
	})
	if err != nil {
		t.Fatalf("snippetArgs: %v", err)
	}

	joined := strings.Join(args, " ")
	for _, want := range []string{
		"-ss 12.500",
		"-t 4.000",
		"fps=15",
		"scale=480:-2:flags=lanczos",
		"subtitles=/data/vtt/b100e105.vtt:force_style='FontSize=24'",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("args missing %q: %s", want, joined)
		}
	}
	if args[len(args)-1] != "/data/gif/x480sb100e105.gif" {
		t.Fatalf("output should be the final argument, got %s", args[len(args)-1])
	}
}

func TestSnippetArgsWithoutSubtitles(t *testing.T) {
	args, err := snippetArgs(SnippetRequest{
		Input:    "in.mp4",
		Duration: 3,
		Filetype: "mp4",
		Output:   "out.mp4",
	})
	if err != nil {
		t.Fatalf("snippetArgs: %v", err)
	}
	joined := strings.Join(args, " ")
	if strings.Contains(joined, "subtitles=") {
		t.Fatalf("unexpected subtitles filter: %s", joined)
	}
	if !strings.Contains(joined, "libx264") {
		t.Fatalf("expected h264 encoder args: %s", joined)
	}
}

func TestSnippetArgsRejectsUnknownFiletype(t *testing.T) {
	if _, err := snippetArgs(SnippetRequest{Input: "in.mp4", Filetype: "avi", Output: "out.avi"}); err == nil {
		t.Fatal("expected error for unsupported filetype")
	}
}

func TestSnapshotArgs(t *testing.T) {
	args := snapshotArgs(SnapshotRequest{
		Input:      "/media/s07e01.mp4",
		Offset:     90.25,
		Resolution: 120,
		Output:     "/data/jpg/s7e1t90_25.jpg",
	})
	joined := strings.Join(args, " ")
	for _, want := range []string{"-ss 90.250", "-frames:v 1", "scale=120:-2:flags=lanczos"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("args missing %q: %s", want, joined)
		}
	}
}

func TestEscapeFilterPath(t *testing.T) {
	got := escapeFilterPath(`C:\clips\a.vtt`)
	if got != `C\:\\clips\\a.vtt` {
		t.Fatalf("escapeFilterPath = %q", got)
	}
}
