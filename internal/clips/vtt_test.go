package clips

import (
	"strings"
	"testing"

	"linguo/internal/catalog"
)

func TestComposeCuesRebasesToClipStart(t *testing.T) {
	subtitles := []*catalog.Subtitle{
		{TimeBegin: "00:01:00.000", TimeEnd: "00:01:02.500"},
		{TimeBegin: "00:01:03.000", TimeEnd: "00:01:05.000"},
	}
	document, err := composeCues(subtitles, []string{"First line", "Second line"}, 60)
	if err != nil {
		t.Fatalf("composeCues: %v", err)
	}

	want := "WEBVTT\n\n" +
		"00:00:00.000 --> 00:00:02.500\nFirst line\n\n" +
		"00:00:03.000 --> 00:00:05.000\nSecond line\n"
	if document != want {
		t.Fatalf("document:\n%q\nwant:\n%q", document, want)
	}
}

func TestComposeCuesClampsNegativeTimes(t *testing.T) {
	subtitles := []*catalog.Subtitle{
		{TimeBegin: "00:00:01.000", TimeEnd: "00:00:03.000"},
	}
	document, err := composeCues(subtitles, []string{"Early"}, 2)
	if err != nil {
		t.Fatalf("composeCues: %v", err)
	}
	if !strings.Contains(document, "00:00:00.000 --> 00:00:01.000") {
		t.Fatalf("negative cue start should clamp to zero:\n%s", document)
	}
}

func TestComposeCuesRejectsMalformedTimestamps(t *testing.T) {
	subtitles := []*catalog.Subtitle{{TimeBegin: "bogus", TimeEnd: "00:00:01.000"}}
	if _, err := composeCues(subtitles, []string{"x"}, 0); err == nil {
		t.Fatal("expected error for malformed timestamp")
	}
}
