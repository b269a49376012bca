package artifact_test

import (
	"errors"
	"testing"

	"linguo/internal/artifact"
	"linguo/internal/services"
)

func TestStringCanonicalForms(t *testing.T) {
	cases := []struct {
		name artifact.Name
		want string
	}{
		{artifact.Name{Resolution: 480, Subtitles: true, Begin: 100, End: 105, Filetype: "gif"}, "x480sb100e105.gif"},
		{artifact.Name{Resolution: 480, Subtitles: true, Begin: 100, End: 105, Extend: 2, Filetype: "gif"}, "x480sb100e105+2.gif"},
		{artifact.Name{Resolution: 240, Subtitles: false, Begin: 7, End: 9, Offset: -1.5, Filetype: "mp4"}, "x240nsb7e9~-1.5.mp4"},
		{artifact.Name{Resolution: 720, Subtitles: true, Begin: 1, End: 2, Offset: 0.25, Extend: 1.75, Filetype: "webm"}, "x720sb1e2~0.25+1.75.webm"},
		{artifact.Name{Resolution: 480, Subtitles: true, Begin: 3, End: 4, Fingerprint: "1c291ca3", Filetype: "gif"}, "x480sb3e4_1c291ca3.gif"},
	}
	for _, tc := range cases {
		if got := tc.name.String(); got != tc.want {
			t.Fatalf("String() = %q, want %q", got, tc.want)
		}
	}
}

func TestRoundTripWithoutFingerprint(t *testing.T) {
	names := []artifact.Name{
		{Resolution: 480, Subtitles: true, Begin: 100, End: 105, Filetype: "gif"},
		{Resolution: 120, Subtitles: false, Begin: 1, End: 1, Offset: 2, Filetype: "mp4"},
		{Resolution: 360, Subtitles: true, Begin: 55, End: 60, Offset: -0.5, Extend: 3.25, Filetype: "webm"},
	}
	for _, name := range names {
		parsed, err := artifact.Parse(name.String())
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", name.String(), err)
		}
		if parsed != name {
			t.Fatalf("round trip mismatch: %+v != %+v", parsed, name)
		}
		if !parsed.Reversible() {
			t.Fatalf("expected %q to be reversible", name.String())
		}
	}
}

func TestParseFingerprintIrreversible(t *testing.T) {
	parsed, err := artifact.Parse("x480sb3e4_deadbeef.gif")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if parsed.Reversible() {
		t.Fatal("fingerprinted name must not be reversible")
	}
	if parsed.Fingerprint != "deadbeef" {
		t.Fatalf("unexpected fingerprint %q", parsed.Fingerprint)
	}
}

func TestParseReportsDecodeErrors(t *testing.T) {
	for _, in := range []string{"", "banana.gif", "x480b1e2.gif", "480sb1e2.gif", "x480sb1e2"} {
		_, err := artifact.Parse(in)
		if err == nil {
			t.Fatalf("expected decode error for %q", in)
		}
		if !errors.Is(err, services.ErrDecode) {
			t.Fatalf("expected decode marker for %q, got %v", in, err)
		}
	}
}

func TestFingerprintStable(t *testing.T) {
	a := artifact.Fingerprint("one,two,three")
	b := artifact.Fingerprint("one,two,three")
	if a != b {
		t.Fatalf("fingerprint not stable: %q vs %q", a, b)
	}
	if a == artifact.Fingerprint("one,two") {
		t.Fatal("distinct substitution sets should not collide on this input")
	}
	if len(a) != 8 {
		t.Fatalf("unexpected fingerprint length %q", a)
	}
}
