package transcript_test

import (
	"errors"
	"reflect"
	"testing"

	"linguo/internal/services"
	"linguo/internal/transcript"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"¡Ay, caramba!", "aycaramba"},
		{"D'oh!", "doh"},
		{"  Hello,   WORLD 42 ", "helloworld42"},
		{"Crêpes à la mode", "crepesalamode"},
		{"...", ""},
	}
	for _, tc := range cases {
		if got := transcript.Normalize(tc.in); got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestBuildIndexAssignsContiguousRanges(t *testing.T) {
	index, ranges := transcript.BuildIndex([]string{"¡Ay, caramba!", "D'oh!", "..."})
	if index != "aycarambadoh" {
		t.Fatalf("unexpected index %q", index)
	}
	want := []transcript.Range{{Begin: 0, End: 9}, {Begin: 9, End: 12}, {Begin: 12, End: 12}}
	if !reflect.DeepEqual(ranges, want) {
		t.Fatalf("unexpected ranges %v", ranges)
	}
}

func TestParseTermRejectsShortTerms(t *testing.T) {
	_, err := transcript.ParseTerm("a, b!", 5)
	if err == nil {
		t.Fatal("expected error for short term")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}
}

func TestParseTermGapMarker(t *testing.T) {
	term, err := transcript.ParseTerm("steamed [...] hams", 5)
	if err != nil {
		t.Fatalf("ParseTerm failed: %v", err)
	}
	if !term.IsGapped() {
		t.Fatal("expected gapped term")
	}
	if got := term.LikePattern(); got != "%steamed%hams%" {
		t.Fatalf("unexpected pattern %q", got)
	}
}

func TestFindAtSinglePhrase(t *testing.T) {
	term, err := transcript.ParseTerm("caramba", 5)
	if err != nil {
		t.Fatalf("ParseTerm failed: %v", err)
	}
	index := "aycarambasomethingelseaycaramba"

	span, ok := term.FindAt(index, 0)
	if !ok || span.Begin != 2 || span.End != 9 {
		t.Fatalf("unexpected first span %+v ok=%v", span, ok)
	}
	span, ok = term.FindAt(index, span.End)
	if !ok || span.Begin != 24 || span.End != 31 {
		t.Fatalf("unexpected second span %+v ok=%v", span, ok)
	}
	if _, ok := term.FindAt(index, span.End); ok {
		t.Fatal("expected no third occurrence")
	}
}

func TestFindAtGappedTerm(t *testing.T) {
	term, err := transcript.ParseTerm("steamed [...] at this time [...] localized", 5)
	if err != nil {
		t.Fatalf("ParseTerm failed: %v", err)
	}
	index := "wellseymourimadeitdespiteyourdirectionssuperintendentchalmerswelcomeivemadesteamedhamsatthistimeofyearlocalizedentirelywithinyourkitchen"

	span, ok := term.FindAt(index, 0)
	if !ok {
		t.Fatal("expected match for gapped term")
	}
	if index[span.Begin:span.Begin+7] != "steamed" {
		t.Fatalf("span does not start at first phrase: %+v", span)
	}
	if index[span.End-9:span.End] != "localized" {
		t.Fatalf("span does not end at last phrase: %+v", span)
	}
}

func TestFindAtGapMissingMiddlePhrase(t *testing.T) {
	term, err := transcript.ParseTerm("steamed [...] aurora [...] hams", 5)
	if err != nil {
		t.Fatalf("ParseTerm failed: %v", err)
	}
	if _, ok := term.FindAt("steamedhams", 0); ok {
		t.Fatal("expected no match when middle phrase absent")
	}
}

func TestOccurrencesPastPreviousEnd(t *testing.T) {
	term, err := transcript.ParseTerm("abcabc", 5)
	if err != nil {
		t.Fatalf("ParseTerm failed: %v", err)
	}
	spans := term.Occurrences("abcabcabc")
	// Overlapping repeat only counts once; the second scan starts at offset 6.
	if len(spans) != 1 {
		t.Fatalf("expected one non-overlapping occurrence, got %v", spans)
	}
}
