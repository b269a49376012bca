package locator

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"linguo/internal/services"
)

func writeFile(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestFindMatchesPaddedAndUnpadded(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "show.S07E01.mp4")
	writeFile(t, dir, "show.s2e9.mkv")

	loc := New(dir)

	path, err := loc.Find(7, 1)
	if err != nil {
		t.Fatalf("Find(7, 1): %v", err)
	}
	if filepath.Base(path) != "show.S07E01.mp4" {
		t.Fatalf("unexpected match %s", path)
	}

	path, err = loc.Find(2, 9)
	if err != nil {
		t.Fatalf("Find(2, 9): %v", err)
	}
	if filepath.Base(path) != "show.s2e9.mkv" {
		t.Fatalf("unexpected match %s", path)
	}
}

func TestFindDoesNotMatchLongerNumbers(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "show.S07E011.mp4")

	loc := New(dir)
	if _, err := loc.Find(7, 1); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestFindMissingEpisode(t *testing.T) {
	loc := New(t.TempDir())
	_, err := loc.Find(1, 1)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestFindDeterministicAcrossDuplicates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.S01E02.mp4")
	writeFile(t, dir, "a.S01E02.mp4")

	loc := New(dir)
	path, err := loc.Find(1, 2)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if filepath.Base(path) != "a.S01E02.mp4" {
		t.Fatalf("expected lexicographically first match, got %s", path)
	}
}
