// Package locator maps catalog episodes to source media files on disk. Source
// files follow the usual SxxEyy naming convention; the catalog does not store
// file paths, so the locator rescans the source directory on each lookup and
// newly dropped files become available without re-ingesting.
package locator

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"linguo/internal/services"
)

// Locator finds episode source files under a single root directory.
type Locator struct {
	root string
}

// New constructs a Locator over the provided source directory.
func New(root string) *Locator {
	return &Locator{root: root}
}

// Find returns the path of the source file for the given season and episode
// number. When several files match, the lexicographically first wins so
// lookups stay deterministic.
func (l *Locator) Find(season, episode int) (string, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "locator", "scan",
			fmt.Sprintf("read source directory %s", l.root), err)
	}

	pattern := regexp.MustCompile(fmt.Sprintf(`(?i)s0*%de0*%d(\D|$)`, season, episode))
	var matches []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if pattern.MatchString(entry.Name()) {
			matches = append(matches, entry.Name())
		}
	}
	if len(matches) == 0 {
		return "", services.Wrap(services.ErrNotFound, "locator", "find",
			fmt.Sprintf("episode s%02de%02d not available", season, episode), nil)
	}
	sort.Strings(matches)
	return filepath.Join(l.root, matches[0]), nil
}
