// Package stats aggregates catalog totals and on-disk artifact counts for
// the status surfaces.
package stats

import (
	"context"
	"os"
	"path/filepath"

	"linguo/internal/catalog"
	"linguo/internal/config"
)

// Snapshot is one point-in-time view of the archive.
type Snapshot struct {
	Seasons     int64 `json:"seasons"`
	Episodes    int64 `json:"episodes"`
	Subtitles   int64 `json:"subtitles"`
	Clips       int64 `json:"clips"`
	Generations int64 `json:"generations"`
	// Artifacts counts the files present per artifact directory. A count
	// lower than Generations means purged or lazily rebuildable artifacts.
	Artifacts map[string]int `json:"artifacts"`
}

// Collector gathers snapshots.
type Collector struct {
	store *catalog.Store
	cfg   *config.Config
}

// New constructs a Collector.
func New(store *catalog.Store, cfg *config.Config) *Collector {
	return &Collector{store: store, cfg: cfg}
}

// Collect reads catalog counts and scans the artifact directories.
func (c *Collector) Collect(ctx context.Context) (*Snapshot, error) {
	counts, err := c.store.CountAll(ctx)
	if err != nil {
		return nil, err
	}

	artifacts := make(map[string]int, len(config.ArtifactFiletypes()))
	for _, filetype := range config.ArtifactFiletypes() {
		entries, err := os.ReadDir(filepath.Join(c.cfg.Paths.DataDir, filetype))
		if err != nil {
			// Directory may not exist yet on a fresh deployment.
			artifacts[filetype] = 0
			continue
		}
		count := 0
		for _, entry := range entries {
			if !entry.IsDir() {
				count++
			}
		}
		artifacts[filetype] = count
	}

	return &Snapshot{
		Seasons:     counts.Seasons,
		Episodes:    counts.Episodes,
		Subtitles:   counts.Subtitles,
		Clips:       counts.Clips,
		Generations: counts.Generations,
		Artifacts:   artifacts,
	}, nil
}
