// Package snaps renders still-frame artifacts from episode source media.
// Snap names encode season, episode, and frame time, so the file cache is
// keyed by name alone and never needs a catalog record.
package snaps

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"linguo/internal/config"
	"linguo/internal/logging"
	"linguo/internal/media/ffmpeg"
	"linguo/internal/media/locator"
	"linguo/internal/services"
	"linguo/internal/timecode"
)

// Service renders and caches still frames.
type Service struct {
	engine  ffmpeg.Client
	locator *locator.Locator
	cfg     *config.Config
	logger  *slog.Logger
}

// NewService constructs the snap service.
func NewService(engine ffmpeg.Client, loc *locator.Locator, cfg *config.Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		engine:  engine,
		locator: loc,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "snaps")),
	}
}

// Request describes one still frame.
type Request struct {
	Season  int
	Episode int
	// Time is the frame position as an HH:MM:SS(.mmm) timestamp.
	Time     string
	Filetype string
	// Resolution is the output width; zero keeps the source width.
	Resolution int
}

// Result describes a rendered or cache-served snap.
type Result struct {
	Name    string
	RelPath string
	AbsPath string
	Cached  bool
}

var nonWord = regexp.MustCompile(`\W`)

// Name renders the deterministic snap file name.
func (r Request) Name() string {
	return fmt.Sprintf("s%de%dt%s.%s", r.Season, r.Episode, nonWord.ReplaceAllString(r.Time, "_"), r.Filetype)
}

// Render produces the snap, serving an existing file when present.
func (s *Service) Render(ctx context.Context, req Request) (*Result, error) {
	if !validFiletype(req.Filetype) {
		return nil, services.Wrap(services.ErrValidation, "snaps", "render",
			fmt.Sprintf("invalid filetype %q", req.Filetype), nil)
	}
	seconds, err := timecode.ToSeconds(req.Time)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "snaps", "render", "frame time", err)
	}

	name := req.Name()
	relPath := filepath.Join(req.Filetype, name)
	absPath := filepath.Join(s.cfg.Paths.DataDir, relPath)
	result := &Result{Name: name, RelPath: relPath, AbsPath: absPath}

	if info, statErr := os.Stat(absPath); statErr == nil && !info.IsDir() {
		result.Cached = true
		return result, nil
	}

	source, err := s.locator.Find(req.Season, req.Episode)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Snapshot(ctx, ffmpeg.SnapshotRequest{
		Input:      source,
		Offset:     seconds,
		Resolution: req.Resolution,
		Output:     absPath,
	}); err != nil {
		return nil, err
	}
	s.logger.Info("rendered snap", slog.String("artifact", name))
	return result, nil
}

func validFiletype(filetype string) bool {
	for _, ft := range config.SnapFiletypes {
		if ft == filetype {
			return true
		}
	}
	return false
}
