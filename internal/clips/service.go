package clips

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	"linguo/internal/catalog"
	"linguo/internal/config"
	"linguo/internal/logging"
	"linguo/internal/media/ffmpeg"
	"linguo/internal/media/locator"
	"linguo/internal/services"
	"linguo/internal/transcript"
)

// Service coordinates clip resolution and artifact generation.
type Service struct {
	store   *catalog.Store
	engine  ffmpeg.Client
	locator *locator.Locator
	cfg     *config.Config
	logger  *slog.Logger

	group    singleflight.Group
	counters *counterTracker
}

// NewService constructs the clip service and starts its counter worker.
func NewService(store *catalog.Store, engine ffmpeg.Client, loc *locator.Locator, cfg *config.Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	svc := &Service{
		store:   store,
		engine:  engine,
		locator: loc,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "clips")),
	}
	svc.counters = newCounterTracker(store, svc.logger)
	return svc
}

// Close drains and stops the background counter worker.
func (s *Service) Close() {
	s.counters.close()
}

// ResolveClip maps a subtitle id range plus temporal adjustments onto a clip
// record, creating it on first reference. The same tuple always resolves to
// the same clip, including under concurrent creation.
func (s *Service) ResolveClip(ctx context.Context, beginID, endID int64, offset, extend float64) (*catalog.Clip, *catalog.EpisodeMeta, []*catalog.Subtitle, error) {
	if beginID > endID {
		return nil, nil, nil, services.Wrap(services.ErrValidation, "clips", "resolve",
			fmt.Sprintf("begin id %d after end id %d", beginID, endID), nil)
	}

	subtitles, err := s.store.SubtitlesInRange(ctx, beginID, endID)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(subtitles) == 0 {
		return nil, nil, nil, services.Wrap(services.ErrNotFound, "clips", "resolve",
			"could not find subtitles in range", nil)
	}
	episodeID := subtitles[0].EpisodeID
	for _, subtitle := range subtitles[1:] {
		if subtitle.EpisodeID != episodeID {
			return nil, nil, nil, services.Wrap(services.ErrValidation, "clips", "resolve",
				"subtitle range spans more than one episode", nil)
		}
	}
	if max := s.cfg.Clips.MaxSubtitles; max > 0 && len(subtitles) > max {
		return nil, nil, nil, services.Wrap(services.ErrValidation, "clips", "resolve",
			fmt.Sprintf("range covers %d subtitles, limit is %d", len(subtitles), max), nil)
	}

	episode, err := s.store.EpisodeByID(ctx, episodeID)
	if err != nil {
		return nil, nil, nil, err
	}
	if episode == nil {
		return nil, nil, nil, services.Wrap(services.ErrNotFound, "clips", "resolve",
			fmt.Sprintf("episode %d missing", episodeID), nil)
	}

	clip, err := s.store.FindClip(ctx, beginID, endID, offset, extend)
	if err != nil {
		return nil, nil, nil, err
	}
	if clip == nil {
		clip = &catalog.Clip{
			EpisodeID:     episodeID,
			SubtitleBegin: beginID,
			SubtitleEnd:   endID,
			Transcript:    rangeTranscript(subtitles),
			Offset:        offset,
			Extend:        extend,
		}
		if err := s.store.InsertClip(ctx, clip); err != nil {
			if !catalog.IsUniqueViolation(err) {
				return nil, nil, nil, err
			}
			// Lost the race; the winner's row is the clip.
			clip, err = s.store.FindClip(ctx, beginID, endID, offset, extend)
			if err != nil {
				return nil, nil, nil, err
			}
			if clip == nil {
				return nil, nil, nil, services.Wrap(services.ErrEngine, "clips", "resolve",
					"clip vanished after constraint race", nil)
			}
		}
	}
	return clip, episode, subtitles, nil
}

func rangeTranscript(subtitles []*catalog.Subtitle) string {
	var b strings.Builder
	for _, subtitle := range subtitles {
		b.WriteString(transcript.Normalize(subtitle.Text))
	}
	return b.String()
}
