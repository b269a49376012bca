package clips

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"linguo/internal/artifact"
	"linguo/internal/catalog"
	"linguo/internal/config"
	"linguo/internal/logging"
	"linguo/internal/media/ffmpeg"
	"linguo/internal/services"
	"linguo/internal/timecode"
)

// maxResolution caps requested output width.
const maxResolution = 720

// Options selects the render variant of a clip.
type Options struct {
	Filetype   string
	Resolution int
	Subtitles  bool
	// Substitutions is the raw comma-separated replacement set, empty for
	// none.
	Substitutions string
}

// Result describes one generated (or cache-served) artifact.
type Result struct {
	Clip       *catalog.Clip
	Generation *catalog.Generation
	Name       artifact.Name
	// RelPath is the artifact location relative to the data directory,
	// <filetype>/<name>.
	RelPath string
	AbsPath string
	// Cached is true when the artifact was served without rendering; a
	// cached result reports a zero RenderMS.
	Cached   bool
	RenderMS int64
}

type renderOutcome struct {
	generation *catalog.Generation
	renderMS   int64
}

// Generate renders or retrieves the artifact for a subtitle range under the
// given options. Identical concurrent requests share a single render.
func (s *Service) Generate(ctx context.Context, beginID, endID int64, offset, extend float64, opts Options) (*Result, error) {
	if err := validateOptions(opts); err != nil {
		return nil, err
	}

	clip, episode, subtitles, err := s.ResolveClip(ctx, beginID, endID, offset, extend)
	if err != nil {
		return nil, err
	}

	substitutions := ""
	var cueTexts []string
	if strings.TrimSpace(opts.Substitutions) != "" {
		entries, err := parseSubstitutions(opts.Substitutions, len(subtitles))
		if err != nil {
			return nil, err
		}
		substitutions = canonicalSubstitutions(entries)
		cueTexts = applySubstitutions(subtitleTexts(subtitles), entries)
	} else {
		cueTexts = subtitleTexts(subtitles)
	}

	name := artifact.Name{
		Resolution: opts.Resolution,
		Subtitles:  opts.Subtitles,
		Begin:      clip.SubtitleBegin,
		End:        clip.SubtitleEnd,
		Offset:     clip.Offset,
		Extend:     clip.Extend,
		Filetype:   opts.Filetype,
	}
	if substitutions != "" {
		name.Fingerprint = artifact.Fingerprint(substitutions)
	}
	relPath := filepath.Join(opts.Filetype, name.String())
	absPath := filepath.Join(s.cfg.Paths.DataDir, relPath)

	key := catalog.GenerationKey{
		ClipUUID:      clip.UUID,
		Filetype:      opts.Filetype,
		Resolution:    opts.Resolution,
		Subtitles:     opts.Subtitles,
		Substitutions: substitutions,
	}
	generation, err := s.store.FindGeneration(ctx, key)
	if err != nil {
		return nil, err
	}
	if generation != nil && s.cfg.Clips.UseCache && fileExists(absPath) {
		return &Result{
			Clip:       clip,
			Generation: generation,
			Name:       name,
			RelPath:    relPath,
			AbsPath:    absPath,
			Cached:     true,
		}, nil
	}

	// The render outlives the first waiter so late duplicates joining the
	// flight still get a finished artifact.
	renderCtx := context.WithoutCancel(ctx)
	value, err, shared := s.group.Do(relPath, func() (any, error) {
		return s.render(renderCtx, renderInput{
			clip:       clip,
			episode:    episode,
			subtitles:  subtitles,
			cueTexts:   cueTexts,
			opts:       opts,
			key:        key,
			name:       name,
			absPath:    absPath,
			generation: generation,
		})
	})
	if err != nil {
		return nil, err
	}
	outcome := value.(*renderOutcome)
	if shared {
		s.logger.Debug("render shared between concurrent requests", slog.String("artifact", relPath))
	}
	return &Result{
		Clip:       clip,
		Generation: outcome.generation,
		Name:       name,
		RelPath:    relPath,
		AbsPath:    absPath,
		RenderMS:   outcome.renderMS,
	}, nil
}

// GenerateFromName rebuilds the artifact a decoded file name describes. Only
// reversible names qualify; fingerprinted ones lost their substitution text.
func (s *Service) GenerateFromName(ctx context.Context, name artifact.Name) (*Result, error) {
	if !name.Reversible() {
		return nil, services.Wrap(services.ErrValidation, "clips", "rebuild",
			fmt.Sprintf("name %s is not reversible", name), nil)
	}
	return s.Generate(ctx, name.Begin, name.End, name.Offset, name.Extend, Options{
		Filetype:   name.Filetype,
		Resolution: name.Resolution,
		Subtitles:  name.Subtitles,
	})
}

type renderInput struct {
	clip       *catalog.Clip
	episode    *catalog.EpisodeMeta
	subtitles  []*catalog.Subtitle
	cueTexts   []string
	opts       Options
	key        catalog.GenerationKey
	name       artifact.Name
	absPath    string
	generation *catalog.Generation
}

func (s *Service) render(ctx context.Context, in renderInput) (*renderOutcome, error) {
	// A concurrent flight may have finished between the cache check and
	// joining this one. Re-read the record; the pre-flight lookup is stale.
	if s.cfg.Clips.UseCache && fileExists(in.absPath) {
		generation, err := s.store.FindGeneration(ctx, in.key)
		if err != nil {
			return nil, err
		}
		if generation != nil {
			return &renderOutcome{generation: generation}, nil
		}
	}

	source, err := s.locator.Find(int(in.episode.SeasonID), in.episode.IDInSeason)
	if err != nil {
		return nil, err
	}

	first, err := timecode.ToSeconds(in.subtitles[0].TimeBegin)
	if err != nil {
		return nil, services.Wrap(services.ErrEngine, "clips", "render", "first subtitle timestamp", err)
	}
	last, err := timecode.ToSeconds(in.subtitles[len(in.subtitles)-1].TimeEnd)
	if err != nil {
		return nil, services.Wrap(services.ErrEngine, "clips", "render", "last subtitle timestamp", err)
	}

	duration := last - first + in.clip.Extend
	if duration <= 0 {
		return nil, services.Wrap(services.ErrValidation, "clips", "render",
			"clip duration must be positive", nil)
	}
	if max := float64(s.cfg.Clips.MaxDurationMS) / 1000; max > 0 && duration > max {
		return nil, services.Wrap(services.ErrValidation, "clips", "render",
			fmt.Sprintf("duration %.1fs exceeds maximum %.1fs", duration, max), nil)
	}

	seek := first + in.clip.Offset + in.episode.Correction()
	if seek < 0 {
		seek = 0
	}

	// A new record gets a reference still frame taken at the clip start.
	snapshot := ""
	if in.generation == nil {
		snapshot = filepath.Join("jpg",
			strings.TrimSuffix(in.name.String(), "."+in.name.Filetype)+".jpg")
		if err := s.engine.Snapshot(ctx, ffmpeg.SnapshotRequest{
			Input:      source,
			Offset:     seek,
			Resolution: in.opts.Resolution,
			Output:     filepath.Join(s.cfg.Paths.DataDir, snapshot),
		}); err != nil {
			return nil, err
		}
	}

	cuePath := ""
	if in.opts.Subtitles {
		// Cues rebase against the offset start, not the corrected seek; the
		// correction realigns the video under unchanged cue times.
		document, err := composeCues(in.subtitles, in.cueTexts, first+in.clip.Offset)
		if err != nil {
			return nil, services.Wrap(services.ErrEngine, "clips", "render", "compose cues", err)
		}
		cuePath = filepath.Join(s.cfg.Paths.DataDir, "vtt",
			strings.TrimSuffix(in.name.String(), "."+in.name.Filetype)+".vtt")
		if err := os.WriteFile(cuePath, []byte(document), 0o644); err != nil {
			return nil, services.Wrap(services.ErrEngine, "clips", "render", "write cue file", err)
		}
	}

	started := time.Now()
	err = s.engine.Snippet(ctx, ffmpeg.SnippetRequest{
		Input:      source,
		Offset:     seek,
		Duration:   duration,
		Resolution: in.opts.Resolution,
		Subtitles:  cuePath,
		Filetype:   in.opts.Filetype,
		Output:     in.absPath,
	})
	if err != nil {
		return nil, err
	}
	renderMS := time.Since(started).Milliseconds()

	generation := in.generation
	if generation == nil {
		generation = &catalog.Generation{
			ClipUUID:      in.key.ClipUUID,
			Filetype:      in.key.Filetype,
			Resolution:    in.key.Resolution,
			Subtitles:     in.key.Subtitles,
			Substitutions: in.key.Substitutions,
			Artifact:      in.name.String(),
			Snapshot:      snapshot,
		}
		if err := s.store.InsertGeneration(ctx, generation); err != nil {
			if !catalog.IsUniqueViolation(err) {
				return nil, err
			}
			generation, err = s.store.FindGeneration(ctx, in.key)
			if err != nil {
				return nil, err
			}
			if generation == nil {
				return nil, services.Wrap(services.ErrEngine, "clips", "render",
					"generation vanished after constraint race", nil)
			}
		}
	}

	s.logger.Info("rendered artifact",
		slog.String("artifact", in.name.String()),
		slog.Int64("render_ms", renderMS))
	return &renderOutcome{generation: generation, renderMS: renderMS}, nil
}

// TrackView enqueues a view increment for the generation.
func (s *Service) TrackView(generationUUID string) {
	s.counters.enqueue(counterOp{generationUUID: generationUUID})
}

// TrackCopy enqueues a copy increment for the generation.
func (s *Service) TrackCopy(generationUUID string) {
	s.counters.enqueue(counterOp{generationUUID: generationUUID, copy: true})
}

// TrackViewFromPath reverse-maps a served artifact file name onto its
// generation record and enqueues a view. Undecodable and fingerprinted names
// report false without error; passive tracking never fails a serving path.
func (s *Service) TrackViewFromPath(ctx context.Context, filename string) (bool, error) {
	name, err := artifact.Parse(filepath.Base(filename))
	if err != nil {
		s.logger.Debug("skipping view tracking", logging.Error(err))
		return false, nil
	}
	if !name.Reversible() {
		return false, nil
	}

	clip, err := s.store.FindClip(ctx, name.Begin, name.End, name.Offset, name.Extend)
	if err != nil {
		return false, err
	}
	if clip == nil {
		return false, nil
	}
	generation, err := s.store.FindGeneration(ctx, catalog.GenerationKey{
		ClipUUID:   clip.UUID,
		Filetype:   name.Filetype,
		Resolution: name.Resolution,
		Subtitles:  name.Subtitles,
	})
	if err != nil {
		return false, err
	}
	if generation == nil {
		return false, nil
	}
	s.TrackView(generation.UUID)
	return true, nil
}

func validateOptions(opts Options) error {
	if !contains(config.ClipFiletypes, opts.Filetype) {
		return services.Wrap(services.ErrValidation, "clips", "options",
			fmt.Sprintf("invalid filetype %q", opts.Filetype), nil)
	}
	if opts.Resolution < 0 || opts.Resolution > maxResolution {
		return services.Wrap(services.ErrValidation, "clips", "options",
			fmt.Sprintf("resolution %d outside [0, %d]", opts.Resolution, maxResolution), nil)
	}
	return nil
}

func subtitleTexts(subtitles []*catalog.Subtitle) []string {
	texts := make([]string, len(subtitles))
	for i, subtitle := range subtitles {
		texts[i] = subtitle.Text
	}
	return texts
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
