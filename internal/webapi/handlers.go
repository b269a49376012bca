package webapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"linguo/internal/artifact"
	"linguo/internal/clips"
	"linguo/internal/config"
	"linguo/internal/search"
	"linguo/internal/services"
	"linguo/internal/snaps"
)

// thumbnailWidth is the resolution of the lazy search result previews.
const thumbnailWidth = 120

func (s *Server) handleStats(c *gin.Context) {
	snapshot, err := s.stats.Collect(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, snapshot)
}

type episodeView struct {
	ID           int64  `json:"id"`
	Season       int64  `json:"season"`
	Episode      int    `json:"episode"`
	SeasonTitle  string `json:"season_title"`
	Title        string `json:"title"`
	CorrectionMS int64  `json:"correction_ms"`
}

func (s *Server) handleEpisodes(c *gin.Context) {
	episodes, err := s.store.Episodes(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	views := make([]episodeView, 0, len(episodes))
	for _, episode := range episodes {
		views = append(views, episodeView{
			ID:           episode.ID,
			Season:       episode.SeasonID,
			Episode:      episode.IDInSeason,
			SeasonTitle:  episode.SeasonTitle,
			Title:        episode.Title,
			CorrectionMS: episode.CorrectionMS,
		})
	}
	s.ok(c, gin.H{"episodes": views})
}

func (s *Server) handleCorrection(c *gin.Context) {
	episodeID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		s.fail(c, services.Wrap(services.ErrValidation, "webapi", "correction", "episode id", err))
		return
	}

	var body struct {
		CorrectionMS int64 `json:"correction_ms"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		s.fail(c, services.Wrap(services.ErrValidation, "webapi", "correction", "request body", err))
		return
	}
	if max := int64(s.cfg.Clips.MaxCorrectionMS); body.CorrectionMS > max || body.CorrectionMS < -max {
		s.fail(c, services.Wrap(services.ErrValidation, "webapi", "correction",
			fmt.Sprintf("correction %d outside [-%d, %d]", body.CorrectionMS, max, max), nil))
		return
	}

	ctx := c.Request.Context()
	updated, err := s.store.SetCorrection(ctx, episodeID, body.CorrectionMS)
	if err != nil {
		s.fail(c, err)
		return
	}
	if !updated {
		s.fail(c, services.Wrap(services.ErrNotFound, "webapi", "correction",
			fmt.Sprintf("episode %d", episodeID), nil))
		return
	}

	// A new correction shifts every render of the episode, so cached
	// artifacts are stale in bulk. Purge records and files together.
	generations, err := s.store.GenerationsForEpisode(ctx, episodeID)
	if err != nil {
		s.fail(c, err)
		return
	}
	for _, generation := range generations {
		targets := []string{filepath.Join(s.cfg.Paths.DataDir, generation.Filetype, generation.Artifact)}
		if generation.Snapshot != "" {
			targets = append(targets, filepath.Join(s.cfg.Paths.DataDir, generation.Snapshot))
		}
		for _, target := range targets {
			if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
				s.logger.Warn("could not remove stale artifact", slog.String("path", target))
			}
		}
	}
	purged, err := s.store.DeleteGenerationsForEpisode(ctx, episodeID)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.ok(c, gin.H{
		"episode_id":    episodeID,
		"correction_ms": body.CorrectionMS,
		"purged":        purged,
	})
}

type quoteView struct {
	*search.FindResult
	// Previous and Next step the match ordinal; absent at either boundary.
	Previous string `json:"previous,omitempty"`
	Next     string `json:"next,omitempty"`
	Snap     string `json:"snap,omitempty"`
}

func (s *Server) handleQuote(c *gin.Context) {
	query := search.FindQuery{Term: c.Query("term")}
	var err error
	if query.Filter, err = parseFilter(c); err != nil {
		s.fail(c, err)
		return
	}
	if query.Match, err = intQuery(c, "match", 0); err != nil {
		s.fail(c, err)
		return
	}
	if query.Padding, err = intQuery(c, "padding", -1); err != nil {
		s.fail(c, err)
		return
	}
	withSnap, err := boolQuery(c, "snap", false)
	if err != nil {
		s.fail(c, err)
		return
	}

	result, err := s.search.Find(c.Request.Context(), query)
	if err != nil {
		s.fail(c, err)
		return
	}

	view := quoteView{FindResult: result}
	if result.HasPrevious {
		view.Previous = s.quoteLink(c, query.Match-1)
	}
	if result.HasNext {
		view.Next = s.quoteLink(c, query.Match+1)
	}
	if withSnap && len(result.Lines) > 0 {
		snap, err := s.snaps.Render(c.Request.Context(), snaps.Request{
			Season:   int(result.Episode.Season),
			Episode:  result.Episode.Episode,
			Time:     result.Lines[0].Begin,
			Filetype: c.DefaultQuery("snap_filetype", "jpg"),
		})
		if err != nil {
			s.fail(c, err)
			return
		}
		view.Snap = s.mediaURL(snap.RelPath)
	}
	s.ok(c, view)
}

// quoteLink rebuilds the request URL with a different match ordinal.
func (s *Server) quoteLink(c *gin.Context, match int) string {
	query := c.Request.URL.Query()
	query.Set("match", strconv.Itoa(match))
	return strings.TrimRight(s.cfg.Server.BaseURL, "/") + "/quote?" + query.Encode()
}

type searchMatchView struct {
	search.Match
	Thumbnail string `json:"thumbnail"`
}

func (s *Server) handleSearch(c *gin.Context) {
	query := search.SearchQuery{Term: c.Query("term")}
	var err error
	if query.Filter, err = parseFilter(c); err != nil {
		s.fail(c, err)
		return
	}
	if query.Offset, err = intQuery(c, "offset", 0); err != nil {
		s.fail(c, err)
		return
	}
	if query.Limit, err = intQuery(c, "limit", 0); err != nil {
		s.fail(c, err)
		return
	}

	result, err := s.search.Search(c.Request.Context(), query)
	if err != nil {
		s.fail(c, err)
		return
	}

	matches := make([]searchMatchView, 0, len(result.Matches))
	for _, match := range result.Matches {
		// Thumbnails are lazy: the URL points at the media endpoint, which
		// renders on first access.
		name := artifact.Name{
			Resolution: thumbnailWidth,
			Begin:      match.Lines[0].ID,
			End:        match.Lines[len(match.Lines)-1].ID,
			Filetype:   "gif",
		}
		matches = append(matches, searchMatchView{
			Match:     match,
			Thumbnail: s.mediaURL(path.Join("gif", name.String())),
		})
	}
	s.ok(c, gin.H{
		"total":     result.Total,
		"remaining": result.Remaining,
		"matches":   matches,
	})
}

func (s *Server) handleContext(c *gin.Context) {
	begin, err := int64Query(c, "begin", 0)
	if err != nil {
		s.fail(c, err)
		return
	}
	end, err := int64Query(c, "end", 0)
	if err != nil {
		s.fail(c, err)
		return
	}
	if begin == 0 || end == 0 {
		s.fail(c, services.Wrap(services.ErrValidation, "webapi", "context",
			"begin and end are required", nil))
		return
	}
	padding, err := intQuery(c, "padding", -1)
	if err != nil {
		s.fail(c, err)
		return
	}

	result, err := s.search.ResolveContext(c.Request.Context(), begin, end, padding)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, result)
}

type generationView struct {
	UUID       string `json:"uuid"`
	Name       string `json:"name"`
	URL        string `json:"url"`
	Cached     bool   `json:"cached"`
	RenderTime int64  `json:"render_time"`
	Views      int64  `json:"views"`
	Copies     int64  `json:"copies"`
}

func (s *Server) clipHandler(filetype string) gin.HandlerFunc {
	return func(c *gin.Context) {
		begin, end, err := s.resolveRange(c)
		if err != nil {
			s.fail(c, err)
			return
		}

		offset, err := floatQuery(c, "offset", 0)
		if err != nil {
			s.fail(c, err)
			return
		}
		extend, err := floatQuery(c, "extend", 0)
		if err != nil {
			s.fail(c, err)
			return
		}
		resolution, err := intQuery(c, "resolution", 480)
		if err != nil {
			s.fail(c, err)
			return
		}
		subtitles, err := boolQuery(c, "subtitles", true)
		if err != nil {
			s.fail(c, err)
			return
		}

		result, err := s.clips.Generate(c.Request.Context(), begin, end, offset, extend, clips.Options{
			Filetype:      filetype,
			Resolution:    resolution,
			Subtitles:     subtitles,
			Substitutions: c.Query("substitutions"),
		})
		if err != nil {
			s.fail(c, err)
			return
		}
		s.ok(c, generationView{
			UUID:       result.Generation.UUID,
			Name:       result.Name.String(),
			URL:        s.mediaURL(result.RelPath),
			Cached:     result.Cached,
			RenderTime: result.RenderMS,
			Views:      result.Generation.Views,
			Copies:     result.Generation.Copies,
		})
	}
}

// resolveRange accepts either explicit begin/end subtitle ids or a term that
// locates them through find.
func (s *Server) resolveRange(c *gin.Context) (int64, int64, error) {
	begin, err := int64Query(c, "begin", 0)
	if err != nil {
		return 0, 0, err
	}
	end, err := int64Query(c, "end", 0)
	if err != nil {
		return 0, 0, err
	}
	if begin != 0 && end != 0 {
		return begin, end, nil
	}

	term := c.Query("term")
	if term == "" {
		return 0, 0, services.Wrap(services.ErrValidation, "webapi", "clip",
			"begin/end ids or a term are required", nil)
	}
	filter, err := parseFilter(c)
	if err != nil {
		return 0, 0, err
	}
	match, err := intQuery(c, "match", 0)
	if err != nil {
		return 0, 0, err
	}
	found, err := s.search.Find(c.Request.Context(), search.FindQuery{
		Term:    term,
		Filter:  filter,
		Match:   match,
		Padding: 0,
	})
	if err != nil {
		return 0, 0, err
	}
	if len(found.Lines) == 0 {
		return 0, 0, services.Wrap(services.ErrNotFound, "webapi", "clip",
			fmt.Sprintf("no match %d for term", match), nil)
	}
	return found.Lines[0].ID, found.Lines[len(found.Lines)-1].ID, nil
}

func (s *Server) handleSnap(c *gin.Context) {
	season, err := intQuery(c, "season", 0)
	if err != nil {
		s.fail(c, err)
		return
	}
	episode, err := intQuery(c, "episode", 0)
	if err != nil {
		s.fail(c, err)
		return
	}
	if season == 0 || episode == 0 {
		s.fail(c, services.Wrap(services.ErrValidation, "webapi", "snap",
			"season and episode are required", nil))
		return
	}
	resolution, err := intQuery(c, "resolution", 0)
	if err != nil {
		s.fail(c, err)
		return
	}

	result, err := s.snaps.Render(c.Request.Context(), snaps.Request{
		Season:     season,
		Episode:    episode,
		Time:       c.Query("t"),
		Filetype:   c.DefaultQuery("filetype", "jpg"),
		Resolution: resolution,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, gin.H{
		"name":   result.Name,
		"url":    s.mediaURL(result.RelPath),
		"cached": result.Cached,
	})
}

func (s *Server) handleCopy(c *gin.Context) {
	var body struct {
		UUID string `json:"uuid"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.UUID == "" {
		s.fail(c, services.Wrap(services.ErrValidation, "webapi", "copy", "generation uuid required", err))
		return
	}
	generation, err := s.store.GenerationByUUID(c.Request.Context(), body.UUID)
	if err != nil {
		s.fail(c, err)
		return
	}
	if generation == nil {
		s.fail(c, services.Wrap(services.ErrNotFound, "webapi", "copy", body.UUID, nil))
		return
	}
	s.clips.TrackCopy(generation.UUID)
	s.ok(c, gin.H{"tracked": true})
}

func (s *Server) handleMedia(c *gin.Context) {
	rel := strings.TrimPrefix(c.Param("filepath"), "/")
	clean := path.Clean(rel)
	if clean != rel || strings.HasPrefix(clean, ".") || strings.Contains(clean, "..") {
		s.fail(c, services.Wrap(services.ErrValidation, "webapi", "media", "malformed path", nil))
		return
	}

	abs := filepath.Join(s.cfg.Paths.DataDir, filepath.FromSlash(clean))
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		s.serveArtifact(c, clean, abs)
		return
	}

	// Missing artifact: rebuild when the name still decodes to its options.
	dir, base := path.Split(clean)
	dir = strings.TrimSuffix(dir, "/")
	if !contains(config.ClipFiletypes, dir) {
		c.Status(http.StatusNotFound)
		return
	}
	name, err := artifact.Parse(base)
	if err != nil || !name.Reversible() || name.Filetype != dir {
		c.Status(http.StatusNotFound)
		return
	}
	result, err := s.clips.GenerateFromName(c.Request.Context(), name)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.serveArtifact(c, clean, result.AbsPath)
}

func (s *Server) serveArtifact(c *gin.Context, rel, abs string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, _ = s.clips.TrackViewFromPath(ctx, rel)
	}()
	c.File(abs)
}

func (s *Server) mediaURL(rel string) string {
	return strings.TrimRight(s.cfg.Server.BaseURL, "/") + "/media/" + rel
}

func parseFilter(c *gin.Context) (search.Filter, error) {
	season, err := int64Query(c, "season", 0)
	if err != nil {
		return search.Filter{}, err
	}
	episode, err := intQuery(c, "episode", 0)
	if err != nil {
		return search.Filter{}, err
	}
	episodeID, err := int64Query(c, "episode_id", 0)
	if err != nil {
		return search.Filter{}, err
	}
	return search.Filter{Season: season, Episode: episode, EpisodeID: episodeID}, nil
}

func intQuery(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, services.Wrap(services.ErrValidation, "webapi", "query",
			fmt.Sprintf("parameter %q", name), err)
	}
	return value, nil
}

func int64Query(c *gin.Context, name string, fallback int64) (int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, services.Wrap(services.ErrValidation, "webapi", "query",
			fmt.Sprintf("parameter %q", name), err)
	}
	return value, nil
}

func floatQuery(c *gin.Context, name string, fallback float64) (float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, services.Wrap(services.ErrValidation, "webapi", "query",
			fmt.Sprintf("parameter %q", name), err)
	}
	return value, nil
}

func boolQuery(c *gin.Context, name string, fallback bool) (bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, services.Wrap(services.ErrValidation, "webapi", "query",
			fmt.Sprintf("parameter %q", name), err)
	}
	return value, nil
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
