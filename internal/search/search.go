// Package search implements transcript search over the episode catalog.
// Terms are normalized like the transcript index and may carry gap markers;
// candidate episodes come from an index LIKE scan and exact spans from an
// in-memory rescan of each candidate's index.
package search

import (
	"context"
	"log/slog"
	"sort"

	"linguo/internal/catalog"
	"linguo/internal/config"
	"linguo/internal/logging"
	"linguo/internal/services"
	"linguo/internal/transcript"
)

// Engine answers find and search queries against the catalog.
type Engine struct {
	store  *catalog.Store
	cfg    *config.Config
	logger *slog.Logger
}

// New constructs a search engine.
func New(store *catalog.Store, cfg *config.Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{
		store:  store,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "search")),
	}
}

// Line is one subtitle prepared for a response.
type Line struct {
	ID    int64  `json:"id"`
	Begin string `json:"time_begin"`
	End   string `json:"time_end"`
	Text  string `json:"text"`
}

// EpisodeRef identifies the episode a match belongs to.
type EpisodeRef struct {
	ID          int64  `json:"id"`
	Season      int64  `json:"season"`
	Episode     int    `json:"episode"`
	SeasonTitle string `json:"season_title"`
	Title       string `json:"title"`
}

// Filter narrows a query to part of the catalog. Season and Episode pair up;
// EpisodeID applies on its own.
type Filter struct {
	Season    int64
	Episode   int
	EpisodeID int64
}

// FindQuery selects one occurrence of a term.
type FindQuery struct {
	Term   string
	Filter Filter
	// Match steps through candidate episodes in id order.
	Match int
	// Padding is the number of context lines either side; negative uses the
	// configured default.
	Padding int
}

// FindResult is one located occurrence with its surrounding dialogue.
type FindResult struct {
	Episode     EpisodeRef `json:"episode"`
	Match       int        `json:"match"`
	Total       int        `json:"total"`
	HasPrevious bool       `json:"has_previous"`
	HasNext     bool       `json:"has_next"`
	Before      []Line     `json:"before"`
	Lines       []Line     `json:"lines"`
	After       []Line     `json:"after"`
}

// Find locates the match-th candidate episode containing the term and returns
// the matched subtitles with context lines clamped to the episode.
func (e *Engine) Find(ctx context.Context, query FindQuery) (*FindResult, error) {
	term, err := transcript.ParseTerm(query.Term, e.cfg.Search.MinTermLength)
	if err != nil {
		return nil, err
	}
	if query.Match < 0 {
		return nil, services.Wrap(services.ErrValidation, "search", "find", "match must not be negative", nil)
	}

	episodes, total, err := e.store.SearchEpisodes(ctx, catalog.EpisodeQuery{
		Pattern:    term.LikePattern(),
		SeasonID:   query.Filter.Season,
		IDInSeason: query.Filter.Episode,
		EpisodeID:  query.Filter.EpisodeID,
		Limit:      1,
		Offset:     query.Match,
	})
	if err != nil {
		return nil, err
	}
	// No candidate at this offset is an empty result, not an error; the
	// total still reports how many candidates the term has.
	if len(episodes) == 0 {
		return &FindResult{Match: query.Match, Total: total}, nil
	}
	episode := episodes[0]

	span, ok := term.FindAt(episode.TranscriptIndex, 0)
	if !ok {
		return &FindResult{Match: query.Match, Total: total}, nil
	}
	matched, err := e.store.SubtitlesOverlapping(ctx, episode.ID, span.Begin, span.End)
	if err != nil {
		return nil, err
	}
	if len(matched) == 0 {
		return &FindResult{Match: query.Match, Total: total}, nil
	}

	before, after, err := e.contextLines(ctx, episode.ID, matched[0].ID, matched[len(matched)-1].ID, query.Padding)
	if err != nil {
		return nil, err
	}

	return &FindResult{
		Episode:     episodeRef(episode),
		Match:       query.Match,
		Total:       total,
		HasPrevious: query.Match > 0,
		HasNext:     query.Match < total-1,
		Before:      before,
		Lines:       toLines(matched),
		After:       after,
	}, nil
}

// SearchQuery enumerates every occurrence of a term, paged.
type SearchQuery struct {
	Term   string
	Filter Filter
	Offset int
	// Limit caps the page size; zero or negative uses the configured default.
	Limit int
}

// Match is one occurrence in the exhaustive listing.
type Match struct {
	Episode EpisodeRef `json:"episode"`
	Lines   []Line     `json:"lines"`
}

// SearchResult is one page of the exhaustive listing.
type SearchResult struct {
	Total     int     `json:"total"`
	Remaining int     `json:"remaining"`
	Matches   []Match `json:"matches"`
}

// Search returns every occurrence of the term across all candidate episodes,
// ordered by first subtitle id, sliced by offset and limit.
func (e *Engine) Search(ctx context.Context, query SearchQuery) (*SearchResult, error) {
	term, err := transcript.ParseTerm(query.Term, e.cfg.Search.MinTermLength)
	if err != nil {
		return nil, err
	}
	if query.Offset < 0 {
		query.Offset = 0
	}
	limit := query.Limit
	if limit <= 0 {
		limit = e.cfg.Search.PageSize
	}

	episodes, _, err := e.store.SearchEpisodes(ctx, catalog.EpisodeQuery{
		Pattern:    term.LikePattern(),
		SeasonID:   query.Filter.Season,
		IDInSeason: query.Filter.Episode,
		EpisodeID:  query.Filter.EpisodeID,
	})
	if err != nil {
		return nil, err
	}

	var matches []Match
	for _, episode := range episodes {
		for _, span := range term.Occurrences(episode.TranscriptIndex) {
			subtitles, err := e.store.SubtitlesOverlapping(ctx, episode.ID, span.Begin, span.End)
			if err != nil {
				return nil, err
			}
			if len(subtitles) == 0 {
				continue
			}
			matches = append(matches, Match{Episode: episodeRef(episode), Lines: toLines(subtitles)})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Lines[0].ID < matches[j].Lines[0].ID
	})

	total := len(matches)
	if query.Offset >= total {
		matches = nil
	} else {
		upper := query.Offset + limit
		if upper > total {
			upper = total
		}
		matches = matches[query.Offset:upper]
	}
	remaining := total - query.Offset - len(matches)
	if remaining < 0 {
		remaining = 0
	}

	return &SearchResult{Total: total, Remaining: remaining, Matches: matches}, nil
}

// ContextResult is a subtitle range with its surrounding dialogue.
type ContextResult struct {
	Episode EpisodeRef `json:"episode"`
	Before  []Line     `json:"before"`
	Lines   []Line     `json:"lines"`
	After   []Line     `json:"after"`
}

// ResolveContext returns the subtitles of an id range plus padding lines
// either side, clamped to the range's episode.
func (e *Engine) ResolveContext(ctx context.Context, beginID, endID int64, padding int) (*ContextResult, error) {
	if beginID > endID {
		return nil, services.Wrap(services.ErrValidation, "search", "context",
			"begin id after end id", nil)
	}
	subtitles, err := e.store.SubtitlesInRange(ctx, beginID, endID)
	if err != nil {
		return nil, err
	}
	if len(subtitles) == 0 {
		return nil, services.Wrap(services.ErrNotFound, "search", "context",
			"could not find subtitles in range", nil)
	}
	episodeID := subtitles[0].EpisodeID
	for _, subtitle := range subtitles[1:] {
		if subtitle.EpisodeID != episodeID {
			return nil, services.Wrap(services.ErrValidation, "search", "context",
				"subtitle range spans more than one episode", nil)
		}
	}
	episode, err := e.store.EpisodeByID(ctx, episodeID)
	if err != nil {
		return nil, err
	}
	if episode == nil {
		return nil, services.Wrap(services.ErrNotFound, "search", "context",
			"episode missing", nil)
	}

	before, after, err := e.contextLines(ctx, episodeID, subtitles[0].ID, subtitles[len(subtitles)-1].ID, padding)
	if err != nil {
		return nil, err
	}
	return &ContextResult{
		Episode: episodeRef(episode),
		Before:  before,
		Lines:   toLines(subtitles),
		After:   after,
	}, nil
}

// contextLines fetches padding subtitles either side of an id range. Lines
// from neighboring episodes are trimmed away; the window shrinks at episode
// and corpus boundaries rather than erroring.
func (e *Engine) contextLines(ctx context.Context, episodeID, firstID, lastID int64, padding int) ([]Line, []Line, error) {
	if padding < 0 {
		padding = e.cfg.Search.DefaultPadding
	}
	if padding == 0 {
		return nil, nil, nil
	}

	rawBefore, err := e.store.SubtitlesBefore(ctx, firstID, padding)
	if err != nil {
		return nil, nil, err
	}
	rawAfter, err := e.store.SubtitlesAfter(ctx, lastID, padding)
	if err != nil {
		return nil, nil, err
	}

	var before, after []*catalog.Subtitle
	for _, subtitle := range rawBefore {
		if subtitle.EpisodeID == episodeID {
			before = append(before, subtitle)
		}
	}
	for _, subtitle := range rawAfter {
		if subtitle.EpisodeID == episodeID {
			after = append(after, subtitle)
		}
	}
	return toLines(before), toLines(after), nil
}

func episodeRef(episode *catalog.EpisodeMeta) EpisodeRef {
	return EpisodeRef{
		ID:          episode.ID,
		Season:      episode.SeasonID,
		Episode:     episode.IDInSeason,
		SeasonTitle: episode.SeasonTitle,
		Title:       episode.Title,
	}
}

func toLines(subtitles []*catalog.Subtitle) []Line {
	lines := make([]Line, 0, len(subtitles))
	for _, subtitle := range subtitles {
		lines = append(lines, Line{
			ID:    subtitle.ID,
			Begin: subtitle.TimeBegin,
			End:   subtitle.TimeEnd,
			Text:  subtitle.Text,
		})
	}
	return lines
}
