package catalog

import (
	"context"
	"database/sql"
	"fmt"
)

const subtitleColumns = "id, episode_id, time_begin, time_end, text, index_begin, index_end"

// SubtitlesOverlapping returns every subtitle of an episode whose index range
// overlaps the half-open [begin, end) span, ordered by id ascending. A
// subtitle overlaps when it starts before and ends inside, sits fully inside,
// or starts inside and ends after the span.
func (s *Store) SubtitlesOverlapping(ctx context.Context, episodeID int64, begin, end int) ([]*Subtitle, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+subtitleColumns+` FROM subtitles
         WHERE episode_id = ?
           AND (
                (index_begin <= ? AND index_end > ?)
             OR (index_begin >= ? AND index_end <= ?)
             OR (index_begin < ? AND index_end >= ?)
           )
         ORDER BY id ASC`,
		episodeID,
		begin, begin,
		begin, end,
		end, end,
	)
	if err != nil {
		return nil, fmt.Errorf("overlapping subtitles: %w", err)
	}
	defer rows.Close()
	return collectSubtitles(rows)
}

// SubtitlesInRange returns subtitles with begin <= id <= end, ordered by id.
func (s *Store) SubtitlesInRange(ctx context.Context, beginID, endID int64) ([]*Subtitle, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+subtitleColumns+` FROM subtitles WHERE id BETWEEN ? AND ? ORDER BY id ASC`,
		beginID,
		endID,
	)
	if err != nil {
		return nil, fmt.Errorf("subtitles in range: %w", err)
	}
	defer rows.Close()
	return collectSubtitles(rows)
}

// SubtitlesBefore returns up to limit subtitles with id < maxID, in ascending
// id order (the query walks backwards, the result is reversed for display).
// Fewer than limit records come back at the corpus boundary.
func (s *Store) SubtitlesBefore(ctx context.Context, maxID int64, limit int) ([]*Subtitle, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+subtitleColumns+` FROM subtitles WHERE id < ? ORDER BY id DESC LIMIT ?`,
		maxID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("subtitles before: %w", err)
	}
	defer rows.Close()

	subtitles, err := collectSubtitles(rows)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(subtitles)-1; i < j; i, j = i+1, j-1 {
		subtitles[i], subtitles[j] = subtitles[j], subtitles[i]
	}
	return subtitles, nil
}

// SubtitlesAfter is the mirror of SubtitlesBefore: up to limit subtitles with
// id > minID, ascending.
func (s *Store) SubtitlesAfter(ctx context.Context, minID int64, limit int) ([]*Subtitle, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+subtitleColumns+` FROM subtitles WHERE id > ? ORDER BY id ASC LIMIT ?`,
		minID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("subtitles after: %w", err)
	}
	defer rows.Close()
	return collectSubtitles(rows)
}

func collectSubtitles(rows *sql.Rows) ([]*Subtitle, error) {
	var subtitles []*Subtitle
	for rows.Next() {
		subtitle, err := scanSubtitle(rows)
		if err != nil {
			return nil, err
		}
		subtitles = append(subtitles, subtitle)
	}
	return subtitles, rows.Err()
}

func scanSubtitle(scanner interface{ Scan(dest ...any) error }) (*Subtitle, error) {
	var subtitle Subtitle
	if err := scanner.Scan(
		&subtitle.ID,
		&subtitle.EpisodeID,
		&subtitle.TimeBegin,
		&subtitle.TimeEnd,
		&subtitle.Text,
		&subtitle.IndexBegin,
		&subtitle.IndexEnd,
	); err != nil {
		return nil, err
	}
	return &subtitle, nil
}
