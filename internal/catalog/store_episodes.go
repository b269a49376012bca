package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const episodeColumns = "e.id, e.identifier, e.season_id, e.id_in_season, e.title, e.transcript_index, e.correction_ms, s.title"

// UpsertSeason inserts a season or refreshes its title when it already exists.
func (s *Store) UpsertSeason(ctx context.Context, season *Season) error {
	if season == nil {
		return errors.New("season is nil")
	}
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO seasons (id, identifier, title) VALUES (?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET identifier = excluded.identifier, title = excluded.title`,
		season.ID,
		season.Identifier,
		season.Title,
	)
	if err != nil {
		return fmt.Errorf("upsert season: %w", err)
	}
	return nil
}

// SaveEpisode persists an episode and its full subtitle set in one
// transaction. An existing episode at the same season position is replaced,
// cascading its old subtitles away, so the transcript index and the subtitle
// ranges can never drift apart. Subtitle IDs are assigned in insertion order.
func (s *Store) SaveEpisode(ctx context.Context, episode *Episode, subtitles []*Subtitle) error {
	if episode == nil {
		return errors.New("episode is nil")
	}
	ctx = ensureContext(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save episode: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(
		ctx,
		`DELETE FROM episodes WHERE season_id = ? AND id_in_season = ?`,
		episode.SeasonID,
		episode.IDInSeason,
	); err != nil {
		return fmt.Errorf("replace episode: %w", err)
	}

	res, err := tx.ExecContext(
		ctx,
		`INSERT INTO episodes (identifier, season_id, id_in_season, title, transcript_index, correction_ms)
         VALUES (?, ?, ?, ?, ?, ?)`,
		episode.Identifier,
		episode.SeasonID,
		episode.IDInSeason,
		episode.Title,
		episode.TranscriptIndex,
		episode.CorrectionMS,
	)
	if err != nil {
		return fmt.Errorf("insert episode: %w", err)
	}
	episodeID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("episode id: %w", err)
	}
	episode.ID = episodeID

	stmt, err := tx.PrepareContext(
		ctx,
		`INSERT INTO subtitles (episode_id, time_begin, time_end, text, index_begin, index_end)
         VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare subtitle insert: %w", err)
	}
	defer stmt.Close()

	for _, subtitle := range subtitles {
		res, err := stmt.ExecContext(
			ctx,
			episodeID,
			subtitle.TimeBegin,
			subtitle.TimeEnd,
			subtitle.Text,
			subtitle.IndexBegin,
			subtitle.IndexEnd,
		)
		if err != nil {
			return fmt.Errorf("insert subtitle: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("subtitle id: %w", err)
		}
		subtitle.ID = id
		subtitle.EpisodeID = episodeID
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save episode: %w", err)
	}
	return nil
}

// Episodes lists all episodes joined with their season, ordered by id.
func (s *Store) Episodes(ctx context.Context) ([]*EpisodeMeta, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+episodeColumns+` FROM episodes e JOIN seasons s ON e.season_id = s.id ORDER BY e.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list episodes: %w", err)
	}
	defer rows.Close()
	return collectEpisodes(rows)
}

// EpisodeByID fetches an episode with its season metadata. Returns nil when
// no such episode exists.
func (s *Store) EpisodeByID(ctx context.Context, id int64) (*EpisodeMeta, error) {
	row := s.db.QueryRowContext(
		ensureContext(ctx),
		`SELECT `+episodeColumns+` FROM episodes e JOIN seasons s ON e.season_id = s.id WHERE e.id = ?`,
		id,
	)
	episode, err := scanEpisode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get episode: %w", err)
	}
	return episode, nil
}

// SetCorrection stores a new subtitle correction for an episode. Returns
// false when the episode does not exist.
func (s *Store) SetCorrection(ctx context.Context, id int64, correctionMS int64) (bool, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE episodes SET correction_ms = ? WHERE id = ?`,
		correctionMS,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("set correction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// EpisodeQuery narrows candidate episode selection for search.
type EpisodeQuery struct {
	// Pattern is a SQL LIKE pattern matched against the transcript index.
	Pattern string
	// SeasonID, IDInSeason, and EpisodeID narrow the candidate set when
	// non-zero. IDInSeason only applies together with SeasonID.
	SeasonID   int64
	IDInSeason int
	EpisodeID  int64
	// Limit caps the returned episodes; zero or negative returns all.
	Limit int
	// Offset skips candidates in id order, stepping through otherwise
	// identical matches deterministically.
	Offset int
}

// SearchEpisodes returns candidate episodes whose transcript index matches
// the pattern, in id order, along with the total candidate count before
// limit/offset are applied.
func (s *Store) SearchEpisodes(ctx context.Context, query EpisodeQuery) ([]*EpisodeMeta, int, error) {
	ctx = ensureContext(ctx)

	where := []string{"e.transcript_index LIKE ?"}
	args := []any{query.Pattern}
	if query.SeasonID > 0 {
		where = append(where, "e.season_id = ?")
		args = append(args, query.SeasonID)
		if query.IDInSeason > 0 {
			where = append(where, "e.id_in_season = ?")
			args = append(args, query.IDInSeason)
		}
	} else if query.EpisodeID > 0 {
		where = append(where, "e.id = ?")
		args = append(args, query.EpisodeID)
	}
	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := `SELECT COUNT(1) FROM episodes e WHERE ` + whereClause
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count candidates: %w", err)
	}

	selectQuery := `SELECT ` + episodeColumns + ` FROM episodes e JOIN seasons s ON e.season_id = s.id
        WHERE ` + whereClause + ` ORDER BY e.id`
	if query.Limit > 0 {
		selectQuery += " LIMIT ? OFFSET ?"
		args = append(args, query.Limit, query.Offset)
	} else if query.Offset > 0 {
		selectQuery += " LIMIT -1 OFFSET ?"
		args = append(args, query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search episodes: %w", err)
	}
	defer rows.Close()

	episodes, err := collectEpisodes(rows)
	if err != nil {
		return nil, 0, err
	}
	return episodes, total, nil
}

// CountAll aggregates totals for the stats reporter.
func (s *Store) CountAll(ctx context.Context) (Counts, error) {
	ctx = ensureContext(ctx)
	counts := Counts{}
	queries := []struct {
		query string
		dest  *int64
	}{
		{"SELECT COUNT(1) FROM seasons", &counts.Seasons},
		{"SELECT COUNT(1) FROM episodes", &counts.Episodes},
		{"SELECT COUNT(1) FROM subtitles", &counts.Subtitles},
		{"SELECT COUNT(1) FROM clips", &counts.Clips},
		{"SELECT COUNT(1) FROM generations", &counts.Generations},
	}
	for _, q := range queries {
		if err := s.db.QueryRowContext(ctx, q.query).Scan(q.dest); err != nil {
			return Counts{}, fmt.Errorf("count: %w", err)
		}
	}
	return counts, nil
}

func collectEpisodes(rows *sql.Rows) ([]*EpisodeMeta, error) {
	var episodes []*EpisodeMeta
	for rows.Next() {
		episode, err := scanEpisode(rows)
		if err != nil {
			return nil, err
		}
		episodes = append(episodes, episode)
	}
	return episodes, rows.Err()
}

func scanEpisode(scanner interface{ Scan(dest ...any) error }) (*EpisodeMeta, error) {
	var episode EpisodeMeta
	if err := scanner.Scan(
		&episode.ID,
		&episode.Identifier,
		&episode.SeasonID,
		&episode.IDInSeason,
		&episode.Title,
		&episode.TranscriptIndex,
		&episode.CorrectionMS,
		&episode.SeasonTitle,
	); err != nil {
		return nil, err
	}
	return &episode, nil
}
