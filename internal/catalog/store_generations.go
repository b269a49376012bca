package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const generationColumns = "uuid, clip_uuid, filetype, resolution, subtitles, substitutions, artifact, snapshot, views, copies, created_at, updated_at"

// FindGeneration looks up a rendered artifact record by its cache key.
// Returns nil when no record exists.
func (s *Store) FindGeneration(ctx context.Context, key GenerationKey) (*Generation, error) {
	row := s.db.QueryRowContext(
		ensureContext(ctx),
		`SELECT `+generationColumns+` FROM generations
         WHERE clip_uuid = ? AND filetype = ? AND resolution = ? AND subtitles = ? AND substitutions = ?`,
		key.ClipUUID,
		key.Filetype,
		key.Resolution,
		boolToInt(key.Subtitles),
		key.Substitutions,
	)
	generation, err := scanGeneration(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find generation: %w", err)
	}
	return generation, nil
}

// GenerationByUUID fetches a generation by identifier. Returns nil when absent.
func (s *Store) GenerationByUUID(ctx context.Context, id string) (*Generation, error) {
	row := s.db.QueryRowContext(
		ensureContext(ctx),
		`SELECT `+generationColumns+` FROM generations WHERE uuid = ?`,
		id,
	)
	generation, err := scanGeneration(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("generation by uuid: %w", err)
	}
	return generation, nil
}

// InsertGeneration persists a new generation record with zeroed counters.
func (s *Store) InsertGeneration(ctx context.Context, generation *Generation) error {
	if generation == nil {
		return errors.New("generation is nil")
	}
	now := time.Now().UTC()
	generation.UUID = uuid.NewString()
	generation.Views = 0
	generation.Copies = 0
	generation.CreatedAt = now
	generation.UpdatedAt = now

	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO generations (uuid, clip_uuid, filetype, resolution, subtitles, substitutions, artifact, snapshot, views, copies, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, 0, ?, ?)`,
		generation.UUID,
		generation.ClipUUID,
		generation.Filetype,
		generation.Resolution,
		boolToInt(generation.Subtitles),
		generation.Substitutions,
		generation.Artifact,
		generation.Snapshot,
		timestamp(now),
		timestamp(now),
	)
	if err != nil {
		return fmt.Errorf("insert generation: %w", err)
	}
	return nil
}

// AddView increments a generation's view counter.
func (s *Store) AddView(ctx context.Context, generationUUID string) error {
	return s.addCounter(ctx, generationUUID, "views")
}

// AddCopy increments a generation's copy counter.
func (s *Store) AddCopy(ctx context.Context, generationUUID string) error {
	return s.addCounter(ctx, generationUUID, "copies")
}

func (s *Store) addCounter(ctx context.Context, generationUUID, column string) error {
	// column is one of the two fixed counter names, never caller input.
	res, err := s.execWithRetry(
		ctx,
		`UPDATE generations SET `+column+` = `+column+` + 1, updated_at = ? WHERE uuid = ?`,
		timestamp(time.Now()),
		generationUUID,
	)
	if err != nil {
		return fmt.Errorf("increment %s: %w", column, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("generation %s not found", generationUUID)
	}
	return nil
}

// GenerationsForEpisode returns every generation belonging to any clip of the
// episode, used when a correction purges the episode's artifacts.
func (s *Store) GenerationsForEpisode(ctx context.Context, episodeID int64) ([]*Generation, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT g.uuid, g.clip_uuid, g.filetype, g.resolution, g.subtitles, g.substitutions, g.artifact,
                g.snapshot, g.views, g.copies, g.created_at, g.updated_at
         FROM generations g JOIN clips c ON g.clip_uuid = c.uuid
         WHERE c.episode_id = ?
         ORDER BY g.created_at`,
		episodeID,
	)
	if err != nil {
		return nil, fmt.Errorf("generations for episode: %w", err)
	}
	defer rows.Close()

	var generations []*Generation
	for rows.Next() {
		generation, err := scanGeneration(rows)
		if err != nil {
			return nil, err
		}
		generations = append(generations, generation)
	}
	return generations, rows.Err()
}

// DeleteGenerationsForEpisode removes the generation records of every clip of
// the episode and reports how many were purged.
func (s *Store) DeleteGenerationsForEpisode(ctx context.Context, episodeID int64) (int64, error) {
	res, err := s.execWithRetry(
		ctx,
		`DELETE FROM generations WHERE clip_uuid IN (SELECT uuid FROM clips WHERE episode_id = ?)`,
		episodeID,
	)
	if err != nil {
		return 0, fmt.Errorf("delete generations: %w", err)
	}
	return res.RowsAffected()
}

func scanGeneration(scanner interface{ Scan(dest ...any) error }) (*Generation, error) {
	var (
		generation Generation
		subtitles  int
		createdRaw string
		updatedRaw string
	)
	if err := scanner.Scan(
		&generation.UUID,
		&generation.ClipUUID,
		&generation.Filetype,
		&generation.Resolution,
		&subtitles,
		&generation.Substitutions,
		&generation.Artifact,
		&generation.Snapshot,
		&generation.Views,
		&generation.Copies,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}
	generation.Subtitles = subtitles != 0
	if created, err := parseTimeString(createdRaw); err == nil {
		generation.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		generation.UpdatedAt = updated
	}
	return &generation, nil
}
