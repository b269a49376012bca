package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const clipColumns = "uuid, episode_id, subtitle_begin, subtitle_end, transcript, offset_sec, extend_sec, created_at, updated_at"

// FindClip looks up a clip by its exact identity tuple. Returns nil when no
// clip exists for the tuple.
func (s *Store) FindClip(ctx context.Context, begin, end int64, offset, extend float64) (*Clip, error) {
	row := s.db.QueryRowContext(
		ensureContext(ctx),
		`SELECT `+clipColumns+` FROM clips
         WHERE subtitle_begin = ? AND subtitle_end = ? AND offset_sec = ? AND extend_sec = ?`,
		begin, end, offset, extend,
	)
	clip, err := scanClip(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find clip: %w", err)
	}
	return clip, nil
}

// ClipByUUID fetches a clip by identifier. Returns nil when absent.
func (s *Store) ClipByUUID(ctx context.Context, id string) (*Clip, error) {
	row := s.db.QueryRowContext(
		ensureContext(ctx),
		`SELECT `+clipColumns+` FROM clips WHERE uuid = ?`,
		id,
	)
	clip, err := scanClip(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("clip by uuid: %w", err)
	}
	return clip, nil
}

// InsertClip persists a new clip, assigning its UUID and timestamps. A
// concurrent insert of the same tuple surfaces as a constraint error; callers
// re-read with FindClip in that case.
func (s *Store) InsertClip(ctx context.Context, clip *Clip) error {
	if clip == nil {
		return errors.New("clip is nil")
	}
	now := time.Now().UTC()
	clip.UUID = uuid.NewString()
	clip.CreatedAt = now
	clip.UpdatedAt = now

	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO clips (uuid, episode_id, subtitle_begin, subtitle_end, transcript, offset_sec, extend_sec, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		clip.UUID,
		clip.EpisodeID,
		clip.SubtitleBegin,
		clip.SubtitleEnd,
		clip.Transcript,
		clip.Offset,
		clip.Extend,
		timestamp(now),
		timestamp(now),
	)
	if err != nil {
		return fmt.Errorf("insert clip: %w", err)
	}
	return nil
}

// IsUniqueViolation reports whether an insert failed on a uniqueness
// constraint, the signal that a concurrent request created the row first.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) {
		// SQLITE_CONSTRAINT
		if coder.Code() == 19 || coder.Code() == 2067 || coder.Code() == 1555 {
			return true
		}
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "constraint violation")
}

func scanClip(scanner interface{ Scan(dest ...any) error }) (*Clip, error) {
	var (
		clip       Clip
		createdRaw string
		updatedRaw string
	)
	if err := scanner.Scan(
		&clip.UUID,
		&clip.EpisodeID,
		&clip.SubtitleBegin,
		&clip.SubtitleEnd,
		&clip.Transcript,
		&clip.Offset,
		&clip.Extend,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		clip.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		clip.UpdatedAt = updated
	}
	return &clip, nil
}
