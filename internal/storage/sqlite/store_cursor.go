package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/heavyhelms/playerindex/internal/storage"
)

// GetCursor returns the persisted ingest position.
func (s *Store) GetCursor(ctx context.Context) (storage.Cursor, error) {
	if err := ctx.Err(); err != nil {
		return storage.Cursor{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Cursor{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(ctx, `SELECT next_block, updated_at FROM ingest_cursor WHERE id = 1`)

	var cursor storage.Cursor
	var nextBlock int64
	var updatedAt int64
	if err := row.Scan(&nextBlock, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Cursor{}, storage.ErrNotFound
		}
		return storage.Cursor{}, fmt.Errorf("get cursor: %w", err)
	}

	cursor.NextBlock = uint64(nextBlock)
	cursor.UpdatedAt = fromMillis(updatedAt)
	return cursor, nil
}

// PutCursor persists the ingest position.
func (s *Store) PutCursor(ctx context.Context, cursor storage.Cursor) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO ingest_cursor (id, next_block, updated_at) VALUES (1, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   next_block = excluded.next_block,
		   updated_at = excluded.updated_at`,
		int64(cursor.NextBlock),
		toMillis(cursor.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put cursor: %w", err)
	}
	return nil
}
