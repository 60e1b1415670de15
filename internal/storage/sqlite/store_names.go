package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/heavyhelms/playerindex/internal/storage"
)

// GetName returns one entry of the externally populated name table.
func (s *Store) GetName(ctx context.Context, key string) (storage.Name, error) {
	if err := ctx.Err(); err != nil {
		return storage.Name{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Name{}, fmt.Errorf("storage is not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return storage.Name{}, fmt.Errorf("name key is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `SELECT key, value FROM names WHERE key = ?`, key)

	var name storage.Name
	if err := row.Scan(&name.Key, &name.Value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Name{}, storage.ErrNotFound
		}
		return storage.Name{}, fmt.Errorf("get name: %w", err)
	}
	return name, nil
}

// PutName upserts one name table entry.
func (s *Store) PutName(ctx context.Context, name storage.Name) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	key := strings.TrimSpace(name.Key)
	if key == "" {
		return fmt.Errorf("name key is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO names (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key,
		name.Value,
	)
	if err != nil {
		return fmt.Errorf("put name: %w", err)
	}
	return nil
}
