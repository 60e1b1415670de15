package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/heavyhelms/playerindex/internal/chain"
	"github.com/heavyhelms/playerindex/internal/storage"
)

// PutPendingCreation upserts one two-phase creation record.
func (s *Store) PutPendingCreation(ctx context.Context, pending storage.PendingCreation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	requestID := strings.TrimSpace(pending.RequestID)
	if requestID == "" {
		return fmt.Errorf("request id is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO pending_creations (
		   request_id, requester, fulfilled, player_id, created_at
		 ) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (request_id) DO UPDATE SET
		   requester = excluded.requester,
		   fulfilled = excluded.fulfilled,
		   player_id = excluded.player_id,
		   created_at = excluded.created_at`,
		requestID,
		string(chain.NormalizeAddress(string(pending.Requester))),
		pending.Fulfilled,
		int64(pending.PlayerID),
		toMillis(pending.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put pending creation: %w", err)
	}
	return nil
}

// GetPendingCreation returns one creation record by request ID.
func (s *Store) GetPendingCreation(ctx context.Context, requestID string) (storage.PendingCreation, error) {
	if err := ctx.Err(); err != nil {
		return storage.PendingCreation{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.PendingCreation{}, fmt.Errorf("storage is not configured")
	}
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return storage.PendingCreation{}, fmt.Errorf("request id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT request_id, requester, fulfilled, player_id, created_at
		   FROM pending_creations
		  WHERE request_id = ?`,
		requestID,
	)

	var pending storage.PendingCreation
	var requester string
	var playerID int64
	var createdAt int64
	err := row.Scan(&pending.RequestID, &requester, &pending.Fulfilled, &playerID, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.PendingCreation{}, storage.ErrNotFound
		}
		return storage.PendingCreation{}, fmt.Errorf("get pending creation: %w", err)
	}

	pending.Requester = chain.Address(requester)
	pending.PlayerID = uint64(playerID)
	pending.CreatedAt = fromMillis(createdAt)
	return pending, nil
}
