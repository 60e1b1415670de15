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

// PutContractEvent appends one audit record. Replaying the same event ID is
// an upsert of identical content, so replays stay idempotent.
func (s *Store) PutContractEvent(ctx context.Context, event storage.ContractEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id := strings.TrimSpace(event.ID)
	if id == "" {
		return fmt.Errorf("event id is required")
	}
	if event.Kind == "" {
		return fmt.Errorf("event kind is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO contract_events (
		   id, kind, block_number, block_time, tx_hash, log_index, payload
		 ) VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   kind = excluded.kind,
		   block_number = excluded.block_number,
		   block_time = excluded.block_time,
		   tx_hash = excluded.tx_hash,
		   log_index = excluded.log_index,
		   payload = excluded.payload`,
		id,
		string(event.Kind),
		int64(event.BlockNumber),
		toMillis(event.BlockTime),
		string(event.TxHash),
		int64(event.LogIndex),
		event.Payload,
	)
	if err != nil {
		return fmt.Errorf("put contract event: %w", err)
	}
	return nil
}

// GetContractEvent returns one audit record by ID.
func (s *Store) GetContractEvent(ctx context.Context, id string) (storage.ContractEvent, error) {
	if err := ctx.Err(); err != nil {
		return storage.ContractEvent{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.ContractEvent{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.ContractEvent{}, fmt.Errorf("event id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, kind, block_number, block_time, tx_hash, log_index, payload
		   FROM contract_events
		  WHERE id = ?`,
		id,
	)

	var event storage.ContractEvent
	var kind string
	var blockNumber int64
	var blockTime int64
	var txHash string
	var logIndex int64
	err := row.Scan(&event.ID, &kind, &blockNumber, &blockTime, &txHash, &logIndex, &event.Payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ContractEvent{}, storage.ErrNotFound
		}
		return storage.ContractEvent{}, fmt.Errorf("get contract event: %w", err)
	}

	event.Kind = chain.Kind(kind)
	event.BlockNumber = uint64(blockNumber)
	event.BlockTime = fromMillis(blockTime)
	event.TxHash = chain.Hash(txHash)
	event.LogIndex = uint32(logIndex)
	return event, nil
}
