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

// PutOwner upserts one owner aggregate.
func (s *Store) PutOwner(ctx context.Context, owner storage.Owner) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	address := string(chain.NormalizeAddress(string(owner.Address)))
	if strings.TrimSpace(address) == "" {
		return fmt.Errorf("owner address is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO owners (
		   address, total_players, name_change_charges, attribute_swap_charges,
		   created_at, last_updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (address) DO UPDATE SET
		   total_players = excluded.total_players,
		   name_change_charges = excluded.name_change_charges,
		   attribute_swap_charges = excluded.attribute_swap_charges,
		   last_updated_at = excluded.last_updated_at`,
		address,
		int64(owner.TotalPlayers),
		int64(owner.NameChangeCharges),
		int64(owner.AttributeSwapCharges),
		toMillis(owner.CreatedAt),
		toMillis(owner.LastUpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put owner: %w", err)
	}
	return nil
}

// GetOwner returns one owner by address.
func (s *Store) GetOwner(ctx context.Context, address chain.Address) (storage.Owner, error) {
	if err := ctx.Err(); err != nil {
		return storage.Owner{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Owner{}, fmt.Errorf("storage is not configured")
	}
	canonical := string(chain.NormalizeAddress(string(address)))
	if strings.TrimSpace(canonical) == "" {
		return storage.Owner{}, fmt.Errorf("owner address is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT address, total_players, name_change_charges, attribute_swap_charges,
		        created_at, last_updated_at
		   FROM owners
		  WHERE address = ?`,
		canonical,
	)

	var owner storage.Owner
	var stored string
	var totalPlayers int64
	var nameChangeCharges int64
	var attributeSwapCharges int64
	var createdAt int64
	var lastUpdatedAt int64
	err := row.Scan(
		&stored,
		&totalPlayers,
		&nameChangeCharges,
		&attributeSwapCharges,
		&createdAt,
		&lastUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Owner{}, storage.ErrNotFound
		}
		return storage.Owner{}, fmt.Errorf("get owner: %w", err)
	}

	owner.Address = chain.Address(stored)
	owner.TotalPlayers = uint64(totalPlayers)
	owner.NameChangeCharges = uint64(nameChangeCharges)
	owner.AttributeSwapCharges = uint64(attributeSwapCharges)
	owner.CreatedAt = fromMillis(createdAt)
	owner.LastUpdatedAt = fromMillis(lastUpdatedAt)
	return owner, nil
}
