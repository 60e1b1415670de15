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

// PutPlayer upserts one player aggregate.
func (s *Store) PutPlayer(ctx context.Context, player storage.Player) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if player.ID == 0 {
		return fmt.Errorf("player id is required")
	}
	owner := string(chain.NormalizeAddress(string(player.Owner)))
	if owner == "" {
		return fmt.Errorf("player owner is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO players (
		   id, owner,
		   strength, constitution, size, agility, stamina, luck,
		   first_name_index, surname_index, first_name, surname, full_name,
		   retired, immortal,
		   wins, losses, kills,
		   current_skin, creation_tx, created_at, last_updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   owner = excluded.owner,
		   strength = excluded.strength,
		   constitution = excluded.constitution,
		   size = excluded.size,
		   agility = excluded.agility,
		   stamina = excluded.stamina,
		   luck = excluded.luck,
		   first_name_index = excluded.first_name_index,
		   surname_index = excluded.surname_index,
		   first_name = excluded.first_name,
		   surname = excluded.surname,
		   full_name = excluded.full_name,
		   retired = excluded.retired,
		   immortal = excluded.immortal,
		   wins = excluded.wins,
		   losses = excluded.losses,
		   kills = excluded.kills,
		   current_skin = excluded.current_skin,
		   creation_tx = excluded.creation_tx,
		   created_at = excluded.created_at,
		   last_updated_at = excluded.last_updated_at`,
		int64(player.ID),
		owner,
		player.Strength,
		player.Constitution,
		player.Size,
		player.Agility,
		player.Stamina,
		player.Luck,
		player.FirstNameIndex,
		player.SurnameIndex,
		player.FirstName,
		player.Surname,
		player.FullName,
		player.Retired,
		player.Immortal,
		player.Wins,
		player.Losses,
		player.Kills,
		player.CurrentSkin,
		string(player.CreationTx),
		toMillis(player.CreatedAt),
		toMillis(player.LastUpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put player: %w", err)
	}
	return nil
}

// GetPlayer returns one player by ID.
func (s *Store) GetPlayer(ctx context.Context, id uint64) (storage.Player, error) {
	if err := ctx.Err(); err != nil {
		return storage.Player{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Player{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, owner,
		        strength, constitution, size, agility, stamina, luck,
		        first_name_index, surname_index, first_name, surname, full_name,
		        retired, immortal,
		        wins, losses, kills,
		        current_skin, creation_tx, created_at, last_updated_at
		   FROM players
		  WHERE id = ?`,
		int64(id),
	)

	var player storage.Player
	var playerID int64
	var owner string
	var creationTx string
	var createdAt int64
	var lastUpdatedAt int64
	err := row.Scan(
		&playerID,
		&owner,
		&player.Strength,
		&player.Constitution,
		&player.Size,
		&player.Agility,
		&player.Stamina,
		&player.Luck,
		&player.FirstNameIndex,
		&player.SurnameIndex,
		&player.FirstName,
		&player.Surname,
		&player.FullName,
		&player.Retired,
		&player.Immortal,
		&player.Wins,
		&player.Losses,
		&player.Kills,
		&player.CurrentSkin,
		&creationTx,
		&createdAt,
		&lastUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Player{}, storage.ErrNotFound
		}
		return storage.Player{}, fmt.Errorf("get player: %w", err)
	}

	player.ID = uint64(playerID)
	player.Owner = chain.Address(owner)
	player.CreationTx = chain.Hash(creationTx)
	player.CreatedAt = fromMillis(createdAt)
	player.LastUpdatedAt = fromMillis(lastUpdatedAt)
	return player, nil
}

// CountPlayersByOwner counts minted players for one owner address.
func (s *Store) CountPlayersByOwner(ctx context.Context, owner chain.Address) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	address := string(chain.NormalizeAddress(string(owner)))
	if strings.TrimSpace(address) == "" {
		return 0, fmt.Errorf("owner address is required")
	}

	var count int64
	row := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM players WHERE owner = ?`, address)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count players by owner: %w", err)
	}
	return uint64(count), nil
}
