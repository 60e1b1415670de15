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

// GetSkinCollection returns one registered skin contract by index.
func (s *Store) GetSkinCollection(ctx context.Context, index uint32) (storage.SkinCollection, error) {
	if err := ctx.Err(); err != nil {
		return storage.SkinCollection{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.SkinCollection{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT collection_index, name, contract_address
		   FROM skin_collections
		  WHERE collection_index = ?`,
		int64(index),
	)

	var collection storage.SkinCollection
	var collectionIndex int64
	var contractAddress string
	err := row.Scan(&collectionIndex, &collection.Name, &contractAddress)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.SkinCollection{}, storage.ErrNotFound
		}
		return storage.SkinCollection{}, fmt.Errorf("get skin collection: %w", err)
	}

	collection.Index = uint32(collectionIndex)
	collection.ContractAddress = chain.Address(contractAddress)
	return collection, nil
}

// PutSkinCollection upserts one skin contract registration.
func (s *Store) PutSkinCollection(ctx context.Context, collection storage.SkinCollection) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO skin_collections (collection_index, name, contract_address)
		 VALUES (?, ?, ?)
		 ON CONFLICT (collection_index) DO UPDATE SET
		   name = excluded.name,
		   contract_address = excluded.contract_address`,
		int64(collection.Index),
		collection.Name,
		string(chain.NormalizeAddress(string(collection.ContractAddress))),
	)
	if err != nil {
		return fmt.Errorf("put skin collection: %w", err)
	}
	return nil
}

// PutSkin upserts one resolved skin record.
func (s *Store) PutSkin(ctx context.Context, skin storage.Skin) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id := strings.TrimSpace(skin.ID)
	if id == "" {
		return fmt.Errorf("skin id is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO skins (id, collection_index, token_id) VALUES (?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   collection_index = excluded.collection_index,
		   token_id = excluded.token_id`,
		id,
		int64(skin.CollectionIndex),
		int64(skin.TokenID),
	)
	if err != nil {
		return fmt.Errorf("put skin: %w", err)
	}
	return nil
}

// GetSkin returns one resolved skin record by ID.
func (s *Store) GetSkin(ctx context.Context, id string) (storage.Skin, error) {
	if err := ctx.Err(); err != nil {
		return storage.Skin{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Skin{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.Skin{}, fmt.Errorf("skin id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, collection_index, token_id FROM skins WHERE id = ?`,
		id,
	)

	var skin storage.Skin
	var collectionIndex int64
	var tokenID int64
	if err := row.Scan(&skin.ID, &collectionIndex, &tokenID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Skin{}, storage.ErrNotFound
		}
		return storage.Skin{}, fmt.Errorf("get skin: %w", err)
	}

	skin.CollectionIndex = uint32(collectionIndex)
	skin.TokenID = uint16(tokenID)
	return skin, nil
}
