// Package skins resolves (collection, token) pairs against the externally
// populated skin collection registry and maintains skin records.
package skins

import (
	"context"
	"errors"
	"fmt"

	"github.com/heavyhelms/playerindex/internal/storage"
)

// SkinID builds the stable record ID for a (collection, token) pair.
func SkinID(collectionIndex uint32, tokenID uint16) string {
	return fmt.Sprintf("%d-%d", collectionIndex, tokenID)
}

// Registry resolves skins through a SkinStore.
type Registry struct {
	store storage.SkinStore
}

// NewRegistry returns a registry over the given skin store.
func NewRegistry(store storage.SkinStore) *Registry {
	return &Registry{store: store}
}

// Resolve returns the skin record ID for a (collection, token) pair,
// upserting the skin record as a side effect. An unregistered collection is
// a miss, reported as an empty ID with no error; callers leave the player's
// current skin untouched on a miss.
func (r *Registry) Resolve(ctx context.Context, collectionIndex uint32, tokenID uint16) (string, error) {
	if _, err := r.store.GetSkinCollection(ctx, collectionIndex); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("resolve skin collection %d: %w", collectionIndex, err)
	}

	id := SkinID(collectionIndex, tokenID)
	skin := storage.Skin{ID: id, CollectionIndex: collectionIndex, TokenID: tokenID}
	if err := r.store.PutSkin(ctx, skin); err != nil {
		return "", fmt.Errorf("record skin %s: %w", id, err)
	}
	return id, nil
}
