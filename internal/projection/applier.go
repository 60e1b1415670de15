// Package projection applies decoded Player contract events to the entity
// store: one immutable audit record per event, plus idempotent mutations of
// the Player, Owner, and PendingCreation aggregates.
package projection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/heavyhelms/playerindex/internal/chain"
	"github.com/heavyhelms/playerindex/internal/names"
	apperrors "github.com/heavyhelms/playerindex/internal/platform/errors"
	"github.com/heavyhelms/playerindex/internal/storage"
)

// NameResolver resolves a player's name index pair to display strings.
type NameResolver interface {
	Resolve(ctx context.Context, firstNameIndex, surnameIndex uint16) (names.Parts, error)
}

// SkinResolver resolves a (collection, token) pair to a skin record ID.
// An empty ID with a nil error is a miss; the caller leaves the player's
// current skin untouched.
type SkinResolver interface {
	Resolve(ctx context.Context, collectionIndex uint32, tokenID uint16) (string, error)
}

// Applier applies decoded contract events to projection stores.
type Applier struct {
	// Players writes the player aggregates.
	Players storage.PlayerStore
	// Owners writes the per-address aggregates.
	Owners storage.OwnerStore
	// Pending tracks two-phase creation requests.
	Pending storage.PendingCreationStore
	// Audit appends one immutable record per event.
	Audit storage.AuditStore
	// Names resolves name indices to display strings.
	Names NameResolver
	// Skins resolves equipped skins to stable record IDs.
	Skins SkinResolver
}

// Apply routes one event: the audit record is written first for every known
// kind, then the kind's aggregate mutation, if it has one. Unknown kinds are
// an error; the ingest layer filters foreign logs before they reach here.
func (a Applier) Apply(ctx context.Context, evt chain.Event) error {
	entry, ok := handlers[evt.Kind]
	if !ok {
		return apperrors.WithMetadata(apperrors.CodeEventUnknownKind, "no handler for event kind", map[string]string{
			"kind": string(evt.Kind),
		})
	}
	if a.Audit == nil {
		return fmt.Errorf("audit store is not configured")
	}
	if err := a.validatePreconditions(entry); err != nil {
		return err
	}

	if err := a.recordEvent(ctx, evt); err != nil {
		return err
	}
	if entry.apply == nil {
		return nil
	}
	return entry.apply(a, ctx, evt)
}

// recordEvent persists the immutable audit record for one event occurrence.
func (a Applier) recordEvent(ctx context.Context, evt chain.Event) error {
	id, err := evt.ID()
	if err != nil {
		return apperrors.Wrap(apperrors.CodeEventMalformed, "build event id", err)
	}
	payload, err := json.Marshal(evt.Payload)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeEventMalformed, "encode event payload", err)
	}
	record := storage.ContractEvent{
		ID:          id,
		Kind:        evt.Kind,
		BlockNumber: evt.BlockNumber,
		BlockTime:   evt.BlockTime,
		TxHash:      evt.TxHash,
		LogIndex:    evt.LogIndex,
		Payload:     payload,
	}
	if err := a.Audit.PutContractEvent(ctx, record); err != nil {
		return fmt.Errorf("record %s event: %w", evt.Kind, err)
	}
	return nil
}

// getOrCreateOwner looks up an owner by canonical address, creating a zeroed
// record on first reference. Callers persist their own further mutations.
func (a Applier) getOrCreateOwner(ctx context.Context, address chain.Address, at time.Time) (storage.Owner, error) {
	canonical := chain.NormalizeAddress(string(address))
	owner, err := a.Owners.GetOwner(ctx, canonical)
	if err == nil {
		return owner, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return storage.Owner{}, fmt.Errorf("get owner %s: %w", canonical, err)
	}

	owner = storage.Owner{
		Address:       canonical,
		CreatedAt:     at,
		LastUpdatedAt: at,
	}
	if err := a.Owners.PutOwner(ctx, owner); err != nil {
		return storage.Owner{}, fmt.Errorf("create owner %s: %w", canonical, err)
	}
	return owner, nil
}

// loadPlayer looks up a player for a mutating event. A miss is reported with
// found=false and no error: events referencing unminted players are no-ops.
func (a Applier) loadPlayer(ctx context.Context, id uint64) (storage.Player, bool, error) {
	player, err := a.Players.GetPlayer(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.Player{}, false, nil
		}
		return storage.Player{}, false, fmt.Errorf("get player %d: %w", id, err)
	}
	return player, true, nil
}

// payloadAs asserts an event's payload to the handler's expected type.
func payloadAs[P any](evt chain.Event) (P, error) {
	payload, ok := evt.Payload.(P)
	if !ok {
		var zero P
		return zero, apperrors.WithMetadata(apperrors.CodeEventPayloadType, "unexpected event payload type", map[string]string{
			"kind": string(evt.Kind),
			"type": fmt.Sprintf("%T", evt.Payload),
		})
	}
	return payload, nil
}
