package projection

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/heavyhelms/playerindex/internal/chain"
	"github.com/heavyhelms/playerindex/internal/storage"
)

// Every new player starts with the base collection's first skin.
const (
	defaultSkinCollection = 0
	defaultSkinToken      = 1
)

// applyCreationRequested opens the request half of the two-phase creation
// protocol. A duplicate request ID overwrites the prior record wholesale.
func (a Applier) applyCreationRequested(ctx context.Context, evt chain.Event) error {
	payload, err := payloadAs[chain.PlayerCreationRequestedPayload](evt)
	if err != nil {
		return err
	}

	if _, err := a.getOrCreateOwner(ctx, payload.Requester, evt.BlockTime); err != nil {
		return err
	}

	requestID := strconv.FormatUint(payload.RequestID, 10)
	if _, err := a.Pending.GetPendingCreation(ctx, requestID); err == nil {
		log.Printf("overwriting duplicate creation request %s", requestID)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("get pending creation %s: %w", requestID, err)
	}

	pending := storage.PendingCreation{
		RequestID: requestID,
		Requester: chain.NormalizeAddress(string(payload.Requester)),
		CreatedAt: evt.BlockTime,
	}
	if err := a.Pending.PutPendingCreation(ctx, pending); err != nil {
		return fmt.Errorf("put pending creation %s: %w", requestID, err)
	}
	return nil
}

// applyCreationComplete mints the player, credits the owner's roster, and
// fulfills the tracked request when one exists. A completion without a
// tracked request is tolerated; historical backfills replay completions
// whose requests predate the index.
func (a Applier) applyCreationComplete(ctx context.Context, evt chain.Event) error {
	payload, err := payloadAs[chain.PlayerCreationCompletePayload](evt)
	if err != nil {
		return err
	}

	owner, err := a.getOrCreateOwner(ctx, payload.Owner, evt.BlockTime)
	if err != nil {
		return err
	}

	player := storage.Player{
		ID:             payload.PlayerID,
		Owner:          owner.Address,
		Strength:       payload.Strength,
		Constitution:   payload.Constitution,
		Size:           payload.Size,
		Agility:        payload.Agility,
		Stamina:        payload.Stamina,
		Luck:           payload.Luck,
		FirstNameIndex: payload.FirstNameIndex,
		SurnameIndex:   payload.SurnameIndex,
		CreationTx:     evt.TxHash,
		CreatedAt:      evt.BlockTime,
		LastUpdatedAt:  evt.BlockTime,
	}

	parts, err := a.Names.Resolve(ctx, payload.FirstNameIndex, payload.SurnameIndex)
	if err != nil {
		return err
	}
	player.FirstName = parts.FirstName
	player.Surname = parts.Surname
	player.FullName = parts.FullName

	skinID, err := a.Skins.Resolve(ctx, defaultSkinCollection, defaultSkinToken)
	if err != nil {
		return err
	}
	if skinID != "" {
		player.CurrentSkin = skinID
	}

	if err := a.Players.PutPlayer(ctx, player); err != nil {
		return fmt.Errorf("put player %d: %w", payload.PlayerID, err)
	}

	owner.TotalPlayers++
	owner.LastUpdatedAt = evt.BlockTime
	if err := a.Owners.PutOwner(ctx, owner); err != nil {
		return fmt.Errorf("put owner %s: %w", owner.Address, err)
	}

	requestID := strconv.FormatUint(payload.RequestID, 10)
	pending, err := a.Pending.GetPendingCreation(ctx, requestID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("get pending creation %s: %w", requestID, err)
	}
	pending.Fulfilled = true
	pending.PlayerID = payload.PlayerID
	if err := a.Pending.PutPendingCreation(ctx, pending); err != nil {
		return fmt.Errorf("fulfill pending creation %s: %w", requestID, err)
	}
	return nil
}
