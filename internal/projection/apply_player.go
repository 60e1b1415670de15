package projection

import (
	"context"
	"fmt"
	"log"

	"github.com/heavyhelms/playerindex/internal/chain"
	"github.com/heavyhelms/playerindex/internal/storage"
)

// Attribute enum values emitted by swap events.
const (
	attrStrength = iota
	attrConstitution
	attrSize
	attrAgility
	attrStamina
	attrLuck
)

// setAttribute overwrites the stat named by the enum value. Unrecognized
// values are ignored and reported as false.
func setAttribute(player *storage.Player, attribute uint8, value uint8) bool {
	switch attribute {
	case attrStrength:
		player.Strength = value
	case attrConstitution:
		player.Constitution = value
	case attrSize:
		player.Size = value
	case attrAgility:
		player.Agility = value
	case attrStamina:
		player.Stamina = value
	case attrLuck:
		player.Luck = value
	default:
		return false
	}
	return true
}

// savePlayer persists a mutated player, stamping the event's block time.
func (a Applier) savePlayer(ctx context.Context, player storage.Player, evt chain.Event) error {
	player.LastUpdatedAt = evt.BlockTime
	if err := a.Players.PutPlayer(ctx, player); err != nil {
		return fmt.Errorf("put player %d: %w", player.ID, err)
	}
	return nil
}

func skipMissingPlayer(kind chain.Kind, id uint64) {
	log.Printf("skip %s: player %d not indexed", kind, id)
}

func (a Applier) applyAttributesSwapped(ctx context.Context, evt chain.Event) error {
	payload, err := payloadAs[chain.PlayerAttributesSwappedPayload](evt)
	if err != nil {
		return err
	}
	player, found, err := a.loadPlayer(ctx, payload.PlayerID)
	if err != nil {
		return err
	}
	if !found {
		skipMissingPlayer(evt.Kind, payload.PlayerID)
		return nil
	}

	if !setAttribute(&player, payload.DecreaseAttribute, payload.NewDecreaseValue) {
		log.Printf("ignoring unknown decrease attribute %d for player %d", payload.DecreaseAttribute, payload.PlayerID)
	}
	if !setAttribute(&player, payload.IncreaseAttribute, payload.NewIncreaseValue) {
		log.Printf("ignoring unknown increase attribute %d for player %d", payload.IncreaseAttribute, payload.PlayerID)
	}
	return a.savePlayer(ctx, player, evt)
}

func (a Applier) applyAttributesUpdated(ctx context.Context, evt chain.Event) error {
	payload, err := payloadAs[chain.PlayerAttributesUpdatedPayload](evt)
	if err != nil {
		return err
	}
	player, found, err := a.loadPlayer(ctx, payload.PlayerID)
	if err != nil {
		return err
	}
	if !found {
		skipMissingPlayer(evt.Kind, payload.PlayerID)
		return nil
	}

	player.Strength = payload.Strength
	player.Constitution = payload.Constitution
	player.Size = payload.Size
	player.Agility = payload.Agility
	player.Stamina = payload.Stamina
	player.Luck = payload.Luck
	return a.savePlayer(ctx, player, evt)
}

func (a Applier) applyImmortalityChanged(ctx context.Context, evt chain.Event) error {
	payload, err := payloadAs[chain.PlayerImmortalityChangedPayload](evt)
	if err != nil {
		return err
	}
	player, found, err := a.loadPlayer(ctx, payload.PlayerID)
	if err != nil {
		return err
	}
	if !found {
		skipMissingPlayer(evt.Kind, payload.PlayerID)
		return nil
	}

	player.Immortal = payload.Immortal
	return a.savePlayer(ctx, player, evt)
}

func (a Applier) applyKillUpdated(ctx context.Context, evt chain.Event) error {
	payload, err := payloadAs[chain.PlayerKillUpdatedPayload](evt)
	if err != nil {
		return err
	}
	player, found, err := a.loadPlayer(ctx, payload.PlayerID)
	if err != nil {
		return err
	}
	if !found {
		skipMissingPlayer(evt.Kind, payload.PlayerID)
		return nil
	}

	// Absolute value from the contract, not an increment.
	player.Kills = payload.Kills
	return a.savePlayer(ctx, player, evt)
}

func (a Applier) applyNameUpdated(ctx context.Context, evt chain.Event) error {
	payload, err := payloadAs[chain.PlayerNameUpdatedPayload](evt)
	if err != nil {
		return err
	}
	player, found, err := a.loadPlayer(ctx, payload.PlayerID)
	if err != nil {
		return err
	}
	if !found {
		skipMissingPlayer(evt.Kind, payload.PlayerID)
		return nil
	}

	player.FirstNameIndex = payload.FirstNameIndex
	player.SurnameIndex = payload.SurnameIndex

	// Same resolution path as creation so both call sites derive identical
	// name state from identical indices.
	parts, err := a.Names.Resolve(ctx, payload.FirstNameIndex, payload.SurnameIndex)
	if err != nil {
		return err
	}
	player.FirstName = parts.FirstName
	player.Surname = parts.Surname
	player.FullName = parts.FullName
	return a.savePlayer(ctx, player, evt)
}

func (a Applier) applyRetired(ctx context.Context, evt chain.Event) error {
	payload, err := payloadAs[chain.PlayerRetiredPayload](evt)
	if err != nil {
		return err
	}
	player, found, err := a.loadPlayer(ctx, payload.PlayerID)
	if err != nil {
		return err
	}
	if !found {
		skipMissingPlayer(evt.Kind, payload.PlayerID)
		return nil
	}

	player.Retired = payload.Retired
	return a.savePlayer(ctx, player, evt)
}

func (a Applier) applySkinEquipped(ctx context.Context, evt chain.Event) error {
	payload, err := payloadAs[chain.PlayerSkinEquippedPayload](evt)
	if err != nil {
		return err
	}
	player, found, err := a.loadPlayer(ctx, payload.PlayerID)
	if err != nil {
		return err
	}
	if !found {
		skipMissingPlayer(evt.Kind, payload.PlayerID)
		return nil
	}

	skinID, err := a.Skins.Resolve(ctx, payload.SkinIndex, payload.TokenID)
	if err != nil {
		return err
	}
	// A resolver miss leaves the current skin untouched.
	if skinID != "" {
		player.CurrentSkin = skinID
	}
	return a.savePlayer(ctx, player, evt)
}

func (a Applier) applyWinLossUpdated(ctx context.Context, evt chain.Event) error {
	payload, err := payloadAs[chain.PlayerWinLossUpdatedPayload](evt)
	if err != nil {
		return err
	}
	player, found, err := a.loadPlayer(ctx, payload.PlayerID)
	if err != nil {
		return err
	}
	if !found {
		skipMissingPlayer(evt.Kind, payload.PlayerID)
		return nil
	}

	player.Wins = payload.Wins
	player.Losses = payload.Losses
	return a.savePlayer(ctx, player, evt)
}
