package projection

import (
	"context"
	"fmt"
	"sort"

	"github.com/heavyhelms/playerindex/internal/chain"
)

// storeRequirement specifies which collaborators a handler depends on. Hard
// requirements are checked before dispatch; the handler will not execute if
// any required collaborator is nil. The audit store is required for every
// kind and checked separately.
type storeRequirement uint8

const (
	needPlayers storeRequirement = 1 << iota
	needOwners
	needPending
	needNames
	needSkins
)

// handlerEntry declares the preconditions and apply function for one event
// kind. A nil apply means the kind is audit-only: the record is written and
// no aggregate changes.
type handlerEntry struct {
	stores storeRequirement
	apply  func(Applier, context.Context, chain.Event) error
}

// handlers maps each contract event kind to its handler entry.
var handlers = map[chain.Kind]handlerEntry{
	// player lifecycle
	chain.KindPlayerCreationRequested: {
		stores: needOwners | needPending,
		apply: func(a Applier, ctx context.Context, evt chain.Event) error {
			return a.applyCreationRequested(ctx, evt)
		},
	},
	chain.KindPlayerCreationComplete: {
		stores: needPlayers | needOwners | needPending | needNames | needSkins,
		apply: func(a Applier, ctx context.Context, evt chain.Event) error {
			return a.applyCreationComplete(ctx, evt)
		},
	},
	chain.KindPlayerAttributesSwapped: {
		stores: needPlayers,
		apply: func(a Applier, ctx context.Context, evt chain.Event) error {
			return a.applyAttributesSwapped(ctx, evt)
		},
	},
	chain.KindPlayerAttributesUpdated: {
		stores: needPlayers,
		apply: func(a Applier, ctx context.Context, evt chain.Event) error {
			return a.applyAttributesUpdated(ctx, evt)
		},
	},
	chain.KindPlayerImmortalityChanged: {
		stores: needPlayers,
		apply: func(a Applier, ctx context.Context, evt chain.Event) error {
			return a.applyImmortalityChanged(ctx, evt)
		},
	},
	chain.KindPlayerKillUpdated: {
		stores: needPlayers,
		apply: func(a Applier, ctx context.Context, evt chain.Event) error {
			return a.applyKillUpdated(ctx, evt)
		},
	},
	chain.KindPlayerNameUpdated: {
		stores: needPlayers | needNames,
		apply: func(a Applier, ctx context.Context, evt chain.Event) error {
			return a.applyNameUpdated(ctx, evt)
		},
	},
	chain.KindPlayerRetired: {
		stores: needPlayers,
		apply: func(a Applier, ctx context.Context, evt chain.Event) error {
			return a.applyRetired(ctx, evt)
		},
	},
	chain.KindPlayerSkinEquipped: {
		stores: needPlayers | needSkins,
		apply: func(a Applier, ctx context.Context, evt chain.Event) error {
			return a.applySkinEquipped(ctx, evt)
		},
	},
	chain.KindPlayerWinLossUpdated: {
		stores: needPlayers,
		apply: func(a Applier, ctx context.Context, evt chain.Event) error {
			return a.applyWinLossUpdated(ctx, evt)
		},
	},

	// owner account
	chain.KindAttributeSwapAwarded: {
		stores: needOwners,
		apply: func(a Applier, ctx context.Context, evt chain.Event) error {
			return a.applyAttributeSwapAwarded(ctx, evt)
		},
	},
	chain.KindNameChangeAwarded: {
		stores: needOwners,
		apply: func(a Applier, ctx context.Context, evt chain.Event) error {
			return a.applyNameChangeAwarded(ctx, evt)
		},
	},
	// Slot purchases carry no owner aggregate field; audit-only.
	chain.KindPlayerSlotsPurchased: {},

	// contract administration, audit-only
	chain.KindCreatePlayerFeeUpdated:         {},
	chain.KindEquipmentRequirementsUpdated:   {},
	chain.KindGameContractPermissionsUpdated: {},
	chain.KindOwnershipTransferred:           {},
	chain.KindPausedStateChanged:             {},
	chain.KindRequestedRandomness:            {},
	chain.KindSlotBatchCostUpdated:           {},
}

// HandledKinds returns the sorted list of event kinds the applier routes.
func HandledKinds() []chain.Kind {
	kinds := make([]chain.Kind, 0, len(handlers))
	for kind := range handlers {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool {
		return string(kinds[i]) < string(kinds[j])
	})
	return kinds
}

// validatePreconditions checks that the applier's collaborators satisfy the
// handler's declared requirements.
func (a Applier) validatePreconditions(h handlerEntry) error {
	if h.stores&needPlayers != 0 && a.Players == nil {
		return fmt.Errorf("player store is not configured")
	}
	if h.stores&needOwners != 0 && a.Owners == nil {
		return fmt.Errorf("owner store is not configured")
	}
	if h.stores&needPending != 0 && a.Pending == nil {
		return fmt.Errorf("pending creation store is not configured")
	}
	if h.stores&needNames != 0 && a.Names == nil {
		return fmt.Errorf("name resolver is not configured")
	}
	if h.stores&needSkins != 0 && a.Skins == nil {
		return fmt.Errorf("skin resolver is not configured")
	}
	return nil
}
