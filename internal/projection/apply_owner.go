package projection

import (
	"context"
	"fmt"

	"github.com/heavyhelms/playerindex/internal/chain"
)

// applyAttributeSwapAwarded records the owner's new swap charge total. The
// contract emits the running total, so this is an overwrite, not an add.
func (a Applier) applyAttributeSwapAwarded(ctx context.Context, evt chain.Event) error {
	payload, err := payloadAs[chain.AttributeSwapAwardedPayload](evt)
	if err != nil {
		return err
	}

	owner, err := a.getOrCreateOwner(ctx, payload.To, evt.BlockTime)
	if err != nil {
		return err
	}
	owner.AttributeSwapCharges = payload.TotalCharges
	owner.LastUpdatedAt = evt.BlockTime
	if err := a.Owners.PutOwner(ctx, owner); err != nil {
		return fmt.Errorf("put owner %s: %w", owner.Address, err)
	}
	return nil
}

// applyNameChangeAwarded records the owner's new name change charge total.
func (a Applier) applyNameChangeAwarded(ctx context.Context, evt chain.Event) error {
	payload, err := payloadAs[chain.NameChangeAwardedPayload](evt)
	if err != nil {
		return err
	}

	owner, err := a.getOrCreateOwner(ctx, payload.To, evt.BlockTime)
	if err != nil {
		return err
	}
	owner.NameChangeCharges = payload.TotalCharges
	owner.LastUpdatedAt = evt.BlockTime
	if err := a.Owners.PutOwner(ctx, owner); err != nil {
		return fmt.Errorf("put owner %s: %w", owner.Address, err)
	}
	return nil
}
