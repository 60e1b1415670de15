package chain

import (
	"fmt"
	"math/big"
	"time"
)

// Kind identifies one Player contract event kind.
type Kind string

// Player lifecycle events.
const (
	// KindPlayerCreationRequested records a paid creation request awaiting VRF fulfillment.
	KindPlayerCreationRequested Kind = "player.creation_requested"
	// KindPlayerCreationComplete records the fulfillment that mints the player.
	KindPlayerCreationComplete Kind = "player.creation_complete"
	// KindPlayerAttributesSwapped records a single decrease/increase stat swap.
	KindPlayerAttributesSwapped Kind = "player.attributes_swapped"
	// KindPlayerAttributesUpdated records a full six-stat overwrite.
	KindPlayerAttributesUpdated Kind = "player.attributes_updated"
	// KindPlayerImmortalityChanged records an immortality flag change.
	KindPlayerImmortalityChanged Kind = "player.immortality_changed"
	// KindPlayerKillUpdated records an absolute kill-count update.
	KindPlayerKillUpdated Kind = "player.kill_updated"
	// KindPlayerNameUpdated records a name index change.
	KindPlayerNameUpdated Kind = "player.name_updated"
	// KindPlayerRetired records a retirement flag change.
	KindPlayerRetired Kind = "player.retired"
	// KindPlayerSkinEquipped records a skin change.
	KindPlayerSkinEquipped Kind = "player.skin_equipped"
	// KindPlayerWinLossUpdated records an absolute win/loss update.
	KindPlayerWinLossUpdated Kind = "player.win_loss_updated"
)

// Owner account events.
const (
	// KindAttributeSwapAwarded records an owner's new attribute swap charge total.
	KindAttributeSwapAwarded Kind = "owner.attribute_swap_awarded"
	// KindNameChangeAwarded records an owner's new name change charge total.
	KindNameChangeAwarded Kind = "owner.name_change_awarded"
	// KindPlayerSlotsPurchased records a roster slot purchase.
	KindPlayerSlotsPurchased Kind = "owner.slots_purchased"
)

// Contract administration events. These are audited but mutate no aggregate.
const (
	KindCreatePlayerFeeUpdated         Kind = "contract.create_player_fee_updated"
	KindEquipmentRequirementsUpdated   Kind = "contract.equipment_requirements_updated"
	KindGameContractPermissionsUpdated Kind = "contract.game_permissions_updated"
	KindOwnershipTransferred           Kind = "contract.ownership_transferred"
	KindPausedStateChanged             Kind = "contract.paused_state_changed"
	KindRequestedRandomness            Kind = "contract.requested_randomness"
	KindSlotBatchCostUpdated           Kind = "contract.slot_batch_cost_updated"
)

// Envelope carries the chain provenance every event shares.
type Envelope struct {
	BlockNumber uint64
	BlockTime   time.Time
	TxHash      Hash
	LogIndex    uint32
}

// Event is one decoded Player contract event with its provenance.
type Event struct {
	Kind Kind
	Envelope
	Payload any
}

// ID returns the audit record identity for this event occurrence.
func (e Event) ID() (string, error) {
	return EventID(e.TxHash, e.LogIndex)
}

// Typed payloads, one per event kind. Field order mirrors the ABI.

type AttributeSwapAwardedPayload struct {
	To           Address `json:"to"`
	TotalCharges uint64  `json:"total_charges"`
}

type CreatePlayerFeeUpdatedPayload struct {
	OldFee *big.Int `json:"old_fee"`
	NewFee *big.Int `json:"new_fee"`
}

type EquipmentRequirementsUpdatedPayload struct {
	OldAddress Address `json:"old_address"`
	NewAddress Address `json:"new_address"`
}

// GamePermissions is the per-game-contract permission bundle.
type GamePermissions struct {
	Record     bool `json:"record"`
	Retire     bool `json:"retire"`
	Name       bool `json:"name"`
	Attributes bool `json:"attributes"`
	Immortal   bool `json:"immortal"`
}

type GameContractPermissionsUpdatedPayload struct {
	GameContract Address         `json:"game_contract"`
	Permissions  GamePermissions `json:"permissions"`
}

type NameChangeAwardedPayload struct {
	To           Address `json:"to"`
	TotalCharges uint64  `json:"total_charges"`
}

type OwnershipTransferredPayload struct {
	User     Address `json:"user"`
	NewOwner Address `json:"new_owner"`
}

type PausedStateChangedPayload struct {
	IsPaused bool `json:"is_paused"`
}

type PlayerAttributesSwappedPayload struct {
	PlayerID          uint64 `json:"player_id"`
	DecreaseAttribute uint8  `json:"decrease_attribute"`
	IncreaseAttribute uint8  `json:"increase_attribute"`
	NewDecreaseValue  uint8  `json:"new_decrease_value"`
	NewIncreaseValue  uint8  `json:"new_increase_value"`
}

type PlayerAttributesUpdatedPayload struct {
	PlayerID     uint64 `json:"player_id"`
	Strength     uint8  `json:"strength"`
	Constitution uint8  `json:"constitution"`
	Size         uint8  `json:"size"`
	Agility      uint8  `json:"agility"`
	Stamina      uint8  `json:"stamina"`
	Luck         uint8  `json:"luck"`
}

type PlayerCreationCompletePayload struct {
	RequestID      uint64   `json:"request_id"`
	PlayerID       uint64   `json:"player_id"`
	Owner          Address  `json:"owner"`
	Randomness     *big.Int `json:"randomness"`
	FirstNameIndex uint16   `json:"first_name_index"`
	SurnameIndex   uint16   `json:"surname_index"`
	Strength       uint8    `json:"strength"`
	Constitution   uint8    `json:"constitution"`
	Size           uint8    `json:"size"`
	Agility        uint8    `json:"agility"`
	Stamina        uint8    `json:"stamina"`
	Luck           uint8    `json:"luck"`
}

type PlayerCreationRequestedPayload struct {
	RequestID uint64  `json:"request_id"`
	Requester Address `json:"requester"`
}

type PlayerImmortalityChangedPayload struct {
	PlayerID uint64  `json:"player_id"`
	Caller   Address `json:"caller"`
	Immortal bool    `json:"immortal"`
}

type PlayerKillUpdatedPayload struct {
	PlayerID uint64 `json:"player_id"`
	Kills    uint16 `json:"kills"`
}

type PlayerNameUpdatedPayload struct {
	PlayerID       uint64 `json:"player_id"`
	FirstNameIndex uint16 `json:"first_name_index"`
	SurnameIndex   uint16 `json:"surname_index"`
}

type PlayerRetiredPayload struct {
	PlayerID uint64  `json:"player_id"`
	Caller   Address `json:"caller"`
	Retired  bool    `json:"retired"`
}

type PlayerSkinEquippedPayload struct {
	PlayerID  uint64 `json:"player_id"`
	SkinIndex uint32 `json:"skin_index"`
	TokenID   uint16 `json:"token_id"`
}

type PlayerSlotsPurchasedPayload struct {
	User       Address  `json:"user"`
	SlotsAdded uint8    `json:"slots_added"`
	TotalSlots uint8    `json:"total_slots"`
	AmountPaid *big.Int `json:"amount_paid"`
}

type PlayerWinLossUpdatedPayload struct {
	PlayerID uint64 `json:"player_id"`
	Wins     uint16 `json:"wins"`
	Losses   uint16 `json:"losses"`
}

type RequestedRandomnessPayload struct {
	Round uint64 `json:"round"`
	Data  []byte `json:"data"`
}

type SlotBatchCostUpdatedPayload struct {
	OldCost *big.Int `json:"old_cost"`
	NewCost *big.Int `json:"new_cost"`
}

// descriptor binds one event kind to its ABI signature and decoder.
type descriptor struct {
	kind      Kind
	signature string
	decode    func(Log) (any, error)
}

// descriptors is the Player contract's full event catalog.
var descriptors = []descriptor{
	{
		kind:      KindAttributeSwapAwarded,
		signature: "AttributeSwapAwarded(address,uint256)",
		decode: func(lg Log) (any, error) {
			to, err := topicAddress(lg, 1)
			if err != nil {
				return nil, err
			}
			r := newWordReader(lg.Data)
			p := AttributeSwapAwardedPayload{To: to, TotalCharges: r.uint64()}
			return p, r.err()
		},
	},
	{
		kind:      KindCreatePlayerFeeUpdated,
		signature: "CreatePlayerFeeUpdated(uint256,uint256)",
		decode: func(lg Log) (any, error) {
			r := newWordReader(lg.Data)
			p := CreatePlayerFeeUpdatedPayload{OldFee: r.big(), NewFee: r.big()}
			return p, r.err()
		},
	},
	{
		kind:      KindEquipmentRequirementsUpdated,
		signature: "EquipmentRequirementsUpdated(address,address)",
		decode: func(lg Log) (any, error) {
			r := newWordReader(lg.Data)
			p := EquipmentRequirementsUpdatedPayload{OldAddress: r.address(), NewAddress: r.address()}
			return p, r.err()
		},
	},
	{
		kind:      KindGameContractPermissionsUpdated,
		signature: "GameContractPermissionsUpdated(address,(bool,bool,bool,bool,bool))",
		decode: func(lg Log) (any, error) {
			gameContract, err := topicAddress(lg, 1)
			if err != nil {
				return nil, err
			}
			r := newWordReader(lg.Data)
			p := GameContractPermissionsUpdatedPayload{
				GameContract: gameContract,
				Permissions: GamePermissions{
					Record:     r.bool(),
					Retire:     r.bool(),
					Name:       r.bool(),
					Attributes: r.bool(),
					Immortal:   r.bool(),
				},
			}
			return p, r.err()
		},
	},
	{
		kind:      KindNameChangeAwarded,
		signature: "NameChangeAwarded(address,uint256)",
		decode: func(lg Log) (any, error) {
			to, err := topicAddress(lg, 1)
			if err != nil {
				return nil, err
			}
			r := newWordReader(lg.Data)
			p := NameChangeAwardedPayload{To: to, TotalCharges: r.uint64()}
			return p, r.err()
		},
	},
	{
		kind:      KindOwnershipTransferred,
		signature: "OwnershipTransferred(address,address)",
		decode: func(lg Log) (any, error) {
			user, err := topicAddress(lg, 1)
			if err != nil {
				return nil, err
			}
			newOwner, err := topicAddress(lg, 2)
			if err != nil {
				return nil, err
			}
			return OwnershipTransferredPayload{User: user, NewOwner: newOwner}, nil
		},
	},
	{
		kind:      KindPausedStateChanged,
		signature: "PausedStateChanged(bool)",
		decode: func(lg Log) (any, error) {
			r := newWordReader(lg.Data)
			p := PausedStateChangedPayload{IsPaused: r.bool()}
			return p, r.err()
		},
	},
	{
		kind:      KindPlayerAttributesSwapped,
		signature: "PlayerAttributesSwapped(uint32,uint8,uint8,uint8,uint8)",
		decode: func(lg Log) (any, error) {
			playerID, err := topicUint64(lg, 1)
			if err != nil {
				return nil, err
			}
			r := newWordReader(lg.Data)
			p := PlayerAttributesSwappedPayload{
				PlayerID:          playerID,
				DecreaseAttribute: r.uint8(),
				IncreaseAttribute: r.uint8(),
				NewDecreaseValue:  r.uint8(),
				NewIncreaseValue:  r.uint8(),
			}
			return p, r.err()
		},
	},
	{
		kind:      KindPlayerAttributesUpdated,
		signature: "PlayerAttributesUpdated(uint32,uint8,uint8,uint8,uint8,uint8,uint8)",
		decode: func(lg Log) (any, error) {
			playerID, err := topicUint64(lg, 1)
			if err != nil {
				return nil, err
			}
			r := newWordReader(lg.Data)
			p := PlayerAttributesUpdatedPayload{
				PlayerID:     playerID,
				Strength:     r.uint8(),
				Constitution: r.uint8(),
				Size:         r.uint8(),
				Agility:      r.uint8(),
				Stamina:      r.uint8(),
				Luck:         r.uint8(),
			}
			return p, r.err()
		},
	},
	{
		kind:      KindPlayerCreationComplete,
		signature: "PlayerCreationComplete(uint256,uint32,address,uint256,uint16,uint16,uint8,uint8,uint8,uint8,uint8,uint8)",
		decode: func(lg Log) (any, error) {
			requestID, err := topicUint64(lg, 1)
			if err != nil {
				return nil, err
			}
			playerID, err := topicUint64(lg, 2)
			if err != nil {
				return nil, err
			}
			owner, err := topicAddress(lg, 3)
			if err != nil {
				return nil, err
			}
			r := newWordReader(lg.Data)
			p := PlayerCreationCompletePayload{
				RequestID:      requestID,
				PlayerID:       playerID,
				Owner:          owner,
				Randomness:     r.big(),
				FirstNameIndex: r.uint16(),
				SurnameIndex:   r.uint16(),
				Strength:       r.uint8(),
				Constitution:   r.uint8(),
				Size:           r.uint8(),
				Agility:        r.uint8(),
				Stamina:        r.uint8(),
				Luck:           r.uint8(),
			}
			return p, r.err()
		},
	},
	{
		kind:      KindPlayerCreationRequested,
		signature: "PlayerCreationRequested(uint256,address)",
		decode: func(lg Log) (any, error) {
			requestID, err := topicUint64(lg, 1)
			if err != nil {
				return nil, err
			}
			requester, err := topicAddress(lg, 2)
			if err != nil {
				return nil, err
			}
			return PlayerCreationRequestedPayload{RequestID: requestID, Requester: requester}, nil
		},
	},
	{
		kind:      KindPlayerImmortalityChanged,
		signature: "PlayerImmortalityChanged(uint32,address,bool)",
		decode: func(lg Log) (any, error) {
			playerID, err := topicUint64(lg, 1)
			if err != nil {
				return nil, err
			}
			caller, err := topicAddress(lg, 2)
			if err != nil {
				return nil, err
			}
			r := newWordReader(lg.Data)
			p := PlayerImmortalityChangedPayload{PlayerID: playerID, Caller: caller, Immortal: r.bool()}
			return p, r.err()
		},
	},
	{
		kind:      KindPlayerKillUpdated,
		signature: "PlayerKillUpdated(uint32,uint16)",
		decode: func(lg Log) (any, error) {
			playerID, err := topicUint64(lg, 1)
			if err != nil {
				return nil, err
			}
			r := newWordReader(lg.Data)
			p := PlayerKillUpdatedPayload{PlayerID: playerID, Kills: r.uint16()}
			return p, r.err()
		},
	},
	{
		kind:      KindPlayerNameUpdated,
		signature: "PlayerNameUpdated(uint32,uint16,uint16)",
		decode: func(lg Log) (any, error) {
			playerID, err := topicUint64(lg, 1)
			if err != nil {
				return nil, err
			}
			r := newWordReader(lg.Data)
			p := PlayerNameUpdatedPayload{
				PlayerID:       playerID,
				FirstNameIndex: r.uint16(),
				SurnameIndex:   r.uint16(),
			}
			return p, r.err()
		},
	},
	{
		kind:      KindPlayerRetired,
		signature: "PlayerRetired(uint32,address,bool)",
		decode: func(lg Log) (any, error) {
			playerID, err := topicUint64(lg, 1)
			if err != nil {
				return nil, err
			}
			caller, err := topicAddress(lg, 2)
			if err != nil {
				return nil, err
			}
			r := newWordReader(lg.Data)
			p := PlayerRetiredPayload{PlayerID: playerID, Caller: caller, Retired: r.bool()}
			return p, r.err()
		},
	},
	{
		kind:      KindPlayerSkinEquipped,
		signature: "PlayerSkinEquipped(uint32,uint32,uint16)",
		decode: func(lg Log) (any, error) {
			playerID, err := topicUint64(lg, 1)
			if err != nil {
				return nil, err
			}
			r := newWordReader(lg.Data)
			p := PlayerSkinEquippedPayload{
				PlayerID:  playerID,
				SkinIndex: r.uint32(),
				TokenID:   r.uint16(),
			}
			return p, r.err()
		},
	},
	{
		kind:      KindPlayerSlotsPurchased,
		signature: "PlayerSlotsPurchased(address,uint8,uint8,uint256)",
		decode: func(lg Log) (any, error) {
			user, err := topicAddress(lg, 1)
			if err != nil {
				return nil, err
			}
			r := newWordReader(lg.Data)
			p := PlayerSlotsPurchasedPayload{
				User:       user,
				SlotsAdded: r.uint8(),
				TotalSlots: r.uint8(),
				AmountPaid: r.big(),
			}
			return p, r.err()
		},
	},
	{
		kind:      KindPlayerWinLossUpdated,
		signature: "PlayerWinLossUpdated(uint32,uint16,uint16)",
		decode: func(lg Log) (any, error) {
			playerID, err := topicUint64(lg, 1)
			if err != nil {
				return nil, err
			}
			r := newWordReader(lg.Data)
			p := PlayerWinLossUpdatedPayload{
				PlayerID: playerID,
				Wins:     r.uint16(),
				Losses:   r.uint16(),
			}
			return p, r.err()
		},
	},
	{
		kind:      KindRequestedRandomness,
		signature: "RequestedRandomness(uint256,bytes)",
		decode: func(lg Log) (any, error) {
			r := newWordReader(lg.Data)
			p := RequestedRandomnessPayload{Round: r.uint64(), Data: r.bytes()}
			return p, r.err()
		},
	},
	{
		kind:      KindSlotBatchCostUpdated,
		signature: "SlotBatchCostUpdated(uint256,uint256)",
		decode: func(lg Log) (any, error) {
			r := newWordReader(lg.Data)
			p := SlotBatchCostUpdatedPayload{OldCost: r.big(), NewCost: r.big()}
			return p, r.err()
		},
	},
}

// Registry resolves raw logs against the Player contract event catalog.
type Registry struct {
	byTopic map[Hash]descriptor
}

// NewRegistry computes topic hashes for the full event catalog.
func NewRegistry() *Registry {
	byTopic := make(map[Hash]descriptor, len(descriptors))
	for _, d := range descriptors {
		byTopic[EventTopic(d.signature)] = d
	}
	return &Registry{byTopic: byTopic}
}

// Kinds returns every kind in the catalog, in declaration order.
func (r *Registry) Kinds() []Kind {
	kinds := make([]Kind, 0, len(descriptors))
	for _, d := range descriptors {
		kinds = append(kinds, d.kind)
	}
	return kinds
}

// Topic returns the topic-0 hash for a kind, or false when the kind is unknown.
func (r *Registry) Topic(kind Kind) (Hash, bool) {
	for _, d := range descriptors {
		if d.kind == kind {
			return EventTopic(d.signature), true
		}
	}
	return "", false
}

// Decode resolves a log against the catalog. The boolean result is false when
// the log's topic-0 does not belong to the Player contract's event set, which
// callers treat as skip-and-continue. A true result with an error means the
// log claims to be one of ours but its payload does not decode.
func (r *Registry) Decode(lg Log, blockTime time.Time) (Event, bool, error) {
	if len(lg.Topics) == 0 {
		return Event{}, false, nil
	}
	d, ok := r.byTopic[lg.Topics[0]]
	if !ok {
		return Event{}, false, nil
	}
	payload, err := d.decode(lg)
	if err != nil {
		return Event{}, true, fmt.Errorf("decode %s: %w", d.kind, err)
	}
	return Event{
		Kind: d.kind,
		Envelope: Envelope{
			BlockNumber: lg.BlockNumber,
			BlockTime:   blockTime,
			TxHash:      lg.TxHash,
			LogIndex:    lg.Index,
		},
		Payload: payload,
	}, true, nil
}
