// Package storage defines the persistence interfaces and records for the
// player index: the Player, Owner, and PendingCreation aggregates, the
// append-only contract event log, the out-of-band name and skin lookup
// tables, and the ingest cursor.
package storage

import (
	"context"
	"time"

	"github.com/heavyhelms/playerindex/internal/chain"
	apperrors "github.com/heavyhelms/playerindex/internal/platform/errors"
)

// ErrNotFound is returned by lookups that find no record. Projection code
// treats it as an expected outcome, not a failure.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// Player is the current-state aggregate for one minted player. It exists
// only after a creation-complete event; every other event that references a
// missing player is a no-op.
type Player struct {
	ID    uint64
	Owner chain.Address

	Strength     uint8
	Constitution uint8
	Size         uint8
	Agility      uint8
	Stamina      uint8
	Luck         uint8

	FirstNameIndex uint16
	SurnameIndex   uint16
	FirstName      string
	Surname        string
	FullName       string

	Retired  bool
	Immortal bool

	Wins   uint16
	Losses uint16
	Kills  uint16

	// CurrentSkin is a skin record ID, empty when no skin resolved yet.
	CurrentSkin string

	CreationTx    chain.Hash
	CreatedAt     time.Time
	LastUpdatedAt time.Time
}

// Owner is the per-address aggregate. Created lazily on first reference and
// never deleted.
type Owner struct {
	Address              chain.Address
	TotalPlayers         uint64
	NameChangeCharges    uint64
	AttributeSwapCharges uint64
	CreatedAt            time.Time
	LastUpdatedAt        time.Time
}

// PendingCreation tracks the open half of the two-phase creation protocol,
// keyed by the decimal request ID. Kept after fulfillment as an audit trail.
type PendingCreation struct {
	RequestID string
	Requester chain.Address
	Fulfilled bool
	// PlayerID is set only once fulfilled.
	PlayerID  uint64
	CreatedAt time.Time
}

// Name is one entry of the external name table, keyed "{type}-{index}".
type Name struct {
	Key   string
	Value string
}

// SkinCollection is one registered skin contract, populated out-of-band.
type SkinCollection struct {
	Index           uint32
	Name            string
	ContractAddress chain.Address
}

// Skin is one resolved (collection, token) pair a player has equipped.
type Skin struct {
	ID              string
	CollectionIndex uint32
	TokenID         uint16
}

// ContractEvent is the immutable audit record for one observed log event.
// ID is the hex-encoded transaction hash + log index concatenation.
type ContractEvent struct {
	ID          string
	Kind        chain.Kind
	BlockNumber uint64
	BlockTime   time.Time
	TxHash      chain.Hash
	LogIndex    uint32
	// Payload is the event's decoded parameters as JSON.
	Payload []byte
}

// Cursor marks ingest progress: every block below NextBlock has been applied.
type Cursor struct {
	NextBlock uint64
	UpdatedAt time.Time
}

// PlayerStore persists Player aggregates.
type PlayerStore interface {
	PutPlayer(ctx context.Context, player Player) error
	GetPlayer(ctx context.Context, id uint64) (Player, error)
	// CountPlayersByOwner derives the owner's roster size from the players
	// table, for reconciling the stored TotalPlayers counter.
	CountPlayersByOwner(ctx context.Context, owner chain.Address) (uint64, error)
}

// OwnerStore persists Owner aggregates.
type OwnerStore interface {
	PutOwner(ctx context.Context, owner Owner) error
	GetOwner(ctx context.Context, address chain.Address) (Owner, error)
}

// PendingCreationStore persists the two-phase creation tracker.
type PendingCreationStore interface {
	PutPendingCreation(ctx context.Context, pending PendingCreation) error
	GetPendingCreation(ctx context.Context, requestID string) (PendingCreation, error)
}

// NameStore reads the externally populated name table.
type NameStore interface {
	GetName(ctx context.Context, key string) (Name, error)
	PutName(ctx context.Context, name Name) error
}

// SkinStore persists skin records and reads the externally populated
// collection registry.
type SkinStore interface {
	GetSkinCollection(ctx context.Context, index uint32) (SkinCollection, error)
	PutSkinCollection(ctx context.Context, collection SkinCollection) error
	PutSkin(ctx context.Context, skin Skin) error
	GetSkin(ctx context.Context, id string) (Skin, error)
}

// AuditStore persists the append-only contract event log.
type AuditStore interface {
	PutContractEvent(ctx context.Context, event ContractEvent) error
	GetContractEvent(ctx context.Context, id string) (ContractEvent, error)
}

// CursorStore persists ingest progress.
type CursorStore interface {
	GetCursor(ctx context.Context) (Cursor, error)
	PutCursor(ctx context.Context, cursor Cursor) error
}

// Store is the full persistence surface the indexer wires together.
type Store interface {
	PlayerStore
	OwnerStore
	PendingCreationStore
	NameStore
	SkinStore
	AuditStore
	CursorStore

	Close() error
}
