package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/heavyhelms/playerindex/internal/chain"
	"github.com/heavyhelms/playerindex/internal/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testPlayer(id uint64, owner chain.Address) storage.Player {
	now := time.UnixMilli(1700000000000).UTC()
	return storage.Player{
		ID:             id,
		Owner:          owner,
		Strength:       12,
		Constitution:   14,
		Size:           11,
		Agility:        16,
		Stamina:        10,
		Luck:           9,
		FirstNameIndex: 1042,
		SurnameIndex:   77,
		FirstName:      "Ragnar",
		Surname:        "the Bold",
		FullName:       "Ragnar the Bold",
		Wins:           3,
		Losses:         1,
		Kills:          2,
		CurrentSkin:    "0-1",
		CreationTx:     chain.Hash("0x1111111111111111111111111111111111111111111111111111111111111111"),
		CreatedAt:      now,
		LastUpdatedAt:  now,
	}
}

func TestPlayerRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	owner := chain.Address("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")

	want := testPlayer(10001, owner)
	if err := store.PutPlayer(ctx, want); err != nil {
		t.Fatalf("PutPlayer() error = %v", err)
	}

	got, err := store.GetPlayer(ctx, 10001)
	if err != nil {
		t.Fatalf("GetPlayer() error = %v", err)
	}
	if got != want {
		t.Fatalf("GetPlayer() = %+v, want %+v", got, want)
	}
}

func TestPlayerUpsertOverwrites(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	owner := chain.Address("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")

	player := testPlayer(10001, owner)
	if err := store.PutPlayer(ctx, player); err != nil {
		t.Fatalf("PutPlayer() error = %v", err)
	}
	player.Wins = 4
	player.Retired = true
	if err := store.PutPlayer(ctx, player); err != nil {
		t.Fatalf("PutPlayer() overwrite error = %v", err)
	}

	got, err := store.GetPlayer(ctx, 10001)
	if err != nil {
		t.Fatalf("GetPlayer() error = %v", err)
	}
	if got.Wins != 4 || !got.Retired {
		t.Fatalf("GetPlayer() = %+v, want wins 4 retired", got)
	}
}

func TestGetPlayerNotFound(t *testing.T) {
	store := openTestStore(t)

	_, err := store.GetPlayer(context.Background(), 999)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("GetPlayer() error = %v, want ErrNotFound", err)
	}
}

func TestCountPlayersByOwner(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	owner := chain.Address("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	other := chain.Address("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")

	for _, id := range []uint64{1, 2, 3} {
		if err := store.PutPlayer(ctx, testPlayer(id, owner)); err != nil {
			t.Fatalf("PutPlayer(%d) error = %v", id, err)
		}
	}
	if err := store.PutPlayer(ctx, testPlayer(4, other)); err != nil {
		t.Fatalf("PutPlayer(4) error = %v", err)
	}

	count, err := store.CountPlayersByOwner(ctx, owner)
	if err != nil {
		t.Fatalf("CountPlayersByOwner() error = %v", err)
	}
	if count != 3 {
		t.Fatalf("CountPlayersByOwner() = %d, want 3", count)
	}
}

func TestOwnerRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.UnixMilli(1700000000000).UTC()

	want := storage.Owner{
		// Mixed case in, canonical lowercase out.
		Address:              chain.Address("0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"),
		TotalPlayers:         2,
		NameChangeCharges:    1,
		AttributeSwapCharges: 3,
		CreatedAt:            now,
		LastUpdatedAt:        now,
	}
	if err := store.PutOwner(ctx, want); err != nil {
		t.Fatalf("PutOwner() error = %v", err)
	}

	got, err := store.GetOwner(ctx, want.Address)
	if err != nil {
		t.Fatalf("GetOwner() error = %v", err)
	}
	if got.Address != chain.Address("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa") {
		t.Fatalf("GetOwner() address = %s, want canonical lowercase", got.Address)
	}
	if got.TotalPlayers != 2 || got.NameChangeCharges != 1 || got.AttributeSwapCharges != 3 {
		t.Fatalf("GetOwner() = %+v", got)
	}
}

func TestGetOwnerNotFound(t *testing.T) {
	store := openTestStore(t)

	_, err := store.GetOwner(context.Background(), "0xcccccccccccccccccccccccccccccccccccccccc")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("GetOwner() error = %v, want ErrNotFound", err)
	}
}

func TestPendingCreationRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.UnixMilli(1700000000000).UTC()

	pending := storage.PendingCreation{
		RequestID: "42",
		Requester: "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		CreatedAt: now,
	}
	if err := store.PutPendingCreation(ctx, pending); err != nil {
		t.Fatalf("PutPendingCreation() error = %v", err)
	}

	pending.Fulfilled = true
	pending.PlayerID = 7
	if err := store.PutPendingCreation(ctx, pending); err != nil {
		t.Fatalf("PutPendingCreation() fulfill error = %v", err)
	}

	got, err := store.GetPendingCreation(ctx, "42")
	if err != nil {
		t.Fatalf("GetPendingCreation() error = %v", err)
	}
	if got != pending {
		t.Fatalf("GetPendingCreation() = %+v, want %+v", got, pending)
	}
}

func TestNameRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.PutName(ctx, storage.Name{Key: "0-1042", Value: "Ragnar"}); err != nil {
		t.Fatalf("PutName() error = %v", err)
	}

	got, err := store.GetName(ctx, "0-1042")
	if err != nil {
		t.Fatalf("GetName() error = %v", err)
	}
	if got.Value != "Ragnar" {
		t.Fatalf("GetName() = %+v", got)
	}

	if _, err := store.GetName(ctx, "2-9999"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("GetName() error = %v, want ErrNotFound", err)
	}
}

func TestSkinCollectionAndSkinRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	collection := storage.SkinCollection{
		Index:           3,
		Name:            "founders",
		ContractAddress: "0xdddddddddddddddddddddddddddddddddddddddd",
	}
	if err := store.PutSkinCollection(ctx, collection); err != nil {
		t.Fatalf("PutSkinCollection() error = %v", err)
	}

	got, err := store.GetSkinCollection(ctx, 3)
	if err != nil {
		t.Fatalf("GetSkinCollection() error = %v", err)
	}
	if got != collection {
		t.Fatalf("GetSkinCollection() = %+v, want %+v", got, collection)
	}

	if _, err := store.GetSkinCollection(ctx, 99); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("GetSkinCollection() error = %v, want ErrNotFound", err)
	}

	skin := storage.Skin{ID: "3-450", CollectionIndex: 3, TokenID: 450}
	if err := store.PutSkin(ctx, skin); err != nil {
		t.Fatalf("PutSkin() error = %v", err)
	}
	gotSkin, err := store.GetSkin(ctx, "3-450")
	if err != nil {
		t.Fatalf("GetSkin() error = %v", err)
	}
	if gotSkin != skin {
		t.Fatalf("GetSkin() = %+v, want %+v", gotSkin, skin)
	}
}

func TestContractEventRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.UnixMilli(1700000000000).UTC()

	event := storage.ContractEvent{
		ID:          "1111111111111111111111111111111111111111111111111111111111111111" + "00000007",
		Kind:        chain.KindPlayerKillUpdated,
		BlockNumber: 42,
		BlockTime:   now,
		TxHash:      "0x1111111111111111111111111111111111111111111111111111111111111111",
		LogIndex:    7,
		Payload:     []byte(`{"player_id":10001,"kills":3}`),
	}
	if err := store.PutContractEvent(ctx, event); err != nil {
		t.Fatalf("PutContractEvent() error = %v", err)
	}
	// Replays re-write the same record without erroring.
	if err := store.PutContractEvent(ctx, event); err != nil {
		t.Fatalf("PutContractEvent() replay error = %v", err)
	}

	got, err := store.GetContractEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetContractEvent() error = %v", err)
	}
	if got.Kind != event.Kind || got.BlockNumber != 42 || got.LogIndex != 7 {
		t.Fatalf("GetContractEvent() = %+v", got)
	}
	if string(got.Payload) != string(event.Payload) {
		t.Fatalf("GetContractEvent() payload = %s", got.Payload)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.GetCursor(ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("GetCursor() error = %v, want ErrNotFound before first write", err)
	}

	cursor := storage.Cursor{NextBlock: 100, UpdatedAt: time.UnixMilli(1700000000000).UTC()}
	if err := store.PutCursor(ctx, cursor); err != nil {
		t.Fatalf("PutCursor() error = %v", err)
	}
	cursor.NextBlock = 200
	if err := store.PutCursor(ctx, cursor); err != nil {
		t.Fatalf("PutCursor() advance error = %v", err)
	}

	got, err := store.GetCursor(ctx)
	if err != nil {
		t.Fatalf("GetCursor() error = %v", err)
	}
	if got.NextBlock != 200 {
		t.Fatalf("GetCursor() = %+v, want next block 200", got)
	}
}
