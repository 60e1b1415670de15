package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/heavyhelms/playerindex/internal/chain"
	"github.com/heavyhelms/playerindex/internal/storage"
)

type fakeSource struct {
	head      uint64
	logs      []chain.Log
	headErr   error
	logsErr   error
	lastQuery chain.FilterQuery
}

func (f *fakeSource) BlockNumber(context.Context) (uint64, error) {
	return f.head, f.headErr
}

func (f *fakeSource) FilterLogs(_ context.Context, query chain.FilterQuery) ([]chain.Log, error) {
	f.lastQuery = query
	if f.logsErr != nil {
		return nil, f.logsErr
	}
	var out []chain.Log
	for _, lg := range f.logs {
		if lg.BlockNumber >= query.FromBlock && lg.BlockNumber <= query.ToBlock {
			out = append(out, lg)
		}
	}
	return out, nil
}

func (f *fakeSource) BlockTime(_ context.Context, blockNumber uint64) (time.Time, error) {
	return time.Unix(int64(1700000000+blockNumber), 0).UTC(), nil
}

type recordingApplier struct {
	events []chain.Event
	fail   error
}

func (r *recordingApplier) Apply(_ context.Context, evt chain.Event) error {
	if r.fail != nil {
		return r.fail
	}
	r.events = append(r.events, evt)
	return nil
}

type fakeCursorStore struct {
	cursor *storage.Cursor
}

func (f *fakeCursorStore) GetCursor(context.Context) (storage.Cursor, error) {
	if f.cursor == nil {
		return storage.Cursor{}, storage.ErrNotFound
	}
	return *f.cursor, nil
}

func (f *fakeCursorStore) PutCursor(_ context.Context, cursor storage.Cursor) error {
	f.cursor = &cursor
	return nil
}

const contractAddr = chain.Address("0xcccccccccccccccccccccccccccccccccccccccc")

func killLog(t *testing.T, registry *chain.Registry, block uint64, index uint32, playerID uint64, kills uint64) chain.Log {
	t.Helper()
	topic0, ok := registry.Topic(chain.KindPlayerKillUpdated)
	if !ok {
		t.Fatalf("no topic for kill updated")
	}
	idWord := make([]byte, 32)
	idWord[31] = byte(playerID)
	data := make([]byte, 32)
	data[31] = byte(kills)
	return chain.Log{
		Address:     contractAddr,
		Topics:      []chain.Hash{topic0, chain.Hash("0x" + hexBytes(idWord))},
		Data:        data,
		BlockNumber: block,
		TxHash:      chain.Hash("0x1111111111111111111111111111111111111111111111111111111111111111"),
		Index:       index,
	}
}

func hexBytes(raw []byte) string {
	const digits = "0123456789abcdef"
	out := make([]byte, 0, len(raw)*2)
	for _, b := range raw {
		out = append(out, digits[b>>4], digits[b&0x0f])
	}
	return string(out)
}

func newTestRunner(t *testing.T, source *fakeSource, applier *recordingApplier, cursor *fakeCursorStore, cfg Config) *Runner {
	t.Helper()
	if cfg.Contract == "" {
		cfg.Contract = contractAddr
	}
	runner, err := NewRunner(source, chain.NewRegistry(), applier, cursor, cfg)
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
	return runner
}

func TestStepAppliesLogsInOrderAndAdvancesCursor(t *testing.T) {
	registry := chain.NewRegistry()
	source := &fakeSource{head: 110}
	source.logs = []chain.Log{
		killLog(t, registry, 101, 3, 7, 2),
		killLog(t, registry, 100, 1, 7, 1),
		killLog(t, registry, 101, 1, 8, 5),
	}
	applier := &recordingApplier{}
	cursor := &fakeCursorStore{}
	runner := newTestRunner(t, source, applier, cursor, Config{StartBlock: 100, Confirmations: 5})

	advanced, err := runner.Step(context.Background())
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if !advanced {
		t.Fatalf("Step() advanced = false, want true")
	}

	if len(applier.events) != 3 {
		t.Fatalf("applied %d events, want 3", len(applier.events))
	}
	// Block order first, then log index within a block.
	if applier.events[0].BlockNumber != 100 ||
		applier.events[1].BlockNumber != 101 || applier.events[1].LogIndex != 1 ||
		applier.events[2].BlockNumber != 101 || applier.events[2].LogIndex != 3 {
		t.Fatalf("event order = %+v", applier.events)
	}

	if cursor.cursor == nil || cursor.cursor.NextBlock != 106 {
		t.Fatalf("cursor = %+v, want next block 106 (head 110 - 5 confirmations + 1)", cursor.cursor)
	}

	if source.lastQuery.Address != contractAddr || len(source.lastQuery.Topics) != 20 {
		t.Fatalf("filter query = %+v", source.lastQuery)
	}
}

func TestStepIsIdleWhenCaughtUp(t *testing.T) {
	source := &fakeSource{head: 110}
	cursor := &fakeCursorStore{}
	_ = cursor.PutCursor(context.Background(), storage.Cursor{NextBlock: 106})
	runner := newTestRunner(t, source, &recordingApplier{}, cursor, Config{Confirmations: 5})

	advanced, err := runner.Step(context.Background())
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if advanced {
		t.Fatalf("Step() advanced = true while caught up")
	}
}

func TestStepResumesFromPersistedCursor(t *testing.T) {
	registry := chain.NewRegistry()
	source := &fakeSource{head: 200}
	source.logs = []chain.Log{
		killLog(t, registry, 50, 0, 7, 1),  // below the cursor, never re-applied
		killLog(t, registry, 150, 0, 7, 2), // in range
	}
	applier := &recordingApplier{}
	cursor := &fakeCursorStore{}
	_ = cursor.PutCursor(context.Background(), storage.Cursor{NextBlock: 140})
	runner := newTestRunner(t, source, applier, cursor, Config{StartBlock: 10, Confirmations: 5})

	if _, err := runner.Step(context.Background()); err != nil {
		t.Fatalf("Step() error = %v", err)
	}

	if len(applier.events) != 1 || applier.events[0].BlockNumber != 150 {
		t.Fatalf("applied events = %+v, want the block-150 event only", applier.events)
	}
}

func TestStepRespectsPageSize(t *testing.T) {
	source := &fakeSource{head: 1100}
	cursor := &fakeCursorStore{}
	runner := newTestRunner(t, source, &recordingApplier{}, cursor, Config{
		StartBlock:    0,
		Confirmations: 5,
		PageSize:      100,
	})

	if _, err := runner.Step(context.Background()); err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if source.lastQuery.FromBlock != 0 || source.lastQuery.ToBlock != 99 {
		t.Fatalf("range = %d-%d, want 0-99", source.lastQuery.FromBlock, source.lastQuery.ToBlock)
	}
	if cursor.cursor.NextBlock != 100 {
		t.Fatalf("cursor = %d, want 100", cursor.cursor.NextBlock)
	}
}

func TestStepSkipsForeignTopics(t *testing.T) {
	source := &fakeSource{head: 110}
	source.logs = []chain.Log{{
		Address:     contractAddr,
		Topics:      []chain.Hash{chain.EventTopic("Transfer(address,address,uint256)")},
		BlockNumber: 100,
		TxHash:      chain.Hash("0x1111111111111111111111111111111111111111111111111111111111111111"),
		Index:       0,
	}}
	applier := &recordingApplier{}
	cursor := &fakeCursorStore{}
	runner := newTestRunner(t, source, applier, cursor, Config{StartBlock: 100, Confirmations: 5})

	advanced, err := runner.Step(context.Background())
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if !advanced {
		t.Fatalf("Step() advanced = false, want true")
	}
	if len(applier.events) != 0 {
		t.Fatalf("applied %d events from a foreign topic, want 0", len(applier.events))
	}
}

func TestStepHaltsOnApplyFailure(t *testing.T) {
	registry := chain.NewRegistry()
	source := &fakeSource{head: 110}
	source.logs = []chain.Log{killLog(t, registry, 100, 0, 7, 1)}
	applier := &recordingApplier{fail: errors.New("database is locked")}
	cursor := &fakeCursorStore{}
	runner := newTestRunner(t, source, applier, cursor, Config{StartBlock: 100, Confirmations: 5})

	if _, err := runner.Step(context.Background()); err == nil {
		t.Fatalf("Step() error = nil, want apply failure")
	}
	if cursor.cursor != nil {
		t.Fatalf("cursor advanced past a failed range: %+v", cursor.cursor)
	}
}

func TestStepWaitsForConfirmations(t *testing.T) {
	registry := chain.NewRegistry()
	source := &fakeSource{head: 102}
	source.logs = []chain.Log{killLog(t, registry, 100, 0, 7, 1)}
	applier := &recordingApplier{}
	cursor := &fakeCursorStore{}
	runner := newTestRunner(t, source, applier, cursor, Config{StartBlock: 100, Confirmations: 5})

	advanced, err := runner.Step(context.Background())
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if advanced || len(applier.events) != 0 {
		t.Fatalf("Step() processed unconfirmed blocks")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	source := &fakeSource{head: 0}
	cursor := &fakeCursorStore{}
	runner := newTestRunner(t, source, &recordingApplier{}, cursor, Config{
		Confirmations: 5,
		PollInterval:  time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := runner.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run() error = %v, want deadline exceeded", err)
	}
}
