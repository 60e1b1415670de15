// Package ingest drives the indexer's poll loop: it walks the chain from a
// persisted cursor, fetches the Player contract's logs in confirmed block
// ranges, decodes them, and feeds them to the projection applier in
// on-chain order.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/heavyhelms/playerindex/internal/chain"
	"github.com/heavyhelms/playerindex/internal/storage"
)

// Source supplies chain data. Implemented by the JSON-RPC client; tests use
// a fake.
type Source interface {
	BlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, query chain.FilterQuery) ([]chain.Log, error)
	BlockTime(ctx context.Context, blockNumber uint64) (time.Time, error)
}

// Applier consumes decoded events one at a time, in order.
type Applier interface {
	Apply(ctx context.Context, evt chain.Event) error
}

// Config holds the runner's chain-facing settings.
type Config struct {
	// Contract is the Player contract address whose logs are indexed.
	Contract chain.Address
	// StartBlock is where ingest begins when no cursor is persisted yet.
	StartBlock uint64
	// Confirmations is how far behind the head the runner stays, so
	// shallow reorgs settle before their blocks are read.
	Confirmations uint64
	// PollInterval is the idle wait once the runner has caught up.
	PollInterval time.Duration
	// PageSize caps the blocks fetched per eth_getLogs call.
	PageSize uint64
}

const (
	defaultConfirmations = 5
	defaultPollInterval  = 5 * time.Second
	defaultPageSize      = 500
)

// Runner polls the source and applies decoded events, persisting a cursor
// after each fully applied block range so a restart resumes where it left
// off. Events below the cursor are never re-applied, which keeps the
// owner roster increment on creation from double counting.
type Runner struct {
	source   Source
	registry *chain.Registry
	applier  Applier
	cursor   storage.CursorStore
	cfg      Config
	topics   []chain.Hash
	tracer   trace.Tracer
}

// NewRunner builds a runner. Zero config fields fall back to defaults;
// Contract is required.
func NewRunner(source Source, registry *chain.Registry, applier Applier, cursor storage.CursorStore, cfg Config) (*Runner, error) {
	if source == nil {
		return nil, fmt.Errorf("source is required")
	}
	if registry == nil {
		return nil, fmt.Errorf("event registry is required")
	}
	if applier == nil {
		return nil, fmt.Errorf("applier is required")
	}
	if cursor == nil {
		return nil, fmt.Errorf("cursor store is required")
	}
	if cfg.Contract == "" {
		return nil, fmt.Errorf("contract address is required")
	}
	if cfg.Confirmations == 0 {
		cfg.Confirmations = defaultConfirmations
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = defaultPageSize
	}

	topics := make([]chain.Hash, 0)
	for _, kind := range registry.Kinds() {
		topic, ok := registry.Topic(kind)
		if !ok {
			return nil, fmt.Errorf("no topic for kind %s", kind)
		}
		topics = append(topics, topic)
	}

	return &Runner{
		source:   source,
		registry: registry,
		applier:  applier,
		cursor:   cursor,
		cfg:      cfg,
		topics:   topics,
		tracer:   otel.Tracer("playerindex/ingest"),
	}, nil
}

// Run polls until the context is canceled. Decode and store failures halt
// the loop; the cursor is only advanced past fully applied ranges, so a
// restart resumes from the failed range.
func (r *Runner) Run(ctx context.Context) error {
	for {
		advanced, err := r.Step(ctx)
		if err != nil {
			return err
		}
		if advanced {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.cfg.PollInterval):
		}
	}
}

// Step processes at most one block range. It reports false when the runner
// is caught up to the confirmed head and there is nothing to do.
func (r *Runner) Step(ctx context.Context) (bool, error) {
	next, err := r.nextBlock(ctx)
	if err != nil {
		return false, err
	}

	head, err := r.source.BlockNumber(ctx)
	if err != nil {
		return false, fmt.Errorf("fetch head: %w", err)
	}
	if head < r.cfg.Confirmations {
		return false, nil
	}
	safeHead := head - r.cfg.Confirmations
	if next > safeHead {
		return false, nil
	}

	to := safeHead
	if span := r.cfg.PageSize; to-next+1 > span {
		to = next + span - 1
	}

	if err := r.processRange(ctx, next, to); err != nil {
		return false, err
	}

	cursor := storage.Cursor{NextBlock: to + 1, UpdatedAt: time.Now().UTC()}
	if err := r.cursor.PutCursor(ctx, cursor); err != nil {
		return false, fmt.Errorf("advance cursor: %w", err)
	}
	return true, nil
}

func (r *Runner) nextBlock(ctx context.Context) (uint64, error) {
	cursor, err := r.cursor.GetCursor(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return r.cfg.StartBlock, nil
		}
		return 0, fmt.Errorf("load cursor: %w", err)
	}
	return cursor.NextBlock, nil
}

// processRange fetches, decodes, and applies the contract's logs for an
// inclusive block range, in block-then-log-index order.
func (r *Runner) processRange(ctx context.Context, from, to uint64) error {
	ctx, span := r.tracer.Start(ctx, "ingest.range", trace.WithAttributes(
		attribute.Int64("block.from", int64(from)),
		attribute.Int64("block.to", int64(to)),
	))
	defer span.End()

	logs, err := r.source.FilterLogs(ctx, chain.FilterQuery{
		FromBlock: from,
		ToBlock:   to,
		Address:   r.cfg.Contract,
		Topics:    r.topics,
	})
	if err != nil {
		return fmt.Errorf("fetch logs %d-%d: %w", from, to, err)
	}
	span.SetAttributes(attribute.Int("logs.count", len(logs)))
	if len(logs) == 0 {
		return nil
	}

	sort.SliceStable(logs, func(i, j int) bool {
		if logs[i].BlockNumber != logs[j].BlockNumber {
			return logs[i].BlockNumber < logs[j].BlockNumber
		}
		return logs[i].Index < logs[j].Index
	})

	blockTimes := make(map[uint64]time.Time)
	applied := 0
	for _, lg := range logs {
		blockTime, ok := blockTimes[lg.BlockNumber]
		if !ok {
			blockTime, err = r.source.BlockTime(ctx, lg.BlockNumber)
			if err != nil {
				return fmt.Errorf("fetch block %d time: %w", lg.BlockNumber, err)
			}
			blockTimes[lg.BlockNumber] = blockTime
		}

		evt, known, err := r.registry.Decode(lg, blockTime)
		if err != nil {
			return fmt.Errorf("block %d log %d: %w", lg.BlockNumber, lg.Index, err)
		}
		if !known {
			// Another contract's event slipped through the topic filter.
			continue
		}
		if err := r.applier.Apply(ctx, evt); err != nil {
			return fmt.Errorf("apply %s at block %d log %d: %w", evt.Kind, lg.BlockNumber, lg.Index, err)
		}
		applied++
	}

	log.Printf("applied %d events in blocks %d-%d", applied, from, to)
	return nil
}
