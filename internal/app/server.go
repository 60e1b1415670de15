// Package app wires the indexer's collaborators together: SQLite storage,
// the JSON-RPC source, the event registry, the projection applier, and the
// ingest runner.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/heavyhelms/playerindex/internal/chain"
	"github.com/heavyhelms/playerindex/internal/ingest"
	"github.com/heavyhelms/playerindex/internal/names"
	"github.com/heavyhelms/playerindex/internal/projection"
	"github.com/heavyhelms/playerindex/internal/skins"
	"github.com/heavyhelms/playerindex/internal/storage/sqlite"
)

// Config holds the indexer runtime configuration.
type Config struct {
	// RPCURL is the node's websocket JSON-RPC endpoint.
	RPCURL string
	// Contract is the Player contract address.
	Contract string
	// DBPath is the SQLite database location.
	DBPath string
	// StartBlock is where ingest begins on a fresh database.
	StartBlock uint64
	// Confirmations is the reorg safety lag behind the chain head.
	Confirmations uint64
	// PollInterval is the idle wait once caught up.
	PollInterval time.Duration
	// PageSize caps blocks per log fetch.
	PageSize uint64
}

// Run starts the indexer and blocks until the context is canceled or the
// ingest loop fails.
func Run(ctx context.Context, cfg Config) error {
	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if cfg.Contract == "" {
		return fmt.Errorf("player contract address is required")
	}

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("close storage: %v", err)
		}
	}()

	client, err := chain.Dial(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			log.Printf("close rpc client: %v", err)
		}
	}()

	applier := projection.Applier{
		Players: store,
		Owners:  store,
		Pending: store,
		Audit:   store,
		Names:   names.NewResolver(store),
		Skins:   skins.NewRegistry(store),
	}

	runner, err := ingest.NewRunner(client, chain.NewRegistry(), applier, store, ingest.Config{
		Contract:      chain.NormalizeAddress(cfg.Contract),
		StartBlock:    cfg.StartBlock,
		Confirmations: cfg.Confirmations,
		PollInterval:  cfg.PollInterval,
		PageSize:      cfg.PageSize,
	})
	if err != nil {
		return fmt.Errorf("build ingest runner: %w", err)
	}

	log.Printf("indexing contract %s from %s", cfg.Contract, cfg.RPCURL)
	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
