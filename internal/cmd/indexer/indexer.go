// Package indexer parses indexer command flags and starts the ingest runtime.
package indexer

import (
	"context"
	"flag"
	"time"

	"github.com/heavyhelms/playerindex/internal/app"
	entrypoint "github.com/heavyhelms/playerindex/internal/platform/cmd"
)

// Config holds indexer command configuration.
type Config struct {
	RPCURL        string        `env:"PLAYERINDEX_RPC_URL"`
	Contract      string        `env:"PLAYERINDEX_PLAYER_CONTRACT"`
	DBPath        string        `env:"PLAYERINDEX_DB_PATH" envDefault:"playerindex.db"`
	StartBlock    uint64        `env:"PLAYERINDEX_START_BLOCK" envDefault:"0"`
	Confirmations uint64        `env:"PLAYERINDEX_CONFIRMATIONS" envDefault:"5"`
	PollInterval  time.Duration `env:"PLAYERINDEX_POLL_INTERVAL" envDefault:"5s"`
	PageSize      uint64        `env:"PLAYERINDEX_PAGE_SIZE" envDefault:"500"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.RPCURL, "rpc-url", cfg.RPCURL, "Websocket JSON-RPC endpoint")
	fs.StringVar(&cfg.Contract, "contract", cfg.Contract, "Player contract address")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	fs.Uint64Var(&cfg.StartBlock, "start-block", cfg.StartBlock, "First block to index on a fresh database")
	fs.Uint64Var(&cfg.Confirmations, "confirmations", cfg.Confirmations, "Blocks to lag behind the chain head")
	fs.DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "Idle wait between head checks")
	fs.Uint64Var(&cfg.PageSize, "page-size", cfg.PageSize, "Max blocks per log fetch")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the indexer service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceIndexer, func(ctx context.Context) error {
		return app.Run(ctx, app.Config{
			RPCURL:        cfg.RPCURL,
			Contract:      cfg.Contract,
			DBPath:        cfg.DBPath,
			StartBlock:    cfg.StartBlock,
			Confirmations: cfg.Confirmations,
			PollInterval:  cfg.PollInterval,
			PageSize:      cfg.PageSize,
		})
	})
}
