package indexer

import (
	"flag"
	"testing"
	"time"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("indexer", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.DBPath != "playerindex.db" {
		t.Fatalf("DBPath = %s, want playerindex.db", cfg.DBPath)
	}
	if cfg.Confirmations != 5 || cfg.PollInterval != 5*time.Second || cfg.PageSize != 500 {
		t.Fatalf("defaults = %+v", cfg)
	}
}

func TestParseConfigFlagsOverrideEnv(t *testing.T) {
	t.Setenv("PLAYERINDEX_RPC_URL", "ws://env:8546")
	t.Setenv("PLAYERINDEX_CONFIRMATIONS", "12")

	fs := flag.NewFlagSet("indexer", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-rpc-url", "ws://flag:8546"})
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.RPCURL != "ws://flag:8546" {
		t.Fatalf("RPCURL = %s, want flag value", cfg.RPCURL)
	}
	if cfg.Confirmations != 12 {
		t.Fatalf("Confirmations = %d, want env value 12", cfg.Confirmations)
	}
}
