package migrations

import "embed"

// FS contains embedded SQLite migrations for indexer storage.
//
//go:embed *.sql
var FS embed.FS
