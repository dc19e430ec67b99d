package kvstore

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS kv_store (
	data_key TEXT PRIMARY KEY,
	data_value TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);`

const seedSQL = `
INSERT OR IGNORE INTO kv_store (data_key, data_value, updated_at)
VALUES (?, ?, strftime('%s', 'now'));`

// Bootstrap opens dbPath once, applies the store-wide PRAGMAs and schema,
// and seeds one row per key in the fixed vocabulary using INSERT OR IGNORE
// with that key's default JSON document. It runs once before any worker
// opens its own connection, and closes its connection before returning.
func Bootstrap(dbPath string, log zerolog.Logger) error {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA temp_store=MEMORY;",
		"PRAGMA mmap_size=268435456;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("apply pragma %q: %w", p, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	stmt, err := db.Prepare(seedSQL)
	if err != nil {
		return fmt.Errorf("prepare seed: %w", err)
	}
	defer stmt.Close()

	for _, key := range Keys {
		if _, err := stmt.Exec(key, DefaultValue(key)); err != nil {
			return fmt.Errorf("seed key %q: %w", key, err)
		}
	}

	log.Info().Int("keys", len(Keys)).Str("path", dbPath).Msg("store bootstrap complete")
	return nil
}
