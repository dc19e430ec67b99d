package kvstore

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const (
	fetchSQL      = `SELECT data_value FROM kv_store WHERE data_key = ?`
	upsertSQL     = `INSERT INTO kv_store (data_key, data_value, updated_at) VALUES (?, ?, strftime('%s', 'now')) ON CONFLICT(data_key) DO UPDATE SET data_value = excluded.data_value, updated_at = excluded.updated_at`
	jsonValidSQL  = `SELECT json_valid(?)`
	busyTimeoutMS = 5000
)

// Fetcher reads the stored value for a key.
type Fetcher interface {
	Fetch(key string) (value string, found bool, err error)
}

// Upserter inserts or overwrites the stored value for a key.
type Upserter interface {
	Upsert(key, value string) error
}

// Validator reports whether a byte string is valid JSON per the store's
// own grammar.
type Validator interface {
	ValidateJSON(payload string) (bool, error)
}

// Store is everything a handler needs from a worker's store handle.
type Store interface {
	Fetcher
	Upserter
	Validator
}

// Handle is one worker's private connection to the persistent store, plus
// its three long-lived prepared statements. It is never shared across
// workers.
type Handle struct {
	db         *sql.DB
	fetchStmt  *sql.Stmt
	upsertStmt *sql.Stmt
	validStmt  *sql.Stmt
}

// Open opens a single-connection handle to dbPath, tunes its PRAGMAs, and
// prepares the fetch/upsert/json-validate statements. The connection pool
// is capped to exactly one physical connection, matching the spec's
// single-threaded-mode requirement for a worker's store handle.
func Open(dbPath string) (*Handle, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_busy_timeout=%d", dbPath, busyTimeoutMS))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMS),
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA temp_store=MEMORY;",
		"PRAGMA mmap_size=268435456;",
		"PRAGMA cache_size=-32768;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", p, err)
		}
	}

	h := &Handle{db: db}
	if h.fetchStmt, err = db.Prepare(fetchSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare fetch: %w", err)
	}
	if h.upsertStmt, err = db.Prepare(upsertSQL); err != nil {
		h.Close()
		return nil, fmt.Errorf("prepare upsert: %w", err)
	}
	if h.validStmt, err = db.Prepare(jsonValidSQL); err != nil {
		h.Close()
		return nil, fmt.Errorf("prepare json-validate: %w", err)
	}
	return h, nil
}

// Fetch returns the stored value for key, or found=false if no row exists
// (should not occur post-bootstrap, but handled defensively).
func (h *Handle) Fetch(key string) (value string, found bool, err error) {
	row := h.fetchStmt.QueryRow(key)
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("fetch %q: %w", key, err)
	}
	return value, true, nil
}

// Upsert inserts or overwrites the stored value for key, bumping
// updated_at.
func (h *Handle) Upsert(key, value string) error {
	if _, err := h.upsertStmt.Exec(key, value); err != nil {
		return fmt.Errorf("upsert %q: %w", key, err)
	}
	return nil
}

// ValidateJSON reports whether payload parses as a JSON document per the
// store's own grammar (SQLite's json_valid()).
func (h *Handle) ValidateJSON(payload string) (bool, error) {
	var ok int
	row := h.validStmt.QueryRow(payload)
	if err := row.Scan(&ok); err != nil {
		return false, fmt.Errorf("json-validate: %w", err)
	}
	return ok != 0, nil
}

// Close finalizes the prepared statements and closes the underlying
// connection. Called once at worker shutdown.
func (h *Handle) Close() error {
	if h.fetchStmt != nil {
		h.fetchStmt.Close()
	}
	if h.upsertStmt != nil {
		h.upsertStmt.Close()
	}
	if h.validStmt != nil {
		h.validStmt.Close()
	}
	if h.db != nil {
		return h.db.Close()
	}
	return nil
}

var _ Store = (*Handle)(nil)
