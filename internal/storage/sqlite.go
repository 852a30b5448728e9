package storage

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// SQLite is a Backend over a single kv table. It exists for contexts that
// mirror their storage area into an OPFS file: the whole database round-trips
// through ExportBytes/ImportBytes as one opaque blob.
type SQLite struct {
	mu sync.RWMutex
	db *sql.DB
}

const kvSchema = `
CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,
    value BLOB NOT NULL,
    updated_at INTEGER NOT NULL
);
`

// NewSQLite creates an in-memory SQLite backend.
func NewSQLite() (*SQLite, error) {
	return NewSQLiteWithDSN(":memory:")
}

// NewSQLiteWithDSN creates a backend with a specific data source name.
// Use ":memory:" for in-memory or a file path for persistent storage.
func NewSQLiteWithDSN(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open database: %w", err)
	}
	if _, err := db.Exec(kvSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: create schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Get returns the value stored under key.
func (s *SQLite) Get(key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value []byte
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("storage: get %s: %w", key, err)
	}
	return value, true, nil
}

// Set writes the value under key.
func (s *SQLite) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("storage: set %s: %w", key, err)
	}
	return nil
}

// Remove deletes the given keys.
func (s *SQLite) Remove(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range keys {
		if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, k); err != nil {
			return fmt.Errorf("storage: remove %s: %w", k, err)
		}
	}
	return nil
}

// Clear removes every key.
func (s *SQLite) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM kv`); err != nil {
		return fmt.Errorf("storage: clear: %w", err)
	}
	return nil
}

// BytesInUse reports the summed size of keys and values.
func (s *SQLite) BytesInUse() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n sql.NullInt64
	err := s.db.QueryRow(`SELECT SUM(LENGTH(key) + LENGTH(value)) FROM kv`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("storage: bytesInUse: %w", err)
	}
	return n.Int64, nil
}

type kvPair struct {
	Key       string `json:"key"`
	Value     []byte `json:"value"`
	UpdatedAt int64  `json:"updatedAt"`
}

type kvSnapshot struct {
	Pairs      []kvPair `json:"pairs"`
	ExportedAt int64    `json:"exportedAt"`
}

// ExportBytes serializes every pair for persistence outside the database
// (OPFS file, download). The result feeds ImportBytes on a fresh instance.
func (s *SQLite) ExportBytes() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT key, value, updated_at FROM kv ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("storage: export: %w", err)
	}
	defer rows.Close()

	snap := kvSnapshot{ExportedAt: time.Now().UnixMilli()}
	for rows.Next() {
		var p kvPair
		if err := rows.Scan(&p.Key, &p.Value, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("storage: scan pair: %w", err)
		}
		snap.Pairs = append(snap.Pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: export: %w", err)
	}

	return json.Marshal(snap)
}

// ImportBytes replaces the current contents with a previously exported
// snapshot. An empty payload is a no-op.
func (s *SQLite) ImportBytes(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(data) == 0 {
		return nil
	}

	var snap kvSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("storage: import unmarshal: %w", err)
	}

	if _, err := s.db.Exec(`DELETE FROM kv`); err != nil {
		return fmt.Errorf("storage: import clear: %w", err)
	}
	for _, p := range snap.Pairs {
		if _, err := s.db.Exec(
			`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)`,
			p.Key, p.Value, p.UpdatedAt,
		); err != nil {
			return fmt.Errorf("storage: import %s: %w", p.Key, err)
		}
	}
	return nil
}
