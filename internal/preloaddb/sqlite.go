package preloaddb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"leveltracker.gg/internal/asset"
	"leveltracker.gg/internal/rules"
)

// Store persists the preload database in a sqlite file. One entry per
// level; asset lists and rules are stored as JSON blobs since the
// runtime only ever reads a whole entry.
type Store struct {
	db *sql.DB
}

func OpenStore(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS entries (
			level TEXT PRIMARY KEY,
			partitioned INTEGER NOT NULL DEFAULT 0,
			generated_at TEXT NOT NULL,
			asset_count INTEGER NOT NULL,
			assets_json TEXT NOT NULL,
			rules_json TEXT NOT NULL
		);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

// Upsert writes one entry, replacing any previous record for the
// level.
func (s *Store) Upsert(e Entry) error {
	assetsJSON, err := json.Marshal(e.Assets)
	if err != nil {
		return err
	}
	rulesJSON, err := json.Marshal(e.Rules)
	if err != nil {
		return err
	}
	part := 0
	if e.Partitioned {
		part = 1
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO entries(level,partitioned,generated_at,asset_count,assets_json,rules_json) VALUES(?,?,?,?,?,?)`,
		e.Level, part, e.GeneratedAt.UTC().Format(time.RFC3339Nano),
		len(e.Assets), string(assetsJSON), string(rulesJSON),
	)
	return err
}

// Find reads one entry. A missing level returns ok=false without
// error.
func (s *Store) Find(level string) (Entry, bool, error) {
	row := s.db.QueryRow(
		`SELECT level, partitioned, generated_at, assets_json, rules_json FROM entries WHERE level = ?`, level)

	var (
		e          Entry
		part       int
		generated  string
		assetsJSON string
		rulesJSON  string
	)
	err := row.Scan(&e.Level, &part, &generated, &assetsJSON, &rulesJSON)
	if err == sql.ErrNoRows {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	e.Partitioned = part != 0
	if t, perr := time.Parse(time.RFC3339Nano, generated); perr == nil {
		e.GeneratedAt = t
	}
	if err := json.Unmarshal([]byte(assetsJSON), &e.Assets); err != nil {
		return Entry{}, false, fmt.Errorf("entry %s: %w", level, err)
	}
	e.Rules = rules.Default()
	if err := json.Unmarshal([]byte(rulesJSON), &e.Rules); err != nil {
		return Entry{}, false, fmt.Errorf("entry %s: %w", level, err)
	}
	e.Assets = asset.Dedupe(e.Assets)
	return e, true, nil
}

// Levels lists recorded level paths in lexical order.
func (s *Store) Levels() ([]string, error) {
	rows, err := s.db.Query(`SELECT level FROM entries ORDER BY level`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var level string
		if err := rows.Scan(&level); err != nil {
			return nil, err
		}
		out = append(out, level)
	}
	return out, rows.Err()
}

// Remove deletes a level's entry.
func (s *Store) Remove(level string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM entries WHERE level = ?`, level)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Load reads every entry into an in-memory database.
func (s *Store) Load() (*Database, error) {
	levels, err := s.Levels()
	if err != nil {
		return nil, err
	}
	db := New()
	for _, level := range levels {
		e, ok, err := s.Find(level)
		if err != nil {
			return nil, err
		}
		if ok {
			db.Upsert(e)
		}
	}
	return db, nil
}

// Save writes every in-memory entry through Upsert.
func (s *Store) Save(db *Database) error {
	for _, level := range db.Levels() {
		e, _ := db.Find(level)
		if err := s.Upsert(e); err != nil {
			return err
		}
	}
	return nil
}
