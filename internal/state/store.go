// Package state keeps snippet usage history in a SQLite database.
package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver
)

// UsageRecord is one insertion or render of a snippet.
type UsageRecord struct {
	UsedAt      time.Time
	Values      map[int]string
	SnippetName string
	ID          int64
}

// RecentSnippet summarizes how a snippet has been used.
type RecentSnippet struct {
	LastUsed    time.Time
	SnippetName string
	Uses        int
}

// Store manages the SQLite database for usage history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database at the given path and runs migrations.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close() //nolint:errcheck,gosec // best-effort cleanup on error path
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close() //nolint:errcheck,gosec // best-effort cleanup on error path
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordUsage stores the variable values a snippet was last filled with.
func (s *Store) RecordUsage(name string, values map[int]string) error {
	if values == nil {
		values = map[int]string{}
	}
	encoded, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encoding values: %w", err)
	}

	_, err = s.db.ExecContext(context.Background(), `
		INSERT INTO snippet_usage (snippet_name, vals) VALUES (?, ?)
	`, name, string(encoded))
	if err != nil {
		return fmt.Errorf("recording usage: %w", err)
	}

	return nil
}

// LastUsage returns the most recent usage of the named snippet.
// Returns nil if the snippet was never used.
func (s *Store) LastUsage(name string) (*UsageRecord, error) {
	row := s.db.QueryRowContext(context.Background(), `
		SELECT id, snippet_name, vals, used_at
		FROM snippet_usage
		WHERE snippet_name = ?
		ORDER BY id DESC
		LIMIT 1
	`, name)

	var r UsageRecord
	var vals, usedAt string

	err := row.Scan(&r.ID, &r.SnippetName, &vals, &usedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // nil means "never used", distinct from error
	}
	if err != nil {
		return nil, fmt.Errorf("querying last usage: %w", err)
	}

	if err := json.Unmarshal([]byte(vals), &r.Values); err != nil {
		return nil, fmt.Errorf("decoding values: %w", err)
	}
	r.UsedAt, err = parseTime(usedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing used_at: %w", err)
	}

	return &r, nil
}

// LastValues returns the values of the most recent usage, or nil.
func (s *Store) LastValues(name string) (map[int]string, error) {
	r, err := s.LastUsage(name)
	if err != nil || r == nil {
		return nil, err
	}
	return r.Values, nil
}

// Recent returns the most recently used snippets, newest first.
func (s *Store) Recent(limit int) ([]RecentSnippet, error) {
	rows, err := s.db.QueryContext(context.Background(), `
		SELECT u.snippet_name, u.used_at, agg.uses
		FROM snippet_usage u
		JOIN (
			SELECT snippet_name, MAX(id) AS last_id, COUNT(*) AS uses
			FROM snippet_usage
			GROUP BY snippet_name
		) agg ON u.id = agg.last_id
		ORDER BY u.id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent snippets: %w", err)
	}
	defer func() { _ = rows.Close() }() //nolint:errcheck,gosec // defer close is best-effort

	var recent []RecentSnippet
	for rows.Next() {
		var r RecentSnippet
		var usedAt string

		if err := rows.Scan(&r.SnippetName, &usedAt, &r.Uses); err != nil {
			return nil, fmt.Errorf("scanning recent snippet: %w", err)
		}

		r.LastUsed, err = parseTime(usedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing used_at: %w", err)
		}

		recent = append(recent, r)
	}

	return recent, rows.Err()
}

// PruneHistory keeps only the N most recent usages of a snippet.
func (s *Store) PruneHistory(name string, keepN int) error {
	_, err := s.db.ExecContext(context.Background(), `
		DELETE FROM snippet_usage
		WHERE snippet_name = ?
		AND id NOT IN (
			SELECT id FROM snippet_usage
			WHERE snippet_name = ?
			ORDER BY id DESC
			LIMIT ?
		)
	`, name, name, keepN)
	if err != nil {
		return fmt.Errorf("pruning history: %w", err)
	}

	return nil
}

// RemoveSnippet deletes all usage records of a snippet.
func (s *Store) RemoveSnippet(name string) error {
	_, err := s.db.ExecContext(context.Background(), `
		DELETE FROM snippet_usage WHERE snippet_name = ?
	`, name)
	if err != nil {
		return fmt.Errorf("removing snippet history: %w", err)
	}

	return nil
}

// RenameSnippet moves the usage history of oldName to newName.
func (s *Store) RenameSnippet(oldName, newName string) error {
	_, err := s.db.ExecContext(context.Background(), `
		UPDATE snippet_usage SET snippet_name = ? WHERE snippet_name = ?
	`, newName, oldName)
	if err != nil {
		return fmt.Errorf("renaming snippet history: %w", err)
	}

	return nil
}

// migrate runs schema migrations.
func (s *Store) migrate() error {
	currentVersion := s.getSchemaVersion()

	migrations := []func(*sql.Tx) error{
		migrateV1,
	}

	ctx := context.Background()
	for i := currentVersion; i < len(migrations); i++ {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("beginning migration %d: %w", i+1, err)
		}

		if err := migrations[i](tx); err != nil {
			_ = tx.Rollback() //nolint:errcheck,gosec // rollback best-effort on migration failure
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM schema_version`); err != nil {
			_ = tx.Rollback() //nolint:errcheck,gosec // rollback best-effort
			return fmt.Errorf("updating schema version: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, i+1); err != nil {
			_ = tx.Rollback() //nolint:errcheck,gosec // rollback best-effort
			return fmt.Errorf("inserting schema version: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", i+1, err)
		}
	}

	return nil
}

// getSchemaVersion returns the current schema version, or 0 on a fresh database.
func (s *Store) getSchemaVersion() int {
	ctx := context.Background()
	var tableName string
	err := s.db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'`).Scan(&tableName)
	if err != nil {
		return 0
	}

	var version int
	if err := s.db.QueryRowContext(ctx, `SELECT version FROM schema_version LIMIT 1`).Scan(&version); err != nil {
		return 0
	}

	return version
}

// parseTime parses a timestamp string from SQLite, trying multiple formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time %q", s)
}

func migrateV1(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS snippet_usage (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			snippet_name    TEXT NOT NULL,
			vals            TEXT NOT NULL,
			used_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snippet_usage_name
			ON snippet_usage(snippet_name, id DESC)`,
	}

	ctx := context.Background()
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt[:40], err)
		}
	}

	return nil
}
