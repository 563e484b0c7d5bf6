// Package storage provides SQLite-based persistence for live matches,
// finished results, rendered boards and channel languages.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	jsoniter "github.com/json-iterator/go"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/mnac/internal/render"
	"github.com/vovakirdan/mnac/internal/session"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

var (
	_ session.Persister = (*Store)(nil)
	_ render.Backing    = (*Store)(nil)
)

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS matches (
			channel TEXT PRIMARY KEY,
			match_id TEXT NOT NULL,
			noughts TEXT NOT NULL,
			crosses TEXT NOT NULL,
			record BLOB NOT NULL,
			started_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			match_id TEXT NOT NULL UNIQUE,
			channel TEXT NOT NULL,
			noughts TEXT NOT NULL,
			crosses TEXT NOT NULL,
			winner INTEGER NOT NULL,
			forced_draw INTEGER NOT NULL DEFAULT 0,
			end_reason TEXT NOT NULL,
			moves INTEGER NOT NULL DEFAULT 0,
			started_at DATETIME NOT NULL,
			ended_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_results_ended ON results(ended_at DESC);
		CREATE INDEX IF NOT EXISTS idx_results_noughts ON results(noughts);
		CREATE INDEX IF NOT EXISTS idx_results_crosses ON results(crosses);

		CREATE TABLE IF NOT EXISTS render_cache (
			fingerprint TEXT PRIMARY KEY,
			board TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS channels (
			channel TEXT PRIMARY KEY,
			language TEXT NOT NULL
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// timeLayout is how timestamps are written.
const timeLayout = "2006-01-02 15:04:05.000000000"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime reads a DATETIME column scanned into an any. The driver hands
// back either a time.Time or the stored text.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v.UTC()
	case string:
		for _, layout := range []string{timeLayout, "2006-01-02 15:04:05", time.RFC3339Nano} {
			if parsed, err := time.Parse(layout, v); err == nil {
				return parsed
			}
		}
	case []byte:
		return parseTime(string(v))
	}
	return time.Time{}
}

// SaveLanguage records the language of a channel.
func (s *Store) SaveLanguage(ctx context.Context, channel, code string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO channels (channel, language) VALUES (?, ?)
		 ON CONFLICT(channel) DO UPDATE SET language = excluded.language`,
		channel, code,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save language: %w", err)
	}
	return nil
}

// LoadLanguages returns the language of every channel that set one.
func (s *Store) LoadLanguages(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT channel, language FROM channels")
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query languages: %w", err)
	}
	defer rows.Close()

	langs := make(map[string]string)
	for rows.Next() {
		var ch, code string
		if err := rows.Scan(&ch, &code); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		langs[ch] = code
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return langs, nil
}
