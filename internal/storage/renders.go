package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vovakirdan/mnac/internal/games/mnac"
)

// LoadRender returns the stored board text for a fingerprint.
func (s *Store) LoadRender(ctx context.Context, fp mnac.Fingerprint) (string, bool, error) {
	var text string
	err := s.db.QueryRowContext(ctx,
		"SELECT board FROM render_cache WHERE fingerprint = ?",
		fp.String(),
	).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage: cannot load render: %w", err)
	}
	return text, true, nil
}

// SaveRender stores the board text for a fingerprint.
func (s *Store) SaveRender(ctx context.Context, fp mnac.Fingerprint, text string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO render_cache (fingerprint, board) VALUES (?, ?)
		 ON CONFLICT(fingerprint) DO UPDATE SET board = excluded.board`,
		fp.String(), text,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save render: %w", err)
	}
	return nil
}

// PruneRenders keeps the newest keep boards and deletes the rest.
// Returns the number of deleted rows.
func (s *Store) PruneRenders(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM render_cache WHERE fingerprint NOT IN (
		   SELECT fingerprint FROM render_cache ORDER BY created_at DESC, rowid DESC LIMIT ?
		 )`,
		keep,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot prune renders: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot count pruned renders: %w", err)
	}
	return n, nil
}

// RenderCount returns the number of stored boards.
func (s *Store) RenderCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM render_cache").Scan(&n); err != nil {
		return 0, fmt.Errorf("storage: cannot count renders: %w", err)
	}
	return n, nil
}
