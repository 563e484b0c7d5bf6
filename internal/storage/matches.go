package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vovakirdan/mnac/internal/games/mnac"
	"github.com/vovakirdan/mnac/internal/session"
)

// SaveMatch stores the live match of a channel, replacing any earlier one.
func (s *Store) SaveMatch(ctx context.Context, rec session.MatchRecord) error {
	blob, err := json.Marshal(rec.Game)
	if err != nil {
		return fmt.Errorf("storage: cannot encode match %s: %w", rec.ID, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO matches (channel, match_id, noughts, crosses, record, started_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(channel) DO UPDATE SET
		   match_id = excluded.match_id,
		   noughts = excluded.noughts,
		   crosses = excluded.crosses,
		   record = excluded.record,
		   started_at = excluded.started_at,
		   updated_at = excluded.updated_at`,
		rec.Channel,
		string(rec.ID),
		rec.Noughts,
		rec.Crosses,
		blob,
		formatTime(rec.StartedAt),
		formatTime(rec.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save match: %w", err)
	}
	return nil
}

// DeleteMatch removes the live match of a channel. Missing rows are fine.
func (s *Store) DeleteMatch(ctx context.Context, channel string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM matches WHERE channel = ?", channel)
	if err != nil {
		return fmt.Errorf("storage: cannot delete match: %w", err)
	}
	return nil
}

// errUndecodable marks a stored record that is not valid JSON.
var errUndecodable = errors.New("undecodable record")

// LoadMatches returns every stored live match. A row whose record cannot be
// decoded comes back with an empty game record.
func (s *Store) LoadMatches(ctx context.Context) ([]session.MatchRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT channel, match_id, noughts, crosses, record, started_at, updated_at
		 FROM matches
		 ORDER BY channel`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query matches: %w", err)
	}
	defer rows.Close()

	var recs []session.MatchRecord
	for rows.Next() {
		rec, err := scanMatch(rows)
		if errors.Is(err, errUndecodable) {
			// An empty record fails Deserialize, so the session layer drops it.
			rec.Game = mnac.Record{}
		} else if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return recs, nil
}

// MatchByChannel returns the live match of one channel, or nil.
func (s *Store) MatchByChannel(ctx context.Context, channel string) (*session.MatchRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT channel, match_id, noughts, crosses, record, started_at, updated_at
		 FROM matches
		 WHERE channel = ?`,
		channel,
	)
	rec, err := scanMatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMatch(row scanner) (session.MatchRecord, error) {
	var (
		rec                  session.MatchRecord
		id                   string
		blob                 []byte
		startedAt, updatedAt any
	)
	if err := row.Scan(&rec.Channel, &id, &rec.Noughts, &rec.Crosses, &blob, &startedAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, err
		}
		return rec, fmt.Errorf("storage: cannot scan row: %w", err)
	}
	rec.ID = session.MatchID(id)
	rec.StartedAt = parseTime(startedAt)
	rec.UpdatedAt = parseTime(updatedAt)
	if err := json.Unmarshal(blob, &rec.Game); err != nil {
		return rec, fmt.Errorf("storage: cannot decode match %s: %w: %w", id, errUndecodable, err)
	}
	return rec, nil
}
