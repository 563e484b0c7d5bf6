package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/vovakirdan/mnac/internal/games/mnac"
	"github.com/vovakirdan/mnac/internal/session"
)

// SaveResult records a finished match. Saving the same match twice keeps
// the first result.
func (s *Store) SaveResult(ctx context.Context, rec session.ResultRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO results
		 (match_id, channel, noughts, crosses, winner, forced_draw, end_reason, moves, started_at, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(match_id) DO NOTHING`,
		string(rec.MatchID),
		rec.Channel,
		rec.Noughts,
		rec.Crosses,
		int(rec.Winner),
		rec.ForcedDraw,
		rec.Reason.String(),
		rec.Moves,
		formatTime(rec.StartedAt),
		formatTime(rec.EndedAt),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save result: %w", err)
	}
	return nil
}

const resultColumns = `match_id, channel, noughts, crosses, winner, forced_draw, end_reason, moves, started_at, ended_at`

// RecentResults retrieves the most recent results, newest first.
func (s *Store) RecentResults(ctx context.Context, limit int) ([]session.ResultRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+resultColumns+`
		 FROM results
		 ORDER BY ended_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query results: %w", err)
	}
	defer rows.Close()

	var results []session.ResultRecord
	for rows.Next() {
		rec, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return results, nil
}

// PlayerResults retrieves the results of matches user played on either side.
func (s *Store) PlayerResults(ctx context.Context, user string, limit int) ([]session.ResultRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+resultColumns+`
		 FROM results
		 WHERE noughts = ? OR crosses = ?
		 ORDER BY ended_at DESC, id DESC
		 LIMIT ?`,
		user, user, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query player results: %w", err)
	}
	defer rows.Close()

	var results []session.ResultRecord
	for rows.Next() {
		rec, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return results, nil
}

func scanResult(row scanner) (session.ResultRecord, error) {
	var (
		rec                session.ResultRecord
		id, reason         string
		winner             int
		startedAt, endedAt any
	)
	if err := row.Scan(
		&id,
		&rec.Channel,
		&rec.Noughts,
		&rec.Crosses,
		&winner,
		&rec.ForcedDraw,
		&reason,
		&rec.Moves,
		&startedAt,
		&endedAt,
	); err != nil {
		return rec, fmt.Errorf("storage: cannot scan row: %w", err)
	}

	r, err := session.ParseEndReason(reason)
	if err != nil {
		return rec, fmt.Errorf("storage: result %s: %w", id, err)
	}
	rec.MatchID = session.MatchID(id)
	rec.Winner = mnac.Status(winner)
	rec.Reason = r
	rec.StartedAt = parseTime(startedAt)
	rec.EndedAt = parseTime(endedAt)
	return rec, nil
}

// ResultStats contains aggregated statistics over all results.
type ResultStats struct {
	Matches     int
	NoughtsWins int
	CrossesWins int
	Draws       int
	ForcedDraws int
	Stopped     int
	Expired     int
	AvgMoves    float64
	LastPlayed  time.Time
}

// Stats aggregates every stored result.
func (s *Store) Stats(ctx context.Context) (*ResultStats, error) {
	stats := &ResultStats{}
	var lastPlayed any

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(winner = ?), 0),
		        COALESCE(SUM(winner = ?), 0),
		        COALESCE(SUM(winner = ?), 0),
		        COALESCE(SUM(forced_draw), 0),
		        COALESCE(SUM(end_reason = ?), 0),
		        COALESCE(SUM(end_reason = ?), 0),
		        COALESCE(AVG(moves), 0),
		        MAX(ended_at)
		 FROM results`,
		int(mnac.NoughtsWin), int(mnac.CrossesWin), int(mnac.Draw),
		session.ReasonStopped.String(), session.ReasonExpired.String(),
	).Scan(
		&stats.Matches,
		&stats.NoughtsWins,
		&stats.CrossesWins,
		&stats.Draws,
		&stats.ForcedDraws,
		&stats.Stopped,
		&stats.Expired,
		&stats.AvgMoves,
		&lastPlayed,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get result stats: %w", err)
	}
	stats.LastPlayed = parseTime(lastPlayed)
	return stats, nil
}

// PlayerStats is one row of the leaderboard.
type PlayerStats struct {
	User   string
	Played int
	Won    int
	Lost   int
	Drawn  int
}

// Leaderboard ranks users by wins over completed two-player matches.
// Practice games, where one user plays both sides, are left out.
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]PlayerStats, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx,
		`WITH sides AS (
		   SELECT noughts AS user, winner, ? AS mine, ? AS theirs FROM results
		    WHERE noughts <> crosses AND end_reason = ?
		   UNION ALL
		   SELECT crosses AS user, winner, ? AS mine, ? AS theirs FROM results
		    WHERE noughts <> crosses AND end_reason = ?
		 )
		 SELECT user,
		        COUNT(*),
		        SUM(winner = mine),
		        SUM(winner = theirs),
		        SUM(winner = ?)
		 FROM sides
		 GROUP BY user
		 ORDER BY SUM(winner = mine) DESC, COUNT(*) DESC, user
		 LIMIT ?`,
		int(mnac.NoughtsWin), int(mnac.CrossesWin), session.ReasonCompleted.String(),
		int(mnac.CrossesWin), int(mnac.NoughtsWin), session.ReasonCompleted.String(),
		int(mnac.Draw),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query leaderboard: %w", err)
	}
	defer rows.Close()

	var board []PlayerStats
	for rows.Next() {
		var p PlayerStats
		if err := rows.Scan(&p.User, &p.Played, &p.Won, &p.Lost, &p.Drawn); err != nil {
			return nil, fmt.Errorf("storage: cannot scan leaderboard row: %w", err)
		}
		board = append(board, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return board, nil
}
