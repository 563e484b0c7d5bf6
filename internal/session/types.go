// Package session runs Meta Noughts and Crosses matches in named channels.
//
// A channel holds at most one lobby or one match at a time. The Manager
// serialises access per channel, enforces lobby and match timeouts, fans
// events out to subscribed handles and hands state to a Persister. The
// Router turns chat lines into Manager calls and localised replies.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/vovakirdan/mnac/internal/games/mnac"
)

// MatchID uniquely identifies a match. New matches get a random UUID.
type MatchID string

// EndReason describes why a match or lobby ended.
type EndReason int

const (
	ReasonCompleted EndReason = iota // the game was decided
	ReasonStopped                    // a player stopped it
	ReasonExpired                    // the time limit passed
)

// String returns the reason name stored with results.
func (r EndReason) String() string {
	switch r {
	case ReasonCompleted:
		return "completed"
	case ReasonStopped:
		return "stopped"
	case ReasonExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// ParseEndReason reads the String form back.
func ParseEndReason(s string) (EndReason, error) {
	switch s {
	case "completed":
		return ReasonCompleted, nil
	case "stopped":
		return ReasonStopped, nil
	case "expired":
		return ReasonExpired, nil
	}
	return 0, fmt.Errorf("session: unknown end reason %q", s)
}

// Options are the arguments of a start request.
type Options struct {
	Solo        bool // play both sides; starts immediately
	AllowMiddle bool // lift the centre-start house rule
}

// Lobby is a channel waiting for a second player.
type Lobby struct {
	Host          string
	OpenedAt      time.Time
	ExpiresAt     time.Time
	NoMiddleStart bool
}

// MatchInfo is a snapshot of a running or finished match. Game is a private
// copy that the holder may inspect freely.
type MatchInfo struct {
	ID        MatchID
	Channel   string
	Noughts   string
	Crosses   string
	StartedAt time.Time
	Game      *mnac.Game
}

// Solo reports whether one user plays both sides.
func (mi MatchInfo) Solo() bool {
	return mi.Noughts == mi.Crosses
}

// Mover returns the user to act.
func (mi MatchInfo) Mover() string {
	if mi.Game.Player() == mnac.Cross {
		return mi.Crosses
	}
	return mi.Noughts
}

// Has reports whether user plays in the match.
func (mi MatchInfo) Has(user string) bool {
	return user == mi.Noughts || user == mi.Crosses
}

// RoomStatus is what a channel currently holds. At most one of Lobby and
// Match is set.
type RoomStatus struct {
	Channel  string
	Language string
	Lobby    *Lobby
	Match    *MatchInfo
}

// MatchRecord is the persisted form of a live match.
type MatchRecord struct {
	ID        MatchID
	Channel   string
	Noughts   string
	Crosses   string
	StartedAt time.Time
	UpdatedAt time.Time
	Game      mnac.Record
}

// ResultRecord is the persisted outcome of a finished match.
type ResultRecord struct {
	MatchID    MatchID
	Channel    string
	Noughts    string
	Crosses    string
	Winner     mnac.Status
	ForcedDraw bool
	Reason     EndReason
	Moves      int
	StartedAt  time.Time
	EndedAt    time.Time
}

// Persister stores match state so that channels survive a restart.
// Storage implements it; the Manager never depends on a concrete backend.
type Persister interface {
	SaveMatch(ctx context.Context, rec MatchRecord) error
	DeleteMatch(ctx context.Context, channel string) error
	LoadMatches(ctx context.Context) ([]MatchRecord, error)
	SaveResult(ctx context.Context, rec ResultRecord) error
	SaveLanguage(ctx context.Context, channel, code string) error
	LoadLanguages(ctx context.Context) (map[string]string, error)
}
