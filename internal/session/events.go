package session

import (
	"time"

	"github.com/vovakirdan/mnac/internal/games/mnac"
)

// Event is sent to the handles subscribed to a channel.
type Event interface {
	sessionEvent()
}

// LobbyOpenedEvent is sent when a user starts waiting for an opponent.
type LobbyOpenedEvent struct {
	Channel   string
	Host      string
	ExpiresAt time.Time
}

func (LobbyOpenedEvent) sessionEvent() {}

// LobbyClosedEvent is sent when a lobby ends without a match.
type LobbyClosedEvent struct {
	Channel string
	Host    string
	Reason  EndReason
}

func (LobbyClosedEvent) sessionEvent() {}

// MatchStartedEvent is sent when a match begins or is restored.
type MatchStartedEvent struct {
	Match MatchInfo
}

func (MatchStartedEvent) sessionEvent() {}

// MovePlayedEvent is sent after every accepted move.
type MovePlayedEvent struct {
	Match  MatchInfo
	User   string
	Effect mnac.MoveEffect
}

func (MovePlayedEvent) sessionEvent() {}

// MatchEndedEvent is sent when a match finishes for any reason.
type MatchEndedEvent struct {
	Match  MatchInfo
	Reason EndReason
}

func (MatchEndedEvent) sessionEvent() {}

// LanguageChangedEvent is sent when a channel switches language.
type LanguageChangedEvent struct {
	Channel string
	Code    string
}

func (LanguageChangedEvent) sessionEvent() {}
