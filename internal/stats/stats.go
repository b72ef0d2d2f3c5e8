// Package stats records finished rounds for later inspection. The server
// treats recording as best-effort: a failing sink never blocks play.
package stats

import "time"

// PlayerResult is one seat's outcome in a finished round. Placement is
// 1-based (the winner is 1); RemainingCards and HandPoints describe the
// hand the seat was left holding when the round ended.
type PlayerResult struct {
	PlayerID       string `json:"playerId"`
	Nickname       string `json:"nickname"`
	IsBot          bool   `json:"isBot"`
	Placement      int    `json:"placement"`
	RemainingCards int    `json:"remainingCards"`
	HandPoints     int    `json:"handPoints"`
	Score          int    `json:"score"`
	Winner         bool   `json:"winner"`
}

// GameRecord is one finished round.
type GameRecord struct {
	RoomCode  string         `json:"roomCode"`
	SessionID string         `json:"sessionId"`
	WinnerID  string         `json:"winnerId,omitempty"`
	StartedAt time.Time      `json:"startedAt"`
	EndedAt   time.Time      `json:"endedAt"`
	Standings []PlayerResult `json:"standings"`
}

// Sink receives finished-round records.
type Sink interface {
	Record(rec GameRecord) error
	Close() error
}

// Noop discards all records; used when stats are disabled.
type Noop struct{}

// Record implements Sink.
func (Noop) Record(GameRecord) error { return nil }

// Close implements Sink.
func (Noop) Close() error { return nil }
