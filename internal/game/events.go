package game

import (
	"github.com/onecard/onecard/internal/card"
)

// EventType identifies a domain event.
type EventType string

// Event type constants for room and game domain events.
const (
	EventPlayerJoined          EventType = "player_joined"
	EventPlayerLeft            EventType = "player_left"
	EventLeadershipTransferred EventType = "leadership_transferred"
	EventPlayerKicked          EventType = "player_kicked"
	EventRoomStateChanged      EventType = "room_state_changed"
	EventGameStarted           EventType = "game_started"
	EventCardPlayed            EventType = "card_played"
	EventCardDrawn             EventType = "card_drawn"
	EventOneCalled             EventType = "one_called"
	EventOnePenalty            EventType = "one_penalty"
	EventTurnChanged           EventType = "turn_changed"
	EventDirectionReversed     EventType = "direction_reversed"
	EventPlayerSkipped         EventType = "player_skipped"
	EventColorChanged          EventType = "color_changed"
	EventPlayerDisconnected    EventType = "player_disconnected"
	EventPlayerReconnected     EventType = "player_reconnected"
	EventGamePaused            EventType = "game_paused"
	EventGameResumed           EventType = "game_resumed"
	EventGameEnded             EventType = "game_ended"
	EventHandSnapshot          EventType = "hand_snapshot"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// Meta is embedded by every event; the bus stamps it at publish time.
type Meta struct {
	RoomCode  string `json:"roomCode"`
	SessionID string `json:"sessionId,omitempty"`
	Timestamp int64  `json:"ts"` // milliseconds since epoch

	// target routes personal events (hand snapshots, personal notices)
	// to a single player's queue. Empty means room broadcast.
	target string
}

// EventMeta returns the embedded metadata; used by the bus for stamping.
// The name is distinct from the embedded field so the method promotes.
func (m *Meta) EventMeta() *Meta { return m }

// Target returns the player id for personal events, empty for broadcasts.
func (m *Meta) Target() string { return m.target }

func (m *Meta) stamp(roomCode, sessionID string, ts int64) {
	m.RoomCode = roomCode
	if m.SessionID == "" {
		m.SessionID = sessionID
	}
	m.Timestamp = ts
}

// Event is any domain event published on a room's topic. Payloads carry
// ids and counts only; full hands travel exclusively in personal
// HandSnapshot events.
type Event interface {
	EventType() EventType
	EventMeta() *Meta
}

// PlayerJoinedEvent announces a new seat (human or bot).
type PlayerJoinedEvent struct {
	Meta
	PlayerID  string `json:"playerId"`
	Nickname  string `json:"nickname"`
	IsBot     bool   `json:"isBot"`
	Temporary bool   `json:"temporary,omitempty"`
}

func (*PlayerJoinedEvent) EventType() EventType { return EventPlayerJoined }

// PlayerLeftEvent announces a seat leaving. WasReplaced is true when a
// temporary bot inherited the seat.
type PlayerLeftEvent struct {
	Meta
	PlayerID    string `json:"playerId"`
	WasReplaced bool   `json:"wasReplaced,omitempty"`
}

func (*PlayerLeftEvent) EventType() EventType { return EventPlayerLeft }

// LeadershipTransferredEvent announces a new room leader.
type LeadershipTransferredEvent struct {
	Meta
	PlayerID string `json:"playerId"`
}

func (*LeadershipTransferredEvent) EventType() EventType { return EventLeadershipTransferred }

// PlayerKickedEvent announces a kick by the leader.
type PlayerKickedEvent struct {
	Meta
	PlayerID string `json:"playerId"`
}

func (*PlayerKickedEvent) EventType() EventType { return EventPlayerKicked }

// RoomStateChangedEvent announces a room lifecycle transition.
type RoomStateChangedEvent struct {
	Meta
	Status string `json:"status"`
}

func (*RoomStateChangedEvent) EventType() EventType { return EventRoomStateChanged }

// GameStartedEvent announces the start of a round.
type GameStartedEvent struct {
	Meta
	PlayerIDs       []string  `json:"playerIds"`
	HandSize        int       `json:"handSize"`
	TopCard         card.Card `json:"topCard"`
	CurrentPlayerID string    `json:"currentPlayerId"`
}

func (*GameStartedEvent) EventType() EventType { return EventGameStarted }

// CardPlayedEvent announces a played card. The card is public once it hits
// the discard pile, so the full card travels here.
type CardPlayedEvent struct {
	Meta
	PlayerID  string    `json:"playerId"`
	Card      card.Card `json:"card"`
	CalledOne bool      `json:"calledOne,omitempty"`
	HandSize  int       `json:"handSize"`
}

func (*CardPlayedEvent) EventType() EventType { return EventCardPlayed }

// CardDrawnEvent announces drawn cards by count only; the cards themselves
// go to the drawer in a personal HandSnapshot.
type CardDrawnEvent struct {
	Meta
	PlayerID string `json:"playerId"`
	Count    int    `json:"count"`
	Reason   string `json:"reason"` // "turn", "pending", "penalty"
	HandSize int    `json:"handSize"`
}

func (*CardDrawnEvent) EventType() EventType { return EventCardDrawn }

// OneCalledEvent announces a successful ONE call.
type OneCalledEvent struct {
	Meta
	PlayerID string `json:"playerId"`
}

func (*OneCalledEvent) EventType() EventType { return EventOneCalled }

// OnePenaltyEvent announces the two-card penalty for a missed ONE call.
type OnePenaltyEvent struct {
	Meta
	PlayerID     string `json:"playerId"`
	PenaltyCards int    `json:"penaltyCards"`
	CaughtBy     string `json:"caughtBy,omitempty"`
}

func (*OnePenaltyEvent) EventType() EventType { return EventOnePenalty }

// TurnChangedEvent announces the new current player.
type TurnChangedEvent struct {
	Meta
	CurrentPlayerID string `json:"currentPlayerId"`
	PendingDraw     int    `json:"pendingDraw,omitempty"`
	TurnSeconds     int    `json:"turnSeconds"`
}

func (*TurnChangedEvent) EventType() EventType { return EventTurnChanged }

// DirectionReversedEvent announces a direction flip.
type DirectionReversedEvent struct {
	Meta
	Clockwise bool `json:"clockwise"`
}

func (*DirectionReversedEvent) EventType() EventType { return EventDirectionReversed }

// PlayerSkippedEvent announces a skipped seat.
type PlayerSkippedEvent struct {
	Meta
	PlayerID string `json:"playerId"`
}

func (*PlayerSkippedEvent) EventType() EventType { return EventPlayerSkipped }

// ColorChangedEvent announces the declared color after a wild play.
type ColorChangedEvent struct {
	Meta
	NewColor card.Color `json:"newColor"`
}

func (*ColorChangedEvent) EventType() EventType { return EventColorChanged }

// PlayerDisconnectedEvent announces a dropped human connection.
type PlayerDisconnectedEvent struct {
	Meta
	PlayerID     string `json:"playerId"`
	GraceSeconds int    `json:"graceSeconds,omitempty"`
}

func (*PlayerDisconnectedEvent) EventType() EventType { return EventPlayerDisconnected }

// PlayerReconnectedEvent announces a reconnection within grace.
type PlayerReconnectedEvent struct {
	Meta
	PlayerID string `json:"playerId"`
}

func (*PlayerReconnectedEvent) EventType() EventType { return EventPlayerReconnected }

// GamePausedEvent announces a pause.
type GamePausedEvent struct {
	Meta
	Reason string `json:"reason"`
}

func (*GamePausedEvent) EventType() EventType { return EventGamePaused }

// GameResumedEvent announces play resuming after a pause.
type GameResumedEvent struct {
	Meta
}

func (*GameResumedEvent) EventType() EventType { return EventGameResumed }

// Standing is one row of the end-of-round ranking.
type Standing struct {
	PlayerID       string `json:"playerId"`
	Placement      int    `json:"placement"`
	RemainingCards int    `json:"remainingCards"`
	HandPoints     int    `json:"handPoints"`
	Score          int    `json:"score"`
}

// GameEndedEvent announces the end of a round. Reason is "win", "forfeit",
// "internal" or "shutdown"; WinnerID is empty for the latter two.
type GameEndedEvent struct {
	Meta
	WinnerID  string     `json:"winnerId,omitempty"`
	Reason    string     `json:"reason"`
	Standings []Standing `json:"standings,omitempty"`
	MatchOver bool       `json:"matchOver,omitempty"`
}

func (*GameEndedEvent) EventType() EventType { return EventGameEnded }

// HandSnapshotEvent carries a player's full hand. Always personal.
type HandSnapshotEvent struct {
	Meta
	PlayerID string      `json:"playerId"`
	Cards    []card.Card `json:"cards"`
}

func (*HandSnapshotEvent) EventType() EventType { return EventHandSnapshot }

// NewHandSnapshot builds a personal snapshot event for the given player.
func NewHandSnapshot(p *Player) *HandSnapshotEvent {
	ev := &HandSnapshotEvent{PlayerID: p.ID, Cards: p.Hand.Cards()}
	ev.target = p.ID
	return ev
}

// Personal marks any event for delivery to a single player's queue.
func Personal(ev Event, playerID string) Event {
	ev.EventMeta().target = playerID
	return ev
}
