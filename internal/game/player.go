package game

import (
	"github.com/google/uuid"
)

// Kind distinguishes human seats from AI seats.
type Kind int

const (
	Human Kind = iota
	Bot
)

// String returns the string representation of a player kind
func (k Kind) String() string {
	if k == Bot {
		return "bot"
	}
	return "human"
}

// Status is a player's connection status.
type Status int

const (
	Connected Status = iota
	Disconnected
	ReplacedByBot
)

// String returns the string representation of a connection status
func (s Status) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case ReplacedByBot:
		return "replaced_by_bot"
	default:
		return "connected"
	}
}

// Player represents a seat in a room. The identity fields (ID, Nickname,
// UserID, Email) are read-mostly and shared with transports for
// presentation; the per-round fields (Hand, CalledOne) are owned by the
// active session and only touched on the room worker.
type Player struct {
	ID        string
	Nickname  string
	UserID    string // identity-service user, empty for bots
	Email     string
	Kind      Kind
	Hand      *Hand
	Score     int // accumulated across rounds
	Status    Status
	IsLeader  bool
	CalledOne bool

	// Temporary marks a bot seat that replaced a disconnected human for
	// the remainder of the round. ReplacedID points back at the human.
	Temporary  bool
	ReplacedID string
}

// NewHuman creates a connected human player.
func NewHuman(nickname, userID, email string) *Player {
	return &Player{
		ID:       uuid.NewString(),
		Nickname: nickname,
		UserID:   userID,
		Email:    email,
		Kind:     Human,
		Hand:     NewHand(),
		Status:   Connected,
	}
}

// NewBot creates a regular bot seat.
func NewBot(nickname string) *Player {
	return &Player{
		ID:       uuid.NewString(),
		Nickname: nickname,
		Kind:     Bot,
		Hand:     NewHand(),
		Status:   Connected,
	}
}

// NewTempBot creates a temporary bot that takes over a disconnected
// human's seat, inheriting their hand and round state.
func NewTempBot(replaced *Player) *Player {
	return &Player{
		ID:         uuid.NewString(),
		Nickname:   replaced.Nickname + " (bot)",
		Kind:       Bot,
		Hand:       replaced.Hand,
		Score:      replaced.Score,
		Status:     Connected,
		CalledOne:  replaced.CalledOne,
		Temporary:  true,
		ReplacedID: replaced.ID,
	}
}

// IsBot reports whether the seat is AI controlled.
func (p *Player) IsBot() bool {
	return p.Kind == Bot
}

// ResetRound clears the per-round state between rounds. Score persists.
func (p *Player) ResetRound() {
	p.Hand = NewHand()
	p.CalledOne = false
}
