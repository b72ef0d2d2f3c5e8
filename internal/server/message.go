package server

import (
	"encoding/json"
	"time"

	"github.com/onecard/onecard/internal/game"
	"github.com/onecard/onecard/internal/room"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type AuthData struct {
	Token string `json:"token"`
}

type CreateRoomData struct {
	// Name optionally labels the room; Private keeps it out of listings.
	Name    string `json:"name,omitempty"`
	Private bool   `json:"private,omitempty"`

	// Rules overrides the server's room defaults; omitted fields keep
	// their defaults.
	MaxPlayers    *int  `json:"maxPlayers,omitempty"`
	HandSize      *int  `json:"handSize,omitempty"`
	TurnSeconds   *int  `json:"turnSeconds,omitempty"`
	AllowStacking *bool `json:"allowStacking,omitempty"`
	AllowBots     *bool `json:"allowBots,omitempty"`
	MaxBots       *int  `json:"maxBots,omitempty"`
	PointsToWin   *int  `json:"pointsToWin,omitempty"`
	Tournament    *bool `json:"tournament,omitempty"`
}

// Apply overlays the requested overrides on the given base rules.
func (d CreateRoomData) Apply(base game.Rules) game.Rules {
	if d.MaxPlayers != nil {
		base.MaxPlayers = *d.MaxPlayers
	}
	if d.HandSize != nil {
		base.HandSize = *d.HandSize
	}
	if d.TurnSeconds != nil {
		base.TurnSeconds = *d.TurnSeconds
	}
	if d.AllowStacking != nil {
		base.AllowStacking = *d.AllowStacking
	}
	if d.AllowBots != nil {
		base.AllowBots = *d.AllowBots
	}
	if d.MaxBots != nil {
		base.MaxBots = *d.MaxBots
	}
	if d.PointsToWin != nil {
		base.PointsToWin = *d.PointsToWin
	}
	if d.Tournament != nil {
		base.Tournament = *d.Tournament
	}
	return base
}

type JoinRoomData struct {
	RoomCode string `json:"roomCode"`
}

type KickPlayerData struct {
	PlayerID string `json:"playerId"`
}

type RemoveBotData struct {
	BotID string `json:"botId"`
}

type PlayCardData struct {
	CardID        string `json:"cardId"`
	DeclaredColor string `json:"declaredColor,omitempty"`
	CallOne       bool   `json:"callOne,omitempty"`
}

type CatchOneData struct {
	TargetPlayerID string `json:"targetPlayerId"`
}

// Server → Client Messages

type AuthResponseData struct {
	Success  bool   `json:"success"`
	UserID   string `json:"userId,omitempty"`
	Nickname string `json:"nickname,omitempty"`
	Error    string `json:"error,omitempty"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RoomCreatedData struct {
	RoomCode string    `json:"roomCode"`
	PlayerID string    `json:"playerId"`
	Room     room.Info `json:"room"`
}

type RoomJoinedData struct {
	RoomCode    string    `json:"roomCode"`
	PlayerID    string    `json:"playerId"`
	Room        room.Info `json:"room"`
	Reconnected bool      `json:"reconnected,omitempty"`
}

type RoomLeftData struct {
	RoomCode string `json:"roomCode"`
}

type RoomListData struct {
	Rooms []room.Info `json:"rooms"`
}

type RoomStateData struct {
	Room  room.Info        `json:"room"`
	State game.PublicState `json:"state"`
}
