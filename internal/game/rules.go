package game

import "fmt"

// Rule bounds and defaults.
const (
	MinPlayers = 2
	MaxSeats   = 4

	DefaultHandSize    = 7
	DefaultTurnSeconds = 20
	DefaultPointsToWin = 200
	DefaultMaxBots     = 3
)

// Rules is a room's game configuration, fixed at room creation. A rejected
// configuration fails room creation.
type Rules struct {
	MaxPlayers    int  `json:"maxPlayers"`
	HandSize      int  `json:"handSize"`
	TurnSeconds   int  `json:"turnSeconds"`
	AllowStacking bool `json:"allowStacking"`
	AllowBots     bool `json:"allowBots"`
	MaxBots       int  `json:"maxBots"`
	PointsToWin   int  `json:"pointsToWin"`

	// Tournament mode: strict WildDrawFour legality, no undo, no
	// reconnection grace.
	Tournament bool `json:"tournament"`
}

// DefaultRules returns the default room configuration.
func DefaultRules() Rules {
	return Rules{
		MaxPlayers:    MaxSeats,
		HandSize:      DefaultHandSize,
		TurnSeconds:   DefaultTurnSeconds,
		AllowStacking: true,
		AllowBots:     true,
		MaxBots:       DefaultMaxBots,
		PointsToWin:   DefaultPointsToWin,
	}
}

// Validate checks the configuration bounds.
func (r Rules) Validate() error {
	if r.MaxPlayers < MinPlayers || r.MaxPlayers > MaxSeats {
		return NewErrorf(CodeInvalidConfig, "max players must be between %d and %d, got %d", MinPlayers, MaxSeats, r.MaxPlayers)
	}
	if r.HandSize < 1 || r.HandSize > 10 {
		return NewErrorf(CodeInvalidConfig, "initial hand size must be between 1 and 10, got %d", r.HandSize)
	}
	if r.TurnSeconds < 15 || r.TurnSeconds > 120 {
		return NewErrorf(CodeInvalidConfig, "turn time limit must be between 15 and 120 seconds, got %d", r.TurnSeconds)
	}
	if r.MaxBots < 0 || r.MaxBots > MaxSeats-1 {
		return NewErrorf(CodeInvalidConfig, "max bots must be between 0 and %d, got %d", MaxSeats-1, r.MaxBots)
	}
	switch r.PointsToWin {
	case 100, 200, 500:
	default:
		return NewErrorf(CodeInvalidConfig, "points to win must be one of 100, 200 or 500, got %d", r.PointsToWin)
	}
	return nil
}

// String returns a compact digest for logs and room summaries.
func (r Rules) String() string {
	return fmt.Sprintf("players=%d hand=%d turn=%ds stacking=%t bots=%d/%t to=%d tournament=%t",
		r.MaxPlayers, r.HandSize, r.TurnSeconds, r.AllowStacking, r.MaxBots, r.AllowBots, r.PointsToWin, r.Tournament)
}
