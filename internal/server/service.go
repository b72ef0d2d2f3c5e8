package server

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"

	"github.com/onecard/onecard/internal/auth"
	"github.com/onecard/onecard/internal/game"
	"github.com/onecard/onecard/internal/room"
)

// GameService sits between the transport and the room registry: it
// authenticates tokens, resolves room codes and keeps the user-to-room
// index in step with joins and leaves.
type GameService struct {
	registry  *room.Registry
	validator auth.Validator
	defaults  game.Rules
	logger    *log.Logger
}

// NewGameService creates the service.
func NewGameService(registry *room.Registry, validator auth.Validator, defaults game.Rules, logger *log.Logger) *GameService {
	return &GameService{
		registry:  registry,
		validator: validator,
		defaults:  defaults,
		logger:    logger.WithPrefix("service"),
	}
}

// Authenticate resolves a bearer token to an identity.
func (s *GameService) Authenticate(ctx context.Context, token string) (*auth.Identity, error) {
	identity, err := s.validator.Validate(ctx, token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			return nil, game.NewError(game.CodeInvalidToken, "invalid token")
		}
		s.logger.Warn("auth service unavailable", "error", err)
		return nil, game.NewError(game.CodeInternalError, "authentication is temporarily unavailable")
	}
	return identity, nil
}

// DefaultRules returns the server's room defaults.
func (s *GameService) DefaultRules() game.Rules {
	return s.defaults
}

// CreateRoom creates a room and seats the creator as its leader.
func (s *GameService) CreateRoom(identity *auth.Identity, name string, private bool, rules game.Rules) (*room.Room, *game.Player, error) {
	r, err := s.registry.Create(name, private, rules)
	if err != nil {
		return nil, nil, err
	}
	p, err := r.Join(identity.Nickname, identity.UserID, identity.Email)
	if err != nil {
		s.registry.Remove(r.Code)
		return nil, nil, err
	}
	s.registry.Bind(identity.UserID, r.Code)
	return r, p, nil
}

// JoinRoom resolves a room code and either finds the caller's disconnected
// seat (reconnect) or takes a new one. For a reconnect the caller must
// subscribe to the room bus and then call Room.HandleReconnect, so the hand
// snapshot reaches the fresh connection.
func (s *GameService) JoinRoom(identity *auth.Identity, code string) (*room.Room, *game.Player, bool, error) {
	var (
		r  *room.Room
		ok bool
	)
	if code == "" {
		// Empty code: rejoin whatever room the user is bound to.
		r, ok = s.registry.Lookup(identity.UserID)
		if !ok {
			return nil, nil, false, game.NewError(game.CodeUnknownRoom, "you are not in any room")
		}
	} else if r, ok = s.registry.Get(code); !ok {
		return nil, nil, false, game.NewErrorf(game.CodeUnknownRoom, "no room with code %q", code)
	}
	if seat, ok := r.FindByUser(identity.UserID); ok {
		if seat.Status == game.Disconnected {
			return r, seat, true, nil
		}
		return nil, nil, false, game.NewError(game.CodeAlreadyJoined, "you are already in this room")
	}

	p, err := r.Join(identity.Nickname, identity.UserID, identity.Email)
	if err != nil {
		return nil, nil, false, err
	}
	s.registry.Bind(identity.UserID, r.Code)
	return r, p, false, nil
}

// LeaveRoom removes the seat and unbinds the user.
func (s *GameService) LeaveRoom(identity *auth.Identity, r *room.Room, playerID string) error {
	if err := r.Leave(playerID); err != nil {
		return err
	}
	s.registry.Unbind(identity.UserID)
	return nil
}

// Disconnect reports a dropped connection to the member's room.
func (s *GameService) Disconnect(userID, code, playerID string) {
	r, ok := s.registry.Get(code)
	if !ok {
		return
	}
	r.HandleDisconnect(playerID)
}

// ListRooms returns summaries of all open rooms.
func (s *GameService) ListRooms() []room.Info {
	return s.registry.List()
}

// Room resolves a room by code.
func (s *GameService) Room(code string) (*room.Room, bool) {
	return s.registry.Get(code)
}
