package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/onecard/onecard/internal/auth"
	"github.com/onecard/onecard/internal/game"
	"github.com/onecard/onecard/internal/room"
)

// Connection represents a WebSocket connection to a client
type Connection struct {
	id        string
	conn      *websocket.Conn
	send      chan *Message
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closeOnce sync.Once
	service   *GameService

	// token from the upgrade query; consumed as a first auth frame.
	token string

	identity *auth.Identity
	roomCode string
	playerID string
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, logger *log.Logger, service *GameService, token string) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		id:      uuid.NewString(),
		conn:    conn,
		send:    make(chan *Message, 256),
		logger:  logger.WithPrefix("conn"),
		ctx:     ctx,
		cancel:  cancel,
		service: service,
		token:   token,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	if c.token != "" {
		c.handleAuth(AuthData{Token: c.token})
	}
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		if code := c.GetRoom(); code != "" {
			if r, ok := c.service.Room(code); ok {
				r.Bus().Unsubscribe(c.id)
			}
		}
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage sends a message to the client
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed, this is expected during shutdown
			c.logger.Debug("Attempted to send message on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// Identity returns the authenticated identity, or nil.
func (c *Connection) Identity() *auth.Identity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.identity
}

func (c *Connection) setIdentity(identity *auth.Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.identity = identity
}

// GetPlayer returns the associated seat id
func (c *Connection) GetPlayer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// GetRoom returns the associated room code
func (c *Connection) GetRoom() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomCode
}

func (c *Connection) setRoom(code, playerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomCode = code
	c.playerID = playerID
}

// attach subscribes this connection to the room's event topic and forwards
// every event as a WebSocket frame.
func (c *Connection) attach(r *room.Room, playerID string) {
	sub := r.Bus().Subscribe(c.id, playerID)
	go c.forwardEvents(sub)
}

func (c *Connection) forwardEvents(sub *game.Subscription) {
	for ev := range sub.Events() {
		msg, err := NewMessage(MessageType(ev.EventType().String()), ev)
		if err != nil {
			c.logger.Error("Failed to encode event", "type", ev.EventType(), "error", err)
			continue
		}
		if err := c.SendMessage(msg); err != nil {
			return
		}
	}
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var (
	ErrConnectionClosed = websocket.ErrCloseSent
)

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "player", c.GetPlayer())

	if msg.Type == MessageTypeAuth {
		var data AuthData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(game.CodeInvalidState, "Failed to parse auth data")
			return
		}
		c.handleAuth(data)
		return
	}

	// Unauthenticated channels may only authenticate.
	if c.Identity() == nil {
		c.sendError(game.CodeAuthRequired, "Must authenticate first")
		return
	}

	switch msg.Type {
	case MessageTypeCreateRoom:
		var data CreateRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(game.CodeInvalidState, "Failed to parse create room data")
			return
		}
		c.handleCreateRoom(data)

	case MessageTypeJoinRoom:
		var data JoinRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(game.CodeInvalidState, "Failed to parse join room data")
			return
		}
		c.handleJoinRoom(data)

	case MessageTypeLeaveRoom:
		c.handleLeaveRoom()

	case MessageTypeListRooms:
		c.handleListRooms()

	case MessageTypeGetState:
		c.handleGetState()

	case MessageTypeAddBot:
		c.withRoom(func(r *room.Room, playerID string) error {
			_, err := r.AddBot(playerID)
			return err
		})

	case MessageTypeRemoveBot:
		var data RemoveBotData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(game.CodeInvalidState, "Failed to parse remove bot data")
			return
		}
		c.withRoom(func(r *room.Room, playerID string) error {
			return r.RemoveBot(playerID, data.BotID)
		})

	case MessageTypeKickPlayer:
		var data KickPlayerData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(game.CodeInvalidState, "Failed to parse kick data")
			return
		}
		c.withRoom(func(r *room.Room, playerID string) error {
			return r.Kick(playerID, data.PlayerID)
		})

	case MessageTypeStartGame:
		c.withRoom(func(r *room.Room, playerID string) error {
			return r.StartGame(playerID)
		})

	case MessageTypePlayCard:
		var data PlayCardData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(game.CodeInvalidState, "Failed to parse play card data")
			return
		}
		c.withRoom(func(r *room.Room, playerID string) error {
			return r.PlayCard(playerID, data.CardID, data.DeclaredColor, data.CallOne)
		})

	case MessageTypeDrawCard:
		c.withRoom(func(r *room.Room, playerID string) error {
			return r.DrawCard(playerID)
		})

	case MessageTypeCallOne:
		c.withRoom(func(r *room.Room, playerID string) error {
			return r.CallOne(playerID)
		})

	case MessageTypeCatchOne:
		var data CatchOneData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(game.CodeInvalidState, "Failed to parse catch data")
			return
		}
		c.withRoom(func(r *room.Room, playerID string) error {
			return r.CatchOne(playerID, data.TargetPlayerID)
		})

	case MessageTypeUndo:
		c.withRoom(func(r *room.Room, playerID string) error {
			return r.Undo(playerID)
		})

	default:
		c.sendError(game.CodeInvalidState, "Unknown message type: "+msg.Type.String())
	}
}

// withRoom runs a room command for the connection's current seat, turning
// rejections into error frames.
func (c *Connection) withRoom(fn func(r *room.Room, playerID string) error) {
	code := c.GetRoom()
	if code == "" {
		c.sendError(game.CodeInvalidState, "You are not in a room")
		return
	}
	r, ok := c.service.Room(code)
	if !ok {
		c.sendError(game.CodeUnknownRoom, "Your room no longer exists")
		c.setRoom("", "")
		return
	}
	if err := fn(r, c.GetPlayer()); err != nil {
		c.sendError(game.CodeOf(err), err.Error())
	}
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}

	_ = c.SendMessage(errorMsg)
}

func (c *Connection) handleAuth(data AuthData) {
	if c.Identity() != nil {
		c.sendError(game.CodeInvalidState, "Already authenticated")
		return
	}

	identity, err := c.service.Authenticate(c.ctx, data.Token)
	if err != nil {
		response, _ := NewMessage(MessageTypeAuthResponse, AuthResponseData{
			Success: false,
			Error:   err.Error(),
		})
		_ = c.SendMessage(response)
		return
	}

	c.setIdentity(identity)
	c.logger.Info("Authenticated", "user", identity.UserID, "nickname", identity.Nickname)

	response, _ := NewMessage(MessageTypeAuthResponse, AuthResponseData{
		Success:  true,
		UserID:   identity.UserID,
		Nickname: identity.Nickname,
	})
	_ = c.SendMessage(response)
}

func (c *Connection) handleCreateRoom(data CreateRoomData) {
	if c.GetRoom() != "" {
		c.sendError(game.CodeAlreadyJoined, "Leave your current room first")
		return
	}

	rules := data.Apply(c.service.DefaultRules())
	r, p, err := c.service.CreateRoom(c.Identity(), data.Name, data.Private, rules)
	if err != nil {
		c.sendError(game.CodeOf(err), err.Error())
		return
	}

	c.attach(r, p.ID)
	c.setRoom(r.Code, p.ID)
	c.logger.Info("Room created", "room", r.Code, "player", p.Nickname)

	response, _ := NewMessage(MessageTypeRoomCreated, RoomCreatedData{
		RoomCode: r.Code,
		PlayerID: p.ID,
		Room:     r.Snapshot(),
	})
	_ = c.SendMessage(response)
}

func (c *Connection) handleJoinRoom(data JoinRoomData) {
	if c.GetRoom() != "" {
		c.sendError(game.CodeAlreadyJoined, "Leave your current room first")
		return
	}

	r, p, reconnected, err := c.service.JoinRoom(c.Identity(), data.RoomCode)
	if err != nil {
		c.sendError(game.CodeOf(err), err.Error())
		return
	}

	// Subscribe before completing a reconnect so the hand snapshot reaches
	// this connection; the join ack goes out first so the client sees the
	// snapshot after it.
	c.attach(r, p.ID)
	c.setRoom(r.Code, p.ID)
	c.logger.Info("Joined room", "room", r.Code, "player", p.Nickname, "reconnected", reconnected)

	response, _ := NewMessage(MessageTypeRoomJoined, RoomJoinedData{
		RoomCode:    r.Code,
		PlayerID:    p.ID,
		Room:        r.Snapshot(),
		Reconnected: reconnected,
	})
	_ = c.SendMessage(response)

	if reconnected {
		if err := r.HandleReconnect(p.ID); err != nil {
			r.Bus().Unsubscribe(c.id)
			c.setRoom("", "")
			c.sendError(game.CodeOf(err), err.Error())
		}
	}
}

func (c *Connection) handleLeaveRoom() {
	code := c.GetRoom()
	if code == "" {
		c.sendError(game.CodeInvalidState, "You are not in a room")
		return
	}
	r, ok := c.service.Room(code)
	if ok {
		if err := c.service.LeaveRoom(c.Identity(), r, c.GetPlayer()); err != nil {
			c.sendError(game.CodeOf(err), err.Error())
			return
		}
		r.Bus().Unsubscribe(c.id)
	}
	c.setRoom("", "")

	response, _ := NewMessage(MessageTypeRoomLeft, RoomLeftData{RoomCode: code})
	_ = c.SendMessage(response)
}

func (c *Connection) handleListRooms() {
	response, _ := NewMessage(MessageTypeRoomList, RoomListData{
		Rooms: c.service.ListRooms(),
	})
	_ = c.SendMessage(response)
}

func (c *Connection) handleGetState() {
	c.withRoom(func(r *room.Room, playerID string) error {
		response, err := NewMessage(MessageTypeRoomState, RoomStateData{
			Room:  r.Snapshot(),
			State: r.State(),
		})
		if err != nil {
			return err
		}
		return c.SendMessage(response)
	})
}
