package server

// Note: Game events (card_played, turn_changed, etc.) are defined in
// internal/game/events.go and are also sent as WebSocket messages, typed
// by their event type string.

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
// These are used for client-server communication protocol
const (
	// Client to server messages
	MessageTypeAuth       MessageType = "auth"
	MessageTypeCreateRoom MessageType = "create_room"
	MessageTypeJoinRoom   MessageType = "join_room"
	MessageTypeLeaveRoom  MessageType = "leave_room"
	MessageTypeListRooms  MessageType = "list_rooms"
	MessageTypeGetState   MessageType = "get_state"
	MessageTypeAddBot     MessageType = "add_bot"
	MessageTypeRemoveBot  MessageType = "remove_bot"
	MessageTypeKickPlayer MessageType = "kick_player"
	MessageTypeStartGame  MessageType = "start_game"
	MessageTypePlayCard   MessageType = "play_card"
	MessageTypeDrawCard   MessageType = "draw_card"
	MessageTypeCallOne    MessageType = "call_one"
	MessageTypeCatchOne   MessageType = "catch_one"
	MessageTypeUndo       MessageType = "undo"

	// Server to client messages
	MessageTypeAuthResponse MessageType = "auth_response"
	MessageTypeRoomCreated  MessageType = "room_created"
	MessageTypeRoomJoined   MessageType = "room_joined"
	MessageTypeRoomLeft     MessageType = "room_left"
	MessageTypeRoomList     MessageType = "room_list"
	MessageTypeRoomState    MessageType = "room_state"
	MessageTypeError        MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
