package game

import (
	"errors"
	"fmt"
)

// Stable error codes surfaced to clients in error frames. The connection is
// never closed on a command error; the offending command is rejected and
// state is unchanged.
const (
	CodeAuthRequired          = "AuthRequired"
	CodeInvalidToken          = "InvalidToken"
	CodeUnknownRoom           = "UnknownRoom"
	CodeRoomFull              = "RoomFull"
	CodeRoomCodeCollision     = "RoomCodeCollision"
	CodeAlreadyJoined         = "AlreadyJoined"
	CodeKicked                = "Kicked"
	CodeNotLeader             = "NotLeader"
	CodeInvalidState          = "InvalidState"
	CodeInvalidConfig         = "InvalidConfig"
	CodeNotYourTurn           = "NotYourTurn"
	CodeIllegalCard           = "IllegalCard"
	CodeIllegalDeclaredColor  = "IllegalDeclaredColor"
	CodeCannotCallOne         = "CannotCallOne"
	CodeCannotCatchOne        = "CannotCatchOne"
	CodePendingDrawUnresolved = "PendingDrawUnresolved"
	CodeInternalError         = "InternalError"
)

// Error is a command rejection with a stable code string and a
// human-readable message.
type Error struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

// NewError creates a coded error.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewErrorf creates a coded error with a formatted message.
func NewErrorf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the stable code from an error, defaulting to
// InternalError for anything that is not a *Error.
func CodeOf(err error) string {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return CodeInternalError
}
