package game

import (
	"github.com/onecard/onecard/internal/card"
)

// CommandKind identifies an applied move in the command log.
type CommandKind int

const (
	CmdPlayCard CommandKind = iota
	CmdDrawCard
	CmdCallOne
)

// String returns the string representation of a command kind
func (k CommandKind) String() string {
	switch k {
	case CmdPlayCard:
		return "play_card"
	case CmdDrawCard:
		return "draw_card"
	default:
		return "call_one"
	}
}

// LogEntry records enough pre-play state to reverse exactly one step.
type LogEntry struct {
	Kind  CommandKind
	Actor string

	Played card.Card   // CmdPlayCard: the card as played (declared color included)
	Drawn  []card.Card // CmdDrawCard: cards drawn, in draw order

	PrevTop       card.Card
	PrevDeclared  card.Color
	PrevReversed  bool
	PrevPending   int
	PrevCalledOne bool

	// Advanced is set when the command moved the turn on; such entries
	// are sealed and can no longer be undone.
	Advanced bool
}

// CommandLog is the per-session ordered record of applied moves. It is
// append-only within a turn; turn advancement seals it, so undo never
// crosses a turn boundary.
type CommandLog struct {
	entries []LogEntry
}

// NewCommandLog creates an empty log.
func NewCommandLog() *CommandLog {
	return &CommandLog{}
}

// Append records an applied command.
func (l *CommandLog) Append(e LogEntry) {
	l.entries = append(l.entries, e)
}

// Last returns the most recently applied command, if any.
func (l *CommandLog) Last() (LogEntry, bool) {
	if len(l.entries) == 0 {
		return LogEntry{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// MarkAdvanced flags the latest entry as having advanced the turn.
func (l *CommandLog) MarkAdvanced() {
	if len(l.entries) > 0 {
		l.entries[len(l.entries)-1].Advanced = true
	}
}

// Pop removes the most recent entry after a successful undo.
func (l *CommandLog) Pop() {
	if len(l.entries) > 0 {
		l.entries = l.entries[:len(l.entries)-1]
	}
}

// Seal discards the recorded entries at a turn boundary.
func (l *CommandLog) Seal() {
	l.entries = l.entries[:0]
}

// Len returns the number of unsealed entries.
func (l *CommandLog) Len() int {
	return len(l.entries)
}
