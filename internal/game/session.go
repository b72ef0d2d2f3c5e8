package game

import (
	rand "math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/onecard/onecard/internal/card"
)

// Phase is the session's lifecycle state.
type Phase int

const (
	PhaseLobby Phase = iota
	PhaseDealing
	PhasePlaying
	PhasePaused
	PhaseGameOver
)

// String returns the string representation of a phase
func (p Phase) String() string {
	switch p {
	case PhaseDealing:
		return "dealing"
	case PhasePlaying:
		return "playing"
	case PhasePaused:
		return "paused"
	case PhaseGameOver:
		return "game_over"
	default:
		return "lobby"
	}
}

// Round end reasons carried in GameEnded events.
const (
	EndReasonWin      = "win"
	EndReasonForfeit  = "forfeit"
	EndReasonInternal = "internal"
	EndReasonShutdown = "shutdown"
)

// Session is one round's state machine. It exclusively owns its deck,
// discard pile, turn ring and command log, and must only ever be touched
// from its room's worker goroutine.
type Session struct {
	ID     string
	rules  Rules
	logger *log.Logger
	rng    *rand.Rand
	bus    *Bus

	deck    *card.Deck
	discard []card.Card
	ring    *Ring

	phase    Phase
	pending  int
	declared card.Color

	// skipNext makes the next advancement skip a seat. skipQuiet
	// suppresses the PlayerSkipped event for the 2-seat Reverse case,
	// where the skip is implied by DirectionReversed.
	skipNext  bool
	skipQuiet bool

	// drawnPending holds the id of a card drawn this turn that the
	// player may still play before the turn passes.
	drawnPending string

	turnStarted time.Time
	turnSeq     int
	startedAt   time.Time
	winner      *Player
	standings   []Standing
	cmdlog      *CommandLog
}

// NewSession creates a session over the given seats. The bus may be nil in
// unit tests that assert on state rather than events.
func NewSession(rules Rules, seats []*Player, rng *rand.Rand, bus *Bus, logger *log.Logger) *Session {
	s := &Session{
		ID:     uuid.NewString(),
		rules:  rules,
		logger: logger.WithPrefix("session"),
		rng:    rng,
		bus:    bus,
		ring:   NewRing(seats),
		cmdlog: NewCommandLog(),
	}
	if bus != nil {
		bus.SetSession(s.ID)
	}
	return s
}

// Phase returns the current lifecycle state.
func (s *Session) Phase() Phase { return s.phase }

// Winner returns the round winner once the session is over.
func (s *Session) Winner() *Player { return s.winner }

// Standings returns the final placements once the round has ended with a
// winner; nil for aborted rounds.
func (s *Session) Standings() []Standing { return s.standings }

// CurrentPlayer returns the seat whose turn it is.
func (s *Session) CurrentPlayer() *Player { return s.ring.Current() }

// PendingDraw returns the accumulated +2/+4 counter.
func (s *Session) PendingDraw() int { return s.pending }

// DeclaredColor returns the color declared by the last wild, if any.
func (s *Session) DeclaredColor() card.Color { return s.declared }

// StartedAt returns when the round started.
func (s *Session) StartedAt() time.Time { return s.startedAt }

// TurnStartedAt returns when the current turn began.
func (s *Session) TurnStartedAt() time.Time { return s.turnStarted }

// TurnSeq returns a counter that increments whenever a new turn begins
// (advancement, round start, resume). The scheduler keys its turn timer
// off it, which makes stale timer fires cheap to detect.
func (s *Session) TurnSeq() int { return s.turnSeq }

// Players returns the seats in join order.
func (s *Session) Players() []*Player { return s.ring.Seats() }

// Rules returns the session's configuration.
func (s *Session) Rules() Rules { return s.rules }

// TopCard returns the top of the discard pile.
func (s *Session) TopCard() (card.Card, bool) {
	if len(s.discard) == 0 {
		return card.Card{}, false
	}
	return s.discard[len(s.discard)-1], true
}

// DrawnPending returns the card drawn this turn that may still be played.
func (s *Session) DrawnPending() (card.Card, bool) {
	if s.drawnPending == "" {
		return card.Card{}, false
	}
	cur := s.ring.Current()
	if cur == nil {
		return card.Card{}, false
	}
	return cur.Hand.Get(s.drawnPending)
}

// Start deals the opening hands and begins play.
func (s *Session) Start() error {
	if s.phase != PhaseLobby {
		return NewErrorf(CodeInvalidState, "cannot start a session in phase %s", s.phase)
	}
	if s.ring.Len() < MinPlayers {
		return NewErrorf(CodeInvalidState, "need at least %d players to start, have %d", MinPlayers, s.ring.Len())
	}

	s.phase = PhaseDealing
	s.deck = card.NewStandardDeck(s.rng)

	for _, p := range s.ring.Seats() {
		p.Hand.AddAll(s.deck.DrawN(s.rules.HandSize))
		p.CalledOne = false
	}

	// Turn the first non-wild card to start the discard pile; wilds go
	// back into the deck and another card is drawn.
	for {
		top, ok := s.deck.Draw()
		if !ok {
			return NewError(CodeInternalError, "deck exhausted while dealing")
		}
		if top.IsWild() {
			s.deck.Push(top)
			s.deck.Shuffle()
			continue
		}
		s.discard = append(s.discard, top)
		break
	}

	s.phase = PhasePlaying
	s.startedAt = time.Now()
	s.turnStarted = s.startedAt
	s.turnSeq++

	top, _ := s.TopCard()
	ids := make([]string, 0, s.ring.Len())
	for _, p := range s.ring.Seats() {
		ids = append(ids, p.ID)
	}
	s.publish(&GameStartedEvent{
		PlayerIDs:       ids,
		HandSize:        s.rules.HandSize,
		TopCard:         top,
		CurrentPlayerID: s.ring.Current().ID,
	})
	for _, p := range s.ring.Seats() {
		s.publish(NewHandSnapshot(p))
	}
	s.publish(&TurnChangedEvent{CurrentPlayerID: s.ring.Current().ID, TurnSeconds: s.rules.TurnSeconds})

	s.logger.Info("round started", "session", s.ID, "players", s.ring.Len(), "top", top.String())
	return nil
}

// PlayCard applies the play-card procedure for the current player.
func (s *Session) PlayCard(playerID, cardID string, declare card.Color, callOne bool) error {
	if s.phase != PhasePlaying {
		return NewErrorf(CodeInvalidState, "cannot play a card in phase %s", s.phase)
	}
	cur := s.ring.Current()
	if cur == nil || cur.ID != playerID {
		return NewError(CodeNotYourTurn, "it is not your turn")
	}
	c, ok := cur.Hand.Get(cardID)
	if !ok {
		return NewError(CodeIllegalCard, "card is not in your hand")
	}
	if s.drawnPending != "" && cardID != s.drawnPending {
		return NewError(CodeIllegalCard, "only the card just drawn may be played this turn")
	}
	top, _ := s.TopCard()
	// With stacking enabled any draw card may be thrown on a pending
	// draw, regardless of variant or color.
	stackPlay := s.pending > 0 && s.rules.AllowStacking &&
		(c.Variant == card.DrawTwo || c.Variant == card.WildDrawFour)
	if !stackPlay && !card.CanPlayOn(c, top, s.declared) {
		return NewErrorf(CodeIllegalCard, "%s cannot be played on %s", c, top)
	}
	if c.IsWild() {
		if !declare.IsDeclarable() {
			return NewError(CodeIllegalDeclaredColor, "a wild play must declare red, yellow, green or blue")
		}
	} else if declare != card.ColorNone {
		return NewErrorf(CodeIllegalDeclaredColor, "cannot declare a color on %s", c)
	}
	if s.pending > 0 && c.Variant != card.DrawTwo && c.Variant != card.WildDrawFour {
		return NewErrorf(CodePendingDrawUnresolved, "you must stack a draw card or draw %d cards", s.pending)
	}
	if c.Variant == card.WildDrawFour && s.rules.Tournament {
		if !card.StrictWildFourLegal(cur.Hand.Cards(), s.effectiveColor()) {
			return NewError(CodeIllegalCard, "wild draw four is only legal with no card of the current color in hand")
		}
	}

	entry := LogEntry{
		Kind:          CmdPlayCard,
		Actor:         playerID,
		PrevTop:       top,
		PrevDeclared:  s.declared,
		PrevReversed:  s.ring.Reversed(),
		PrevPending:   s.pending,
		PrevCalledOne: cur.CalledOne,
	}

	played, _ := cur.Hand.Remove(cardID)
	if played.IsWild() {
		if err := played.Declare(declare); err != nil {
			return NewError(CodeIllegalDeclaredColor, err.Error())
		}
		s.declared = declare
	} else {
		s.declared = card.ColorNone
	}
	s.discard = append(s.discard, played)
	entry.Played = played

	calledWithPlay := false
	if callOne && cur.Hand.Size() == 1 && !cur.CalledOne {
		cur.CalledOne = true
		calledWithPlay = true
	}

	s.publish(&CardPlayedEvent{PlayerID: cur.ID, Card: played, CalledOne: calledWithPlay, HandSize: cur.Hand.Size()})
	s.publish(NewHandSnapshot(cur))
	if calledWithPlay {
		s.publish(&OneCalledEvent{PlayerID: cur.ID})
	}
	if played.IsWild() {
		s.publish(&ColorChangedEvent{NewColor: declare})
	}

	switch played.Variant {
	case card.DrawTwo:
		s.pending += 2
	case card.WildDrawFour:
		s.pending += 4
	case card.Reverse:
		s.ring.Reverse()
		s.publish(&DirectionReversedEvent{Clockwise: !s.ring.Reversed()})
		if s.ring.Len() == 2 {
			// With two seats Reverse acts as Skip: the actor plays
			// again.
			s.skipNext = true
			s.skipQuiet = true
		}
	case card.Skip:
		s.skipNext = true
	}

	if cur.Hand.IsEmpty() {
		s.cmdlog.Append(entry)
		s.endRound(cur, EndReasonWin)
		return nil
	}

	// Missed ONE call: penalty applies immediately, before the turn
	// advances.
	if cur.Hand.Size() == 1 && !cur.CalledOne {
		s.penalize(cur, "")
	}

	s.cmdlog.Append(entry)
	s.advanceTurn()
	s.checkConservation()
	return nil
}

// DrawCard applies the draw-card procedure for the current player. With a
// pending draw it resolves the accumulated cards and ends the turn; with a
// card already drawn this turn it passes; otherwise it draws one card and
// leaves the turn open if that card is playable.
func (s *Session) DrawCard(playerID string) error {
	if s.phase != PhasePlaying {
		return NewErrorf(CodeInvalidState, "cannot draw in phase %s", s.phase)
	}
	cur := s.ring.Current()
	if cur == nil || cur.ID != playerID {
		return NewError(CodeNotYourTurn, "it is not your turn")
	}

	if s.pending > 0 {
		top, _ := s.TopCard()
		entry := LogEntry{
			Kind:          CmdDrawCard,
			Actor:         playerID,
			PrevTop:       top,
			PrevDeclared:  s.declared,
			PrevReversed:  s.ring.Reversed(),
			PrevPending:   s.pending,
			PrevCalledOne: cur.CalledOne,
		}
		entry.Drawn = s.drawTo(cur, s.pending, "pending")
		s.pending = 0
		s.cmdlog.Append(entry)
		s.advanceTurn()
		s.checkConservation()
		return nil
	}

	if s.drawnPending != "" {
		// Declining to play the drawn card passes the turn.
		s.advanceTurn()
		return nil
	}

	top, _ := s.TopCard()
	entry := LogEntry{
		Kind:          CmdDrawCard,
		Actor:         playerID,
		PrevTop:       top,
		PrevDeclared:  s.declared,
		PrevReversed:  s.ring.Reversed(),
		PrevPending:   s.pending,
		PrevCalledOne: cur.CalledOne,
	}
	entry.Drawn = s.drawTo(cur, 1, "turn")
	s.cmdlog.Append(entry)

	if len(entry.Drawn) == 1 && card.CanPlayOn(entry.Drawn[0], top, s.declared) {
		s.drawnPending = entry.Drawn[0].ID
	} else {
		s.advanceTurn()
	}
	s.checkConservation()
	return nil
}

// CallOne sets the caller's ONE flag. Legal only with exactly one card in
// hand and the flag not already set.
func (s *Session) CallOne(playerID string) error {
	if s.phase != PhasePlaying {
		return NewErrorf(CodeInvalidState, "cannot call ONE in phase %s", s.phase)
	}
	p, ok := s.ring.Find(playerID)
	if !ok {
		return NewError(CodeCannotCallOne, "you are not in this game")
	}
	if p.Hand.Size() != 1 {
		return NewErrorf(CodeCannotCallOne, "ONE can only be called with exactly 1 card, you have %d", p.Hand.Size())
	}
	if p.CalledOne {
		return NewError(CodeCannotCallOne, "you already called ONE")
	}

	top, _ := s.TopCard()
	s.cmdlog.Append(LogEntry{
		Kind:          CmdCallOne,
		Actor:         playerID,
		PrevTop:       top,
		PrevDeclared:  s.declared,
		PrevReversed:  s.ring.Reversed(),
		PrevPending:   s.pending,
		PrevCalledOne: false,
	})
	p.CalledOne = true
	s.publish(&OneCalledEvent{PlayerID: p.ID})
	return nil
}

// CatchOne applies the missed-call penalty to a target player who holds a
// single card and has not called ONE.
func (s *Session) CatchOne(callerID, targetID string) error {
	if s.phase != PhasePlaying {
		return NewErrorf(CodeInvalidState, "cannot catch ONE in phase %s", s.phase)
	}
	if callerID == targetID {
		return NewError(CodeCannotCatchOne, "you cannot catch yourself")
	}
	if _, ok := s.ring.Find(callerID); !ok {
		return NewError(CodeCannotCatchOne, "you are not in this game")
	}
	target, ok := s.ring.Find(targetID)
	if !ok {
		return NewError(CodeCannotCatchOne, "no such player")
	}
	if target.Hand.Size() != 1 || target.CalledOne {
		return NewError(CodeCannotCatchOne, "that player cannot be caught")
	}

	s.penalize(target, callerID)
	s.checkConservation()
	return nil
}

// Undo reverses the most recently applied command, while the same turn is
// still in progress. Disabled in tournament mode.
func (s *Session) Undo(playerID string) error {
	if s.rules.Tournament {
		return NewError(CodeInvalidState, "undo is disabled in tournament mode")
	}
	if s.phase != PhasePlaying {
		return NewErrorf(CodeInvalidState, "cannot undo in phase %s", s.phase)
	}
	entry, ok := s.cmdlog.Last()
	if !ok || entry.Advanced {
		return NewError(CodeInvalidState, "nothing to undo this turn")
	}
	if entry.Actor != playerID {
		return NewError(CodeInvalidState, "only the actor of the last move may undo it")
	}
	actor, ok := s.ring.Find(playerID)
	if !ok {
		return NewError(CodeInvalidState, "you are not in this game")
	}

	switch entry.Kind {
	case CmdCallOne:
		actor.CalledOne = entry.PrevCalledOne
	case CmdDrawCard:
		// Rewind the deck: drawn cards go back on top in reverse draw
		// order.
		for i := len(entry.Drawn) - 1; i >= 0; i-- {
			c, ok := actor.Hand.Remove(entry.Drawn[i].ID)
			if !ok {
				return NewError(CodeInvalidState, "drawn card no longer in hand")
			}
			s.deck.Push(c)
		}
		s.pending = entry.PrevPending
		s.drawnPending = ""
		actor.CalledOne = entry.PrevCalledOne
		s.publish(NewHandSnapshot(actor))
	case CmdPlayCard:
		if len(s.discard) == 0 {
			return NewError(CodeInternalError, "discard pile empty on undo")
		}
		c := s.discard[len(s.discard)-1]
		s.discard = s.discard[:len(s.discard)-1]
		c.ClearDeclared()
		actor.Hand.Add(c)
		s.declared = entry.PrevDeclared
		if s.ring.Reversed() != entry.PrevReversed {
			s.ring.Reverse()
		}
		s.pending = entry.PrevPending
		s.skipNext = false
		s.skipQuiet = false
		actor.CalledOne = entry.PrevCalledOne
		s.publish(NewHandSnapshot(actor))
	}

	s.cmdlog.Pop()
	s.checkConservation()
	return nil
}

// Leave removes a seat mid-round. The leaver's cards slide under the
// discard top so the 108-card conservation invariant holds. If fewer than
// two seats remain the last seat wins by forfeit.
func (s *Session) Leave(playerID string) error {
	p, ok := s.ring.Find(playerID)
	if !ok {
		return nil
	}
	if s.phase == PhaseGameOver {
		s.ring.Remove(playerID)
		return nil
	}

	wasCurrent := s.ring.Current() != nil && s.ring.Current().ID == playerID
	s.ring.Remove(playerID)

	returned := p.Hand.Cards()
	for i := range returned {
		returned[i].ClearDeclared()
	}
	s.discard = append(returned, s.discard...)
	p.Hand.Clear()

	if s.ring.Len() < MinPlayers {
		if last := s.ring.Current(); last != nil {
			s.endRound(last, EndReasonForfeit)
		} else {
			s.endInternal(EndReasonForfeit)
		}
		return nil
	}

	if wasCurrent && s.phase == PhasePlaying {
		s.cmdlog.Seal()
		s.drawnPending = ""
		s.turnStarted = time.Now()
		s.turnSeq++
		s.publish(&TurnChangedEvent{CurrentPlayerID: s.ring.Current().ID, PendingDraw: s.pending, TurnSeconds: s.rules.TurnSeconds})
	}
	s.checkConservation()
	return nil
}

// ReplaceSeat swaps a disconnected human's seat for a temporary bot that
// inherits the hand.
func (s *Session) ReplaceSeat(oldID string, replacement *Player) bool {
	return s.ring.Replace(oldID, replacement)
}

// Pause suspends play, e.g. while a disconnected human's grace timer runs.
func (s *Session) Pause(reason string) error {
	if s.phase != PhasePlaying {
		return NewErrorf(CodeInvalidState, "cannot pause in phase %s", s.phase)
	}
	s.phase = PhasePaused
	s.publish(&GamePausedEvent{Reason: reason})
	return nil
}

// Resume continues play after a pause.
func (s *Session) Resume() error {
	if s.phase != PhasePaused {
		return NewErrorf(CodeInvalidState, "cannot resume in phase %s", s.phase)
	}
	s.phase = PhasePlaying
	s.turnStarted = time.Now()
	s.turnSeq++
	s.publish(&GameResumedEvent{})
	return nil
}

// Abort ends the round with no winner, publishing the given reason.
func (s *Session) Abort(reason string) {
	if s.phase == PhaseGameOver {
		return
	}
	s.endInternal(reason)
}

// PublicState is the spectator-safe session snapshot sent on join and
// reconnection. Hands appear as counts only.
type PublicState struct {
	SessionID       string       `json:"sessionId"`
	Phase           string       `json:"phase"`
	TopCard         *card.Card   `json:"topCard,omitempty"`
	DeclaredColor   card.Color   `json:"declaredColor,omitempty"`
	PendingDraw     int          `json:"pendingDraw,omitempty"`
	CurrentPlayerID string       `json:"currentPlayerId,omitempty"`
	Clockwise       bool         `json:"clockwise"`
	Players         []PublicSeat `json:"players"`
}

// PublicSeat is one seat in the public snapshot.
type PublicSeat struct {
	PlayerID  string `json:"playerId"`
	Nickname  string `json:"nickname"`
	IsBot     bool   `json:"isBot"`
	HandSize  int    `json:"handSize"`
	Score     int    `json:"score"`
	CalledOne bool   `json:"calledOne,omitempty"`
}

// PublicState builds the spectator-safe snapshot.
func (s *Session) PublicState() PublicState {
	st := PublicState{
		SessionID:     s.ID,
		Phase:         s.phase.String(),
		DeclaredColor: s.declared,
		PendingDraw:   s.pending,
		Clockwise:     !s.ring.Reversed(),
	}
	if top, ok := s.TopCard(); ok {
		st.TopCard = &top
	}
	if cur := s.ring.Current(); cur != nil {
		st.CurrentPlayerID = cur.ID
	}
	for _, p := range s.ring.Seats() {
		st.Players = append(st.Players, PublicSeat{
			PlayerID:  p.ID,
			Nickname:  p.Nickname,
			IsBot:     p.IsBot(),
			HandSize:  p.Hand.Size(),
			Score:     p.Score,
			CalledOne: p.CalledOne,
		})
	}
	return st
}

func (s *Session) effectiveColor() card.Color {
	if s.declared != card.ColorNone {
		return s.declared
	}
	if top, ok := s.TopCard(); ok {
		return top.Color
	}
	return card.ColorNone
}

// draw moves up to n cards from the deck into p's hand, refilling from the
// discard pile as needed. No events are published.
func (s *Session) draw(p *Player, n int) []card.Card {
	drawn := make([]card.Card, 0, n)
	for i := 0; i < n; i++ {
		c, ok := s.deck.Draw()
		if !ok {
			s.refillDeck()
			c, ok = s.deck.Draw()
			if !ok {
				// Every remaining card is in a hand.
				break
			}
		}
		drawn = append(drawn, c)
	}
	p.Hand.AddAll(drawn)
	s.syncOneFlag(p)
	return drawn
}

// drawTo draws and announces the count plus a personal snapshot.
func (s *Session) drawTo(p *Player, n int, reason string) []card.Card {
	drawn := s.draw(p, n)
	s.publish(&CardDrawnEvent{PlayerID: p.ID, Count: len(drawn), Reason: reason, HandSize: p.Hand.Size()})
	s.publish(NewHandSnapshot(p))
	return drawn
}

// refillDeck rebuilds the deck from the discard pile, keeping the top card
// in place and clearing declared colors on the refilled wilds.
func (s *Session) refillDeck() {
	if len(s.discard) <= 1 {
		return
	}
	top := s.discard[len(s.discard)-1]
	rest := s.discard[:len(s.discard)-1]
	s.deck.Refill(rest)
	s.discard = []card.Card{top}
	s.logger.Debug("deck refilled from discard", "session", s.ID, "cards", s.deck.Remaining())
}

// penalize applies the two-card ONE penalty.
func (s *Session) penalize(p *Player, caughtBy string) {
	drawn := s.draw(p, 2)
	s.publish(&OnePenaltyEvent{PlayerID: p.ID, PenaltyCards: len(drawn), CaughtBy: caughtBy})
	s.publish(NewHandSnapshot(p))
}

func (s *Session) syncOneFlag(p *Player) {
	if p.Hand.Size() != 1 {
		p.CalledOne = false
	}
}

// advanceTurn seals the command log and moves the ring, honoring the skip
// flag and resolving pending draws when stacking is disabled.
func (s *Session) advanceTurn() {
	s.cmdlog.MarkAdvanced()
	s.cmdlog.Seal()
	s.drawnPending = ""

	next := s.ring.Advance()
	if s.skipNext {
		skipped := next
		next = s.ring.Advance()
		if !s.skipQuiet {
			s.publish(&PlayerSkippedEvent{PlayerID: skipped.ID})
		}
		s.skipNext = false
		s.skipQuiet = false
	}

	if s.pending > 0 && !s.rules.AllowStacking {
		// The counter lands on the next player immediately.
		s.drawTo(next, s.pending, "pending")
		s.pending = 0
		next = s.ring.Advance()
	}

	s.turnStarted = time.Now()
	s.turnSeq++
	s.publish(&TurnChangedEvent{CurrentPlayerID: next.ID, PendingDraw: s.pending, TurnSeconds: s.rules.TurnSeconds})
}

// endRound finishes the round, scores the winner and publishes standings.
func (s *Session) endRound(winner *Player, reason string) {
	s.phase = PhaseGameOver
	s.winner = winner

	total := 0
	type loser struct {
		p      *Player
		points int
	}
	losers := make([]loser, 0, s.ring.Len())
	for _, p := range s.ring.Seats() {
		if p.ID == winner.ID {
			continue
		}
		pts := p.Hand.Points()
		total += pts
		losers = append(losers, loser{p: p, points: pts})
	}
	winner.Score += total

	// Standings: winner first, then by fewest hand points.
	for i := 0; i < len(losers); i++ {
		for j := i + 1; j < len(losers); j++ {
			if losers[j].points < losers[i].points {
				losers[i], losers[j] = losers[j], losers[i]
			}
		}
	}
	standings := []Standing{{
		PlayerID:       winner.ID,
		Placement:      1,
		RemainingCards: winner.Hand.Size(),
		HandPoints:     winner.Hand.Points(),
		Score:          winner.Score,
	}}
	for i, l := range losers {
		standings = append(standings, Standing{
			PlayerID:       l.p.ID,
			Placement:      i + 2,
			RemainingCards: l.p.Hand.Size(),
			HandPoints:     l.points,
			Score:          l.p.Score,
		})
	}

	s.standings = standings

	matchOver := winner.Score >= s.rules.PointsToWin
	s.publish(&GameEndedEvent{WinnerID: winner.ID, Reason: reason, Standings: standings, MatchOver: matchOver})
	s.logger.Info("round over", "session", s.ID, "winner", winner.Nickname, "points", total, "score", winner.Score, "matchOver", matchOver)
}

// endInternal ends the round with no winner.
func (s *Session) endInternal(reason string) {
	s.phase = PhaseGameOver
	s.winner = nil
	s.publish(&GameEndedEvent{Reason: reason})
	s.logger.Warn("round aborted", "session", s.ID, "reason", reason)
}

// checkConservation verifies the 108-card multiset invariant after a
// command. A violation is a fatal per-room error: the round ends with no
// winner and the room returns to Waiting.
func (s *Session) checkConservation() {
	if s.phase != PhasePlaying {
		return
	}
	count := s.deck.Remaining() + len(s.discard)
	for _, p := range s.ring.Seats() {
		count += p.Hand.Size()
	}
	if count != card.StandardDeckSize {
		s.logger.Error("card conservation violated", "session", s.ID, "count", count)
		s.endInternal(EndReasonInternal)
	}
}

func (s *Session) publish(ev Event) {
	if s.bus != nil {
		s.bus.Publish(ev)
	}
}
