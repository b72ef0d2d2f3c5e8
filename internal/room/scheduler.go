package room

import (
	"time"

	"github.com/onecard/onecard/internal/card"
	"github.com/onecard/onecard/internal/game"
)

// run is the room worker. Every mutation of room state happens here, which
// is what lets the session and roster go lock-free.
func (r *Room) run() {
	for {
		select {
		case task := <-r.tasks:
			task()
			r.reconcile()
		case <-r.quit:
			r.teardown()
			close(r.done)
			return
		}
	}
}

// do runs fn on the worker and waits for its result.
func (r *Room) do(fn func() error) error {
	reply := make(chan error, 1)
	select {
	case r.tasks <- func() { reply <- fn() }:
	case <-r.done:
		return game.NewError(game.CodeUnknownRoom, "room is closed")
	}
	select {
	case err := <-reply:
		return err
	case <-r.done:
		return game.NewError(game.CodeUnknownRoom, "room is closed")
	}
}

// enqueue posts fire-and-forget work; used by timer callbacks, which must
// never touch room state directly.
func (r *Room) enqueue(fn func()) {
	select {
	case r.tasks <- fn:
	case <-r.done:
	}
}

// Close shuts the room down. An active round is aborted with the given
// reason ("shutdown" during graceful process exit).
func (r *Room) Close(reason string) {
	_ = r.do(func() error {
		// Finished first so reconcile does not treat the abort as a
		// normal round end.
		r.status = Finished
		if r.session != nil && r.session.Phase() != game.PhaseGameOver {
			r.session.Abort(reason)
		}
		return nil
	})
	r.closeOnce.Do(func() { close(r.quit) })
	<-r.done
}

func (r *Room) teardown() {
	r.stopTurnTimers()
	for id, t := range r.grace {
		t.Stop()
		delete(r.grace, id)
	}
	r.bus.Close()
}

// reconcile runs after every applied task: it settles the round-end
// policy and keeps the turn timer and bot trigger in step with the
// session's current turn.
func (r *Room) reconcile() {
	sess := r.session
	if sess == nil {
		return
	}

	if sess.Phase() == game.PhaseGameOver {
		r.stopTurnTimers()
		if r.status == Playing {
			r.finishRound()
		}
		return
	}
	if sess.Phase() != game.PhasePlaying {
		r.stopTurnTimers()
		return
	}

	if seq := sess.TurnSeq(); seq != r.lastTurnSeq {
		r.lastTurnSeq = seq
		r.armTurnTimer(seq)
		r.armBotTimer(seq)
	}
}

func (r *Room) stopTurnTimers() {
	if r.turnTimer != nil {
		r.turnTimer.Stop()
		r.turnTimer = nil
	}
	if r.botTimer != nil {
		r.botTimer.Stop()
		r.botTimer = nil
	}
}

func (r *Room) armTurnTimer(seq int) {
	if r.turnTimer != nil {
		r.turnTimer.Stop()
	}
	d := time.Duration(r.rules.TurnSeconds) * time.Second
	r.turnTimer = r.clock.AfterFunc(d, func() {
		r.enqueue(func() { r.onTurnTimeout(seq) })
	}, "turnTimer")
}

// onTurnTimeout forces a draw-and-pass for the player who ran out of time.
// The sequence check makes a stale or double fire a no-op.
func (r *Room) onTurnTimeout(seq int) {
	sess := r.session
	if sess == nil || sess.Phase() != game.PhasePlaying || sess.TurnSeq() != seq {
		return
	}
	cur := sess.CurrentPlayer()
	r.logger.Info("turn timer expired, forcing draw", "player", cur.Nickname)
	if err := sess.DrawCard(cur.ID); err != nil {
		r.logger.Warn("forced draw failed", "player", cur.Nickname, "error", err)
		return
	}
	if sess.Phase() == game.PhasePlaying && sess.TurnSeq() == seq {
		// The drawn card was playable; the timeout declines it.
		if err := sess.DrawCard(cur.ID); err != nil {
			r.logger.Warn("forced pass failed", "player", cur.Nickname, "error", err)
		}
	}
}

func (r *Room) armBotTimer(seq int) {
	if r.botTimer != nil {
		r.botTimer.Stop()
		r.botTimer = nil
	}
	cur := r.session.CurrentPlayer()
	if cur == nil || !cur.IsBot() {
		return
	}
	d := r.timing.BotDelayMin
	if span := r.timing.BotDelayMax - r.timing.BotDelayMin; span > 0 {
		d += time.Duration(r.rng.Int64N(int64(span)))
	}
	r.botTimer = r.clock.AfterFunc(d, func() {
		r.enqueue(func() { r.onBotTurn(seq) })
	}, "botTimer")
}

// onBotTurn plays the bot's move through the same session commands a human
// would issue.
func (r *Room) onBotTurn(seq int) {
	sess := r.session
	if sess == nil || sess.Phase() != game.PhasePlaying || sess.TurnSeq() != seq {
		return
	}
	cur := sess.CurrentPlayer()
	if cur == nil || !cur.IsBot() {
		return
	}

	top, _ := sess.TopCard()
	d := game.ChooseMove(r.rng, cur.Hand.Cards(), top, sess.DeclaredColor(), sess.PendingDraw(), r.rules.AllowStacking)
	if d.Play {
		if err := sess.PlayCard(cur.ID, d.Card.ID, d.Declared, d.CallOne); err != nil {
			r.logger.Warn("bot play rejected, drawing instead", "bot", cur.Nickname, "error", err)
			if err := sess.DrawCard(cur.ID); err != nil {
				r.logger.Error("bot draw failed", "bot", cur.Nickname, "error", err)
			}
		}
		r.finishBotOpenTurn(seq, cur)
		return
	}

	if err := sess.DrawCard(cur.ID); err != nil {
		r.logger.Error("bot draw failed", "bot", cur.Nickname, "error", err)
		return
	}
	r.finishBotOpenTurn(seq, cur)
}

// finishBotOpenTurn settles the optional play of a card the bot just drew;
// the turn would otherwise stay open until the timer fired.
func (r *Room) finishBotOpenTurn(seq int, bot *game.Player) {
	sess := r.session
	if sess.Phase() != game.PhasePlaying || sess.TurnSeq() != seq {
		return
	}
	drawn, ok := sess.DrawnPending()
	if !ok {
		return
	}
	declared := card.ColorNone
	if drawn.IsWild() {
		declared = game.FavoriteColor(bot.Hand.Cards())
	}
	callOne := bot.Hand.Size() == 2 && r.rng.Float64() < game.BotCallOneProbability
	if err := sess.PlayCard(bot.ID, drawn.ID, declared, callOne); err != nil {
		// Pass instead.
		if err := sess.DrawCard(bot.ID); err != nil {
			r.logger.Error("bot pass failed", "bot", bot.Nickname, "error", err)
		}
	}
}

// HandleDisconnect is called by the transport when a member's connection
// drops. In the lobby it is a plain leave; mid-round it pauses the game
// and starts the reconnection grace timer.
func (r *Room) HandleDisconnect(playerID string) {
	_ = r.do(func() error {
		p, ok := r.find(playerID)
		if !ok || p.IsBot() {
			return nil
		}
		if r.status != Playing || r.session == nil || r.session.Phase() == game.PhaseGameOver {
			return r.leave(playerID)
		}
		if r.rules.Tournament {
			// Tournament mode has no reconnection grace: the seat is
			// removed and the round may end by forfeit.
			return r.leave(playerID)
		}

		p.Status = game.Disconnected
		r.bus.Publish(&game.PlayerDisconnectedEvent{
			PlayerID:     playerID,
			GraceSeconds: int(r.timing.Grace / time.Second),
		})
		if r.session.Phase() == game.PhasePlaying {
			if err := r.session.Pause("player disconnected"); err != nil {
				r.logger.Warn("pause failed", "error", err)
			}
		}
		r.cancelGrace(playerID)
		r.grace[playerID] = r.clock.AfterFunc(r.timing.Grace, func() {
			r.enqueue(func() { r.onGraceExpired(playerID) })
		}, "grace")
		r.logger.Info("player disconnected, grace timer started", "player", p.Nickname, "grace", r.timing.Grace)
		return nil
	})
}

// onGraceExpired hands the seat to a temporary bot and resumes play.
func (r *Room) onGraceExpired(playerID string) {
	delete(r.grace, playerID)
	p, ok := r.find(playerID)
	if !ok || p.Status != game.Disconnected {
		return
	}
	r.logger.Info("grace expired, replacing with bot", "player", p.Nickname)
	r.replaceWithTempBot(p)
	r.afterRosterShrink(p)
	r.maybeResume()
}

// HandleReconnect restores a seat within the grace window. The transport
// re-subscribes to the bus before calling this, so the published hand
// snapshot reaches the fresh connection.
func (r *Room) HandleReconnect(playerID string) error {
	return r.do(func() error {
		p, ok := r.find(playerID)
		if !ok {
			return game.NewError(game.CodeInvalidState, "seat no longer exists")
		}
		if p.Status != game.Disconnected {
			return game.NewError(game.CodeInvalidState, "player is not disconnected")
		}
		r.cancelGrace(playerID)
		p.Status = game.Connected
		r.bus.Publish(&game.PlayerReconnectedEvent{PlayerID: playerID})
		if r.session != nil {
			r.bus.Publish(game.NewHandSnapshot(p))
		}
		r.maybeResume()
		return nil
	})
}

// maybeResume continues play once every human seat is connected again.
func (r *Room) maybeResume() {
	if r.session == nil || r.session.Phase() != game.PhasePaused {
		return
	}
	for _, p := range r.players {
		if !p.IsBot() && p.Status == game.Disconnected {
			return
		}
	}
	if err := r.session.Resume(); err != nil {
		r.logger.Warn("resume failed", "error", err)
	}
}

func (r *Room) cancelGrace(playerID string) {
	if t, ok := r.grace[playerID]; ok {
		t.Stop()
		delete(r.grace, playerID)
	}
}

// FindByUser returns the seat bound to the given identity user id.
func (r *Room) FindByUser(userID string) (*game.Player, bool) {
	var p *game.Player
	_ = r.do(func() error {
		for _, seat := range r.players {
			if !seat.IsBot() && seat.UserID == userID {
				p = seat
				break
			}
		}
		return nil
	})
	return p, p != nil
}
