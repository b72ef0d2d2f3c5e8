// Package room ties a lobby roster, a game session and a single-writer
// scheduler together under a six-character room code. All room state is
// owned by one worker goroutine per room; public methods enqueue work on
// that worker and wait for the result.
package room

import (
	"fmt"
	rand "math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/onecard/onecard/internal/card"
	"github.com/onecard/onecard/internal/game"
	"github.com/onecard/onecard/internal/randutil"
	"github.com/onecard/onecard/internal/stats"
)

// Status is the room lifecycle state.
type Status int

const (
	Waiting Status = iota
	Playing
	Finished
)

// String returns the string representation of a room status
func (s Status) String() string {
	switch s {
	case Playing:
		return "playing"
	case Finished:
		return "finished"
	default:
		return "waiting"
	}
}

// Timing groups the scheduler's timer configuration.
type Timing struct {
	// Grace is how long a disconnected human may reconnect before a
	// temporary bot takes the seat.
	Grace time.Duration

	// BotDelayMin/Max bound the artificial pause before a bot moves,
	// keeping a human-perceptible pace.
	BotDelayMin time.Duration
	BotDelayMax time.Duration
}

// DefaultTiming returns the production timer configuration.
func DefaultTiming() Timing {
	return Timing{
		Grace:       30 * time.Second,
		BotDelayMin: 800 * time.Millisecond,
		BotDelayMax: 1500 * time.Millisecond,
	}
}

// Options configures a room.
type Options struct {
	Clock  quartz.Clock
	RNG    *rand.Rand
	Logger *log.Logger
	Timing Timing

	// Name optionally labels the room in listings.
	Name string

	// Private keeps the room out of listings; joining requires the code.
	Private bool

	// OnEmpty is called (off the worker) when the last human leaves and
	// the room should be removed from the registry.
	OnEmpty func(code string)

	// Stats receives end-of-round records. Optional.
	Stats stats.Sink
}

// Room is one game room: roster, kicked set, leader, and the active
// session. Fields below the worker marker are only touched on the worker
// goroutine.
type Room struct {
	Code    string
	Name    string
	Private bool

	rules  game.Rules
	clock  quartz.Clock
	rng    *rand.Rand
	logger *log.Logger
	timing Timing
	bus    *game.Bus
	onEmpty func(code string)
	sink    stats.Sink

	tasks     chan func()
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	// worker-owned state
	status    Status
	players   []*game.Player // join order
	kicked    map[string]struct{}
	session   *game.Session
	createdAt time.Time

	lastTurnSeq int
	turnTimer   *quartz.Timer
	botTimer    *quartz.Timer
	grace       map[string]*quartz.Timer // playerID -> grace timer
}

// maxRoomName caps user-supplied room names in listings.
const maxRoomName = 32

func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if len(name) > maxRoomName {
		name = name[:maxRoomName]
	}
	return name
}

// New creates a room and starts its worker.
func New(code string, rules game.Rules, opts Options) (*Room, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.RNG == nil {
		opts.RNG = randutil.NewFromTime()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Timing == (Timing{}) {
		opts.Timing = DefaultTiming()
	}
	if opts.Stats == nil {
		opts.Stats = stats.Noop{}
	}

	logger := opts.Logger.WithPrefix("room").With("room", code)
	r := &Room{
		Code:      code,
		Name:      sanitizeName(opts.Name),
		Private:   opts.Private,
		rules:     rules,
		clock:     opts.Clock,
		rng:       opts.RNG,
		logger:    logger,
		timing:    opts.Timing,
		bus:       game.NewBus(code, opts.Logger),
		onEmpty:   opts.OnEmpty,
		sink:      opts.Stats,
		tasks:     make(chan func(), 64),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
		kicked:    make(map[string]struct{}),
		grace:     make(map[string]*quartz.Timer),
		createdAt: time.Now(),
	}
	go r.run()
	return r, nil
}

// Bus returns the room's event topic for transports to subscribe to.
func (r *Room) Bus() *game.Bus {
	return r.bus
}

// Rules returns the room's configuration.
func (r *Room) Rules() game.Rules {
	return r.rules
}

// Info is a lightweight room summary for listings.
type Info struct {
	Code       string `json:"code"`
	Name       string `json:"name,omitempty"`
	Private    bool   `json:"private,omitempty"`
	Status     string `json:"status"`
	Players    int    `json:"players"`
	Humans     int    `json:"humans"`
	Bots       int    `json:"bots"`
	MaxPlayers int    `json:"maxPlayers"`
	AllowBots  bool   `json:"allowBots"`
	Tournament bool   `json:"tournament,omitempty"`
}

// Snapshot returns the room summary.
func (r *Room) Snapshot() Info {
	var info Info
	_ = r.do(func() error {
		info = Info{
			Code:       r.Code,
			Name:       r.Name,
			Private:    r.Private,
			Status:     r.status.String(),
			Players:    len(r.players),
			Humans:     r.humanCount(),
			Bots:       len(r.players) - r.humanCount(),
			MaxPlayers: r.rules.MaxPlayers,
			AllowBots:  r.rules.AllowBots,
			Tournament: r.rules.Tournament,
		}
		return nil
	})
	return info
}

// State returns the public session state, or a zero value while no session
// is active.
func (r *Room) State() game.PublicState {
	var st game.PublicState
	_ = r.do(func() error {
		if r.session != nil {
			st = r.session.PublicState()
		}
		return nil
	})
	return st
}

// Join seats a human in the room.
func (r *Room) Join(nickname, userID, email string) (*game.Player, error) {
	var p *game.Player
	err := r.do(func() error {
		var err error
		p, err = r.join(nickname, userID, email)
		return err
	})
	return p, err
}

func (r *Room) join(nickname, userID, email string) (*game.Player, error) {
	if r.status != Waiting {
		return nil, game.NewError(game.CodeInvalidState, "the game has already started")
	}
	if len(r.players) >= r.rules.MaxPlayers {
		return nil, game.NewError(game.CodeRoomFull, "the room is full")
	}
	if _, banned := r.kicked[email]; banned && email != "" {
		return nil, game.NewError(game.CodeKicked, "you were removed from this room")
	}
	for _, existing := range r.players {
		if userID != "" && existing.UserID == userID {
			return nil, game.NewError(game.CodeAlreadyJoined, "you are already in this room")
		}
	}

	p := game.NewHuman(nickname, userID, email)
	if r.humanCount() == 0 {
		p.IsLeader = true
	}
	r.players = append(r.players, p)

	r.bus.Publish(&game.PlayerJoinedEvent{PlayerID: p.ID, Nickname: p.Nickname})
	if p.IsLeader {
		r.bus.Publish(&game.LeadershipTransferredEvent{PlayerID: p.ID})
	}
	r.logger.Info("player joined", "player", p.Nickname, "seats", len(r.players))
	return p, nil
}

// AddBot seats a bot. Leader only, while Waiting.
func (r *Room) AddBot(actorID string) (*game.Player, error) {
	var p *game.Player
	err := r.do(func() error {
		if err := r.requireLeader(actorID); err != nil {
			return err
		}
		if r.status != Waiting {
			return game.NewError(game.CodeInvalidState, "bots can only be added before the game starts")
		}
		if !r.rules.AllowBots {
			return game.NewError(game.CodeInvalidState, "bots are disabled in this room")
		}
		if r.botCount() >= r.rules.MaxBots {
			return game.NewErrorf(game.CodeInvalidState, "bot limit of %d reached", r.rules.MaxBots)
		}
		if len(r.players) >= r.rules.MaxPlayers {
			return game.NewError(game.CodeRoomFull, "the room is full")
		}

		p = game.NewBot(fmt.Sprintf("Bot %d", r.botCount()+1))
		r.players = append(r.players, p)
		r.bus.Publish(&game.PlayerJoinedEvent{PlayerID: p.ID, Nickname: p.Nickname, IsBot: true})
		return nil
	})
	return p, err
}

// RemoveBot removes a bot seat. Leader only, while Waiting.
func (r *Room) RemoveBot(actorID, botID string) error {
	return r.do(func() error {
		if err := r.requireLeader(actorID); err != nil {
			return err
		}
		if r.status != Waiting {
			return game.NewError(game.CodeInvalidState, "bots can only be removed before the game starts")
		}
		for i, p := range r.players {
			if p.ID == botID && p.IsBot() {
				r.players = append(r.players[:i], r.players[i+1:]...)
				r.bus.Publish(&game.PlayerLeftEvent{PlayerID: botID})
				return nil
			}
		}
		return game.NewError(game.CodeInvalidState, "no such bot")
	})
}

// Kick removes a member and bans their email for the lifetime of the room.
// Leader only, while Waiting; the leader cannot kick themselves.
func (r *Room) Kick(actorID, targetID string) error {
	return r.do(func() error {
		if err := r.requireLeader(actorID); err != nil {
			return err
		}
		if r.status != Waiting {
			return game.NewError(game.CodeInvalidState, "kicking is only possible before the game starts")
		}
		if actorID == targetID {
			return game.NewError(game.CodeInvalidState, "the leader cannot kick themselves")
		}
		target, ok := r.find(targetID)
		if !ok {
			return game.NewError(game.CodeInvalidState, "no such player")
		}

		if target.Email != "" {
			r.kicked[target.Email] = struct{}{}
		}
		r.removeFromRoster(targetID)
		r.bus.Publish(&game.PlayerKickedEvent{PlayerID: targetID})
		r.logger.Info("player kicked", "player", target.Nickname)
		return nil
	})
}

// Leave removes a member. During a non-tournament round the seat is handed
// to a temporary bot; in tournament mode the seat is removed and the round
// may end by forfeit.
func (r *Room) Leave(playerID string) error {
	return r.do(func() error {
		return r.leave(playerID)
	})
}

func (r *Room) leave(playerID string) error {
	p, ok := r.find(playerID)
	if !ok {
		return game.NewError(game.CodeInvalidState, "you are not in this room")
	}
	r.cancelGrace(playerID)

	if r.status == Playing && r.session != nil && r.session.Phase() != game.PhaseGameOver {
		if r.rules.Tournament {
			r.removeFromRoster(playerID)
			r.bus.Publish(&game.PlayerLeftEvent{PlayerID: playerID})
			if err := r.session.Leave(playerID); err != nil {
				return err
			}
		} else {
			r.replaceWithTempBot(p)
		}
	} else {
		r.removeFromRoster(playerID)
		r.bus.Publish(&game.PlayerLeftEvent{PlayerID: playerID})
	}

	r.afterRosterShrink(p)
	return nil
}

// StartGame begins a round. Leader only, from Waiting, with at least two
// seats.
func (r *Room) StartGame(actorID string) error {
	return r.do(func() error {
		if err := r.requireLeader(actorID); err != nil {
			return err
		}
		if r.status != Waiting {
			return game.NewError(game.CodeInvalidState, "the game has already started")
		}
		if len(r.players) < game.MinPlayers {
			return game.NewErrorf(game.CodeInvalidState, "need at least %d players", game.MinPlayers)
		}

		sess := game.NewSession(r.rules, r.players, r.rng, r.bus, r.logger)
		if err := sess.Start(); err != nil {
			return err
		}
		r.session = sess
		r.status = Playing
		r.bus.Publish(&game.RoomStateChangedEvent{Status: r.status.String()})
		return nil
	})
}

// PlayCard forwards the play to the active session.
func (r *Room) PlayCard(playerID, cardID string, declared string, callOne bool) error {
	return r.do(func() error {
		sess, err := r.activeSession()
		if err != nil {
			return err
		}
		color, err := parseDeclared(declared)
		if err != nil {
			return err
		}
		return sess.PlayCard(playerID, cardID, color, callOne)
	})
}

// DrawCard forwards the draw to the active session.
func (r *Room) DrawCard(playerID string) error {
	return r.do(func() error {
		sess, err := r.activeSession()
		if err != nil {
			return err
		}
		return sess.DrawCard(playerID)
	})
}

// CallOne forwards the ONE call to the active session.
func (r *Room) CallOne(playerID string) error {
	return r.do(func() error {
		sess, err := r.activeSession()
		if err != nil {
			return err
		}
		return sess.CallOne(playerID)
	})
}

// CatchOne forwards the catch to the active session.
func (r *Room) CatchOne(callerID, targetID string) error {
	return r.do(func() error {
		sess, err := r.activeSession()
		if err != nil {
			return err
		}
		return sess.CatchOne(callerID, targetID)
	})
}

// Undo forwards the undo to the active session.
func (r *Room) Undo(playerID string) error {
	return r.do(func() error {
		sess, err := r.activeSession()
		if err != nil {
			return err
		}
		return sess.Undo(playerID)
	})
}

func (r *Room) activeSession() (*game.Session, error) {
	if r.session == nil || r.status != Playing {
		return nil, game.NewError(game.CodeInvalidState, "no game in progress")
	}
	return r.session, nil
}

func (r *Room) requireLeader(actorID string) error {
	p, ok := r.find(actorID)
	if !ok {
		return game.NewError(game.CodeInvalidState, "you are not in this room")
	}
	if !p.IsLeader {
		return game.NewError(game.CodeNotLeader, "only the room leader may do that")
	}
	return nil
}

func (r *Room) find(playerID string) (*game.Player, bool) {
	for _, p := range r.players {
		if p.ID == playerID {
			return p, true
		}
	}
	return nil, false
}

func (r *Room) humanCount() int {
	n := 0
	for _, p := range r.players {
		if !p.IsBot() {
			n++
		}
	}
	return n
}

func (r *Room) botCount() int {
	return len(r.players) - r.humanCount()
}

func (r *Room) removeFromRoster(playerID string) {
	for i, p := range r.players {
		if p.ID == playerID {
			r.players = append(r.players[:i], r.players[i+1:]...)
			return
		}
	}
}

// afterRosterShrink handles leadership transfer and empty-room teardown
// after a human left the roster (or was replaced by a bot).
func (r *Room) afterRosterShrink(left *game.Player) {
	if left.IsLeader {
		left.IsLeader = false
		for _, p := range r.players {
			if !p.IsBot() {
				p.IsLeader = true
				r.bus.Publish(&game.LeadershipTransferredEvent{PlayerID: p.ID})
				break
			}
		}
	}
	if r.humanCount() == 0 && r.onEmpty != nil {
		r.logger.Info("no humans left, scheduling removal")
		go r.onEmpty(r.Code)
	}
}

// replaceWithTempBot hands a mid-round seat to a temporary bot that
// inherits the hand.
func (r *Room) replaceWithTempBot(p *game.Player) {
	bot := game.NewTempBot(p)
	p.Status = game.ReplacedByBot
	if r.session != nil {
		r.session.ReplaceSeat(p.ID, bot)
	}
	for i, seat := range r.players {
		if seat.ID == p.ID {
			r.players[i] = bot
			break
		}
	}
	r.bus.Publish(&game.PlayerLeftEvent{PlayerID: p.ID, WasReplaced: true})
	r.bus.Publish(&game.PlayerJoinedEvent{PlayerID: bot.ID, Nickname: bot.Nickname, IsBot: true, Temporary: true})
	r.logger.Info("seat handed to temporary bot", "player", p.Nickname, "bot", bot.ID)

	// If the bot inherited an open turn while play continues, the turn
	// sequence has not moved and reconcile will not re-arm the bot
	// trigger; arm it here so the seat does not idle until the turn timer.
	if r.session != nil && r.session.Phase() == game.PhasePlaying {
		if cur := r.session.CurrentPlayer(); cur != nil && cur.ID == bot.ID {
			r.armBotTimer(r.session.TurnSeq())
		}
	}
}

// finishRound applies the room's match policy after a session reaches
// GameOver: record stats, then either finish the match or reset to Waiting
// for another round.
func (r *Room) finishRound() {
	sess := r.session
	winner := sess.Winner()

	rec := stats.GameRecord{
		RoomCode:  r.Code,
		SessionID: sess.ID,
		StartedAt: sess.StartedAt(),
		EndedAt:   time.Now(),
	}
	seats := make(map[string]*game.Player, len(sess.Players()))
	for _, p := range sess.Players() {
		seats[p.ID] = p
	}
	if standings := sess.Standings(); standings != nil {
		for _, st := range standings {
			seat := seats[st.PlayerID]
			rec.Standings = append(rec.Standings, stats.PlayerResult{
				PlayerID:       st.PlayerID,
				Nickname:       seat.Nickname,
				IsBot:          seat.IsBot(),
				Placement:      st.Placement,
				RemainingCards: st.RemainingCards,
				HandPoints:     st.HandPoints,
				Score:          st.Score,
				Winner:         st.Placement == 1,
			})
		}
	} else {
		// Aborted round: no placements, just the seats as they stood.
		for _, p := range sess.Players() {
			rec.Standings = append(rec.Standings, stats.PlayerResult{
				PlayerID: p.ID,
				Nickname: p.Nickname,
				IsBot:    p.IsBot(),
				Score:    p.Score,
			})
		}
	}
	if winner != nil {
		rec.WinnerID = winner.ID
	}
	// Fire-and-forget: the worker never blocks on sink I/O.
	go func(sink stats.Sink, rec stats.GameRecord, logger *log.Logger) {
		if err := sink.Record(rec); err != nil {
			logger.Warn("failed to record game stats", "error", err)
		}
	}(r.sink, rec, r.logger)

	matchOver := winner != nil && winner.Score >= r.rules.PointsToWin
	if matchOver {
		r.status = Finished
		r.bus.Publish(&game.RoomStateChangedEvent{Status: r.status.String()})
		r.logger.Info("match over", "winner", winner.Nickname, "score", winner.Score)
		return
	}
	r.resetForNextRound()
}

// resetForNextRound returns the room to Waiting: hands cleared, flags
// reset, temporary bots removed. Scores and configuration persist.
func (r *Room) resetForNextRound() {
	kept := r.players[:0]
	for _, p := range r.players {
		if p.Temporary {
			r.bus.Publish(&game.PlayerLeftEvent{PlayerID: p.ID})
			continue
		}
		p.ResetRound()
		kept = append(kept, p)
	}
	r.players = kept
	r.session = nil
	r.status = Waiting
	r.bus.Publish(&game.RoomStateChangedEvent{Status: r.status.String()})
	r.logger.Info("room reset for next round", "seats", len(r.players))
}

func parseDeclared(s string) (card.Color, error) {
	color, err := card.ParseColor(s)
	if err != nil || color == card.Wild {
		return card.ColorNone, game.NewErrorf(game.CodeIllegalDeclaredColor, "invalid declared color %q", s)
	}
	return color, nil
}
