package room

import (
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/onecard/onecard/internal/game"
	"github.com/onecard/onecard/internal/roomcode"
	"github.com/onecard/onecard/internal/stats"
)

// DefaultMaxRooms bounds how many rooms a single process will host.
const DefaultMaxRooms = 512

// codeAttempts bounds collision retries during code allocation. With a
// 36^6 code space this never triggers in practice.
const codeAttempts = 16

// RegistryOptions configures the process-wide room registry.
type RegistryOptions struct {
	Logger   *log.Logger
	Clock    quartz.Clock
	Timing   Timing
	Stats    stats.Sink
	MaxRooms int
}

// Registry is the process-wide index of rooms, by code and by member.
type Registry struct {
	logger *log.Logger
	clock  quartz.Clock
	timing Timing
	sink   stats.Sink
	codes  *roomcode.Generator
	max    int

	mu     sync.RWMutex
	rooms  map[string]*Room
	byUser map[string]string // userID -> room code
	closed bool
}

// NewRegistry creates an empty registry.
func NewRegistry(opts RegistryOptions) *Registry {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.Timing == (Timing{}) {
		opts.Timing = DefaultTiming()
	}
	if opts.Stats == nil {
		opts.Stats = stats.Noop{}
	}
	if opts.MaxRooms <= 0 {
		opts.MaxRooms = DefaultMaxRooms
	}
	return &Registry{
		logger: opts.Logger.WithPrefix("registry"),
		clock:  opts.Clock,
		timing: opts.Timing,
		sink:   opts.Stats,
		codes:  roomcode.NewGenerator(nil),
		max:    opts.MaxRooms,
		rooms:  make(map[string]*Room),
		byUser: make(map[string]string),
	}
}

// Create allocates a fresh code and inserts a new room. Collisions retry
// with a new code. Private rooms are reachable by code but never listed.
func (g *Registry) Create(name string, private bool, rules game.Rules) (*Room, error) {
	for i := 0; i < codeAttempts; i++ {
		code := g.codes.Generate()

		g.mu.Lock()
		if g.closed {
			g.mu.Unlock()
			return nil, game.NewError(game.CodeInvalidState, "server is shutting down")
		}
		if len(g.rooms) >= g.max {
			g.mu.Unlock()
			return nil, game.NewErrorf(game.CodeInvalidState, "room limit of %d reached", g.max)
		}
		if _, taken := g.rooms[code]; taken {
			g.mu.Unlock()
			continue
		}

		r, err := New(code, rules, Options{
			Clock:   g.clock,
			Logger:  g.logger.With(),
			Timing:  g.timing,
			Stats:   g.sink,
			OnEmpty: g.removeEmpty,
			Name:    name,
			Private: private,
		})
		if err != nil {
			g.mu.Unlock()
			return nil, err
		}
		g.rooms[code] = r
		g.mu.Unlock()

		g.logger.Info("room created", "room", code, "rooms", g.Len())
		return r, nil
	}
	return nil, game.NewError(game.CodeInternalError, "could not allocate a unique room code")
}

// Get returns the room with the given code. The code is normalized, so
// lowercase input from clients works.
func (g *Registry) Get(code string) (*Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	r, ok := g.rooms[roomcode.Normalize(code)]
	return r, ok
}

// Len returns the number of live rooms.
func (g *Registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}

// List returns summaries of every live public room; private rooms are
// omitted.
func (g *Registry) List() []Info {
	g.mu.RLock()
	rooms := make([]*Room, 0, len(g.rooms))
	for _, r := range g.rooms {
		if r.Private {
			continue
		}
		rooms = append(rooms, r)
	}
	g.mu.RUnlock()

	infos := make([]Info, 0, len(rooms))
	for _, r := range rooms {
		infos = append(infos, r.Snapshot())
	}
	return infos
}

// Bind indexes a user as a member of a room, replacing any previous
// binding. Lookup serves reconnection routing.
func (g *Registry) Bind(userID, code string) {
	if userID == "" {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.byUser[userID] = roomcode.Normalize(code)
}

// Unbind drops a user's room binding.
func (g *Registry) Unbind(userID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.byUser, userID)
}

// Lookup returns the room a user is bound to.
func (g *Registry) Lookup(userID string) (*Room, bool) {
	g.mu.RLock()
	code, ok := g.byUser[userID]
	var r *Room
	if ok {
		r, ok = g.rooms[code]
	}
	g.mu.RUnlock()
	return r, ok
}

// Remove deletes a room and shuts it down. The code becomes available for
// reuse once removed.
func (g *Registry) Remove(code string) {
	code = roomcode.Normalize(code)
	g.mu.Lock()
	r, ok := g.rooms[code]
	if ok {
		delete(g.rooms, code)
		for user, c := range g.byUser {
			if c == code {
				delete(g.byUser, user)
			}
		}
	}
	g.mu.Unlock()
	if ok {
		r.Close(game.EndReasonShutdown)
		g.logger.Info("room removed", "room", code)
	}
}

// removeEmpty is the rooms' OnEmpty callback.
func (g *Registry) removeEmpty(code string) {
	g.logger.Info("removing empty room", "room", code)
	g.Remove(code)
}

// Shutdown closes every room, publishing GameEnded{reason:"shutdown"} to
// any round still in progress. Further Creates fail.
func (g *Registry) Shutdown() {
	g.mu.Lock()
	g.closed = true
	rooms := make([]*Room, 0, len(g.rooms))
	for code, r := range g.rooms {
		rooms = append(rooms, r)
		delete(g.rooms, code)
	}
	g.byUser = make(map[string]string)
	g.mu.Unlock()

	for _, r := range rooms {
		r.Close(game.EndReasonShutdown)
	}
	g.logger.Info("registry shut down", "rooms", len(rooms))
}
