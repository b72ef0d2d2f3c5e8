package game

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Subscription buffer size. A subscriber that falls this far behind is
// dropped rather than allowed to block the room worker.
const subscriptionBuffer = 256

// Subscription is one subscriber's FIFO event queue. The subscriber owns a
// goroutine that drains Events; the bus never blocks on it.
type Subscription struct {
	id       string
	playerID string
	ch       chan Event
	closed   bool
}

// Events returns the subscriber's ordered event stream. The channel is
// closed when the subscription is cancelled or the room shuts down.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// PlayerID returns the player this subscription delivers personal events
// for.
func (s *Subscription) PlayerID() string {
	return s.playerID
}

// Bus is a room's event topic. Publishers enqueue; each subscriber drains
// its own buffered channel, which preserves per-subscriber FIFO ordering
// without cross-subscriber locking. Personal events are delivered only to
// subscriptions registered for the target player.
type Bus struct {
	roomCode string
	logger   *log.Logger

	mu        sync.Mutex
	sessionID string
	subs      map[string]*Subscription
	closed    bool
}

// NewBus creates the event bus for a room.
func NewBus(roomCode string, logger *log.Logger) *Bus {
	return &Bus{
		roomCode: roomCode,
		logger:   logger.WithPrefix("bus").With("room", roomCode),
		subs:     make(map[string]*Subscription),
	}
}

// SetSession sets the session id stamped on subsequent events.
func (b *Bus) SetSession(sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessionID = sessionID
}

// Subscribe registers a subscriber. The id must be unique per subscriber
// (connection id); playerID routes personal events.
func (b *Bus) Subscribe(id, playerID string) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	if old, ok := b.subs[id]; ok {
		b.closeLocked(old)
	}

	sub := &Subscription{id: id, playerID: playerID, ch: make(chan Event, subscriptionBuffer)}
	if b.closed {
		sub.closed = true
		close(sub.ch)
		return sub
	}
	b.subs[id] = sub
	return sub
}

// Unsubscribe removes a subscriber and closes its stream.
func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if sub, ok := b.subs[id]; ok {
		delete(b.subs, id)
		b.closeLocked(sub)
	}
}

// Publish stamps the event and fans it out. Delivery is non-blocking: a
// subscriber whose buffer is full is dropped, mirroring how the transport
// treats unwritable connections.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}

	ev.EventMeta().stamp(b.roomCode, b.sessionID, time.Now().UnixMilli())
	target := ev.EventMeta().Target()

	for id, sub := range b.subs {
		if target != "" && sub.playerID != target {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			b.logger.Warn("subscriber buffer full, dropping subscriber", "subscriber", id)
			delete(b.subs, id)
			b.closeLocked(sub)
		}
	}
}

// Close closes every subscription. Further publishes are no-ops.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		delete(b.subs, id)
		b.closeLocked(sub)
	}
}

func (b *Bus) closeLocked(sub *Subscription) {
	if !sub.closed {
		sub.closed = true
		close(sub.ch)
	}
}
