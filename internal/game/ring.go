package game

// Ring is the circular ordered collection of seats with a current cursor
// and a direction flag. Skip and Reverse cards map directly onto its
// primitives; there are no boundary checks to get wrong. It is rebuilt from
// the room roster at every session start and owned by the session.
type Ring struct {
	seats    []*Player
	cur      int
	reversed bool
}

// NewRing creates a ring over the given seats in join order. The first
// seat is current.
func NewRing(seats []*Player) *Ring {
	r := &Ring{seats: make([]*Player, len(seats))}
	copy(r.seats, seats)
	return r
}

// Len returns the number of seats.
func (r *Ring) Len() int {
	return len(r.seats)
}

// Current returns the current seat, or nil for an empty ring.
func (r *Ring) Current() *Player {
	if len(r.seats) == 0 {
		return nil
	}
	return r.seats[r.cur]
}

// Reversed reports whether the direction is counter-clockwise.
func (r *Ring) Reversed() bool {
	return r.reversed
}

func (r *Ring) nextIndex(from int) int {
	n := len(r.seats)
	if r.reversed {
		return (from - 1 + n) % n
	}
	return (from + 1) % n
}

// Advance moves the cursor one seat in the current direction and returns
// the new current seat.
func (r *Ring) Advance() *Player {
	if len(r.seats) == 0 {
		return nil
	}
	r.cur = r.nextIndex(r.cur)
	return r.seats[r.cur]
}

// PeekNext returns the seat that would become current on Advance, without
// moving the cursor.
func (r *Ring) PeekNext() *Player {
	if len(r.seats) == 0 {
		return nil
	}
	return r.seats[r.nextIndex(r.cur)]
}

// Reverse flips the direction. The cursor is unchanged.
func (r *Ring) Reverse() {
	r.reversed = !r.reversed
}

// Skip advances twice and returns the skipped seat.
func (r *Ring) Skip() *Player {
	if len(r.seats) == 0 {
		return nil
	}
	skipped := r.Advance()
	r.Advance()
	return skipped
}

// RemoveCurrent removes and returns the current seat. The cursor lands on
// the seat that was next in the current direction.
func (r *Ring) RemoveCurrent() *Player {
	if len(r.seats) == 0 {
		return nil
	}
	removed := r.seats[r.cur]
	r.seats = append(r.seats[:r.cur], r.seats[r.cur+1:]...)
	if len(r.seats) == 0 {
		r.cur = 0
		return removed
	}
	if r.reversed {
		r.cur = (r.cur - 1 + len(r.seats)) % len(r.seats)
	} else {
		r.cur = r.cur % len(r.seats)
	}
	return removed
}

// Remove removes the seat with the given player id. O(n).
func (r *Ring) Remove(playerID string) (*Player, bool) {
	for i, p := range r.seats {
		if p.ID != playerID {
			continue
		}
		if i == r.cur {
			return r.RemoveCurrent(), true
		}
		r.seats = append(r.seats[:i], r.seats[i+1:]...)
		if i < r.cur {
			r.cur--
		}
		return p, true
	}
	return nil, false
}

// Replace swaps the seat holding oldID for the replacement player, keeping
// cursor and direction intact. Used when a temporary bot inherits a
// disconnected human's seat.
func (r *Ring) Replace(oldID string, replacement *Player) bool {
	for i, p := range r.seats {
		if p.ID == oldID {
			r.seats[i] = replacement
			return true
		}
	}
	return false
}

// Find returns the seat with the given player id.
func (r *Ring) Find(playerID string) (*Player, bool) {
	for _, p := range r.seats {
		if p.ID == playerID {
			return p, true
		}
	}
	return nil, false
}

// Players returns the seats in ring order starting from the current seat,
// following the current direction.
func (r *Ring) Players() []*Player {
	out := make([]*Player, 0, len(r.seats))
	idx := r.cur
	for i := 0; i < len(r.seats); i++ {
		out = append(out, r.seats[idx])
		idx = r.nextIndex(idx)
	}
	return out
}

// Seats returns the seats in join order.
func (r *Ring) Seats() []*Player {
	out := make([]*Player, len(r.seats))
	copy(out, r.seats)
	return out
}
