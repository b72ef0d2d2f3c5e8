package game

import (
	"github.com/onecard/onecard/internal/card"
)

// Hand is a player's ordered card collection. Append is O(1); find and
// remove by card id are O(n), which is fine for hands of at most a few
// dozen cards.
type Hand struct {
	cards []card.Card
}

// NewHand creates an empty hand.
func NewHand() *Hand {
	return &Hand{cards: make([]card.Card, 0, 16)}
}

// Add appends a card to the hand.
func (h *Hand) Add(c card.Card) {
	h.cards = append(h.cards, c)
}

// AddAll appends multiple cards to the hand.
func (h *Hand) AddAll(cards []card.Card) {
	h.cards = append(h.cards, cards...)
}

// Get returns the card with the given id.
func (h *Hand) Get(id string) (card.Card, bool) {
	for _, c := range h.cards {
		if c.ID == id {
			return c, true
		}
	}
	return card.Card{}, false
}

// Contains reports whether the hand holds the card with the given id.
func (h *Hand) Contains(id string) bool {
	_, ok := h.Get(id)
	return ok
}

// Remove removes and returns the card with the given id.
func (h *Hand) Remove(id string) (card.Card, bool) {
	for i, c := range h.cards {
		if c.ID == id {
			h.cards = append(h.cards[:i], h.cards[i+1:]...)
			return c, true
		}
	}
	return card.Card{}, false
}

// Size returns the number of cards held.
func (h *Hand) Size() int {
	return len(h.cards)
}

// IsEmpty reports whether the hand holds no cards.
func (h *Hand) IsEmpty() bool {
	return len(h.cards) == 0
}

// Cards returns a copy of the hand's cards in order.
func (h *Hand) Cards() []card.Card {
	out := make([]card.Card, len(h.cards))
	copy(out, h.cards)
	return out
}

// Points sums the point values of the remaining cards, used for round
// scoring.
func (h *Hand) Points() int {
	total := 0
	for _, c := range h.cards {
		total += c.Points()
	}
	return total
}

// Playable returns the subset of cards legal against the given top card
// and declared color, for UI hints and bot choice.
func (h *Hand) Playable(top card.Card, declared card.Color) []card.Card {
	var out []card.Card
	for _, c := range h.cards {
		if card.CanPlayOn(c, top, declared) {
			out = append(out, c)
		}
	}
	return out
}

// Clear drops every card, used on round reset.
func (h *Hand) Clear() {
	h.cards = h.cards[:0]
}
