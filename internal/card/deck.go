package card

import rand "math/rand/v2"

// StandardDeckSize is the number of cards in a fresh deck.
const StandardDeckSize = 108

// Deck represents a mutable stack of cards. The top of the deck is the end
// of the slice.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// NewDeck creates an empty deck drawing randomness from rng.
func NewDeck(rng *rand.Rand) *Deck {
	return &Deck{cards: make([]Card, 0, StandardDeckSize), rng: rng}
}

// NewStandardDeck creates a shuffled 108-card deck: per color one 0, two
// each of 1-9, two Skip, two Reverse, two DrawTwo, plus four Wild and four
// WildDrawFour.
func NewStandardDeck(rng *rand.Rand) *Deck {
	d := NewDeck(rng)

	for _, color := range Colors {
		d.cards = append(d.cards, NewNumber(color, 0))
		for value := 1; value <= 9; value++ {
			d.cards = append(d.cards, NewNumber(color, value), NewNumber(color, value))
		}
		for _, variant := range []Variant{Skip, Reverse, DrawTwo} {
			d.cards = append(d.cards, NewAction(color, variant), NewAction(color, variant))
		}
	}
	for i := 0; i < 4; i++ {
		d.cards = append(d.cards, NewWild(WildCard), NewWild(WildDrawFour))
	}

	d.Shuffle()
	return d
}

// Shuffle randomizes the order of the remaining cards.
func (d *Deck) Shuffle() {
	d.rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Draw removes and returns the top card.
func (d *Deck) Draw() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	c := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return c, true
}

// DrawN draws up to n cards.
func (d *Deck) DrawN(n int) []Card {
	cards := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		c, ok := d.Draw()
		if !ok {
			break
		}
		cards = append(cards, c)
	}
	return cards
}

// Push returns a card to the top of the deck.
func (d *Deck) Push(c Card) {
	d.cards = append(d.cards, c)
}

// Refill pushes the given cards into the deck, clears any declared colors
// left on wilds and shuffles. Used when the draw pile runs out: the caller
// keeps the discard top aside and hands over the remainder.
func (d *Deck) Refill(cards []Card) {
	for _, c := range cards {
		c.ClearDeclared()
		d.cards = append(d.cards, c)
	}
	d.Shuffle()
}

// Remaining returns the number of cards left.
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// IsEmpty reports whether the deck has no cards left.
func (d *Deck) IsEmpty() bool {
	return len(d.cards) == 0
}
