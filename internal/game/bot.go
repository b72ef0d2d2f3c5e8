package game

import (
	rand "math/rand/v2"

	"github.com/onecard/onecard/internal/card"
)

// Probability that a bot remembers to call ONE when its play would leave a
// single card.
const BotCallOneProbability = 0.9

// BotDecision is the bot driver's chosen move.
type BotDecision struct {
	Play     bool // false means draw
	Card     card.Card
	Declared card.Color
	CallOne  bool
}

// ChooseMove picks a move for the given hand against the current top card
// and declared color. The function is pure and deterministic for a given
// rng state, which keeps bot behavior reproducible under a seed.
//
// Priority: strict-legal WildDrawFour, color-matched DrawTwo, color-matched
// Skip/Reverse (Skip first), plain Wild, color matches by descending point
// value, then any other legal card at random.
func ChooseMove(rng *rand.Rand, hand []card.Card, top card.Card, declared card.Color, pendingDraw int, stacking bool) BotDecision {
	effective := declared
	if effective == card.ColorNone {
		effective = top.EffectiveColor()
	}

	// A pending draw narrows the choice to stacking a draw card or
	// drawing the accumulated cards.
	if pendingDraw > 0 {
		if !stacking {
			return BotDecision{}
		}
		for _, c := range hand {
			if c.Variant == card.WildDrawFour {
				return withCallOne(rng, hand, BotDecision{Play: true, Card: c, Declared: FavoriteColor(hand)})
			}
		}
		for _, c := range hand {
			if c.Variant == card.DrawTwo {
				return withCallOne(rng, hand, BotDecision{Play: true, Card: c})
			}
		}
		return BotDecision{}
	}

	legal := make([]card.Card, 0, len(hand))
	for _, c := range hand {
		if card.CanPlayOn(c, top, declared) {
			legal = append(legal, c)
		}
	}
	if len(legal) == 0 {
		return BotDecision{}
	}

	// 1. WildDrawFour under the strict no-matching-color rule.
	for _, c := range legal {
		if c.Variant == card.WildDrawFour && card.StrictWildFourLegal(hand, effective) {
			return withCallOne(rng, hand, BotDecision{Play: true, Card: c, Declared: FavoriteColor(hand)})
		}
	}

	// 2. DrawTwo matching the effective color.
	for _, c := range legal {
		if c.Variant == card.DrawTwo && c.Color == effective {
			return withCallOne(rng, hand, BotDecision{Play: true, Card: c})
		}
	}

	// 3. Skip, then Reverse, matching the effective color.
	for _, variant := range []card.Variant{card.Skip, card.Reverse} {
		for _, c := range legal {
			if c.Variant == variant && c.Color == effective {
				return withCallOne(rng, hand, BotDecision{Play: true, Card: c})
			}
		}
	}

	// 4. Plain Wild.
	for _, c := range legal {
		if c.Variant == card.WildCard {
			return withCallOne(rng, hand, BotDecision{Play: true, Card: c, Declared: FavoriteColor(hand)})
		}
	}

	// 5. Color matches, heaviest first to shed points.
	var best *card.Card
	for i := range legal {
		c := legal[i]
		if c.Color != effective {
			continue
		}
		if best == nil || c.Points() > best.Points() {
			best = &legal[i]
		}
	}
	if best != nil {
		return withCallOne(rng, hand, BotDecision{Play: true, Card: *best})
	}

	// 6. Anything else legal, uniformly at random.
	pick := legal[rng.IntN(len(legal))]
	decision := BotDecision{Play: true, Card: pick}
	if pick.IsWild() {
		decision.Declared = FavoriteColor(hand)
	}
	return withCallOne(rng, hand, decision)
}

// FavoriteColor returns the most frequent non-wild color in the hand, with
// ties broken in fixed order red < yellow < green < blue. Hands with no
// colored cards default to red.
func FavoriteColor(hand []card.Card) card.Color {
	counts := make(map[card.Color]int, 4)
	for _, c := range hand {
		if c.Color.IsDeclarable() {
			counts[c.Color]++
		}
	}
	best := card.Red
	bestCount := -1
	for _, color := range card.Colors {
		if counts[color] > bestCount {
			best = color
			bestCount = counts[color]
		}
	}
	return best
}

func withCallOne(rng *rand.Rand, hand []card.Card, d BotDecision) BotDecision {
	if d.Play && len(hand) == 2 {
		d.CallOne = rng.Float64() < BotCallOneProbability
	}
	return d
}
