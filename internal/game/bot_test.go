package game

import (
	"testing"

	"github.com/onecard/onecard/internal/card"
	"github.com/onecard/onecard/internal/randutil"
)

func TestChooseMove_DrawsWhenNothingLegal(t *testing.T) {
	hand := []card.Card{card.NewNumber(card.Blue, 9), card.NewNumber(card.Green, 2)}
	d := ChooseMove(randutil.New(1), hand, card.NewNumber(card.Red, 5), card.ColorNone, 0, true)
	if d.Play {
		t.Fatalf("expected draw, got play %s", d.Card)
	}
}

func TestChooseMove_PrefersStrictWildFour(t *testing.T) {
	w4 := card.NewWild(card.WildDrawFour)
	hand := []card.Card{w4, card.NewNumber(card.Blue, 9), card.NewNumber(card.Blue, 2)}
	d := ChooseMove(randutil.New(1), hand, card.NewNumber(card.Red, 5), card.ColorNone, 0, true)
	if !d.Play || d.Card.ID != w4.ID {
		t.Fatalf("expected the +4, got %v", d)
	}
	if d.Declared != card.Blue {
		t.Errorf("declared %s, want the hand's dominant color blue", d.Declared)
	}
}

func TestChooseMove_SkipsWildFourWhenColorHeld(t *testing.T) {
	w4 := card.NewWild(card.WildDrawFour)
	r7 := card.NewNumber(card.Red, 7)
	hand := []card.Card{w4, r7}
	d := ChooseMove(randutil.New(1), hand, card.NewNumber(card.Red, 5), card.ColorNone, 0, true)
	if !d.Play || d.Card.ID != r7.ID {
		t.Fatalf("holding red makes the +4 non-strict; expected red 7, got %v", d)
	}
}

func TestChooseMove_DrawTwoBeforeSkip(t *testing.T) {
	d2 := card.NewAction(card.Red, card.DrawTwo)
	sk := card.NewAction(card.Red, card.Skip)
	hand := []card.Card{sk, d2}
	d := ChooseMove(randutil.New(1), hand, card.NewNumber(card.Red, 5), card.ColorNone, 0, true)
	if !d.Play || d.Card.ID != d2.ID {
		t.Fatalf("expected the +2 first, got %v", d)
	}
}

func TestChooseMove_SkipBeforeReverse(t *testing.T) {
	rev := card.NewAction(card.Red, card.Reverse)
	sk := card.NewAction(card.Red, card.Skip)
	hand := []card.Card{rev, sk}
	d := ChooseMove(randutil.New(1), hand, card.NewNumber(card.Red, 5), card.ColorNone, 0, true)
	if !d.Play || d.Card.ID != sk.ID {
		t.Fatalf("expected skip before reverse, got %v", d)
	}
}

func TestChooseMove_ShedsHeaviestColorMatch(t *testing.T) {
	r2 := card.NewNumber(card.Red, 2)
	r9 := card.NewNumber(card.Red, 9)
	hand := []card.Card{r2, r9, card.NewNumber(card.Blue, 1)}
	d := ChooseMove(randutil.New(1), hand, card.NewNumber(card.Red, 5), card.ColorNone, 0, true)
	if !d.Play || d.Card.ID != r9.ID {
		t.Fatalf("expected the heavier red 9, got %v", d)
	}
}

func TestChooseMove_RespectsDeclaredColor(t *testing.T) {
	b3 := card.NewNumber(card.Blue, 3)
	hand := []card.Card{b3, card.NewNumber(card.Red, 9)}
	// Top is a wild; declared color is blue.
	top := card.NewWild(card.WildCard)
	d := ChooseMove(randutil.New(1), hand, top, card.Blue, 0, true)
	if !d.Play || d.Card.ID != b3.ID {
		t.Fatalf("expected the blue card against declared blue, got %v", d)
	}
}

func TestChooseMove_PendingStacksDrawCard(t *testing.T) {
	d2 := card.NewAction(card.Blue, card.DrawTwo)
	hand := []card.Card{d2, card.NewNumber(card.Red, 9)}
	top := card.NewAction(card.Red, card.DrawTwo)
	d := ChooseMove(randutil.New(1), hand, top, card.ColorNone, 2, true)
	if !d.Play || d.Card.ID != d2.ID {
		t.Fatalf("expected stacking the +2, got %v", d)
	}
}

func TestChooseMove_PendingWithoutStackDraws(t *testing.T) {
	hand := []card.Card{card.NewNumber(card.Red, 9)}
	top := card.NewAction(card.Red, card.DrawTwo)
	if d := ChooseMove(randutil.New(1), hand, top, card.ColorNone, 2, true); d.Play {
		t.Fatalf("expected draw, got %v", d)
	}
	// Stacking disabled: always draw, even holding a draw card.
	hand = append(hand, card.NewAction(card.Red, card.DrawTwo))
	if d := ChooseMove(randutil.New(1), hand, top, card.ColorNone, 2, false); d.Play {
		t.Fatalf("expected draw with stacking disabled, got %v", d)
	}
}

func TestChooseMove_DeterministicForSeed(t *testing.T) {
	hand := []card.Card{
		card.NewNumber(card.Red, 1),
		card.NewNumber(card.Red, 7),
		card.NewAction(card.Yellow, card.Skip),
		card.NewWild(card.WildCard),
	}
	top := card.NewNumber(card.Red, 5)
	a := ChooseMove(randutil.New(123), hand, top, card.ColorNone, 0, true)
	b := ChooseMove(randutil.New(123), hand, top, card.ColorNone, 0, true)
	if a.Card.ID != b.Card.ID || a.Declared != b.Declared || a.CallOne != b.CallOne {
		t.Fatalf("same seed produced different moves: %v vs %v", a, b)
	}
}

func TestFavoriteColor_TieBreakOrder(t *testing.T) {
	hand := []card.Card{
		card.NewNumber(card.Blue, 1),
		card.NewNumber(card.Yellow, 2),
	}
	// One of each: the fixed order prefers yellow over blue.
	if got := FavoriteColor(hand); got != card.Yellow {
		t.Fatalf("favorite %s, want yellow", got)
	}
	if got := FavoriteColor(nil); got != card.Red {
		t.Fatalf("empty hand favorite %s, want red", got)
	}
}
