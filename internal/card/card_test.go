package card

import (
	"encoding/json"
	"testing"
)

func TestPoints(t *testing.T) {
	cases := []struct {
		card Card
		want int
	}{
		{NewNumber(Red, 0), 0},
		{NewNumber(Blue, 7), 7},
		{NewAction(Green, Skip), 20},
		{NewAction(Yellow, Reverse), 20},
		{NewAction(Red, DrawTwo), 20},
		{NewWild(WildCard), 50},
		{NewWild(WildDrawFour), 50},
	}
	for _, c := range cases {
		if got := c.card.Points(); got != c.want {
			t.Errorf("%s: points %d, want %d", c.card, got, c.want)
		}
	}
}

func TestCanPlayOn(t *testing.T) {
	r5 := NewNumber(Red, 5)
	cases := []struct {
		name      string
		candidate Card
		top       Card
		declared  Color
		want      bool
	}{
		{"same color", NewNumber(Red, 9), r5, ColorNone, true},
		{"same value", NewNumber(Blue, 5), r5, ColorNone, true},
		{"no match", NewNumber(Blue, 9), r5, ColorNone, false},
		{"wild always", NewWild(WildCard), r5, ColorNone, true},
		{"wild four always", NewWild(WildDrawFour), r5, ColorNone, true},
		{"action same color", NewAction(Red, Skip), r5, ColorNone, true},
		{"action same variant", NewAction(Blue, Skip), NewAction(Red, Skip), ColorNone, true},
		{"action variant mismatch", NewAction(Blue, Skip), NewAction(Red, Reverse), ColorNone, false},
		{"declared matches", NewNumber(Blue, 9), NewWild(WildCard), Blue, true},
		{"declared blocks intrinsic", NewNumber(Red, 9), NewWild(WildCard), Blue, false},
		{"declared value match", NewNumber(Blue, 5), r5, Red, true},
		{"declared action variant match", NewAction(Blue, DrawTwo), NewAction(Red, DrawTwo), Red, true},
	}
	for _, tc := range cases {
		if got := CanPlayOn(tc.candidate, tc.top, tc.declared); got != tc.want {
			t.Errorf("%s: CanPlayOn(%s, %s, %s) = %v, want %v",
				tc.name, tc.candidate, tc.top, tc.declared, got, tc.want)
		}
	}
}

func TestDeclare(t *testing.T) {
	w := NewWild(WildCard)
	if err := w.Declare(Green); err != nil {
		t.Fatalf("Declare on wild: %v", err)
	}
	if w.EffectiveColor() != Green {
		t.Errorf("effective %s, want green", w.EffectiveColor())
	}

	if err := w.Declare(Wild); err == nil {
		t.Error("declaring the wild pseudo-color should fail")
	}

	n := NewNumber(Red, 5)
	if err := n.Declare(Blue); err == nil {
		t.Error("declaring a color on a number card should fail")
	}

	w.ClearDeclared()
	if w.EffectiveColor() != Wild {
		t.Error("clear should restore the intrinsic color")
	}
}

func TestStrictWildFourLegal(t *testing.T) {
	hand := []Card{NewWild(WildDrawFour), NewNumber(Blue, 2), NewAction(Green, Skip)}
	if !StrictWildFourLegal(hand, Red) {
		t.Error("no red in hand: should be strict-legal")
	}
	if StrictWildFourLegal(hand, Blue) {
		t.Error("blue in hand: should not be strict-legal")
	}
}

func TestParseColor(t *testing.T) {
	for in, want := range map[string]Color{
		"red": Red, "R": Red, "Yellow": Yellow, "g": Green, "BLUE": Blue, "": ColorNone,
	} {
		got, err := ParseColor(in)
		if err != nil || got != want {
			t.Errorf("ParseColor(%q) = %s, %v; want %s", in, got, err, want)
		}
	}
	if _, err := ParseColor("purple"); err == nil {
		t.Error("unknown color should fail")
	}
}

func TestCardJSONRoundTrip(t *testing.T) {
	w := NewWild(WildDrawFour)
	if err := w.Declare(Blue); err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(w)
	if err != nil {
		t.Fatal(err)
	}
	var back Card
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.ID != w.ID || back.Variant != WildDrawFour || back.Declared != Blue {
		t.Fatalf("round trip mismatch: %+v", back)
	}
}
