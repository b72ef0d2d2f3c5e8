// Package card implements the 108-card shedding deck: card variants,
// the play-legality predicate and point values.
package card

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Color represents a card color. Wild is the intrinsic color of wild cards
// before a color has been declared for them.
type Color int

const (
	ColorNone Color = iota
	Red
	Yellow
	Green
	Blue
	Wild
)

// Colors lists the four declarable colors in fixed tie-break order.
var Colors = [4]Color{Red, Yellow, Green, Blue}

// String returns the string representation of a color
func (c Color) String() string {
	switch c {
	case Red:
		return "red"
	case Yellow:
		return "yellow"
	case Green:
		return "green"
	case Blue:
		return "blue"
	case Wild:
		return "wild"
	default:
		return "none"
	}
}

// IsDeclarable reports whether the color may be declared on a wild card.
func (c Color) IsDeclarable() bool {
	return c == Red || c == Yellow || c == Green || c == Blue
}

// ParseColor parses a color from its wire representation. Both full names
// ("red") and single letters ("R") are accepted, case-insensitively.
func ParseColor(s string) (Color, error) {
	switch strings.ToLower(s) {
	case "red", "r":
		return Red, nil
	case "yellow", "y":
		return Yellow, nil
	case "green", "g":
		return Green, nil
	case "blue", "b":
		return Blue, nil
	case "wild":
		return Wild, nil
	case "", "none":
		return ColorNone, nil
	}
	return ColorNone, fmt.Errorf("unknown color %q", s)
}

// MarshalJSON encodes the color as its string name.
func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes a color from its string name.
func (c *Color) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Variant represents a card variant
type Variant int

const (
	Number Variant = iota
	Skip
	Reverse
	DrawTwo
	WildCard
	WildDrawFour
)

// String returns the string representation of a variant
func (v Variant) String() string {
	switch v {
	case Number:
		return "number"
	case Skip:
		return "skip"
	case Reverse:
		return "reverse"
	case DrawTwo:
		return "draw_two"
	case WildCard:
		return "wild"
	case WildDrawFour:
		return "wild_draw_four"
	default:
		return "?"
	}
}

// IsWild reports whether the variant carries a declared color when played.
func (v Variant) IsWild() bool {
	return v == WildCard || v == WildDrawFour
}

// IsAction reports whether the variant is a colored action card.
func (v Variant) IsAction() bool {
	return v == Skip || v == Reverse || v == DrawTwo
}

// MarshalJSON encodes the variant as its string name.
func (v Variant) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

// UnmarshalJSON decodes a variant from its string name.
func (v *Variant) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "number":
		*v = Number
	case "skip":
		*v = Skip
	case "reverse":
		*v = Reverse
	case "draw_two":
		*v = DrawTwo
	case "wild":
		*v = WildCard
	case "wild_draw_four":
		*v = WildDrawFour
	default:
		return fmt.Errorf("unknown variant %q", s)
	}
	return nil
}

// Card represents a single card. Cards are immutable after creation except
// for the declared color of wild cards, which is set when the card is
// played and cleared when it returns to the deck.
type Card struct {
	ID       string  `json:"id"`
	Variant  Variant `json:"variant"`
	Value    int     `json:"value"` // 0-9, Number cards only
	Color    Color   `json:"color"`
	Declared Color   `json:"declaredColor,omitempty"`
}

// NewNumber creates a number card (value 0-9).
func NewNumber(color Color, value int) Card {
	return Card{ID: uuid.NewString(), Variant: Number, Value: value, Color: color}
}

// NewAction creates a Skip, Reverse or DrawTwo card.
func NewAction(color Color, variant Variant) Card {
	return Card{ID: uuid.NewString(), Variant: variant, Color: color}
}

// NewWild creates a Wild or WildDrawFour card.
func NewWild(variant Variant) Card {
	return Card{ID: uuid.NewString(), Variant: variant, Color: Wild}
}

// String returns a compact representation (e.g. "red/5", "green/skip",
// "wild_draw_four(blue)").
func (c Card) String() string {
	switch {
	case c.Variant == Number:
		return fmt.Sprintf("%s/%d", c.Color, c.Value)
	case c.Variant.IsWild() && c.Declared != ColorNone:
		return fmt.Sprintf("%s(%s)", c.Variant, c.Declared)
	case c.Variant.IsWild():
		return c.Variant.String()
	default:
		return fmt.Sprintf("%s/%s", c.Color, c.Variant)
	}
}

// IsWild reports whether the card is a Wild or WildDrawFour.
func (c Card) IsWild() bool {
	return c.Variant.IsWild()
}

// Points returns the card's point value for round scoring.
func (c Card) Points() int {
	switch c.Variant {
	case Number:
		return c.Value
	case Skip, Reverse, DrawTwo:
		return 20
	default:
		return 50
	}
}

// EffectiveColor returns the declared color if set, else the intrinsic
// color.
func (c Card) EffectiveColor() Color {
	if c.Declared != ColorNone {
		return c.Declared
	}
	return c.Color
}

// Declare sets the declared color. Only wild cards accept a color, and only
// one of the four declarable colors.
func (c *Card) Declare(color Color) error {
	if !c.Variant.IsWild() {
		return fmt.Errorf("cannot declare a color on %s", c.Variant)
	}
	if !color.IsDeclarable() {
		return fmt.Errorf("cannot declare color %s", color)
	}
	c.Declared = color
	return nil
}

// ClearDeclared removes the declared color, if any.
func (c *Card) ClearDeclared() {
	c.Declared = ColorNone
}

// CanPlayOn reports whether the candidate card may be played on top card
// top, given the session's declared color (ColorNone when no wild is in
// effect). Wild cards are always playable; the accompanying declared color
// is validated by the session, not here.
func CanPlayOn(candidate, top Card, declared Color) bool {
	if candidate.IsWild() {
		return true
	}

	if declared != ColorNone {
		if candidate.Color == declared {
			return true
		}
		if candidate.Variant == Number && top.Variant == Number && candidate.Value == top.Value {
			return true
		}
		if candidate.Variant.IsAction() && candidate.Variant == top.Variant {
			return true
		}
		return false
	}

	if candidate.Color == top.Color {
		return true
	}
	if candidate.Variant == Number && top.Variant == Number && candidate.Value == top.Value {
		return true
	}
	if candidate.Variant.IsAction() && candidate.Variant == top.Variant {
		return true
	}
	return false
}

// StrictWildFourLegal implements the WildDrawFour strict-legality check:
// the hand holds no card of the effective color. Enforced in tournament
// mode, informational otherwise.
func StrictWildFourLegal(hand []Card, effective Color) bool {
	for _, c := range hand {
		if c.Color == effective {
			return false
		}
	}
	return true
}
