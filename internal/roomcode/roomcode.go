// Package roomcode generates the 6-character room codes players type to
// join a room.
package roomcode

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// Alphabet is the set of characters a room code may contain.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the fixed room code length.
const Length = 6

// RandSource allows deterministic code generation in tests.
type RandSource interface {
	IntN(n int) int
}

// Generator produces room codes with configurable randomness.
type Generator struct {
	randSource RandSource
}

// NewGenerator creates a generator. A nil RandSource uses crypto/rand.
func NewGenerator(randSource RandSource) *Generator {
	return &Generator{randSource: randSource}
}

// Generate creates a new room code using crypto/rand.
func Generate() string {
	return NewGenerator(nil).Generate()
}

// Generate creates a uniformly random 6-character code. Uniqueness is the
// registry's job; collisions are handled there by retrying.
func (g *Generator) Generate() string {
	code := make([]byte, Length)
	if g.randSource != nil {
		for i := range code {
			code[i] = Alphabet[g.randSource.IntN(len(Alphabet))]
		}
		return string(code)
	}

	// Rejection sampling keeps the distribution uniform: 252 is the
	// largest multiple of len(Alphabet) below 256.
	const limit = 252
	buf := make([]byte, 1)
	for i := 0; i < Length; {
		if _, err := rand.Read(buf); err != nil {
			panic("roomcode: failed to read random bytes: " + err.Error())
		}
		if buf[0] >= limit {
			continue
		}
		code[i] = Alphabet[int(buf[0])%len(Alphabet)]
		i++
	}
	return string(code)
}

// Validate checks that a code is exactly 6 uppercase alphanumerics.
func Validate(code string) error {
	if len(code) != Length {
		return fmt.Errorf("room code must be exactly %d characters, got %d", Length, len(code))
	}
	for i, ch := range code {
		if !strings.ContainsRune(Alphabet, ch) {
			return fmt.Errorf("invalid character %c at position %d", ch, i)
		}
	}
	return nil
}

// Normalize uppercases a user-supplied code before lookup.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
