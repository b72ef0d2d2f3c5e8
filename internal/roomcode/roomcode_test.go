package roomcode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onecard/onecard/internal/randutil"
)

func TestGenerate_LengthAndCharset(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := Generate()
		require.Len(t, code, Length)
		for _, ch := range code {
			assert.True(t, strings.ContainsRune(Alphabet, ch), "unexpected character %c in %s", ch, code)
		}
	}
}

func TestGenerator_DeterministicWithSeed(t *testing.T) {
	a := NewGenerator(randutil.New(7)).Generate()
	b := NewGenerator(randutil.New(7)).Generate()
	assert.Equal(t, a, b)
	require.NoError(t, Validate(a))

	c := NewGenerator(randutil.New(8)).Generate()
	assert.NotEqual(t, a, c)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate("ABC123"))
	assert.NoError(t, Validate("ZZZZZZ"))

	assert.Error(t, Validate(""))
	assert.Error(t, Validate("ABC12"))
	assert.Error(t, Validate("ABC1234"))
	assert.Error(t, Validate("abc123"), "lowercase is rejected; callers normalize first")
	assert.Error(t, Validate("ABC-12"))
	assert.Error(t, Validate("ABC 12"))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "ABC123", Normalize("abc123"))
	assert.Equal(t, "ABC123", Normalize("  AbC123\n"))
	assert.Equal(t, "", Normalize("   "))
}
