package secret

import (
	"strings"

	"github.com/mcoot/codemaster-go/internal/dependencies/random"
	"github.com/mcoot/codemaster-go/internal/model"
)

const (
	// Alphabet is the symbol set secret codes and guesses are drawn from
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// DefaultCodeLength is the standard code length
	DefaultCodeLength = 4
)

// Generator produces secret codes and validates guess tokens against the
// code alphabet
type Generator struct {
	random random.Random
	length int
}

// New creates a Generator. A non-positive length falls back to
// DefaultCodeLength.
func New(rnd random.Random, length int) *Generator {
	if length <= 0 {
		length = DefaultCodeLength
	}
	return &Generator{
		random: rnd,
		length: length,
	}
}

// CodeLength returns the configured code length
func (g *Generator) CodeLength() int {
	return g.length
}

// Generate draws a fresh secret code. Symbols are drawn independently, so
// repeats are allowed.
func (g *Generator) Generate() string {
	return g.random.Code(g.length, Alphabet)
}

// Normalize prepares a raw guess token for comparison: surrounding
// whitespace is trimmed and the token is uppercased.
func (g *Generator) Normalize(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// Validate checks that a normalized guess is exactly CodeLength symbols
// from the alphabet
func (g *Generator) Validate(guess string) error {
	if len(guess) != g.length {
		return model.ErrInvalidGuess
	}
	for i := 0; i < len(guess); i++ {
		if !validSymbol(guess[i]) {
			return model.ErrInvalidGuess
		}
	}
	return nil
}

func validSymbol(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
