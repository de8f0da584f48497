package random

import (
	"crypto/rand"
	"math/big"
)

// Random provides random draws that can be mocked for testing
type Random interface {
	// Intn returns a random int in [0, n)
	Intn(n int) int

	// Code draws length symbols independently and uniformly from alphabet.
	// Repeated symbols are allowed.
	Code(length int, alphabet string) string
}

// CryptoRandom implements Random using crypto/rand. The gameplay
// requirement is fairness rather than security, but crypto/rand needs no
// per-call seeding and never collides predictably across rounds.
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Intn returns a uniformly random int in [0, n)
func (r *CryptoRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	result, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand only fails if the platform entropy source is broken
		return 0
	}
	return int(result.Int64())
}

// Code draws a random symbol string of the given length from alphabet
func (r *CryptoRandom) Code(length int, alphabet string) string {
	if length <= 0 || len(alphabet) == 0 {
		return ""
	}
	out := make([]byte, length)
	for i := range out {
		out[i] = alphabet[r.Intn(len(alphabet))]
	}
	return string(out)
}
