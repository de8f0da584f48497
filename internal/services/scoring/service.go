package scoring

// Service implements the classic Mastermind peg rule: exact counts
// position matches, partial counts symbols present in both leftovers via
// bounded multiset intersection, so duplicate symbols never double-count.
type Service struct{}

// New creates a new scoring Service
func New() *Service {
	return &Service{}
}

// Score returns the exact and partial match counts for guess against
// secret. Inputs must be equal-length, normalized codes; validation
// happens upstream and a length mismatch here is a caller bug.
func (s *Service) Score(secret, guess string) (exact, partial int) {
	if len(secret) != len(guess) {
		panic("scoring: secret and guess must be the same length")
	}

	secretLeft := make(map[byte]int)
	guessLeft := make(map[byte]int)

	for i := 0; i < len(secret); i++ {
		if guess[i] == secret[i] {
			exact++
			continue
		}
		secretLeft[secret[i]]++
		guessLeft[guess[i]]++
	}

	for sym, n := range guessLeft {
		partial += min(n, secretLeft[sym])
	}

	return exact, partial
}

// Interface for dependency injection
type ServiceInterface interface {
	Score(secret, guess string) (exact, partial int)
}

var _ ServiceInterface = (*Service)(nil)
