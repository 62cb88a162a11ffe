package hasher

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrMalformedDigest indicates a stored digest that bcrypt cannot parse.
// A plain mismatch is not an error; Verify reports it as (false, nil).
var ErrMalformedDigest = errors.New("malformed password digest")

// Hasher produces and verifies salted bcrypt digests. The cost is an
// explicit constructor parameter instead of process-wide ambient state.
type Hasher struct {
	cost int
}

// New returns a Hasher with the given bcrypt cost. Cost values outside
// the supported range fall back to the library default.
func New(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns a self-describing digest (algorithm tag, cost and salt are
// embedded) for the given plaintext. Each call salts independently, so two
// digests of the same plaintext differ.
func (h *Hasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// Verify reports whether plain matches digest. It returns an error only
// when the digest itself is malformed, never on a simple mismatch.
func (h *Hasher) Verify(plain, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrMalformedDigest, err)
	}
}
