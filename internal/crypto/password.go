package crypto

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the work factor applied to new password hashes.
// 12 keeps a single hash in the tens-of-milliseconds range, which is the
// intended throughput/brute-force trade-off.
const DefaultBcryptCost = 12

// PasswordHasher performs one-way salted hashing of user passwords.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher creates a PasswordHasher with the given bcrypt cost.
// Costs outside bcrypt's supported range fall back to DefaultBcryptCost.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns a bcrypt hash of the password. The output embeds the
// algorithm version, cost and a random salt, so two calls with the same
// password produce different strings that both verify.
func (h *PasswordHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether password matches the stored hash. A malformed or
// incompatible stored hash counts as a mismatch; errors never escape here,
// so a corrupt record can fail a login but not a request.
func (h *PasswordHasher) Verify(password, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password)) == nil
}
