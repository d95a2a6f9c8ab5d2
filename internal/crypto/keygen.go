package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// SecretLength is the number of random bytes in a generated signing
// secret. 32 bytes = 256 bits, the minimum strength for HS256 keys.
const SecretLength = 32

// GenerateSecret returns a base64url-encoded signing secret from
// crypto/rand. Used for ephemeral development keys when no JWT_SECRET is
// configured; tokens signed with a generated key do not survive restarts.
func GenerateSecret() (string, error) {
	buf := make([]byte, SecretLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating signing secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
