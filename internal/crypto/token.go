package crypto

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// SessionClaims is the signed claim set carried by a session token:
// subject (decimal user ID), email, issued-at and expiry.
type SessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// TokenIssuer creates and validates stateless HS256-signed session tokens.
// The signing key is injected at construction and read-only afterwards;
// there is no rotation, a restart with a new key invalidates all tokens.
type TokenIssuer struct {
	key []byte
	ttl time.Duration
}

// NewTokenIssuer creates a TokenIssuer signing with secret. The secret
// should carry at least 256 bits of entropy. ttl is the token lifetime.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{key: []byte(secret), ttl: ttl}
}

// Issue creates a signed token for the given user.
func (i *TokenIssuer) Issue(userID int64, email string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		Email: email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.key)
}

// Validate reports whether the token is correctly signed and unexpired.
// Parse failures, signature mismatches and expired tokens are all false;
// no error surfaces to callers.
func (i *TokenIssuer) Validate(tokenString string) bool {
	_, err := i.parse(tokenString)
	return err == nil
}

// Subject returns the user ID claimed by the token. The boolean is true
// only for a fully valid token: extraction implies signature AND expiry
// checks, so an expired token never yields a usable identity.
func (i *TokenIssuer) Subject(tokenString string) (int64, bool) {
	claims, err := i.parse(tokenString)
	if err != nil {
		return 0, false
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Email returns the email claimed by the token, with the same full
// validation semantics as Subject.
func (i *TokenIssuer) Email(tokenString string) (string, bool) {
	claims, err := i.parse(tokenString)
	if err != nil {
		return "", false
	}
	return claims.Email, true
}

func (i *TokenIssuer) parse(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return i.key, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
