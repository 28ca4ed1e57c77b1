package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	ierr "bizdir/internal/errors"
)

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies HS256 bearer tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl}
}

func (t *Tokens) Generate(id Identity) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: id.ID,
		Email:  id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", ierr.Internal(err, "sign token")
	}
	return signed, nil
}

// Parse verifies the signature and expiry. Any failure is Unauthenticated.
func (t *Tokens) Parse(raw string) (Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err == nil && claims.Email == "" {
		err = ierr.NewError("token has no email").Error()
	}
	if err != nil {
		return Identity{}, ierr.WithError(err).
			WithHint("Your session has expired. Please sign in again.").
			Mark(ierr.ErrUnauthenticated)
	}
	return Identity{ID: claims.UserID, Email: claims.Email}, nil
}
