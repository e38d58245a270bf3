// Package auth implements the credential and token primitives of the server:
// bcrypt password hashing, the signed access-token codec, and opaque
// refresh-token generation.
package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"authkeeper/internal/common"
)

// Claims carries the access-token payload: the standard registered claims
// plus the username. The subject is the user id in decimal form.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// Codec issues and verifies signed, self-contained access tokens over a
// single shared secret. Verification is stateless: signature and expiry are
// checked in one parse, with no storage lookup.
type Codec struct {
	secret []byte
	method jwt.SigningMethod
}

// NewCodec builds a Codec for the given HMAC algorithm identifier
// (e.g. "HS256"). Non-HMAC algorithms are rejected: the design uses one
// symmetric signing key, not key pairs.
func NewCodec(secret []byte, algorithm string) (*Codec, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("signing algorithm %q is not an HMAC method", algorithm)
	}
	return &Codec{secret: secret, method: method}, nil
}

// Issue signs a token for userID/username expiring after ttl.
func (c *Codec) Issue(userID int64, username string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		Username: username,
	}

	return jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
}

// Decode verifies the token and returns the subject user id and username.
// Every failure mode (malformed structure, bad signature, wrong algorithm,
// expired, missing or non-numeric subject) collapses to
// common.ErrInvalidToken so callers cannot tell forgeries from expiries.
func (c *Codec) Decode(tokenString string) (int64, string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{c.method.Alg()}),
	)
	if err != nil || !token.Valid {
		return 0, "", common.ErrInvalidToken
	}

	if claims.Subject == "" {
		return 0, "", common.ErrInvalidToken
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, "", common.ErrInvalidToken
	}

	return userID, claims.Username, nil
}
