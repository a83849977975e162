// Package auth holds the credential primitives of the server: bearer token
// issuing and verification, and password hashing.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is what a verified token says about its holder.
type Claims struct {
	SubjectID string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenIssuer signs and verifies stateless bearer tokens with one fixed HMAC
// algorithm. Tokens cannot be revoked before they expire.
type TokenIssuer struct {
	secret []byte
	method jwt.SigningMethod
	now    func() time.Time
}

// NewTokenIssuer accepts HS256, HS384 or HS512.
func NewTokenIssuer(secret string, algorithm string) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("empty token secret")
	}
	var method jwt.SigningMethod
	switch algorithm {
	case "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
	return &TokenIssuer{secret: []byte(secret), method: method, now: time.Now}, nil
}

// Issue signs a token for subjectID valid for ttl from now.
func (i *TokenIssuer) Issue(subjectID string, ttl time.Duration) (string, Claims, error) {
	now := i.now()
	rc := jwt.RegisteredClaims{
		Subject:   subjectID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token, err := jwt.NewWithClaims(i.method, rc).SignedString(i.secret)
	if err != nil {
		return "", Claims{}, err
	}

	return token, Claims{
		SubjectID: subjectID,
		IssuedAt:  rc.IssuedAt.Time,
		ExpiresAt: rc.ExpiresAt.Time,
	}, nil
}

// Verify checks signature, algorithm and expiry. It returns
// common.ErrTokenExpired for expired tokens and common.ErrInvalidToken for
// anything else that does not verify.
func (i *TokenIssuer) Verify(tokenString string) (Claims, error) {
	rc := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, rc,
		func(t *jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{i.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, common.ErrTokenExpired
		}
		return Claims{}, common.ErrInvalidToken
	}
	if !token.Valid || rc.Subject == "" {
		return Claims{}, common.ErrInvalidToken
	}

	c := Claims{SubjectID: rc.Subject, ExpiresAt: rc.ExpiresAt.Time}
	if rc.IssuedAt != nil {
		c.IssuedAt = rc.IssuedAt.Time
	}
	return c, nil
}
