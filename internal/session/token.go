// Package session keeps the booking sessions the gateway is serving and the
// bearer tokens that address them.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid session token")
	// ErrTokenExpired marks a correctly signed token past its expiry. Parse
	// still returns the session id alongside it.
	ErrTokenExpired = errors.New("session token expired")
)

// Tokens signs and parses HS256 session tokens. The token only carries the
// session id; all booking state stays on the server.
type Tokens struct {
	Secret []byte
	TTL    time.Duration
}

func (t Tokens) Sign(sessionID string, now time.Time) (string, error) {
	if len(t.Secret) == 0 {
		return "", errors.New("session secret is empty")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": sessionID,
		"iat": now.Unix(),
		"exp": now.Add(t.TTL).Unix(),
	})
	return token.SignedString(t.Secret)
}

// Parse validates raw and returns the session id it carries. A token whose
// only fault is its expiry yields the id together with ErrTokenExpired.
func (t Tokens) Parse(raw string) (string, error) {
	tok, err := jwt.Parse(raw, func(tk *jwt.Token) (interface{}, error) {
		if _, ok := tk.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tk.Header["alg"])
		}
		return t.Secret, nil
	}, jwt.WithExpirationRequired())
	expired := errors.Is(err, jwt.ErrTokenExpired)
	if tok == nil || (err != nil && !expired) || (err == nil && !tok.Valid) {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	sid, _ := claims["sid"].(string)
	if sid == "" {
		return "", ErrInvalidToken
	}
	if expired {
		return sid, ErrTokenExpired
	}
	return sid, nil
}
