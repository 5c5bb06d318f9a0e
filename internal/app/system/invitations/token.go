// internal/app/system/invitations/token.go
//
// Package invitations issues signed invitation links and delivers them by
// email after an invite is committed.
package invitations

import (
	"errors"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
)

const tokenName = "projecthub-invite"

var (
	// ErrInvalidToken covers tampered, expired and malformed tokens.
	ErrInvalidToken = errors.New("invalid or expired invitation")
	// ErrShortKey is returned for signing keys under 32 bytes.
	ErrShortKey = errors.New("invitation key must be at least 32 characters")
)

// Claims identify the invitation a token was issued for.
type Claims struct {
	GroupID  string    `json:"g"`
	MemberID string    `json:"m"`
	Email    string    `json:"e"`
	IssuedAt time.Time `json:"iat"`
}

// Codec signs and verifies invitation tokens.
type Codec struct {
	sc  *securecookie.SecureCookie
	ttl time.Duration
}

// NewCodec builds a codec whose tokens expire after ttl.
func NewCodec(key string, ttl time.Duration) (*Codec, error) {
	if len(key) < 32 {
		return nil, ErrShortKey
	}
	sc := securecookie.New([]byte(key), nil)
	sc.SetSerializer(securecookie.JSONEncoder{})
	sc.MaxAge(int(ttl.Seconds()))
	// Tokens travel in URLs, not cookies; lift the 4KB cookie cap.
	sc.MaxLength(0)
	return &Codec{sc: sc, ttl: ttl}, nil
}

// TTL is how long issued tokens stay valid.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Issue signs claims. IssuedAt is set when zero.
func (c *Codec) Issue(claims Claims) (string, error) {
	if claims.IssuedAt.IsZero() {
		claims.IssuedAt = time.Now().UTC()
	}
	return c.sc.Encode(tokenName, claims)
}

// Parse verifies token and returns its claims.
func (c *Codec) Parse(token string) (Claims, error) {
	var claims Claims
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, ErrInvalidToken
	}
	if err := c.sc.Decode(tokenName, token, &claims); err != nil {
		return Claims{}, ErrInvalidToken
	}
	if claims.GroupID == "" || claims.Email == "" {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}
