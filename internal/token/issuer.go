// Package token issues the signed access tokens used to hand a session off to
// the meeting domain without shared cookies.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vocespace/server/internal/domain"
)

// DefaultTTL is the token lifetime applied when no explicit expiry is given.
// Downstream verifiers expect this exact window; do not make it configurable.
const DefaultTTL = 15 * 24 * time.Hour

// ErrEmptySecret is returned when an Issuer is constructed without a secret.
var ErrEmptySecret = errors.New("token: signing secret is empty")

// Claims is the claim set embedded in a cross-domain access token.
type Claims struct {
	ID string `json:"id,omitempty"`
	// UserID is the legacy alias for ID kept for older clients; it is copied
	// into ID before signing when ID is absent.
	UserID    string          `json:"userId,omitempty"`
	Username  string          `json:"username"`
	Avatar    string          `json:"avatar,omitempty"`
	Space     string          `json:"space,omitempty"`
	Room      string          `json:"room,omitempty"`
	Identity  domain.Identity `json:"identity,omitempty"`
	PreJoin   bool            `json:"preJoin,omitempty"`
	IssuedAt  int64           `json:"iat,omitempty"`
	ExpiresAt int64           `json:"exp,omitempty"`
}

func (c Claims) GetExpirationTime() (*jwt.NumericDate, error) {
	if c.ExpiresAt == 0 {
		return nil, nil
	}
	return jwt.NewNumericDate(time.Unix(c.ExpiresAt, 0)), nil
}

func (c Claims) GetIssuedAt() (*jwt.NumericDate, error) {
	if c.IssuedAt == 0 {
		return nil, nil
	}
	return jwt.NewNumericDate(time.Unix(c.IssuedAt, 0)), nil
}

func (c Claims) GetNotBefore() (*jwt.NumericDate, error) { return nil, nil }
func (c Claims) GetIssuer() (string, error)              { return "", nil }
func (c Claims) GetSubject() (string, error)             { return "", nil }
func (c Claims) GetAudience() (jwt.ClaimStrings, error)  { return nil, nil }

// normalize applies the defaulting rules before signing: legacy userId alias,
// space falling back to the display name, participant as the default role, and
// the fixed 15-day expiry window when no explicit bounds are supplied.
func (c *Claims) normalize(now time.Time) {
	if c.ID == "" && c.UserID != "" {
		c.ID = c.UserID
	}
	if c.Space == "" {
		c.Space = c.Username
	}
	if c.Identity == "" {
		c.Identity = domain.IdentityParticipant
	}
	if c.IssuedAt <= 0 {
		c.IssuedAt = now.Unix()
	}
	if c.ExpiresAt <= 0 {
		c.ExpiresAt = c.IssuedAt + int64(DefaultTTL/time.Second)
	}
}

// Issuer signs access tokens with a symmetric secret shared with the meeting
// domain. The secret comes from deployment configuration.
type Issuer struct {
	secret []byte
}

// New creates an Issuer from the shared secret.
func New(secret string) (*Issuer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Issuer{secret: []byte(secret)}, nil
}

// Issue normalizes the claims and returns the compact HS256-signed token.
func (iss *Issuer) Issue(c Claims) (string, error) {
	c.normalize(time.Now())

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := tok.SignedString(iss.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a compact token with the shared secret and returns its claims.
// Only HS256 is accepted.
func (iss *Issuer) Verify(compact string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(compact, claims, func(t *jwt.Token) (interface{}, error) {
		return iss.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	return claims, nil
}
