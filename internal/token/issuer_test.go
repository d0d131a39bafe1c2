package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vocespace/server/internal/domain"
)

const testSecret = "test-secret"

func newIssuer(t *testing.T) *Issuer {
	t.Helper()
	iss, err := New(testSecret)
	require.NoError(t, err)
	return iss
}

func TestNewRequiresSecret(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestIssueDefaultExpiry(t *testing.T) {
	iss := newIssuer(t)

	before := time.Now().Unix()
	signed, err := iss.Issue(Claims{
		ID:       "u1",
		Username: "alice",
		Space:    "team",
		Identity: domain.IdentityParticipant,
	})
	require.NoError(t, err)
	after := time.Now().Unix()

	claims, err := iss.Verify(signed)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, claims.IssuedAt, before)
	assert.LessOrEqual(t, claims.IssuedAt, after)
	assert.Equal(t, claims.IssuedAt+int64(DefaultTTL/time.Second), claims.ExpiresAt)
	assert.Equal(t, int64(1296000), int64(DefaultTTL/time.Second))
}

func TestIssueExplicitBounds(t *testing.T) {
	iss := newIssuer(t)

	signed, err := iss.Issue(Claims{
		ID:        "u1",
		Username:  "alice",
		IssuedAt:  1700000000,
		ExpiresAt: 1700009000,
	})
	require.NoError(t, err)

	claims, err := iss.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000), claims.IssuedAt)
	assert.Equal(t, int64(1700009000), claims.ExpiresAt)
}

func TestIssueLegacyUserIDAlias(t *testing.T) {
	iss := newIssuer(t)

	signed, err := iss.Issue(Claims{
		UserID:   "u2",
		Username: "bob",
		Space:    "s",
		Identity: domain.IdentityGuest,
	})
	require.NoError(t, err)

	claims, err := iss.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "u2", claims.ID)
	assert.Equal(t, "u2", claims.UserID)
}

func TestIssueDoesNotOverrideExplicitID(t *testing.T) {
	iss := newIssuer(t)

	signed, err := iss.Issue(Claims{ID: "primary", UserID: "legacy", Username: "bob"})
	require.NoError(t, err)

	claims, err := iss.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "primary", claims.ID)
}

func TestIssueDefaults(t *testing.T) {
	iss := newIssuer(t)

	signed, err := iss.Issue(Claims{ID: "u1", Username: "alice"})
	require.NoError(t, err)

	claims, err := iss.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Space, "space defaults to the display name")
	assert.Equal(t, domain.IdentityParticipant, claims.Identity)
}

func TestRoundTripPreservesFields(t *testing.T) {
	iss := newIssuer(t)

	in := Claims{
		ID:       "u1",
		Username: "alice",
		Avatar:   "https://cdn.example.com/a.png",
		Space:    "team",
		Room:     "standup",
		Identity: domain.IdentityManager,
		PreJoin:  true,
	}
	signed, err := iss.Issue(in)
	require.NoError(t, err)
	assert.Len(t, splitSegments(signed), 3, "compact token has three segments")

	claims, err := iss.Verify(signed)
	require.NoError(t, err)

	assert.Equal(t, in.ID, claims.ID)
	assert.Equal(t, in.Username, claims.Username)
	assert.Equal(t, in.Avatar, claims.Avatar)
	assert.Equal(t, in.Space, claims.Space)
	assert.Equal(t, in.Room, claims.Room)
	assert.Equal(t, in.Identity, claims.Identity)
	assert.Equal(t, in.PreJoin, claims.PreJoin)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	iss := newIssuer(t)
	signed, err := iss.Issue(Claims{ID: "u1", Username: "alice"})
	require.NoError(t, err)

	other, err := New("different-secret")
	require.NoError(t, err)

	_, err = other.Verify(signed)
	assert.Error(t, err)
}

func TestVerifyRejectsExpired(t *testing.T) {
	iss := newIssuer(t)

	signed, err := iss.Issue(Claims{
		ID:        "u1",
		Username:  "alice",
		IssuedAt:  time.Now().Add(-2 * time.Hour).Unix(),
		ExpiresAt: time.Now().Add(-time.Hour).Unix(),
	})
	require.NoError(t, err)

	_, err = iss.Verify(signed)
	assert.Error(t, err)
}

func splitSegments(tok string) []string {
	var segs []string
	start := 0
	for i := 0; i < len(tok); i++ {
		if tok[i] == '.' {
			segs = append(segs, tok[start:i])
			start = i + 1
		}
	}
	return append(segs, tok[start:])
}
