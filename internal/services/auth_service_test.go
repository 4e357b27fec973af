package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/nutrameter-backend/internal/apperr"
)

func TestTokenRoundTrip(t *testing.T) {
	s := NewTokenService("secret", 7*24*time.Hour)

	token, err := s.Issue("user-1", "ada@example.com")
	require.NoError(t, err)

	claims, err := s.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestTokenRejections(t *testing.T) {
	s := NewTokenService("secret", time.Hour)
	good, err := s.Issue("user-1", "ada@example.com")
	require.NoError(t, err)

	expired := NewTokenService("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.Issue("user-1", "ada@example.com")
	require.NoError(t, err)

	otherKey, err := NewTokenService("other", time.Hour).Issue("user-1", "ada@example.com")
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"userId": "user-1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"userId": "user-1"}).
		SignedString([]byte("secret"))
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"empty":     "",
		"garbage":   "not.a.token",
		"expired":   old,
		"wrong key": otherKey,
		"alg none":  none,
		"no expiry": noExpiry,
		"truncated": good[:len(good)-4],
	} {
		t.Run(name, func(t *testing.T) {
			_, err := s.Parse(tok)
			require.Error(t, err)
			assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
			assert.Equal(t, "Unauthorized", apperr.Message(err))
		})
	}
}
