package jwtx

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/shist-app/shist/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestHS256RoundTrip(t *testing.T) {
	t.Parallel()

	h := NewHS256([]byte("test-secret"), "shist")
	now := time.Now().UTC()

	claims := NewSessionClaims("user-1", "alice", "Alice", "shist", time.Hour, now)
	raw, err := h.Sign(claims)
	require.NoError(t, err)

	got, err := h.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, "user-1", got.Subject)
	require.Equal(t, "alice", got.Username)
	require.Equal(t, "Alice", got.DisplayName)
	require.Equal(t, "shist", got.Issuer)
	require.NotEmpty(t, got.ID)
}

func TestNewJTI(t *testing.T) {
	t.Parallel()

	jti := NewJTI()
	raw, err := base64.RawURLEncoding.DecodeString(jti)
	require.NoError(t, err)
	require.Len(t, raw, cryptox.TokenSize128)
	require.NotEqual(t, jti, NewJTI())
}

func TestHS256Verify(t *testing.T) {
	t.Parallel()

	h := NewHS256([]byte("test-secret"), "shist")
	now := time.Now().UTC()

	t.Run("rejects wrong secret", func(t *testing.T) {
		other := NewHS256([]byte("other-secret"), "shist")
		raw, err := other.Sign(NewSessionClaims("u", "bob", "Bob", "shist", time.Hour, now))
		require.NoError(t, err)

		_, err = h.Verify(raw)
		require.ErrorIs(t, err, ErrInvalidSig)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		raw, err := h.Sign(NewSessionClaims("u", "bob", "Bob", "shist", -time.Hour, now))
		require.NoError(t, err)

		_, err = h.Verify(raw)
		require.ErrorIs(t, err, ErrExpired)
	})

	t.Run("rejects wrong issuer", func(t *testing.T) {
		raw, err := h.Sign(NewSessionClaims("u", "bob", "Bob", "not-shist", time.Hour, now))
		require.NoError(t, err)

		_, err = h.Verify(raw)
		require.ErrorIs(t, err, ErrIssuer)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := h.Verify("definitely.not.a.jwt")
		require.Error(t, err)
	})

	t.Run("rejects truncated token", func(t *testing.T) {
		raw, err := h.Sign(NewSessionClaims("u", "bob", "Bob", "shist", time.Hour, now))
		require.NoError(t, err)

		parts := strings.Split(raw, ".")
		_, err = h.Verify(parts[0] + "." + parts[1])
		require.ErrorIs(t, err, ErrMalformed)
	})
}
