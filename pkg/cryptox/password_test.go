package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	t.Parallel()

	t.Run("produces PHC-format hash", func(t *testing.T) {
		hash, err := HashPassword("correct horse battery staple")
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))
	})

	t.Run("same password yields different hashes", func(t *testing.T) {
		h1, err := HashPassword("secret")
		require.NoError(t, err)
		h2, err := HashPassword("secret")
		require.NoError(t, err)
		require.NotEqual(t, h1, h2) // random salt per hash
	})
}

func TestVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("hunter2")
	require.NoError(t, err)

	t.Run("accepts correct password", func(t *testing.T) {
		require.NoError(t, VerifyPassword("hunter2", hash))
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		require.Error(t, VerifyPassword("hunter3", hash))
	})

	t.Run("rejects malformed hash", func(t *testing.T) {
		require.Error(t, VerifyPassword("hunter2", "not-a-phc-string"))
		require.Error(t, VerifyPassword("hunter2", "$argon2id$v=19$m=19456,t=2,p=1$bad"))
	})
}

func TestGeneratePassword(t *testing.T) {
	t.Parallel()

	pw, err := GeneratePassword()
	require.NoError(t, err)
	require.Len(t, pw, 12)

	other, err := GeneratePassword()
	require.NoError(t, err)
	require.NotEqual(t, pw, other)
}
