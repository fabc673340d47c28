package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBcryptHasher_HashAndCompare(t *testing.T) {
	h := NewBcryptHasher(4) // minimum cost keeps the test fast

	salt, err := h.GenerateSalt()
	require.NoError(t, err)
	require.Len(t, salt, 64)

	hash, err := h.Hash(salt, "s3cretpass")
	require.NoError(t, err)
	require.NotEqual(t, "s3cretpass", hash)

	require.NoError(t, h.Compare(hash, salt, "s3cretpass"))
	require.Error(t, h.Compare(hash, salt, "wrongpass"))
	require.Error(t, h.Compare(hash, "other-salt", "s3cretpass"))
}

func TestBcryptHasher_SaltsAreUnique(t *testing.T) {
	h := NewBcryptHasher(4)

	a, err := h.GenerateSalt()
	require.NoError(t, err)
	b, err := h.GenerateSalt()
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestBcryptHasher_LongPassword(t *testing.T) {
	// The SHA256 pre-hash keeps inputs under bcrypt's 72-byte limit.
	h := NewBcryptHasher(4)

	salt, err := h.GenerateSalt()
	require.NoError(t, err)

	long := make([]byte, 200)
	for i := range long {
		long[i] = 'a'
	}
	hash, err := h.Hash(salt, string(long))
	require.NoError(t, err)
	require.NoError(t, h.Compare(hash, salt, string(long)))
}
