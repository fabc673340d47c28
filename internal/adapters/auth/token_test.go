package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestJWTCodec_IssueAndVerify(t *testing.T) {
	codec := NewJWTCodec("test-secret")

	token, err := codec.Issue("usr-1", "alice@example.com", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := codec.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "usr-1", userID)
}

func TestJWTCodec_Verify_WrongSecret(t *testing.T) {
	token, err := NewJWTCodec("secret-a").Issue("usr-1", "alice@example.com", time.Hour)
	require.NoError(t, err)

	_, err = NewJWTCodec("secret-b").Verify(token)
	require.Error(t, err)
}

func TestJWTCodec_Verify_Expired(t *testing.T) {
	codec := NewJWTCodec("test-secret")

	token, err := codec.Issue("usr-1", "alice@example.com", -time.Minute)
	require.NoError(t, err)

	_, err = codec.Verify(token)
	require.Error(t, err)
}

func TestJWTCodec_Verify_Garbage(t *testing.T) {
	_, err := NewJWTCodec("test-secret").Verify("not.a.token")
	require.Error(t, err)
}

func TestJWTCodec_Verify_MissingSubject(t *testing.T) {
	secret := []byte("test-secret")
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := tok.SignedString(secret)
	require.NoError(t, err)

	_, err = NewJWTCodec("test-secret").Verify(signed)
	require.Error(t, err)
}
