package auth

import (
	"testing"
	"time"

	"github.com/Kaktotak00p/notes/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")

	tok, err := GenerateToken("user-123", secret, time.Hour)
	require.NoError(t, err)

	got, err := GetUserIDFromToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "user-123", got)
}

func TestGetUserIDFromToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	tok, err := GenerateToken("u1", secret, -time.Second)
	require.NoError(t, err)

	_, err = GetUserIDFromToken(tok, secret)
	require.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestGetUserIDFromToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken("u2", []byte("right-secret"), time.Hour)
	require.NoError(t, err)

	_, err = GetUserIDFromToken(tok, []byte("wrong-secret"))
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestGetUserIDFromToken_Garbage(t *testing.T) {
	t.Parallel()

	_, err := GetUserIDFromToken("not-a-jwt", []byte("s"))
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestOwnerFromToken(t *testing.T) {
	t.Parallel()

	now := time.Now()

	t.Run("own token", func(t *testing.T) {
		tok, err := GenerateToken("u1", []byte("whatever"), time.Hour)
		require.NoError(t, err)

		owner, exp, err := OwnerFromToken(tok, now)
		require.NoError(t, err)
		assert.Equal(t, "u1", owner)
		assert.WithinDuration(t, now.Add(time.Hour), exp, 2*time.Second)
	})

	t.Run("subject only", func(t *testing.T) {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject: "sub-owner",
		}).SignedString([]byte("other-issuer"))
		require.NoError(t, err)

		owner, exp, err := OwnerFromToken(tok, now)
		require.NoError(t, err)
		assert.Equal(t, "sub-owner", owner)
		assert.True(t, exp.IsZero())
	})

	t.Run("expired", func(t *testing.T) {
		tok, err := GenerateToken("u1", []byte("k"), time.Minute)
		require.NoError(t, err)

		_, _, err = OwnerFromToken(tok, now.Add(2*time.Minute))
		require.ErrorIs(t, err, common.ErrTokenExpired)
	})

	t.Run("no owner", func(t *testing.T) {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{}).SignedString([]byte("k"))
		require.NoError(t, err)

		_, _, err = OwnerFromToken(tok, now)
		require.ErrorIs(t, err, common.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, _, err := OwnerFromToken("x.y", now)
		require.ErrorIs(t, err, common.ErrInvalidToken)
	})
}
