package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignAndParse(t *testing.T) {
	token, err := Sign("user-1", "teacher", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := Parse(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, "teacher", claims.Role)
}

func TestParseExpiredToken(t *testing.T) {
	token, err := Sign("user-1", "student", -time.Minute)
	require.NoError(t, err)

	_, err = Parse(token)
	require.Error(t, err)
}

func TestParseGarbage(t *testing.T) {
	_, err := Parse("not-a-token")
	require.Error(t, err)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := Sign("user-1", "student", time.Hour)
	require.NoError(t, err)

	SetSecret("a-different-secret")
	defer SetSecret(defaultSecret)

	_, err = Parse(token)
	require.Error(t, err)
}
