package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssgl/ourtransfer/internal/auth"
)

func TestIssueToken(t *testing.T) {
	tokens := auth.NewTokenAuth([]byte("jwt-signing-key-for-tests-------"))
	user := &auth.User{Username: "jperez", Nombre: "Juan"}

	tokenString, err := auth.IssueToken(tokens, user, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	decoded, err := tokens.Decode(tokenString)
	require.NoError(t, err)

	username, ok := decoded.Get("username")
	require.True(t, ok)
	assert.Equal(t, "jperez", username)
	assert.NotEmpty(t, decoded.JwtID())

	assert.WithinDuration(t, time.Now().Add(time.Hour), decoded.Expiration(), time.Minute)
}

func TestIssueTokenUniqueIDs(t *testing.T) {
	tokens := auth.NewTokenAuth([]byte("jwt-signing-key-for-tests-------"))
	user := &auth.User{Username: "jperez"}

	first, err := auth.IssueToken(tokens, user, time.Hour)
	require.NoError(t, err)
	second, err := auth.IssueToken(tokens, user, time.Hour)
	require.NoError(t, err)

	a, err := tokens.Decode(first)
	require.NoError(t, err)
	b, err := tokens.Decode(second)
	require.NoError(t, err)
	assert.NotEqual(t, a.JwtID(), b.JwtID())
}

func TestDecodeRejectsWrongKey(t *testing.T) {
	tokens := auth.NewTokenAuth([]byte("jwt-signing-key-for-tests-------"))
	other := auth.NewTokenAuth([]byte("a-completely-different-key------"))

	tokenString, err := auth.IssueToken(tokens, &auth.User{Username: "jperez"}, time.Hour)
	require.NoError(t, err)

	_, err = other.Decode(tokenString)
	assert.Error(t, err)
}
