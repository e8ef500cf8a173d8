package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	h, err := HashPassword("password123")
	require.NoError(t, err)

	assert.True(t, CheckPassword(h, "password123"))
	assert.False(t, CheckPassword(h, "password124"))

	cost, err := bcrypt.Cost([]byte(h))
	require.NoError(t, err)
	assert.Equal(t, PasswordCost, cost)
}

func TestHashPassword_Salted(t *testing.T) {
	h1, err := HashPassword("same")
	require.NoError(t, err)
	h2, err := HashPassword("same")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
	assert.True(t, CheckPassword(h1, "same"))
	assert.True(t, CheckPassword(h2, "same"))
}

func TestCheckPassword_BadHash(t *testing.T) {
	assert.False(t, CheckPassword("", "x"))
	assert.False(t, CheckPassword("not-a-hash", "x"))
}
