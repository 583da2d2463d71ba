package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("s3cret", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.NoError(t, ComparePassword(hash, "s3cret"))
	assert.Error(t, ComparePassword(hash, "s3creT"))
	assert.Error(t, ComparePassword(hash, "s3cret "))
	assert.Error(t, ComparePassword(hash, ""))
}

func TestHashPassword_RejectsTooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("x", MaxPasswordLength+1), bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	_, err = HashPassword(strings.Repeat("x", MaxPasswordLength), bcrypt.MinCost)
	assert.NoError(t, err)
}
