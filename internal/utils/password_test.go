package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordSealDeterministic(t *testing.T) {
	t.Parallel()

	pc, err := NewPasswordCipher(testKey(0xA1))
	require.NoError(t, err)

	first := pc.Seal("s3cret")
	second := pc.Seal("s3cret")
	assert.Equal(t, first, second)
	assert.NotEqual(t, first, pc.Seal("s3cret "))
}

func TestPasswordMatches(t *testing.T) {
	t.Parallel()

	pc, err := NewPasswordCipher(testKey(0xA2))
	require.NoError(t, err)

	stored := pc.Seal("s3cret")
	assert.True(t, pc.Matches(stored, "s3cret"))
	assert.False(t, pc.Matches(stored, "S3cret"))
	assert.False(t, pc.Matches(stored, ""))
	assert.False(t, pc.Matches("not base64 at all", "s3cret"))
}

func TestPasswordKeySeparation(t *testing.T) {
	t.Parallel()

	customers, err := NewPasswordCipher(testKey(0xA3))
	require.NoError(t, err)
	admins, err := NewPasswordCipher(testKey(0xA4))
	require.NoError(t, err)

	stored := customers.Seal("s3cret")
	assert.NotEqual(t, stored, admins.Seal("s3cret"))
	assert.False(t, admins.Matches(stored, "s3cret"))
}

func TestNewPasswordCipherRejectsShortKey(t *testing.T) {
	t.Parallel()

	_, err := NewPasswordCipher([]byte("short"))
	assert.ErrorIs(t, err, ErrBadKey)
}
