package utils

import (
	"bytes"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testIssuer = "bookhaven"

func testKey(fill byte) []byte {
	return bytes.Repeat([]byte{fill}, KeySize)
}

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()

	tc, err := NewTokenCodec(testKey(0x11), testIssuer, time.Hour)
	require.NoError(t, err)

	triple, err := tc.Issue("alice")
	require.NoError(t, err)

	username, expiry, err := tc.Open(triple)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
	assert.WithinDuration(t, time.Now().UTC().Add(time.Hour), expiry, 2*time.Second)

	username, err = tc.Validate(triple)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
}

func TestTokenFreshNoncePerIssue(t *testing.T) {
	t.Parallel()

	tc, err := NewTokenCodec(testKey(0x22), testIssuer, time.Hour)
	require.NoError(t, err)

	a, err := tc.Issue("alice")
	require.NoError(t, err)
	b, err := tc.Issue("alice")
	require.NoError(t, err)

	assert.NotEqual(t, a.Nonce, b.Nonce)
	assert.NotEqual(t, a.Token, b.Token)
}

func TestTokenExpired(t *testing.T) {
	t.Parallel()

	tc, err := NewTokenCodec(testKey(0x33), testIssuer, -time.Minute)
	require.NoError(t, err)

	triple, err := tc.Issue("alice")
	require.NoError(t, err)

	// Open ignores expiry, Validate enforces it.
	username, _, err := tc.Open(triple)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)

	_, err = tc.Validate(triple)
	assert.ErrorIs(t, err, ErrExpired)
}

// flipBit re-encodes a base64 field with one bit flipped in its raw bytes.
func flipBit(t *testing.T, field string) string {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(field)
	require.NoError(t, err)
	require.NotEmpty(t, raw)
	raw[0] ^= 0x01
	return base64.StdEncoding.EncodeToString(raw)
}

func TestTokenTamperDetected(t *testing.T) {
	t.Parallel()

	tc, err := NewTokenCodec(testKey(0x44), testIssuer, time.Hour)
	require.NoError(t, err)

	good, err := tc.Issue("alice")
	require.NoError(t, err)

	cases := map[string]TokenTriple{
		"token": {Token: flipBit(t, good.Token), Tag: good.Tag, Nonce: good.Nonce},
		"tag":   {Token: good.Token, Tag: flipBit(t, good.Tag), Nonce: good.Nonce},
		"nonce": {Token: good.Token, Tag: good.Tag, Nonce: flipBit(t, good.Nonce)},
	}
	for name, triple := range cases {
		triple := triple
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, _, err := tc.Open(triple)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenMalformedFields(t *testing.T) {
	t.Parallel()

	tc, err := NewTokenCodec(testKey(0x55), testIssuer, time.Hour)
	require.NoError(t, err)

	good, err := tc.Issue("alice")
	require.NoError(t, err)

	shortTag := base64.StdEncoding.EncodeToString(make([]byte, TagSize-1))
	longNonce := base64.StdEncoding.EncodeToString(make([]byte, NonceSize+1))

	cases := map[string]TokenTriple{
		"bad base64 token": {Token: "!!!", Tag: good.Tag, Nonce: good.Nonce},
		"bad base64 tag":   {Token: good.Token, Tag: "!!!", Nonce: good.Nonce},
		"bad base64 nonce": {Token: good.Token, Tag: good.Tag, Nonce: "!!!"},
		"short tag":        {Token: good.Token, Tag: shortTag, Nonce: good.Nonce},
		"long nonce":       {Token: good.Token, Tag: good.Tag, Nonce: longNonce},
		"empty triple":     {},
	}
	for name, triple := range cases {
		triple := triple
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, _, err := tc.Open(triple)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenForeignIssuerRejected(t *testing.T) {
	t.Parallel()

	ours, err := NewTokenCodec(testKey(0x66), testIssuer, time.Hour)
	require.NoError(t, err)
	theirs, err := NewTokenCodec(testKey(0x66), "othershop", time.Hour)
	require.NoError(t, err)

	triple, err := theirs.Issue("alice")
	require.NoError(t, err)

	_, _, err = ours.Open(triple)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenWrongKeyRejected(t *testing.T) {
	t.Parallel()

	a, err := NewTokenCodec(testKey(0x77), testIssuer, time.Hour)
	require.NoError(t, err)
	b, err := NewTokenCodec(testKey(0x78), testIssuer, time.Hour)
	require.NoError(t, err)

	triple, err := a.Issue("alice")
	require.NoError(t, err)

	_, _, err = b.Open(triple)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenCodecRejectsBadInput(t *testing.T) {
	t.Parallel()

	_, err := NewTokenCodec(testKey(0x01)[:16], testIssuer, time.Hour)
	assert.ErrorIs(t, err, ErrBadKey)

	_, err = NewTokenCodec(testKey(0x01), "tooshort", time.Hour)
	assert.Error(t, err)
}
