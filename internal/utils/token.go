package utils

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"time"
)

// Token errors.  Every crypto, base64 or timestamp failure during opening
// collapses into ErrInvalidToken so that callers cannot be used as a
// decoding oracle; only the expiry check is reported separately, so clients
// can prompt a re-login instead of treating the token as tampered.
var (
	ErrInvalidToken = errors.New("InvalidToken")
	ErrExpired      = errors.New("Expired")
)

// Payload layout: a 32-byte RFC-3339 expiry field padded with NUL bytes,
// a fixed 9-byte issuer tag, then the username.
const (
	expiryFieldLen = 32
	issuerLen      = 9
	payloadPrefix  = expiryFieldLen + issuerLen
)

// TokenTriple is the wire form of an issued token.  All three fields are
// standard base64.  The Token field (the AEAD ciphertext without its tag) is
// also what the session store persists as the customer's current token.
type TokenTriple struct {
	Token string `json:"token"`
	Tag   string `json:"tag"`
	Nonce string `json:"nonce"`
}

// TokenCodec issues and opens sealed authentication tokens.  A token packs
// {expiry, issuer, username} into a single AES-256-GCM blob with a fresh
// random nonce per issue, so two tokens for the same user never share
// ciphertext.
type TokenCodec struct {
	aead     cipher.AEAD
	issuer   string
	validity time.Duration
}

// NewTokenCodec builds a codec from a 32-byte key, a 9-byte issuer tag and
// the absolute token lifetime.
func NewTokenCodec(key []byte, issuer string, validity time.Duration) (*TokenCodec, error) {
	if len(issuer) != issuerLen {
		return nil, errors.New("CryptoError: issuer must be exactly 9 bytes")
	}
	aead, err := NewAEAD(key)
	if err != nil {
		return nil, err
	}
	return &TokenCodec{aead: aead, issuer: issuer, validity: validity}, nil
}

// Issue seals a token for the given username expiring after the codec's
// validity window.  The returned triple carries ciphertext, tag and nonce
// separately, each base64 encoded.
func (tc *TokenCodec) Issue(username string) (TokenTriple, error) {
	expiry := time.Now().UTC().Add(tc.validity)
	stamp := expiry.Format(time.RFC3339)
	if len(stamp) > expiryFieldLen {
		return TokenTriple{}, errors.New("CryptoError: timestamp exceeds field width")
	}

	payload := make([]byte, payloadPrefix+len(username))
	copy(payload, stamp) // remainder of the field stays NUL
	copy(payload[expiryFieldLen:], tc.issuer)
	copy(payload[payloadPrefix:], username)

	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return TokenTriple{}, err
	}

	sealed := tc.aead.Seal(nil, nonce, payload, nil)
	cut := len(sealed) - TagSize
	return TokenTriple{
		Token: base64.StdEncoding.EncodeToString(sealed[:cut]),
		Tag:   base64.StdEncoding.EncodeToString(sealed[cut:]),
		Nonce: base64.StdEncoding.EncodeToString(nonce),
	}, nil
}

// Open authenticates and decrypts a triple, returning the embedded username
// and expiry.  It does not judge expiry; Validate does.
func (tc *TokenCodec) Open(t TokenTriple) (string, time.Time, error) {
	ct, err := base64.StdEncoding.DecodeString(t.Token)
	if err != nil {
		return "", time.Time{}, ErrInvalidToken
	}
	tag, err := base64.StdEncoding.DecodeString(t.Tag)
	if err != nil {
		return "", time.Time{}, ErrInvalidToken
	}
	nonce, err := base64.StdEncoding.DecodeString(t.Nonce)
	if err != nil {
		return "", time.Time{}, ErrInvalidToken
	}
	if len(tag) != TagSize || len(nonce) != NonceSize {
		return "", time.Time{}, ErrInvalidToken
	}

	sealed := make([]byte, 0, len(ct)+len(tag))
	sealed = append(sealed, ct...)
	sealed = append(sealed, tag...)
	plain, err := tc.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", time.Time{}, ErrInvalidToken
	}
	if len(plain) <= payloadPrefix {
		return "", time.Time{}, ErrInvalidToken
	}
	if string(plain[expiryFieldLen:payloadPrefix]) != tc.issuer {
		return "", time.Time{}, ErrInvalidToken
	}

	stamp := strings.TrimRight(string(plain[:expiryFieldLen]), "\x00")
	expiry, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return "", time.Time{}, ErrInvalidToken
	}
	return string(plain[payloadPrefix:]), expiry, nil
}

// Validate opens the triple and additionally enforces the absolute expiry.
func (tc *TokenCodec) Validate(t TokenTriple) (string, error) {
	username, expiry, err := tc.Open(t)
	if err != nil {
		return "", err
	}
	if !expiry.After(time.Now().UTC()) {
		return "", ErrExpired
	}
	return username, nil
}
