package utils // package utils provides the sealing primitives behind passwords and tokens

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
)

// Fixed sizes of the AEAD construction used everywhere in this service:
// AES-256 in GCM with a 96-bit nonce and a 128-bit tag.
const (
	KeySize   = 32 // AES-256 key length in bytes
	NonceSize = 12 // GCM nonce length in bytes
	TagSize   = 16 // GCM authentication tag length in bytes
)

// ErrBadKey is returned when a key of the wrong length is supplied.
var ErrBadKey = errors.New("CryptoError")

// NewAEAD builds an AES-256-GCM cipher from a 32-byte key.  All callers in
// this package share it; the key decides which ciphertext space (customer
// passwords, admin passwords, tokens) the instance belongs to.
func NewAEAD(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, ErrBadKey
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
