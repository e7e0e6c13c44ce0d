package utils

import (
	"crypto/cipher"
	"crypto/subtle"
	"encoding/base64"
)

// PasswordCipher turns a clear-text password into a deterministic ciphertext
// used purely as a comparison token.  The nonce is fixed at all zeroes so
// that equal passwords under the same key always seal to the same bytes;
// the ciphertext is never decrypted and must not be exposed to any other
// system.  Customers and admins use separate keys, so their ciphertext
// spaces never overlap.
type PasswordCipher struct {
	aead cipher.AEAD
}

// NewPasswordCipher builds a PasswordCipher from a 32-byte key.
func NewPasswordCipher(key []byte) (*PasswordCipher, error) {
	aead, err := NewAEAD(key)
	if err != nil {
		return nil, err
	}
	return &PasswordCipher{aead: aead}, nil
}

// Seal returns the base64 comparison token for a password.  The input is
// copied into an owned buffer before sealing; nothing aliases the caller's
// string.
func (p *PasswordCipher) Seal(plain string) string {
	nonce := make([]byte, NonceSize) // all zeroes, deterministic on purpose
	out := p.aead.Seal(nil, nonce, []byte(plain), nil)
	return base64.StdEncoding.EncodeToString(out)
}

// Matches reports whether the stored ciphertext corresponds to the supplied
// clear-text password.  Comparison is constant time on the ciphertext.
func (p *PasswordCipher) Matches(stored, plain string) bool {
	sealed := p.Seal(plain)
	return subtle.ConstantTimeCompare([]byte(stored), []byte(sealed)) == 1
}
