package model

import "time"

// AuthedCustomer models an entry in the `authed_customers` table.  There is
// at most one row per customer: a new login replaces the stored token in
// place and a logout only flips IsOnline, keeping the last token for
// comparison.  Rows are never deleted.
//
// Fields:
//  CustomerID  – owner of the session (primary key).
//  TokenCipher – base64 AEAD ciphertext of the currently valid token.
//  LastUsed    – timestamp of the last successful verification.
//  IsOnline    – false after logout or idle timeout.
type AuthedCustomer struct {
	CustomerID  uint32    // authed_customers.customer_id
	TokenCipher string    // authed_customers.token_cipher
	LastUsed    time.Time // authed_customers.last_used
	IsOnline    bool      // authed_customers.is_online
}
