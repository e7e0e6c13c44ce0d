package repository

import (
	"context"
	"database/sql"

	"github.com/bookhaven/bookstore/internal/model"
)

// SessionRepo persists the single online-session record each customer owns
// in 'authed_customers'.  Rows are created on first login, updated in place
// afterwards and never deleted.  The repository only stores and returns
// records; freshness against the idle timeout is judged by the identity
// resolver so its callers can tell a missing record from a stale one.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Open installs a freshly issued token as the customer's current one.  The
// upsert makes the latest login win: a concurrent login for the same
// customer is silently superseded and its next request fails the token
// equality check.
func (r *SessionRepo) Open(ctx context.Context, customerID uint32, tokenCipher string) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO authed_customers (customer_id, token_cipher, last_used, is_online)
		 VALUES (?,?,UTC_TIMESTAMP(),1)
		 ON DUPLICATE KEY UPDATE token_cipher=VALUES(token_cipher), last_used=UTC_TIMESTAMP(), is_online=1`,
		customerID, tokenCipher)
	return err
}

// Touch refreshes last_used and the online flag for an existing record.
func (r *SessionRepo) Touch(ctx context.Context, customerID uint32, tokenCipher string, online bool) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE authed_customers SET token_cipher=?, last_used=UTC_TIMESTAMP(), is_online=? WHERE customer_id=?",
		tokenCipher, online, customerID)
	return err
}

// Lookup returns the customer's session record, expired or not.
// sql.ErrNoRows means the customer has never logged in.
func (r *SessionRepo) Lookup(ctx context.Context, customerID uint32) (model.AuthedCustomer, error) {
	var s model.AuthedCustomer
	err := r.DB.QueryRowContext(ctx,
		"SELECT customer_id, token_cipher, last_used, is_online FROM authed_customers WHERE customer_id=? LIMIT 1",
		customerID).Scan(&s.CustomerID, &s.TokenCipher, &s.LastUsed, &s.IsOnline)
	return s, err
}

// Invalidate marks the session offline.  The last token stays in place for
// forensic comparison.
func (r *SessionRepo) Invalidate(ctx context.Context, customerID uint32) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE authed_customers SET is_online=0 WHERE customer_id=?", customerID)
	return err
}
