package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/bookhaven/bookstore/internal/model"
	"github.com/bookhaven/bookstore/internal/utils"
)

// CustomerSource yields customer accounts by username.  Satisfied by
// repository.CustomerRepo.
type CustomerSource interface {
	GetByUsername(ctx context.Context, username string) (model.Customer, error)
}

// AdminSource yields admin accounts by username.  Satisfied by
// repository.AdminRepo.
type AdminSource interface {
	GetByUsername(ctx context.Context, username string) (model.Admin, error)
}

// SessionStore is the slice of the session repository the resolver needs.
type SessionStore interface {
	Lookup(ctx context.Context, customerID uint32) (model.AuthedCustomer, error)
	Touch(ctx context.Context, customerID uint32, tokenCipher string, online bool) error
	Invalidate(ctx context.Context, customerID uint32) error
}

// Verifier turns a sealed token triple into a verified identity.  Customer
// verification walks the full session ladder; admin verification only
// requires a valid token and an active admin row (staff tokens are not
// idle-revoked).
type Verifier struct {
	codec       *utils.TokenCodec
	customers   CustomerSource
	admins      AdminSource
	sessions    SessionStore
	idleTimeout time.Duration
	now         func() time.Time
}

// NewVerifier wires the resolver.  idleTimeout bounds inactivity between
// verified requests independently of the token's absolute expiry.
func NewVerifier(codec *utils.TokenCodec, customers CustomerSource, admins AdminSource, sessions SessionStore, idleTimeout time.Duration) *Verifier {
	return &Verifier{
		codec:       codec,
		customers:   customers,
		admins:      admins,
		sessions:    sessions,
		idleTimeout: idleTimeout,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// VerifyUser authenticates a customer request.  Each rung fails with its own
// error so callers can tell tampering from expiry from a replaced session:
//
//  1. token opens and is within its absolute validity,
//  2. the embedded username belongs to a customer,
//  3. a session record exists,
//  4. the session is online,
//  5. the supplied ciphertext is the session's current token,
//  6. the idle timeout has not elapsed (violations switch the session
//     offline before reporting),
//  7. on success last_used is refreshed.
func (v *Verifier) VerifyUser(ctx context.Context, t utils.TokenTriple) (uint32, string, error) {
	username, err := v.codec.Validate(t)
	if err != nil {
		return 0, "", err
	}

	cust, err := v.customers.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, "", ErrUnknownSubject
		}
		return 0, "", err
	}

	sess, err := v.sessions.Lookup(ctx, cust.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, "", ErrNoSession
		}
		return 0, "", err
	}
	if !sess.IsOnline {
		return 0, "", ErrLoggedOut
	}
	if sess.TokenCipher != t.Token {
		return 0, "", ErrTokenSuperseded
	}
	if v.now().Sub(sess.LastUsed) > v.idleTimeout {
		if err := v.sessions.Invalidate(ctx, cust.ID); err != nil {
			return 0, "", err
		}
		return 0, "", ErrIdleTimeout
	}

	if err := v.sessions.Touch(ctx, cust.ID, t.Token, true); err != nil {
		return 0, "", err
	}
	return cust.ID, cust.Username, nil
}

// VerifyAdmin authenticates a staff request and checks the admin's role
// against the required minimum under the order Staff < Admin.  Unlike
// customer verification there is no session record to consult: a valid
// token naming an active admin is sufficient.  A role below the minimum
// returns ErrPermissionDenied.
func (v *Verifier) VerifyAdmin(ctx context.Context, t utils.TokenTriple, min model.Role) (uint32, string, error) {
	username, err := v.codec.Validate(t)
	if err != nil {
		return 0, "", err
	}

	adm, err := v.admins.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, "", ErrUnknownSubject
		}
		return 0, "", err
	}
	if adm.Status != model.StatusActive {
		return 0, "", ErrPermissionDenied
	}
	if adm.Role < min {
		return 0, "", ErrPermissionDenied
	}
	return adm.ID, adm.Username, nil
}
