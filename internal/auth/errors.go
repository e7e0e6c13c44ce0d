// Package auth resolves sealed token triples into verified identities and
// enforces role-based admission for staff operations.
package auth

import "errors"

// Verification errors, one per failing rung of the resolver ladder.  The
// Error() strings are the stable kinds carried on the wire.  Token-level
// failures (InvalidToken, Expired) originate in the utils codec and pass
// through unchanged.
var (
	// ErrUnknownSubject: the token decodes to a username with no account.
	ErrUnknownSubject = errors.New("UnknownSubject")
	// ErrNoSession: the subject has never logged in.
	ErrNoSession = errors.New("NoSession")
	// ErrLoggedOut: the session exists but is marked offline.
	ErrLoggedOut = errors.New("LoggedOut")
	// ErrTokenSuperseded: a later login replaced this token.
	ErrTokenSuperseded = errors.New("TokenSuperseded")
	// ErrIdleTimeout: too long since the last verified request; the session
	// has been switched offline as a side effect.
	ErrIdleTimeout = errors.New("IdleTimeout")
	// ErrPermissionDenied: the admin's role is below the required minimum.
	ErrPermissionDenied = errors.New("PermissionDenied")
)
