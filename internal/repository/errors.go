// Package repository implements SQL access to the bookstore schema.  This
// file defines sentinel errors shared across repositories.  Their Error()
// strings are the stable kinds exposed on the wire; handlers append a short
// context line (e.g. "BookNotFound: 42") but never a stack trace.
package repository

import "errors"

// ErrBookNotFound is returned when an order line names a book that does not
// exist in the catalogue.
var ErrBookNotFound = errors.New("BookNotFound")

// ErrOrderNotFound is returned when an order id does not exist or does not
// belong to the requesting customer.
var ErrOrderNotFound = errors.New("OrderNotFound")

// ErrUnknownTier is returned when a customer's credit level has no matching
// row in credit_rules.
var ErrUnknownTier = errors.New("UnknownTier")

// ErrIllegalTransition is returned when a payment or shipping state change
// is requested from a state that does not permit it.
var ErrIllegalTransition = errors.New("IllegalTransition")

// ErrNoSupplier is returned by the shipment planner when a residual cannot
// be placed because no supplier advertises enough availability.
var ErrNoSupplier = errors.New("NoSupplier")

// ErrUsernameExists is returned when registration collides with an existing
// username.
var ErrUsernameExists = errors.New("BadRequest: username already exists")
