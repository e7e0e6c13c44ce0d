package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account status values shared by customers and admins.  They mirror the
// ENUM columns in the schema.
const (
	StatusActive    = "ACTIVE"
	StatusCancelled = "CANCELLED"
	StatusBanned    = "BANNED"
)

// Customer represents a row of the `customers` table.  The password column
// holds a deterministic AEAD ciphertext used only for equality comparison at
// login; the clear text is never stored.
//
// Fields:
//  ID             – primary key identifier of the customer.
//  Username       – unique login name.
//  PasswordCipher – base64 AEAD ciphertext of the password.
//  Name           – display name.
//  Address        – shipping address snapshotted onto new orders.
//  Email          – contact email.
//  Status         – ACTIVE, CANCELLED or BANNED.
//  Balance        – account balance; may be negative up to the overdraft limit.
//  CreditLevel    – selects exactly one row of `credit_rules`.
//  TotalPurchase  – lifetime sum of paid order totals.
//  OverdraftLimit – copy of the credit rule's overdraft limit; refreshed on
//                   every credit level change.
type Customer struct {
	ID             uint32          // customers.id
	Username       string          // customers.username
	PasswordCipher string          // customers.password
	Name           string          // customers.name
	Address        string          // customers.address
	Email          string          // customers.email
	Status         string          // customers.status
	Balance        decimal.Decimal // customers.account_balance
	CreditLevel    uint32          // customers.credit_level
	TotalPurchase  decimal.Decimal // customers.total_purchase
	OverdraftLimit decimal.Decimal // customers.overdraft_limit
	CreatedAt      time.Time       // customers.created_at
	UpdatedAt      time.Time       // customers.updated_at
}
