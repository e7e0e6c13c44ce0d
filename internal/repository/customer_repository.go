package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bookhaven/bookstore/internal/model"
)

// CustomerRepo provides access to the 'customers' table.
type CustomerRepo struct{ DB *sql.DB }

func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{DB: db} }

const customerCols = "id,username,password,name,address,email,status,account_balance,credit_level,total_purchase,overdraft_limit,created_at,updated_at"

func scanCustomer(row *sql.Row) (model.Customer, error) {
	var c model.Customer
	err := row.Scan(&c.ID, &c.Username, &c.PasswordCipher, &c.Name, &c.Address,
		&c.Email, &c.Status, &c.Balance, &c.CreditLevel, &c.TotalPurchase,
		&c.OverdraftLimit, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// Create inserts a customer and returns its ID.  The password must already
// be sealed; new accounts start at the lowest credit level with the
// overdraft limit that level grants.
func (r *CustomerRepo) Create(ctx context.Context, username, passwordCipher, name, address, email string, level uint32, overdraft decimal.Decimal) (uint32, error) {
	username = strings.TrimSpace(username)
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO customers (username, password, name, address, email, status, account_balance, credit_level, total_purchase, overdraft_limit) VALUES (?,?,?,?,?,?,0,?,0,?)",
		username, passwordCipher, name, address, email, model.StatusActive, level, overdraft)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrUsernameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint32(id), nil
}

// GetByUsername fetches a customer by unique username.
func (r *CustomerRepo) GetByUsername(ctx context.Context, username string) (model.Customer, error) {
	return scanCustomer(r.DB.QueryRowContext(ctx,
		"SELECT "+customerCols+" FROM customers WHERE username=? LIMIT 1",
		strings.TrimSpace(username)))
}

// GetByID fetches a customer by id.
func (r *CustomerRepo) GetByID(ctx context.Context, id uint32) (model.Customer, error) {
	return scanCustomer(r.DB.QueryRowContext(ctx,
		"SELECT "+customerCols+" FROM customers WHERE id=? LIMIT 1", id))
}

// SnapshotTx reads the customer's shipping address and credit level inside
// an order-creation transaction.
func (r *CustomerRepo) SnapshotTx(ctx context.Context, tx *sql.Tx, id uint32) (string, uint32, error) {
	var addr string
	var level uint32
	err := tx.QueryRowContext(ctx,
		"SELECT address, credit_level FROM customers WHERE id=?", id).Scan(&addr, &level)
	return addr, level, err
}

// LockForPaymentTx loads balance, credit level and lifetime purchase with a
// row lock so concurrent payments serialize on the customer row.
func (r *CustomerRepo) LockForPaymentTx(ctx context.Context, tx *sql.Tx, id uint32) (balance, totalPurchase decimal.Decimal, level uint32, err error) {
	err = tx.QueryRowContext(ctx,
		"SELECT account_balance, total_purchase, credit_level FROM customers WHERE id=? FOR UPDATE",
		id).Scan(&balance, &totalPurchase, &level)
	return
}

// DebitTx applies a payment: the balance drops by amount and the lifetime
// purchase grows by the same amount.
func (r *CustomerRepo) DebitTx(ctx context.Context, tx *sql.Tx, id uint32, amount decimal.Decimal) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE customers SET account_balance = account_balance - ?, total_purchase = total_purchase + ? WHERE id=?",
		amount, amount, id)
	return err
}

// PromoteTx moves the customer to a new credit level and refreshes the
// overdraft limit from the level's rule, keeping the two in lockstep.
func (r *CustomerRepo) PromoteTx(ctx context.Context, tx *sql.Tx, id, level uint32, overdraft decimal.Decimal) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE customers SET credit_level=?, overdraft_limit=? WHERE id=?",
		level, overdraft, id)
	return err
}
