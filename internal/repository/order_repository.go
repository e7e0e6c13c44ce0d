package repository

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/bookhaven/bookstore/internal/model"
)

// OrderRepo provides access to 'orders', 'order_items' and 'order_events'.
// Creation and state transitions run inside transactions driven by the
// handlers; the *Tx methods operate on the caller's transaction and never
// commit themselves.
type OrderRepo struct{ DB *sql.DB }

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{DB: db} }

// CreateTx inserts the order row and populates the generated ID on the
// record.  Amounts start at zero; SetAmountsTx fills them once every line's
// price has been snapshotted.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO orders (customer_id, order_date, original_amount, discount_pct, discount_amount, total_amount, shipping_address, payment_status, shipping_status)
		 VALUES (?,?,0,0,0,0,?,?,?)`,
		o.CustomerID, o.Date, o.ShippingAddress, model.PaymentUnpaid, model.ShippingPending)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint32(id)
	o.PaymentStatus = model.PaymentUnpaid
	o.ShippingStatus = model.ShippingPending
	return nil
}

// CreateItemsBulkTx inserts all order lines in one statement.  An empty
// slice is a no-op; callers validate non-emptiness before opening the
// transaction.
func (r *OrderRepo) CreateItemsBulkTx(ctx context.Context, tx *sql.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	query := "INSERT INTO order_items (order_id, book_id, quantity, total_price) VALUES "
	args := make([]interface{}, 0, len(items)*4)
	for i, it := range items {
		if i > 0 {
			query += ","
		}
		query += "(?,?,?,?)"
		args = append(args, it.OrderID, it.BookID, it.Quantity, it.TotalPrice)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// SetAmountsTx stores the computed amounts on the order.
func (r *OrderRepo) SetAmountsTx(ctx context.Context, tx *sql.Tx, orderID uint32, original, pct, discount, total decimal.Decimal) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE orders SET original_amount=?, discount_pct=?, discount_amount=?, total_amount=? WHERE id=?",
		original, pct, discount, total, orderID)
	return err
}

const orderCols = "id,customer_id,order_date,original_amount,discount_pct,discount_amount,total_amount,shipping_address,payment_status,shipping_status"

func scanOrder(scan func(dest ...any) error) (model.Order, error) {
	var o model.Order
	err := scan(&o.ID, &o.CustomerID, &o.Date, &o.Original, &o.DiscountPct,
		&o.DiscountAmount, &o.Total, &o.ShippingAddress, &o.PaymentStatus, &o.ShippingStatus)
	if err == sql.ErrNoRows {
		return o, ErrOrderNotFound
	}
	return o, err
}

// GetForUpdateTx loads an order with a row lock, serializing concurrent
// payment and shipment transitions on the same order.
func (r *OrderRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, orderID uint32) (model.Order, error) {
	row := tx.QueryRowContext(ctx,
		"SELECT "+orderCols+" FROM orders WHERE id=? FOR UPDATE", orderID)
	return scanOrder(row.Scan)
}

// ItemsTx loads the order's lines inside the caller's transaction.
func (r *OrderRepo) ItemsTx(ctx context.Context, tx *sql.Tx, orderID uint32) ([]model.OrderItem, error) {
	rows, err := tx.QueryContext(ctx,
		"SELECT id, order_id, book_id, quantity, total_price FROM order_items WHERE order_id=? ORDER BY id",
		orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []model.OrderItem
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.BookID, &it.Quantity, &it.TotalPrice); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// SetPaymentTx transitions the payment status.
func (r *OrderRepo) SetPaymentTx(ctx context.Context, tx *sql.Tx, orderID uint32, status string) error {
	_, err := tx.ExecContext(ctx, "UPDATE orders SET payment_status=? WHERE id=?", status, orderID)
	return err
}

// SetShippingTx transitions the shipping status.
func (r *OrderRepo) SetShippingTx(ctx context.Context, tx *sql.Tx, orderID uint32, status string) error {
	_, err := tx.ExecContext(ctx, "UPDATE orders SET shipping_status=? WHERE id=?", status, orderID)
	return err
}

// AddEventTx appends a basic event record to the order's history, e.g. the
// id of a shortage registered during a partial shipment.
func (r *OrderRepo) AddEventTx(ctx context.Context, tx *sql.Tx, orderID uint32, kind, note string) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO order_events (order_id, kind, note) VALUES (?,?,?)",
		orderID, kind, note)
	return err
}

// ListByCustomer returns a customer's orders, newest first, without lines.
func (r *OrderRepo) ListByCustomer(ctx context.Context, customerID uint32) ([]model.Order, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+orderCols+" FROM orders WHERE customer_id=? ORDER BY id DESC", customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Order
	for rows.Next() {
		o, err := scanOrder(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// GetByIDForCustomer returns one order with its lines, enforcing ownership.
func (r *OrderRepo) GetByIDForCustomer(ctx context.Context, orderID, customerID uint32) (model.Order, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+orderCols+" FROM orders WHERE id=? AND customer_id=? LIMIT 1", orderID, customerID)
	o, err := scanOrder(row.Scan)
	if err != nil {
		return o, err
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, order_id, book_id, quantity, total_price FROM order_items WHERE order_id=? ORDER BY id",
		orderID)
	if err != nil {
		return o, err
	}
	defer rows.Close()
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.BookID, &it.Quantity, &it.TotalPrice); err != nil {
			return o, err
		}
		o.Items = append(o.Items, it)
	}
	return o, rows.Err()
}
