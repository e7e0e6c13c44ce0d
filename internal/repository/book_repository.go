package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/bookhaven/bookstore/internal/model"
)

// BookRepo provides access to the 'books' catalogue and its stock cells in
// 'book_locations'.
type BookRepo struct{ DB *sql.DB }

func NewBookRepo(db *sql.DB) *BookRepo { return &BookRepo{DB: db} }

// List returns the whole catalogue ordered by id.  Served publicly and
// cached by the Redis response middleware.
func (r *BookRepo) List(ctx context.Context) ([]model.Book, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,title,author,isbn,unit_price,created_at,updated_at FROM books ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Book
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.UnitPrice, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// GetByID fetches a single book.
func (r *BookRepo) GetByID(ctx context.Context, id uint32) (model.Book, error) {
	var b model.Book
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,title,author,isbn,unit_price,created_at,updated_at FROM books WHERE id=? LIMIT 1",
		id).Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.UnitPrice, &b.CreatedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return b, ErrBookNotFound
	}
	return b, err
}

// PriceTx reads a book's current unit price inside a transaction, so every
// line of one order snapshots prices from the same consistent view.
func (r *BookRepo) PriceTx(ctx context.Context, tx *sql.Tx, bookID uint32) (decimal.Decimal, error) {
	var price decimal.Decimal
	err := tx.QueryRowContext(ctx,
		"SELECT unit_price FROM books WHERE id=?", bookID).Scan(&price)
	if err == sql.ErrNoRows {
		return price, ErrBookNotFound
	}
	return price, err
}

// CellsTx loads a book's stock cells in ascending location order with row
// locks held until commit.  The deterministic order keeps greedy allocation
// reproducible and prevents lock-order inversions between shipments.
func (r *BookRepo) CellsTx(ctx context.Context, tx *sql.Tx, bookID uint32) ([]model.StockCell, error) {
	rows, err := tx.QueryContext(ctx,
		"SELECT book_id, location_id, quantity FROM book_locations WHERE book_id=? ORDER BY location_id ASC FOR UPDATE",
		bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var cells []model.StockCell
	for rows.Next() {
		var c model.StockCell
		if err := rows.Scan(&c.BookID, &c.LocationID, &c.Quantity); err != nil {
			return nil, err
		}
		cells = append(cells, c)
	}
	return cells, rows.Err()
}

// DecrementCellTx takes stock out of one cell.  The quantity guard makes the
// statement a no-op instead of driving the cell negative if the cell changed
// under us; with the locks from CellsTx that indicates a logic error.
func (r *BookRepo) DecrementCellTx(ctx context.Context, tx *sql.Tx, bookID, locationID, take uint32) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE book_locations SET quantity = quantity - ? WHERE book_id=? AND location_id=? AND quantity >= ?",
		take, bookID, locationID, take)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.New("DBError: stock cell underflow")
	}
	return nil
}
