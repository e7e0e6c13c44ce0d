package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/bookhaven/bookstore/internal/model"
)

// ShortageRepo provides access to 'shortages' and 'book_shortages'.
type ShortageRepo struct{ DB *sql.DB }

func NewShortageRepo(db *sql.DB) *ShortageRepo { return &ShortageRepo{DB: db} }

// CreateTx registers a shortage with its lines inside the shipment
// transaction, so the shortage becomes visible together with the stock
// decrements it explains.  The generated id is populated on the record.
func (r *ShortageRepo) CreateTx(ctx context.Context, tx *sql.Tx, s *model.Shortage) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO shortages (registered_at, resolved) VALUES (?,0)", s.Registered)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint32(id)

	if len(s.Items) == 0 {
		return nil
	}
	query := "INSERT INTO book_shortages (shortage_id, book_id, supplier_id, quantity) VALUES "
	args := make([]interface{}, 0, len(s.Items)*4)
	for i := range s.Items {
		if i > 0 {
			query += ","
		}
		query += "(?,?,?,?)"
		s.Items[i].ShortageID = s.ID
		args = append(args, s.ID, s.Items[i].BookID, s.Items[i].SupplierID, s.Items[i].Quantity)
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}

// List returns shortages, optionally restricted to unresolved ones, newest
// first, with their lines attached.
func (r *ShortageRepo) List(ctx context.Context, onlyOpen bool) ([]model.Shortage, error) {
	q := "SELECT id, registered_at, resolved FROM shortages"
	if onlyOpen {
		q += " WHERE resolved=0"
	}
	q += " ORDER BY id DESC"
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Shortage
	index := map[uint32]int{}
	for rows.Next() {
		var s model.Shortage
		var reg time.Time
		if err := rows.Scan(&s.ID, &reg, &s.Resolved); err != nil {
			return nil, err
		}
		s.Registered = reg
		index[s.ID] = len(out)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	itemRows, err := r.DB.QueryContext(ctx,
		"SELECT id, shortage_id, book_id, supplier_id, quantity FROM book_shortages ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var it model.ShortageItem
		if err := itemRows.Scan(&it.ID, &it.ShortageID, &it.BookID, &it.SupplierID, &it.Quantity); err != nil {
			return nil, err
		}
		if i, ok := index[it.ShortageID]; ok {
			out[i].Items = append(out[i].Items, it)
		}
	}
	return out, itemRows.Err()
}

// Resolve marks a shortage as handled once the sourced stock has arrived.
func (r *ShortageRepo) Resolve(ctx context.Context, shortageID uint32) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE shortages SET resolved=1 WHERE id=? AND resolved=0", shortageID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrIllegalTransition
	}
	return nil
}
