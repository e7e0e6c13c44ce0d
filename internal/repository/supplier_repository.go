package repository

import (
	"context"
	"database/sql"

	"github.com/bookhaven/bookstore/internal/model"
)

// SupplierRepo provides read access to the supplier catalogue
// ('suppliers' joined with 'book_suppliers').  The shipment planner is its
// only consumer; supplier CRUD lives outside this service's core.
type SupplierRepo struct{ DB *sql.DB }

func NewSupplierRepo(db *sql.DB) *SupplierRepo { return &SupplierRepo{DB: db} }

// OffersForBookTx lists the suppliers advertising a book, ordered by
// supplier id so "first supplier with enough availability" is
// deterministic.
func (r *SupplierRepo) OffersForBookTx(ctx context.Context, tx *sql.Tx, bookID uint32) ([]model.SupplierOffer, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT bs.supplier_id, bs.book_id, bs.available, s.name
		 FROM book_suppliers bs
		 JOIN suppliers s ON s.id = bs.supplier_id
		 WHERE bs.book_id=?
		 ORDER BY bs.supplier_id ASC`,
		bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var offers []model.SupplierOffer
	for rows.Next() {
		var o model.SupplierOffer
		if err := rows.Scan(&o.SupplierID, &o.BookID, &o.Available, &o.Name); err != nil {
			return nil, err
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}
