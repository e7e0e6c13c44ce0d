package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Book represents a row of the `books` table.  UnitPrice is the current
// selling price; order items snapshot it at creation so later price changes
// do not rewrite history.
type Book struct {
	ID        uint32          // books.id
	Title     string          // books.title
	Author    string          // books.author
	ISBN      string          // books.isbn
	UnitPrice decimal.Decimal // books.unit_price
	CreatedAt time.Time       // books.created_at
	UpdatedAt time.Time       // books.updated_at
}

// StockCell is one `book_locations` row: the quantity of a book held at a
// physical location.  Total stock of a book is the sum over its cells.
type StockCell struct {
	BookID     uint32 // book_locations.book_id
	LocationID uint32 // book_locations.location_id
	Quantity   uint32 // book_locations.quantity (never negative)
}

// SupplierOffer is a `book_suppliers` row joined with the supplier name: a
// supplier's advertised availability for one book.  The shipment planner
// scans offers in ascending supplier id when registering shortages.
type SupplierOffer struct {
	SupplierID uint32 // book_suppliers.supplier_id
	BookID     uint32 // book_suppliers.book_id
	Available  uint32 // book_suppliers.available
	Name       string // suppliers.name
}
