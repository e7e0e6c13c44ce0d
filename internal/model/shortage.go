package model

import "time"

// Shortage represents a row of the `shortages` table.  One shortage is
// registered per shipment that could not be fully satisfied from local
// stock; its items name the supplier each residual must be sourced from.
type Shortage struct {
	ID         uint32         // shortages.id
	Registered time.Time      // shortages.registered_at
	Resolved   bool           // shortages.resolved
	Items      []ShortageItem // shortages -> book_shortages
}

// ShortageItem is a row of the `book_shortages` table.  A line is well
// formed only when the named supplier advertises at least Quantity copies of
// the book; the shipment planner enforces this before writing.
type ShortageItem struct {
	ID         uint32 // book_shortages.id
	ShortageID uint32 // book_shortages.shortage_id
	BookID     uint32 // book_shortages.book_id
	SupplierID uint32 // book_shortages.supplier_id
	Quantity   uint32 // book_shortages.quantity
}
