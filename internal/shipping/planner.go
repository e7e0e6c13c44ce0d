// Package shipping holds the pure allocation logic of the shipment planner.
// The transactional side (locking cells, decrementing, registering
// shortages) lives in the shipment handler; this package only decides what
// to take from where.
package shipping

import "github.com/bookhaven/bookstore/internal/model"

// Allocation is one take from one stock cell.
type Allocation struct {
	LocationID uint32
	Take       uint32
}

// Plan allocates a wanted quantity greedily across the given cells in the
// order supplied (callers pass cells in ascending location id).  It returns
// the per-cell takes and the residual quantity no cell could cover.  Cells
// are not mutated.
func Plan(cells []model.StockCell, wanted uint32) ([]Allocation, uint32) {
	var takes []Allocation
	remaining := wanted
	for _, cell := range cells {
		if remaining == 0 {
			break
		}
		if cell.Quantity == 0 {
			continue
		}
		take := cell.Quantity
		if take > remaining {
			take = remaining
		}
		takes = append(takes, Allocation{LocationID: cell.LocationID, Take: take})
		remaining -= take
	}
	return takes, remaining
}

// PickSupplier chooses the supplier a residual is sourced from: the first
// offer (ascending supplier id) advertising at least the residual quantity.
// ok is false when no supplier qualifies, which aborts the whole shipment.
func PickSupplier(offers []model.SupplierOffer, residual uint32) (model.SupplierOffer, bool) {
	for _, o := range offers {
		if o.Available >= residual {
			return o, true
		}
	}
	return model.SupplierOffer{}, false
}
