package shipping

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bookhaven/bookstore/internal/model"
)

func cells(quantities ...uint32) []model.StockCell {
	out := make([]model.StockCell, 0, len(quantities))
	for i, q := range quantities {
		out = append(out, model.StockCell{BookID: 1, LocationID: uint32(i + 1), Quantity: q})
	}
	return out
}

func TestPlan(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name         string
		cells        []model.StockCell
		wanted       uint32
		wantTakes    []Allocation
		wantResidual uint32
	}{
		{
			name:      "single cell covers all",
			cells:     cells(10),
			wanted:    4,
			wantTakes: []Allocation{{LocationID: 1, Take: 4}},
		},
		{
			name:   "spread across cells in order",
			cells:  cells(3, 2, 5),
			wanted: 7,
			wantTakes: []Allocation{
				{LocationID: 1, Take: 3},
				{LocationID: 2, Take: 2},
				{LocationID: 3, Take: 2},
			},
		},
		{
			name:   "exact drain",
			cells:  cells(3, 4),
			wanted: 7,
			wantTakes: []Allocation{
				{LocationID: 1, Take: 3},
				{LocationID: 2, Take: 4},
			},
		},
		{
			name:   "empty cells skipped",
			cells:  cells(0, 0, 5),
			wanted: 5,
			wantTakes: []Allocation{
				{LocationID: 3, Take: 5},
			},
		},
		{
			name:   "shortfall leaves residual",
			cells:  cells(2, 1),
			wanted: 9,
			wantTakes: []Allocation{
				{LocationID: 1, Take: 2},
				{LocationID: 2, Take: 1},
			},
			wantResidual: 6,
		},
		{
			name:         "no stock at all",
			cells:        cells(0, 0),
			wanted:       3,
			wantResidual: 3,
		},
		{
			name:   "zero wanted takes nothing",
			cells:  cells(5),
			wanted: 0,
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			takes, residual := Plan(tc.cells, tc.wanted)
			assert.Equal(t, tc.wantTakes, takes)
			assert.Equal(t, tc.wantResidual, residual)
		})
	}
}

func TestPlanDoesNotMutateCells(t *testing.T) {
	t.Parallel()

	in := cells(3, 2)
	Plan(in, 5)
	assert.Equal(t, cells(3, 2), in)
}

func TestPickSupplier(t *testing.T) {
	t.Parallel()

	offers := []model.SupplierOffer{
		{SupplierID: 1, BookID: 1, Available: 2, Name: "small"},
		{SupplierID: 2, BookID: 1, Available: 8, Name: "medium"},
		{SupplierID: 3, BookID: 1, Available: 50, Name: "large"},
	}

	t.Run("first sufficient offer wins", func(t *testing.T) {
		t.Parallel()
		got, ok := PickSupplier(offers, 5)
		assert.True(t, ok)
		assert.Equal(t, uint32(2), got.SupplierID)
	})

	t.Run("exact availability qualifies", func(t *testing.T) {
		t.Parallel()
		got, ok := PickSupplier(offers, 8)
		assert.True(t, ok)
		assert.Equal(t, uint32(2), got.SupplierID)
	})

	t.Run("nobody can cover", func(t *testing.T) {
		t.Parallel()
		_, ok := PickSupplier(offers, 51)
		assert.False(t, ok)
	})

	t.Run("no offers", func(t *testing.T) {
		t.Parallel()
		_, ok := PickSupplier(nil, 1)
		assert.False(t, ok)
	})
}
