package credit

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhaven/bookstore/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func items(prices ...string) []model.OrderItem {
	out := make([]model.OrderItem, 0, len(prices))
	for i, p := range prices {
		out = append(out, model.OrderItem{BookID: uint32(i + 1), Quantity: 1, TotalPrice: dec(p)})
	}
	return out
}

func TestApplyDiscount(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name         string
		prices       []string
		pct          string
		wantOriginal string
		wantDiscount string
		wantTotal    string
	}{
		{name: "ten percent", prices: []string{"60.00", "40.00"}, pct: "10",
			wantOriginal: "100.00", wantDiscount: "10.00", wantTotal: "90.00"},
		{name: "no discount", prices: []string{"19.99"}, pct: "0",
			wantOriginal: "19.99", wantDiscount: "0.00", wantTotal: "19.99"},
		{name: "full discount", prices: []string{"42.50"}, pct: "100",
			wantOriginal: "42.50", wantDiscount: "42.50", wantTotal: "0.00"},
		{name: "single decimal pct", prices: []string{"80.00"}, pct: "12.5",
			wantOriginal: "80.00", wantDiscount: "10.00", wantTotal: "70.00"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := Apply(items(tc.prices...), model.CreditRule{DiscountPct: dec(tc.pct)})
			require.NoError(t, err)
			assert.True(t, got.Original.Equal(dec(tc.wantOriginal)), "original %s", got.Original)
			assert.True(t, got.DiscountAmount.Equal(dec(tc.wantDiscount)), "discount %s", got.DiscountAmount)
			assert.True(t, got.Total.Equal(dec(tc.wantTotal)), "total %s", got.Total)
		})
	}
}

// Half-cent discounts round half to even, not half up.
func TestApplyRoundsHalfToEven(t *testing.T) {
	t.Parallel()

	// 25.00 * 0.1% = 0.025 -> 0.02; 75.00 * 0.1% = 0.075 -> 0.08.
	down, err := Apply(items("25.00"), model.CreditRule{DiscountPct: dec("0.1")})
	require.NoError(t, err)
	assert.True(t, down.DiscountAmount.Equal(dec("0.02")), "got %s", down.DiscountAmount)

	up, err := Apply(items("75.00"), model.CreditRule{DiscountPct: dec("0.1")})
	require.NoError(t, err)
	assert.True(t, up.DiscountAmount.Equal(dec("0.08")), "got %s", up.DiscountAmount)
}

func TestApplyEmptyOrder(t *testing.T) {
	t.Parallel()

	_, err := Apply(nil, model.CreditRule{DiscountPct: dec("10")})
	assert.ErrorIs(t, err, ErrEmptyOrder)
}

func TestUpgradeEligible(t *testing.T) {
	t.Parallel()

	rule := model.CreditRule{
		UpgradeBalance:  dec("500.00"),
		UpgradePurchase: dec("1000.00"),
	}

	cases := []struct {
		name     string
		balance  string
		purchase string
		want     bool
	}{
		{name: "both met", balance: "500.00", purchase: "1000.00", want: true},
		{name: "both exceeded", balance: "900.00", purchase: "2500.00", want: true},
		{name: "balance short", balance: "499.99", purchase: "2500.00", want: false},
		{name: "purchase short", balance: "900.00", purchase: "999.99", want: false},
		{name: "both short", balance: "0.00", purchase: "0.00", want: false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, UpgradeEligible(dec(tc.balance), dec(tc.purchase), rule))
		})
	}
}
