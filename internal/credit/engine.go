// Package credit maps customers to credit tiers and applies tier discounts
// to order amounts.  All arithmetic runs on decimals; intermediate division
// keeps the library's 16 fractional digits and only the final discount
// amount is rounded, half to even, to two digits.
package credit

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/bookhaven/bookstore/internal/model"
)

// ErrEmptyOrder rejects discount application over zero lines.
var ErrEmptyOrder = errors.New("BadRequest: order has no items")

// RuleSource yields credit rules by level.  Satisfied by
// repository.CreditRepo.
type RuleSource interface {
	GetByLevel(ctx context.Context, level uint32) (model.CreditRule, error)
	NextAbove(ctx context.Context, level uint32) (model.CreditRule, error)
}

// Amounts is the monetary outcome of applying a tier to an order.
type Amounts struct {
	Original       decimal.Decimal
	DiscountPct    decimal.Decimal
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal
}

// Engine resolves tiers and computes discounts.
type Engine struct {
	rules RuleSource
}

func NewEngine(rules RuleSource) *Engine { return &Engine{rules: rules} }

// TierOf returns the rule selected by a customer's credit level.  A level
// with no rule surfaces as repository.ErrUnknownTier.
func (e *Engine) TierOf(ctx context.Context, level uint32) (model.CreditRule, error) {
	return e.rules.GetByLevel(ctx, level)
}

var oneHundred = decimal.NewFromInt(100)

// Apply computes original, discount and total amounts for the given order
// lines under a tier.  Invariants: DiscountAmount = round2(Original *
// DiscountPct / 100) with banker's rounding, Total = Original -
// DiscountAmount, Total >= 0 for any DiscountPct in 0..100.
func Apply(items []model.OrderItem, rule model.CreditRule) (Amounts, error) {
	if len(items) == 0 {
		return Amounts{}, ErrEmptyOrder
	}
	original := decimal.Zero
	for _, it := range items {
		original = original.Add(it.TotalPrice)
	}
	discount := original.Mul(rule.DiscountPct).Div(oneHundred).RoundBank(2)
	return Amounts{
		Original:       original,
		DiscountPct:    rule.DiscountPct,
		DiscountAmount: discount,
		Total:          original.Sub(discount),
	}, nil
}

// UpgradeEligible reports whether a customer qualifies for promotion out of
// the given tier: both the balance and the lifetime purchase thresholds
// must be met.  Evaluated after each successful payment; it never demotes.
func UpgradeEligible(balance, totalPurchase decimal.Decimal, rule model.CreditRule) bool {
	return balance.GreaterThanOrEqual(rule.UpgradeBalance) &&
		totalPurchase.GreaterThanOrEqual(rule.UpgradePurchase)
}

// NextTier returns the tier directly above the given level, if any.
func (e *Engine) NextTier(ctx context.Context, level uint32) (model.CreditRule, error) {
	return e.rules.NextAbove(ctx, level)
}
