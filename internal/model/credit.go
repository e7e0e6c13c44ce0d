package model

import "github.com/shopspring/decimal"

// CreditRule is a row of the `credit_rules` table.  A customer's
// credit_level selects exactly one rule; the rule fixes the discount applied
// at order creation, the overdraft the customer may run, and the thresholds
// for promotion to the next level.
//
// Fields:
//  Level           – tier identifier; tiers are ordered by this value.
//  DiscountPct     – percentage with one decimal digit, 0..100.
//  OverdraftLimit  – how far below zero the balance may go.
//  UpgradeBalance  – minimum balance required for promotion.
//  UpgradePurchase – minimum lifetime purchase required for promotion.
type CreditRule struct {
	Level           uint32          // credit_rules.level
	DiscountPct     decimal.Decimal // credit_rules.discount_pct
	OverdraftLimit  decimal.Decimal // credit_rules.overdraft_limit
	UpgradeBalance  decimal.Decimal // credit_rules.upgrade_balance
	UpgradePurchase decimal.Decimal // credit_rules.upgrade_purchase
}
