package repository

import (
	"context"
	"database/sql"

	"github.com/bookhaven/bookstore/internal/model"
)

// CreditRepo provides read access to the 'credit_rules' table.
type CreditRepo struct{ DB *sql.DB }

func NewCreditRepo(db *sql.DB) *CreditRepo { return &CreditRepo{DB: db} }

const creditCols = "level,discount_pct,overdraft_limit,upgrade_balance,upgrade_purchase"

func scanRule(row *sql.Row) (model.CreditRule, error) {
	var cr model.CreditRule
	err := row.Scan(&cr.Level, &cr.DiscountPct, &cr.OverdraftLimit, &cr.UpgradeBalance, &cr.UpgradePurchase)
	if err == sql.ErrNoRows {
		return cr, ErrUnknownTier
	}
	return cr, err
}

// GetByLevel returns the rule for an exact credit level, or ErrUnknownTier.
func (r *CreditRepo) GetByLevel(ctx context.Context, level uint32) (model.CreditRule, error) {
	return scanRule(r.DB.QueryRowContext(ctx,
		"SELECT "+creditCols+" FROM credit_rules WHERE level=? LIMIT 1", level))
}

// NextAbove returns the lowest rule strictly above the given level.
// ErrUnknownTier means the customer is already at the top tier.
func (r *CreditRepo) NextAbove(ctx context.Context, level uint32) (model.CreditRule, error) {
	return scanRule(r.DB.QueryRowContext(ctx,
		"SELECT "+creditCols+" FROM credit_rules WHERE level>? ORDER BY level ASC LIMIT 1", level))
}

// Lowest returns the entry tier assigned to new customers.
func (r *CreditRepo) Lowest(ctx context.Context) (model.CreditRule, error) {
	return scanRule(r.DB.QueryRowContext(ctx,
		"SELECT " + creditCols + " FROM credit_rules ORDER BY level ASC LIMIT 1"))
}
