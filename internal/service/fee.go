package service

import (
	"github.com/shopspring/decimal"
)

// FeeCalculator holds the configured pricing rates. All results are rounded
// half-up to 2 decimal places; the raw transfer amount is never rounded.
type FeeCalculator struct {
	feePercentage        decimal.Decimal
	feeCap               decimal.Decimal
	commissionPercentage decimal.Decimal
}

func NewFeeCalculator(feePercentage, feeCap, commissionPercentage decimal.Decimal) FeeCalculator {
	return FeeCalculator{
		feePercentage:        feePercentage,
		feeCap:               feeCap,
		commissionPercentage: commissionPercentage,
	}
}

// TransactionFee computes the fee for a transfer amount, capped at the
// configured maximum.
func (c FeeCalculator) TransactionFee(amount decimal.Decimal) decimal.Decimal {
	fee := amount.Mul(c.feePercentage).Round(2)
	if fee.GreaterThan(c.feeCap) {
		return c.feeCap
	}
	return fee
}

// Commission computes the commission owed on an already-charged fee.
func (c FeeCalculator) Commission(fee decimal.Decimal) decimal.Decimal {
	return fee.Mul(c.commissionPercentage).Round(2)
}
