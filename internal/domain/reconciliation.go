package domain

import "github.com/shopspring/decimal"

// BalanceDiscrepancy reports an account whose stored balance differs from the sum of its entries.
type BalanceDiscrepancy struct {
	AccountID       AccountID
	RecordedBalance decimal.Decimal
	EntriesTotal    decimal.Decimal
}

// Difference is RecordedBalance minus EntriesTotal.
func (d *BalanceDiscrepancy) Difference() decimal.Decimal {
	return d.RecordedBalance.Sub(d.EntriesTotal)
}
