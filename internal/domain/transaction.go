package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind is derived from the sign of a ledger entry.
type TransactionKind string

const (
	TransactionKindDeposit    TransactionKind = "deposit"
	TransactionKindWithdrawal TransactionKind = "withdrawal"
)

// Transaction is an immutable ledger entry. Value is the signed balance delta.
type Transaction struct {
	ID        TransactionID
	AccountID AccountID
	Value     decimal.Decimal
	Date      time.Time
}

// Kind reports whether the entry credited or debited the account.
func (t *Transaction) Kind() TransactionKind {
	if t.Value.IsNegative() {
		return TransactionKindWithdrawal
	}
	return TransactionKindDeposit
}

// Amount returns the magnitude of the entry.
func (t *Transaction) Amount() Money {
	return Money{amount: t.Value.Abs()}
}

// StatementFilter selects a page of an account's entries, newest first.
// From and To are inclusive when set.
type StatementFilter struct {
	AccountID AccountID
	Limit     int
	Offset    int
	From      *time.Time
	To        *time.Time
}

// Statement is one page of entries plus the total matching the filter without pagination.
type Statement struct {
	Total int64
	Items []*Transaction
}
