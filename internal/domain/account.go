package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType is an opaque product code. Values are positive small integers.
type AccountType int16

const (
	AccountTypeChecking AccountType = 1
	AccountTypeSavings  AccountType = 2
)

func (t AccountType) String() string {
	switch t {
	case AccountTypeChecking:
		return "checking"
	case AccountTypeSavings:
		return "savings"
	default:
		return "custom"
	}
}

// Account holds a non-negative balance owned by a person.
type Account struct {
	ID                   AccountID
	PersonID             PersonID
	Balance              Money
	DailyWithdrawalLimit Money
	AccountType          AccountType
	Active               bool
	CreatedAt            time.Time
}

// ValidateMovable checks that the account may still receive deposits or withdrawals.
func (a *Account) ValidateMovable() error {
	if !a.Active {
		return ErrAccountBlocked
	}
	return nil
}

// ValidateWithdrawal checks that amount is covered by the current balance.
func (a *Account) ValidateWithdrawal(amount Money) error {
	if a.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}
	return nil
}

// ValidateDailyLimit checks that withdrawnToday plus amount stays within the daily limit.
func (a *Account) ValidateDailyLimit(withdrawnToday, amount Money) error {
	if withdrawnToday.Add(amount).GreaterThan(a.DailyWithdrawalLimit) {
		return ErrDailyLimitExceeded
	}
	return nil
}

// ApplyDelta returns the balance after a signed delta, refusing a negative result.
func (a *Account) ApplyDelta(delta decimal.Decimal) (Money, error) {
	next := a.Balance.Decimal().Add(delta)
	if next.IsNegative() {
		return Money{}, ErrInsufficientFunds
	}
	return Money{amount: next}, nil
}
