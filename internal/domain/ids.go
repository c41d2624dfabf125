package domain

import (
	"fmt"
	"strconv"
)

// PersonID identifies a person.
type PersonID int64

// AccountID identifies an account.
type AccountID int64

// TransactionID identifies a ledger entry.
type TransactionID int64

func NewPersonID(v int64) (PersonID, error) {
	if v <= 0 {
		return 0, fmt.Errorf("%w: person id %d", ErrInvalidID, v)
	}
	return PersonID(v), nil
}

func NewAccountID(v int64) (AccountID, error) {
	if v <= 0 {
		return 0, fmt.Errorf("%w: account id %d", ErrInvalidID, v)
	}
	return AccountID(v), nil
}

func NewTransactionID(v int64) (TransactionID, error) {
	if v <= 0 {
		return 0, fmt.Errorf("%w: transaction id %d", ErrInvalidID, v)
	}
	return TransactionID(v), nil
}

// ParseAccountID parses a decimal path parameter.
func ParseAccountID(s string) (AccountID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return NewAccountID(v)
}

func (id PersonID) String() string      { return strconv.FormatInt(int64(id), 10) }
func (id AccountID) String() string     { return strconv.FormatInt(int64(id), 10) }
func (id TransactionID) String() string { return strconv.FormatInt(int64(id), 10) }
