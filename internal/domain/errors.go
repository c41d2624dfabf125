package domain

import "errors"

// ErrorCode is the stable, machine-readable identifier of a domain error.
type ErrorCode string

const (
	// Ledger errors
	CodePersonNotFound     ErrorCode = "PERSON_NOT_FOUND"
	CodeAccountNotFound    ErrorCode = "ACCOUNT_NOT_FOUND"
	CodeAccountBlocked     ErrorCode = "ACCOUNT_BLOCKED"
	CodeInsufficientFunds  ErrorCode = "INSUFFICIENT_FUNDS"
	CodeDailyLimitExceeded ErrorCode = "DAILY_LIMIT_EXCEEDED"

	// Input errors
	CodeInvalidAmount     ErrorCode = "INVALID_AMOUNT"
	CodeInvalidMoney      ErrorCode = "INVALID_MONEY"
	CodeInvalidID         ErrorCode = "INVALID_ID"
	CodeInvalidPagination ErrorCode = "INVALID_PAGINATION"
	CodeInvalidDateRange  ErrorCode = "INVALID_DATE_RANGE"
)

// Error is an expected, caller-recoverable failure of a ledger operation.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error carrying the same code, so wrapped copies still satisfy errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrPersonNotFound     = &Error{Code: CodePersonNotFound, Message: "person not found"}
	ErrAccountNotFound    = &Error{Code: CodeAccountNotFound, Message: "account not found"}
	ErrAccountBlocked     = &Error{Code: CodeAccountBlocked, Message: "account is blocked"}
	ErrInsufficientFunds  = &Error{Code: CodeInsufficientFunds, Message: "insufficient funds"}
	ErrDailyLimitExceeded = &Error{Code: CodeDailyLimitExceeded, Message: "daily withdrawal limit exceeded"}

	ErrInvalidAmount     = &Error{Code: CodeInvalidAmount, Message: "amount must be positive"}
	ErrInvalidMoney      = &Error{Code: CodeInvalidMoney, Message: "money must be a non-negative finite number with at most two decimal places"}
	ErrInvalidID         = &Error{Code: CodeInvalidID, Message: "identifier must be a positive integer"}
	ErrInvalidPagination = &Error{Code: CodeInvalidPagination, Message: "invalid pagination parameters"}
	ErrInvalidDateRange  = &Error{Code: CodeInvalidDateRange, Message: "from must not be after to"}
)

// AsError extracts the domain error from err, if any.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// CodeOf returns the domain code of err, or the empty code for infrastructure errors.
func CodeOf(err error) ErrorCode {
	if de, ok := AsError(err); ok {
		return de.Code
	}
	return ""
}
