package domain

import (
	"fmt"
)

// Pagination bounds for statements and listings.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ValidateAmount checks that a deposit or withdrawal value is strictly positive.
func ValidateAmount(amount Money) error {
	if amount.IsZero() {
		return ErrInvalidAmount
	}
	return nil
}

// ValidatePagination applies the default page size and rejects out-of-range values.
func ValidatePagination(limit, offset int) (int, int, error) {
	if limit == 0 {
		limit = DefaultPageSize
	}

	if limit < 1 || limit > MaxPageSize {
		return 0, 0, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidPagination, MaxPageSize)
	}

	if offset < 0 {
		return 0, 0, fmt.Errorf("%w: offset must be non-negative", ErrInvalidPagination)
	}

	return limit, offset, nil
}

// ValidateDateRange rejects a window whose start is after its end.
func ValidateDateRange(f *StatementFilter) error {
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return ErrInvalidDateRange
	}
	return nil
}
