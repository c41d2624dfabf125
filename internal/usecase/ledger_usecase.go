package usecase

import (
	"context"
	"errors"

	"github.com/iho/accountledger/internal/domain"
)

var (
	// ErrInconsistentLedger is returned when some balance differs from the sum of its entries.
	ErrInconsistentLedger = errors.New("ledger is inconsistent: balances do not match entries")
)

// LedgerUseCase handles ledger-wide operations.
type LedgerUseCase struct {
	ledgerRepo LedgerRepository
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(ledgerRepo LedgerRepository) *LedgerUseCase {
	return &LedgerUseCase{
		ledgerRepo: ledgerRepo,
	}
}

// CheckConsistency verifies that every account balance equals the sum of its entries.
// The offending accounts are returned alongside ErrInconsistentLedger.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) ([]*domain.BalanceDiscrepancy, error) {
	discrepancies, err := uc.ledgerRepo.ListDiscrepancies(ctx)
	if err != nil {
		return nil, err
	}

	if len(discrepancies) > 0 {
		return discrepancies, ErrInconsistentLedger
	}

	return nil, nil
}
