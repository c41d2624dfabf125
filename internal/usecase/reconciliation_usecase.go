package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/accountledger/internal/domain"
)

// ReconciliationUseCase handles balance reconciliation operations
type ReconciliationUseCase struct {
	ledgerRepo LedgerRepository
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(ledgerRepo LedgerRepository) *ReconciliationUseCase {
	return &ReconciliationUseCase{ledgerRepo: ledgerRepo}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	AccountID         domain.AccountID
	RecordedBalance   decimal.Decimal
	CalculatedBalance decimal.Decimal
	Difference        decimal.Decimal
	IsReconciled      bool
	LastChecked       time.Time
}

// ReconcileAccount compares the stored balance of an account with the sum of its entries.
// Both values come from one snapshot, so concurrent movements never show up as a difference.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, accountID domain.AccountID) (*ReconciliationResult, error) {
	totals, err := uc.ledgerRepo.GetAccountTotals(ctx, accountID)
	if err != nil {
		if _, ok := domain.AsError(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("read ledger totals for account %s: %w", accountID, err)
	}

	diff := totals.Difference()

	return &ReconciliationResult{
		AccountID:         accountID,
		RecordedBalance:   totals.RecordedBalance,
		CalculatedBalance: totals.EntriesTotal,
		Difference:        diff,
		IsReconciled:      diff.IsZero(),
		LastChecked:       time.Now().UTC(),
	}, nil
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	Discrepancies    []*domain.BalanceDiscrepancy
	LedgerConsistent bool
	CheckedAt        time.Time
}

// GenerateReconciliationReport lists every account whose balance disagrees with its entries.
func (uc *ReconciliationUseCase) GenerateReconciliationReport(ctx context.Context) (*ReconciliationReport, error) {
	discrepancies, err := uc.ledgerRepo.ListDiscrepancies(ctx)
	if err != nil {
		return nil, fmt.Errorf("list discrepancies: %w", err)
	}

	return &ReconciliationReport{
		Discrepancies:    discrepancies,
		LedgerConsistent: len(discrepancies) == 0,
		CheckedAt:        time.Now().UTC(),
	}, nil
}
