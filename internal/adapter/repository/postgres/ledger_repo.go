package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/accountledger/internal/domain"
	"github.com/iho/accountledger/internal/infrastructure/postgres/generated"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return newLedgerRepository(pool)
}

func newLedgerRepository(db generated.DBTX) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(db)}
}

// ListDiscrepancies returns every account whose balance differs from the sum of its entries.
func (r *LedgerRepository) ListDiscrepancies(ctx context.Context) ([]*domain.BalanceDiscrepancy, error) {
	rows, err := r.queries.ListBalanceDiscrepancies(ctx)
	if err != nil {
		return nil, fmt.Errorf("list balance discrepancies: %w", err)
	}

	out := make([]*domain.BalanceDiscrepancy, 0, len(rows))
	for _, row := range rows {
		out = append(out, &domain.BalanceDiscrepancy{
			AccountID:       domain.AccountID(row.AccountID),
			RecordedBalance: numericToDecimal(row.Balance),
			EntriesTotal:    numericToDecimal(row.EntriesTotal),
		})
	}

	return out, nil
}

// GetAccountTotals reads the balance and the entry total of one account in a single statement.
func (r *LedgerRepository) GetAccountTotals(ctx context.Context, id domain.AccountID) (*domain.BalanceDiscrepancy, error) {
	row, err := r.queries.GetAccountLedgerTotals(ctx, int64(id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("get ledger totals for account %s: %w", id, err)
	}

	return &domain.BalanceDiscrepancy{
		AccountID:       domain.AccountID(row.AccountID),
		RecordedBalance: numericToDecimal(row.Balance),
		EntriesTotal:    numericToDecimal(row.EntriesTotal),
	}, nil
}
