package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/accountledger/internal/domain"
	"github.com/iho/accountledger/internal/infrastructure/postgres/generated"
	"github.com/iho/accountledger/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	queries *generated.Queries
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return newTransactionRepository(pool)
}

func newTransactionRepository(db generated.DBTX) *TransactionRepository {
	return &TransactionRepository{queries: generated.New(db)}
}

// Append inserts a ledger entry inside tx.
func (r *TransactionRepository) Append(ctx context.Context, tx usecase.Tx, accountID domain.AccountID, value decimal.Decimal, at time.Time) (*domain.Transaction, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.AppendTransaction(ctx, generated.AppendTransactionParams{
		AccountID:       int64(accountID),
		Value:           decimalToNumeric(value),
		TransactionDate: timeToPgTimestamptz(at),
	})
	if err != nil {
		if isPgError(err, pgErrForeignKeyViolation) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("append transaction: %w", err)
	}

	return rowToTransaction(row), nil
}

// SumWithdrawalsInWindow returns the absolute sum of withdrawals with start <= date <= end.
func (r *TransactionRepository) SumWithdrawalsInWindow(ctx context.Context, tx usecase.Tx, accountID domain.AccountID, start, end time.Time) (domain.Money, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return domain.Money{}, err
	}

	total, err := queries.SumWithdrawalsInWindow(ctx, generated.SumWithdrawalsInWindowParams{
		AccountID: int64(accountID),
		StartDate: timeToPgTimestamptz(start),
		EndDate:   timeToPgTimestamptz(end),
	})
	if err != nil {
		return domain.Money{}, fmt.Errorf("sum withdrawals: %w", err)
	}

	return numericToMoney(total)
}

// Query returns a newest-first page of entries and the total matching the filter.
func (r *TransactionRepository) Query(ctx context.Context, filter domain.StatementFilter) ([]*domain.Transaction, int64, error) {
	from := optionalTimestamptz(filter.From)
	to := optionalTimestamptz(filter.To)

	rows, err := r.queries.ListTransactions(ctx, generated.ListTransactionsParams{
		AccountID: int64(filter.AccountID),
		FromDate:  from,
		ToDate:    to,
		Limit:     int32(filter.Limit),
		Offset:    int32(filter.Offset),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}

	total, err := r.queries.CountTransactions(ctx, generated.CountTransactionsParams{
		AccountID: int64(filter.AccountID),
		FromDate:  from,
		ToDate:    to,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	items := make([]*domain.Transaction, 0, len(rows))
	for _, row := range rows {
		items = append(items, rowToTransaction(row))
	}

	return items, total, nil
}
