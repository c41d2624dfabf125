package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/accountledger/internal/domain"
	"github.com/iho/accountledger/internal/infrastructure/postgres/generated"
	"github.com/iho/accountledger/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	queries *generated.Queries
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return newAccountRepository(pool)
}

func newAccountRepository(db generated.DBTX) *AccountRepository {
	return &AccountRepository{queries: generated.New(db)}
}

// Create inserts a zero-balance active account and fills in ID and CreatedAt.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	row, err := r.queries.CreateAccount(ctx, generated.CreateAccountParams{
		PersonID:             int64(account.PersonID),
		DailyWithdrawalLimit: decimalToNumeric(account.DailyWithdrawalLimit.Decimal()),
		AccountType:          int16(account.AccountType),
		CreateDate:           timeToPgTimestamptz(time.Now().UTC()),
	})
	if err != nil {
		if isPgError(err, pgErrForeignKeyViolation) {
			return domain.ErrPersonNotFound
		}
		return fmt.Errorf("create account: %w", err)
	}

	created, err := rowToAccount(row)
	if err != nil {
		return err
	}

	*account = *created
	return nil
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id domain.AccountID) (*domain.Account, error) {
	row, err := r.queries.GetAccountByID(ctx, int64(id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, fmt.Errorf("get account %s: %w", id, err)
	}

	return rowToAccount(row)
}

// GetByIDForUpdate retrieves an account by ID with a FOR UPDATE lock.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Tx, id domain.AccountID) (*domain.Account, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.GetAccountByIDForUpdate(ctx, int64(id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, fmt.Errorf("lock account %s: %w", id, err)
	}

	return rowToAccount(row)
}

// IncrementBalance applies balance = balance + delta unless the result would be negative.
func (r *AccountRepository) IncrementBalance(ctx context.Context, tx usecase.Tx, id domain.AccountID, delta decimal.Decimal) (*domain.Account, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.IncrementAccountBalance(ctx, generated.IncrementAccountBalanceParams{
		AccountID: int64(id),
		Delta:     decimalToNumeric(delta),
	})
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			// Either the row is gone or the guard refused a negative balance.
			if _, getErr := queries.GetAccountByID(ctx, int64(id)); errors.Is(getErr, pgx.ErrNoRows) {
				return nil, domain.ErrAccountNotFound
			}
			return nil, domain.ErrInsufficientFunds
		case isPgError(err, pgErrCheckViolation):
			return nil, domain.ErrInsufficientFunds
		}
		return nil, fmt.Errorf("increment balance of account %s: %w", id, err)
	}

	return rowToAccount(row)
}

// SetActive updates the active flag of an account.
func (r *AccountRepository) SetActive(ctx context.Context, id domain.AccountID, active bool) (*domain.Account, error) {
	row, err := r.queries.SetAccountActive(ctx, generated.SetAccountActiveParams{
		AccountID:  int64(id),
		ActiveFlag: active,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("set active on account %s: %w", id, err)
	}

	return rowToAccount(row)
}

// List lists accounts with pagination.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	rows, err := r.queries.ListAccounts(ctx, generated.ListAccountsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		account, err := rowToAccount(row)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, nil
}
