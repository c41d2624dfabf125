package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/accountledger/internal/domain"
)

// PersonRepository defines read access to account holders.
type PersonRepository interface {
	Exists(ctx context.Context, id domain.PersonID) (bool, error)
}

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	// Create inserts the account with a zero balance and assigns ID and CreatedAt.
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id domain.AccountID) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Tx, id domain.AccountID) (*domain.Account, error)
	// IncrementBalance adds a signed delta and returns the updated account.
	// It fails with domain.ErrInsufficientFunds when the result would be negative.
	IncrementBalance(ctx context.Context, tx Tx, id domain.AccountID, delta decimal.Decimal) (*domain.Account, error)
	SetActive(ctx context.Context, id domain.AccountID, active bool) (*domain.Account, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// TransactionRepository defines data access for the append-only ledger.
type TransactionRepository interface {
	Append(ctx context.Context, tx Tx, accountID domain.AccountID, value decimal.Decimal, at time.Time) (*domain.Transaction, error)
	// SumWithdrawalsInWindow returns the absolute sum of negative entries with start <= date <= end.
	SumWithdrawalsInWindow(ctx context.Context, tx Tx, accountID domain.AccountID, start, end time.Time) (domain.Money, error)
	// Query returns a newest-first page and the total count matching the filter.
	Query(ctx context.Context, filter domain.StatementFilter) ([]*domain.Transaction, int64, error)
}

// LedgerRepository defines data access for ledger-wide operations.
type LedgerRepository interface {
	// ListDiscrepancies returns every account whose balance differs from the sum of its entries.
	ListDiscrepancies(ctx context.Context) ([]*domain.BalanceDiscrepancy, error)
	// GetAccountTotals returns the balance and entry total of one account from a single snapshot.
	GetAccountTotals(ctx context.Context, id domain.AccountID) (*domain.BalanceDiscrepancy, error)
}

// Tx represents a database transaction.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TxManager handles transaction lifecycle.
type TxManager interface {
	Begin(ctx context.Context) (Tx, error)
}

// Retrier re-runs an operation on transient storage conflicts.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// AccountLocker serializes movements on one account across processes.
type AccountLocker interface {
	Lock(ctx context.Context, id domain.AccountID) (unlock func(), err error)
}

// Metrics records ledger engine observations.
type Metrics interface {
	RecordOperation(operation string, code string, duration time.Duration)
	RecordAmount(operation string, amount domain.Money)
	RecordAccountCreated(accountType domain.AccountType)
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyPending is the value an IdempotencyStore holds under a key while
// the first request for it is still running. CheckAndSet returns it to later
// callers until Update stores the final response.
const IdempotencyPending = "processing"

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Delete drops a key whose request failed before producing a response.
	Delete(ctx context.Context, key string) error
}
