package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/accountledger/internal/domain"
)

// TransactionUseCase moves money in and out of accounts and reads statements.
type TransactionUseCase struct {
	txManager       TxManager
	accountRepo     AccountRepository
	transactionRepo TransactionRepository
	retrier         Retrier
	locker          AccountLocker
	metrics         Metrics
	clock           func() time.Time
	location        *time.Location
}

// TransactionOption configures a TransactionUseCase.
type TransactionOption func(*TransactionUseCase)

// WithClock overrides the time source used for entry dates and the daily window.
func WithClock(clock func() time.Time) TransactionOption {
	return func(uc *TransactionUseCase) {
		uc.clock = clock
	}
}

// WithLocation sets the zone whose calendar day bounds the daily withdrawal limit.
func WithLocation(loc *time.Location) TransactionOption {
	return func(uc *TransactionUseCase) {
		if loc != nil {
			uc.location = loc
		}
	}
}

// WithRetrier retries attempts that fail on transient storage conflicts.
func WithRetrier(r Retrier) TransactionOption {
	return func(uc *TransactionUseCase) {
		uc.retrier = r
	}
}

// WithAccountLocker wraps every movement in a per-account distributed lock.
func WithAccountLocker(l AccountLocker) TransactionOption {
	return func(uc *TransactionUseCase) {
		uc.locker = l
	}
}

// WithMetrics records operation outcomes.
func WithMetrics(m Metrics) TransactionOption {
	return func(uc *TransactionUseCase) {
		uc.metrics = m
	}
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(
	txManager TxManager,
	accountRepo AccountRepository,
	transactionRepo TransactionRepository,
	opts ...TransactionOption,
) *TransactionUseCase {
	uc := &TransactionUseCase{
		txManager:       txManager,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		clock:           time.Now,
		location:        time.Local,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// MovementResult is the outcome of a deposit or withdrawal.
type MovementResult struct {
	NewBalance  domain.Money
	Transaction *domain.Transaction
}

// Deposit credits value to an active account.
func (uc *TransactionUseCase) Deposit(ctx context.Context, accountID domain.AccountID, value domain.Money) (*MovementResult, error) {
	return uc.observe(OperationDeposit, value, func() (*MovementResult, error) {
		if err := domain.ValidateAmount(value); err != nil {
			return nil, err
		}

		var result *MovementResult
		err := uc.execute(ctx, accountID, func(ctx context.Context) error {
			var err error
			result, err = uc.deposit(ctx, accountID, value)
			return err
		})
		return result, err
	})
}

func (uc *TransactionUseCase) deposit(ctx context.Context, accountID domain.AccountID, value domain.Money) (*MovementResult, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, accountID)
	if err != nil {
		return nil, err
	}

	if err := account.ValidateMovable(); err != nil {
		return nil, err
	}

	return uc.apply(ctx, tx, accountID, value.Decimal())
}

// Withdraw debits value from an active account, enforcing the balance floor and the daily limit.
func (uc *TransactionUseCase) Withdraw(ctx context.Context, accountID domain.AccountID, value domain.Money) (*MovementResult, error) {
	return uc.observe(OperationWithdraw, value, func() (*MovementResult, error) {
		if err := domain.ValidateAmount(value); err != nil {
			return nil, err
		}

		var result *MovementResult
		err := uc.execute(ctx, accountID, func(ctx context.Context) error {
			var err error
			result, err = uc.withdraw(ctx, accountID, value)
			return err
		})
		return result, err
	})
}

func (uc *TransactionUseCase) withdraw(ctx context.Context, accountID domain.AccountID, value domain.Money) (*MovementResult, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, accountID)
	if err != nil {
		return nil, err
	}

	if err := account.ValidateMovable(); err != nil {
		return nil, err
	}

	if err := account.ValidateWithdrawal(value); err != nil {
		return nil, err
	}

	start, end := domain.DayWindow(uc.clock(), uc.location)
	withdrawnToday, err := uc.transactionRepo.SumWithdrawalsInWindow(ctx, tx, accountID, start, end)
	if err != nil {
		return nil, fmt.Errorf("sum withdrawals for account %s: %w", accountID, err)
	}

	if err := account.ValidateDailyLimit(withdrawnToday, value); err != nil {
		return nil, err
	}

	return uc.apply(ctx, tx, accountID, value.Neg())
}

// apply appends the entry, adjusts the balance by the same delta and commits.
func (uc *TransactionUseCase) apply(ctx context.Context, tx Tx, accountID domain.AccountID, delta decimal.Decimal) (*MovementResult, error) {
	entry, err := uc.transactionRepo.Append(ctx, tx, accountID, delta, uc.clock().UTC())
	if err != nil {
		return nil, err
	}

	account, err := uc.accountRepo.IncrementBalance(ctx, tx, accountID, delta)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return &MovementResult{NewBalance: account.Balance, Transaction: entry}, nil
}

// execute runs one movement attempt under the optional account lock, retrier and per-attempt timeout.
func (uc *TransactionUseCase) execute(ctx context.Context, accountID domain.AccountID, fn func(ctx context.Context) error) error {
	if uc.locker != nil {
		unlock, err := uc.locker.Lock(ctx, accountID)
		if err != nil {
			return fmt.Errorf("lock account %s: %w", accountID, err)
		}
		defer unlock()
	}

	attempt := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()
		return fn(attemptCtx)
	}

	if uc.retrier == nil {
		return attempt()
	}
	return uc.retrier.Retry(ctx, attempt)
}

func (uc *TransactionUseCase) observe(operation string, value domain.Money, fn func() (*MovementResult, error)) (*MovementResult, error) {
	start := time.Now()
	result, err := fn()
	if uc.metrics != nil {
		uc.metrics.RecordOperation(operation, resultCode(err), time.Since(start))
		if err == nil {
			uc.metrics.RecordAmount(operation, value)
		}
	}
	return result, err
}

// StatementInput represents input for a statement query. Zero Limit means the default page size.
type StatementInput struct {
	AccountID domain.AccountID
	Limit     int
	Offset    int
	From      *time.Time
	To        *time.Time
}

// GetStatement returns a newest-first page of an account's entries. Blocked accounts may be queried.
func (uc *TransactionUseCase) GetStatement(ctx context.Context, input StatementInput) (*domain.Statement, error) {
	limit, offset, err := domain.ValidatePagination(input.Limit, input.Offset)
	if err != nil {
		return nil, err
	}

	filter := domain.StatementFilter{
		AccountID: input.AccountID,
		Limit:     limit,
		Offset:    offset,
		From:      input.From,
		To:        input.To,
	}
	if err := domain.ValidateDateRange(&filter); err != nil {
		return nil, err
	}

	if _, err := uc.accountRepo.GetByID(ctx, input.AccountID); err != nil {
		return nil, err
	}

	items, total, err := uc.transactionRepo.Query(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query statement for account %s: %w", input.AccountID, err)
	}

	return &domain.Statement{Total: total, Items: items}, nil
}
