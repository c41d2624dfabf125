package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/iho/accountledger/internal/domain"
)

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	personRepo  PersonRepository
	accountRepo AccountRepository
	metrics     Metrics
}

// NewAccountUseCase creates a new AccountUseCase. metrics may be nil.
func NewAccountUseCase(personRepo PersonRepository, accountRepo AccountRepository, metrics Metrics) *AccountUseCase {
	return &AccountUseCase{
		personRepo:  personRepo,
		accountRepo: accountRepo,
		metrics:     metrics,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	PersonID             domain.PersonID
	AccountType          domain.AccountType
	DailyWithdrawalLimit domain.Money
}

// CreateAccount opens a zero-balance, active account for an existing person.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	start := time.Now()

	account, err := uc.createAccount(ctx, input)
	if uc.metrics != nil {
		uc.metrics.RecordOperation(OperationCreateAccount, resultCode(err), time.Since(start))
		if err == nil {
			uc.metrics.RecordAccountCreated(account.AccountType)
		}
	}

	return account, err
}

func (uc *AccountUseCase) createAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if input.PersonID <= 0 {
		return nil, fmt.Errorf("%w: person id %d", domain.ErrInvalidID, input.PersonID)
	}

	exists, err := uc.personRepo.Exists(ctx, input.PersonID)
	if err != nil {
		return nil, fmt.Errorf("check person %s: %w", input.PersonID, err)
	}
	if !exists {
		return nil, domain.ErrPersonNotFound
	}

	account := &domain.Account{
		PersonID:             input.PersonID,
		Balance:              domain.ZeroMoney,
		DailyWithdrawalLimit: input.DailyWithdrawalLimit,
		AccountType:          input.AccountType,
		Active:               true,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id domain.AccountID) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// GetBalance returns the current balance of an account.
func (uc *AccountUseCase) GetBalance(ctx context.Context, id domain.AccountID) (domain.Money, error) {
	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return domain.Money{}, err
	}
	return account.Balance, nil
}

// BlockAccount deactivates an account permanently. Blocking a blocked account is a no-op.
func (uc *AccountUseCase) BlockAccount(ctx context.Context, id domain.AccountID) (*domain.Account, error) {
	start := time.Now()

	account, err := uc.blockAccount(ctx, id)
	if uc.metrics != nil {
		uc.metrics.RecordOperation(OperationBlockAccount, resultCode(err), time.Since(start))
	}

	return account, err
}

func (uc *AccountUseCase) blockAccount(ctx context.Context, id domain.AccountID) (*domain.Account, error) {
	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !account.Active {
		return account, nil
	}

	return uc.accountRepo.SetActive(ctx, id, false)
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	limit, offset, err := domain.ValidatePagination(input.Limit, input.Offset)
	if err != nil {
		return nil, err
	}
	return uc.accountRepo.List(ctx, limit, offset)
}

// resultCode labels an operation outcome for metrics.
func resultCode(err error) string {
	if err == nil {
		return "ok"
	}
	if code := domain.CodeOf(err); code != "" {
		return string(code)
	}
	return "internal"
}
