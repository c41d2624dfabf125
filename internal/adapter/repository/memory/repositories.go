package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/accountledger/internal/domain"
	"github.com/iho/accountledger/internal/usecase"
)

// PersonRepository implements usecase.PersonRepository.
type PersonRepository struct {
	store *Store
}

// Exists reports whether the person is known.
func (r *PersonRepository) Exists(ctx context.Context, id domain.PersonID) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	_, ok := r.store.persons[id]
	return ok, nil
}

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	store *Store
}

// Create inserts a new account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.persons[account.PersonID]; !ok {
		return domain.ErrPersonNotFound
	}

	s.nextAccountID++
	account.ID = domain.AccountID(s.nextAccountID)
	account.Balance = domain.ZeroMoney
	account.CreatedAt = s.now().UTC()

	s.accounts[account.ID] = &accountRow{
		lock:    make(chan struct{}, 1),
		account: *account,
	}
	return nil
}

// GetByID retrieves the committed state of an account.
func (r *AccountRepository) GetByID(ctx context.Context, id domain.AccountID) (*domain.Account, error) {
	account, err := r.store.snapshot(id)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetByIDForUpdate locks the account row for the rest of tx.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Tx, id domain.AccountID) (*domain.Account, error) {
	mtx, err := asTx(tx)
	if err != nil {
		return nil, err
	}
	if err := mtx.lock(ctx, id); err != nil {
		return nil, err
	}

	account, err := mtx.current(id)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// IncrementBalance stages balance + delta, refusing a negative result.
func (r *AccountRepository) IncrementBalance(ctx context.Context, tx usecase.Tx, id domain.AccountID, delta decimal.Decimal) (*domain.Account, error) {
	mtx, err := asTx(tx)
	if err != nil {
		return nil, err
	}
	if err := mtx.lock(ctx, id); err != nil {
		return nil, err
	}

	account, err := mtx.current(id)
	if err != nil {
		return nil, err
	}

	balance, err := account.ApplyDelta(delta)
	if err != nil {
		return nil, err
	}

	mtx.balances[id] = balance.Decimal()
	account.Balance = balance
	return &account, nil
}

// SetActive updates the active flag, waiting for any in-flight movement on the row.
func (r *AccountRepository) SetActive(ctx context.Context, id domain.AccountID, active bool) (*domain.Account, error) {
	row, err := r.store.row(id)
	if err != nil {
		return nil, err
	}
	if err := acquire(ctx, row); err != nil {
		return nil, err
	}
	defer release(row)

	r.store.mu.Lock()
	row.account.Active = active
	account := row.account
	r.store.mu.Unlock()

	return &account, nil
}

// List returns accounts ordered by id.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]domain.AccountID, 0, len(s.accounts))
	for id := range s.accounts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	accounts := make([]*domain.Account, 0, limit)
	for i := offset; i < len(ids) && len(accounts) < limit; i++ {
		account := s.accounts[ids[i]].account
		accounts = append(accounts, &account)
	}
	return accounts, nil
}

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	store *Store
}

// Append stages a ledger entry in tx.
func (r *TransactionRepository) Append(ctx context.Context, tx usecase.Tx, accountID domain.AccountID, value decimal.Decimal, at time.Time) (*domain.Transaction, error) {
	mtx, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	s := r.store
	s.mu.Lock()
	if _, ok := s.accounts[accountID]; !ok {
		s.mu.Unlock()
		return nil, domain.ErrAccountNotFound
	}
	s.nextTransactionID++
	id := domain.TransactionID(s.nextTransactionID)
	s.mu.Unlock()

	entry := &domain.Transaction{
		ID:        id,
		AccountID: accountID,
		Value:     value,
		Date:      at,
	}
	mtx.entries = append(mtx.entries, entry)

	out := *entry
	return &out, nil
}

// SumWithdrawalsInWindow sums |value| of committed and staged withdrawals with start <= date <= end.
func (r *TransactionRepository) SumWithdrawalsInWindow(ctx context.Context, tx usecase.Tx, accountID domain.AccountID, start, end time.Time) (domain.Money, error) {
	mtx, err := asTx(tx)
	if err != nil {
		return domain.Money{}, err
	}

	inWindow := func(e *domain.Transaction) bool {
		return e.AccountID == accountID && e.Value.IsNegative() && !e.Date.Before(start) && !e.Date.After(end)
	}

	total := decimal.Zero

	r.store.mu.RLock()
	for _, e := range r.store.transactions {
		if inWindow(e) {
			total = total.Add(e.Value.Abs())
		}
	}
	r.store.mu.RUnlock()

	for _, e := range mtx.entries {
		if inWindow(e) {
			total = total.Add(e.Value.Abs())
		}
	}

	return domain.NewMoney(total)
}

// Query returns a newest-first page of committed entries.
func (r *TransactionRepository) Query(ctx context.Context, filter domain.StatementFilter) ([]*domain.Transaction, int64, error) {
	r.store.mu.RLock()
	var matched []*domain.Transaction
	for _, e := range r.store.transactions {
		if e.AccountID != filter.AccountID {
			continue
		}
		if filter.From != nil && e.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && e.Date.After(*filter.To) {
			continue
		}
		entry := *e
		matched = append(matched, &entry)
	}
	r.store.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].Date.Equal(matched[j].Date) {
			return matched[i].Date.After(matched[j].Date)
		}
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))
	if filter.Offset >= len(matched) {
		return []*domain.Transaction{}, total, nil
	}

	end := filter.Offset + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[filter.Offset:end], total, nil
}

func sumEntries(entries []*domain.Transaction, accountID domain.AccountID) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		if e.AccountID == accountID {
			total = total.Add(e.Value)
		}
	}
	return total
}

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	store *Store
}

// GetAccountTotals reads the committed balance and entry total of one account under one lock.
func (r *LedgerRepository) GetAccountTotals(ctx context.Context, id domain.AccountID) (*domain.BalanceDiscrepancy, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}

	return &domain.BalanceDiscrepancy{
		AccountID:       id,
		RecordedBalance: row.account.Balance.Decimal(),
		EntriesTotal:    sumEntries(s.transactions, id),
	}, nil
}

// ListDiscrepancies compares every account balance with the sum of its entries.
func (r *LedgerRepository) ListDiscrepancies(ctx context.Context) ([]*domain.BalanceDiscrepancy, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := make(map[domain.AccountID]decimal.Decimal, len(s.accounts))
	for _, e := range s.transactions {
		totals[e.AccountID] = totals[e.AccountID].Add(e.Value)
	}

	var out []*domain.BalanceDiscrepancy
	for id, row := range s.accounts {
		recorded := row.account.Balance.Decimal()
		if !recorded.Equal(totals[id]) {
			out = append(out, &domain.BalanceDiscrepancy{
				AccountID:       id,
				RecordedBalance: recorded,
				EntriesTotal:    totals[id],
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	return out, nil
}
