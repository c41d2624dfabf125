// Package memory is an in-process implementation of the ledger stores with
// per-account row locks and transactional writes.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/accountledger/internal/domain"
	"github.com/iho/accountledger/internal/usecase"
)

var errForeignTx = errors.New("memory: transaction was not started by this store")

// Store holds persons, accounts and ledger entries in memory.
type Store struct {
	mu           sync.RWMutex
	persons      map[domain.PersonID]*domain.Person
	accounts     map[domain.AccountID]*accountRow
	transactions []*domain.Transaction

	nextPersonID      int64
	nextAccountID     int64
	nextTransactionID int64

	now func() time.Time
}

type accountRow struct {
	// lock is a one-slot semaphore standing in for a row lock.
	lock    chan struct{}
	account domain.Account
}

// NewStore creates an empty store holding the given persons.
func NewStore(persons ...*domain.Person) *Store {
	s := &Store{
		persons:  make(map[domain.PersonID]*domain.Person),
		accounts: make(map[domain.AccountID]*accountRow),
		now:      time.Now,
	}
	for _, p := range persons {
		s.AddPerson(p)
	}
	return s
}

// SeedPersons returns the account holders every fresh deployment starts with.
func SeedPersons() []*domain.Person {
	return []*domain.Person{
		{Name: "Jeffrey Lebowski", Document: "DOC-001", BirthDate: time.Date(1949, 12, 10, 0, 0, 0, 0, time.UTC)},
		{Name: "Walter Sobchak", Document: "DOC-002", BirthDate: time.Date(1952, 6, 23, 0, 0, 0, 0, time.UTC)},
		{Name: "Theodore Donald Kerabatsos", Document: "DOC-003", BirthDate: time.Date(1960, 1, 11, 0, 0, 0, 0, time.UTC)},
	}
}

// AddPerson registers a person, assigning the next id when p.ID is zero.
func (s *Store) AddPerson(p *domain.Person) domain.PersonID {
	s.mu.Lock()
	defer s.mu.Unlock()

	person := *p
	if person.ID == 0 {
		s.nextPersonID++
		person.ID = domain.PersonID(s.nextPersonID)
	} else if int64(person.ID) > s.nextPersonID {
		s.nextPersonID = int64(person.ID)
	}
	if person.CreatedAt.IsZero() {
		person.CreatedAt = s.now().UTC()
	}
	s.persons[person.ID] = &person
	return person.ID
}

// Persons returns the person repository backed by s.
func (s *Store) Persons() *PersonRepository { return &PersonRepository{store: s} }

// Accounts returns the account repository backed by s.
func (s *Store) Accounts() *AccountRepository { return &AccountRepository{store: s} }

// Transactions returns the ledger repository backed by s.
func (s *Store) Transactions() *TransactionRepository { return &TransactionRepository{store: s} }

// Ledger returns the ledger-wide repository backed by s.
func (s *Store) Ledger() *LedgerRepository { return &LedgerRepository{store: s} }

// TxManager returns the transaction manager backed by s.
func (s *Store) TxManager() *TxManager { return &TxManager{store: s} }

func (s *Store) row(id domain.AccountID) (*accountRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return row, nil
}

func (s *Store) snapshot(id domain.AccountID) (domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.accounts[id]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	return row.account, nil
}

func acquire(ctx context.Context, row *accountRow) error {
	select {
	case row.lock <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func release(row *accountRow) {
	<-row.lock
}

// TxManager implements usecase.TxManager.
type TxManager struct {
	store *Store
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Tx{
		store:    m.store,
		locked:   make(map[domain.AccountID]*accountRow),
		balances: make(map[domain.AccountID]decimal.Decimal),
	}, nil
}

// Tx stages writes until Commit and holds row locks until it finishes.
type Tx struct {
	store    *Store
	locked   map[domain.AccountID]*accountRow
	balances map[domain.AccountID]decimal.Decimal
	entries  []*domain.Transaction
	done     bool
}

func asTx(tx usecase.Tx) (*Tx, error) {
	mtx, ok := tx.(*Tx)
	if !ok {
		return nil, errForeignTx
	}
	if mtx.done {
		return nil, errors.New("memory: transaction already finished")
	}
	return mtx, nil
}

// lock takes the row lock for id unless this transaction already holds it.
func (t *Tx) lock(ctx context.Context, id domain.AccountID) error {
	if _, ok := t.locked[id]; ok {
		return nil
	}

	row, err := t.store.row(id)
	if err != nil {
		return err
	}
	if err := acquire(ctx, row); err != nil {
		return err
	}

	t.locked[id] = row
	return nil
}

// current returns the account as seen inside this transaction.
func (t *Tx) current(id domain.AccountID) (domain.Account, error) {
	account, err := t.store.snapshot(id)
	if err != nil {
		return domain.Account{}, err
	}
	if staged, ok := t.balances[id]; ok {
		balance, err := domain.NewMoney(staged)
		if err != nil {
			return domain.Account{}, err
		}
		account.Balance = balance
	}
	return account, nil
}

// Commit applies staged writes atomically and releases row locks.
func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return errors.New("memory: transaction already finished")
	}

	t.store.mu.Lock()
	for id, balance := range t.balances {
		t.store.accounts[id].account.Balance, _ = domain.NewMoney(balance)
	}
	t.store.transactions = append(t.store.transactions, t.entries...)
	t.store.mu.Unlock()

	t.finish()
	return nil
}

// Rollback discards staged writes. Calling it after Commit is a no-op.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.finish()
	return nil
}

func (t *Tx) finish() {
	t.done = true
	for id, row := range t.locked {
		release(row)
		delete(t.locked, id)
	}
	t.balances = nil
	t.entries = nil
}
