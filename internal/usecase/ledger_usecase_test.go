package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/accountledger/internal/domain"
)

func TestLedgerUseCase_CheckConsistency(t *testing.T) {
	mismatch := &domain.BalanceDiscrepancy{
		AccountID:       3,
		RecordedBalance: decimal.NewFromInt(10),
		EntriesTotal:    decimal.Zero,
	}

	tests := []struct {
		name        string
		repo        *fakeLedgerRepository
		wantCount   int
		expectedErr error
	}{
		{
			name: "happy path consistent ledger",
			repo: &fakeLedgerRepository{},
		},
		{
			name: "repo error surfaces",
			repo: &fakeLedgerRepository{
				err: errors.New("db down"),
			},
			expectedErr: errors.New("db down"),
		},
		{
			name: "mismatched account reported",
			repo: &fakeLedgerRepository{
				discrepancies: []*domain.BalanceDiscrepancy{mismatch},
			},
			wantCount:   1,
			expectedErr: ErrInconsistentLedger,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := NewLedgerUseCase(tt.repo)
			got, err := uc.CheckConsistency(context.Background())

			if tt.expectedErr != nil {
				if err == nil || err.Error() != tt.expectedErr.Error() {
					t.Fatalf("expected error %v, got %v", tt.expectedErr, err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(got) != tt.wantCount {
				t.Fatalf("CheckConsistency() returned %d discrepancies, want %d", len(got), tt.wantCount)
			}
		})
	}
}

func TestLedgerUseCase_RepositoryInvoked(t *testing.T) {
	repo := &fakeLedgerRepository{}
	uc := NewLedgerUseCase(repo)

	if _, err := uc.CheckConsistency(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if repo.calls != 1 {
		t.Fatalf("expected CheckConsistency to call repository once, got %d", repo.calls)
	}
}

type fakeLedgerRepository struct {
	discrepancies []*domain.BalanceDiscrepancy
	err           error
	calls         int
}

func (f *fakeLedgerRepository) ListDiscrepancies(ctx context.Context) ([]*domain.BalanceDiscrepancy, error) {
	f.calls++
	return f.discrepancies, f.err
}

func (f *fakeLedgerRepository) GetAccountTotals(context.Context, domain.AccountID) (*domain.BalanceDiscrepancy, error) {
	return nil, domain.ErrAccountNotFound
}
