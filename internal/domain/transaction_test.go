package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestTransaction_KindAndAmount(t *testing.T) {
	deposit := &Transaction{Value: decimal.RequireFromString("120.5")}
	if deposit.Kind() != TransactionKindDeposit {
		t.Fatalf("expected deposit, got %s", deposit.Kind())
	}
	if !deposit.Amount().Equal(MustMoney("120.5")) {
		t.Fatalf("unexpected amount %s", deposit.Amount())
	}

	withdrawal := &Transaction{Value: decimal.NewFromInt(-40)}
	if withdrawal.Kind() != TransactionKindWithdrawal {
		t.Fatalf("expected withdrawal, got %s", withdrawal.Kind())
	}
	if !withdrawal.Amount().Equal(MustMoney("40")) {
		t.Fatalf("unexpected amount %s", withdrawal.Amount())
	}
}
