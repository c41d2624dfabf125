package dto

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/iho/accountledger/internal/domain"
)

func floatPtr(v float64) *float64 { return &v }

func TestCreateAccountRequestValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateAccountRequest
		wantErr bool
	}{
		{name: "valid", req: CreateAccountRequest{PersonID: 1, AccountType: 1, DailyWithdrawalLimit: floatPtr(500)}},
		{name: "zero limit allowed", req: CreateAccountRequest{PersonID: 1, AccountType: 2, DailyWithdrawalLimit: floatPtr(0)}},
		{name: "missing person", req: CreateAccountRequest{AccountType: 1, DailyWithdrawalLimit: floatPtr(1)}, wantErr: true},
		{name: "negative person", req: CreateAccountRequest{PersonID: -3, AccountType: 1, DailyWithdrawalLimit: floatPtr(1)}, wantErr: true},
		{name: "missing account type", req: CreateAccountRequest{PersonID: 1, DailyWithdrawalLimit: floatPtr(1)}, wantErr: true},
		{name: "missing limit", req: CreateAccountRequest{PersonID: 1, AccountType: 1}, wantErr: true},
		{name: "negative limit", req: CreateAccountRequest{PersonID: 1, AccountType: 1, DailyWithdrawalLimit: floatPtr(-1)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateAccountRequestToUseCaseInput(t *testing.T) {
	req := CreateAccountRequest{PersonID: 2, AccountType: 1, DailyWithdrawalLimit: floatPtr(250.5)}

	input, err := req.ToUseCaseInput()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if input.PersonID != 2 || input.AccountType != domain.AccountTypeChecking {
		t.Fatalf("unexpected input %+v", input)
	}
	if !input.DailyWithdrawalLimit.Equal(domain.MustMoney("250.5")) {
		t.Fatalf("expected limit 250.5, got %s", input.DailyWithdrawalLimit)
	}
}

func TestMovementRequestValidation(t *testing.T) {
	if err := Validate(&MovementRequest{Value: 0}); err == nil {
		t.Fatal("expected zero value to be rejected")
	}
	if err := Validate(&MovementRequest{Value: -5}); err == nil {
		t.Fatal("expected negative value to be rejected")
	}

	req := MovementRequest{Value: 0.1}
	if err := Validate(&req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	amount, err := req.Amount()
	if err != nil || !amount.Equal(domain.MustMoney("0.1")) {
		t.Fatalf("expected 0.1, got %s (%v)", amount, err)
	}
}

func TestMovementRequestRejectsSubCentValue(t *testing.T) {
	for _, v := range []float64{0.005, 0.004} {
		req := MovementRequest{Value: v}
		if err := Validate(&req); err != nil {
			t.Fatalf("%v: unexpected validation error: %v", v, err)
		}
		if _, err := req.Amount(); !errors.Is(err, domain.ErrInvalidMoney) {
			t.Fatalf("%v: expected ErrInvalidMoney, got %v", v, err)
		}
	}
}

func TestParseStatementQuery(t *testing.T) {
	q := url.Values{}
	q.Set("limit", "10")
	q.Set("offset", "5")
	q.Set("from", "2024-03-01T00:00:00Z")
	q.Set("to", "2024-03-31T23:59:59.999Z")

	sq, err := ParseStatementQuery(q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Validate(&sq); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	input, err := sq.ToUseCaseInput(7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if input.AccountID != 7 || input.Limit != 10 || input.Offset != 5 {
		t.Fatalf("unexpected input %+v", input)
	}
	if input.From == nil || !input.From.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected from %v", input.From)
	}
	if input.To == nil || input.To.Nanosecond() != 999_000_000 {
		t.Fatalf("unexpected to %v", input.To)
	}
}

func TestParseStatementQueryDefaults(t *testing.T) {
	sq, err := ParseStatementQuery(url.Values{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Validate(&sq); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	input, err := sq.ToUseCaseInput(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if input.Limit != 0 || input.Offset != 0 || input.From != nil || input.To != nil {
		t.Fatalf("expected zero input, got %+v", input)
	}
}

func TestStatementQueryValidation(t *testing.T) {
	tests := []struct {
		name  string
		query url.Values
	}{
		{name: "limit zero", query: url.Values{"limit": {"0"}}},
		{name: "limit above max", query: url.Values{"limit": {"101"}}},
		{name: "negative offset", query: url.Values{"offset": {"-1"}}},
		{name: "bad from", query: url.Values{"from": {"yesterday"}}},
		{name: "date without zone", query: url.Values{"to": {"2024-03-01T00:00:00"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sq, err := ParseStatementQuery(tt.query)
			if err != nil {
				t.Fatalf("unexpected parse error: %v", err)
			}
			if err := Validate(&sq); err == nil {
				t.Fatalf("expected validation error for %v", tt.query)
			}
		})
	}
}

func TestParsePageQueryRejectsNonNumbers(t *testing.T) {
	if _, err := ParsePageQuery(url.Values{"limit": {"ten"}}); err == nil {
		t.Fatal("expected error for non-numeric limit")
	}
}
