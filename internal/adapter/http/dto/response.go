package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/accountledger/internal/domain"
	"github.com/iho/accountledger/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	AccountID            int64        `json:"account_id"`
	PersonID             int64        `json:"person_id"`
	Balance              domain.Money `json:"balance"`
	DailyWithdrawalLimit domain.Money `json:"daily_withdrawal_limit"`
	AccountType          int16        `json:"account_type"`
	ActiveFlag           bool         `json:"active_flag"`
	CreateDate           time.Time    `json:"create_date"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		AccountID:            int64(a.ID),
		PersonID:             int64(a.PersonID),
		Balance:              a.Balance,
		DailyWithdrawalLimit: a.DailyWithdrawalLimit,
		AccountType:          int16(a.AccountType),
		ActiveFlag:           a.Active,
		CreateDate:           a.CreatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse represents a page of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Count    int                `json:"count"`
}

// BalanceResponse is the body of a balance query.
type BalanceResponse struct {
	AccountID int64        `json:"account_id"`
	Balance   domain.Money `json:"balance"`
}

// MovementResponse is the body of a successful deposit or withdrawal.
type MovementResponse struct {
	NewBalance    domain.Money `json:"new_balance"`
	TransactionID int64        `json:"transaction_id"`
}

// MovementFromResult converts a use case result to response.
func MovementFromResult(r *usecase.MovementResult) *MovementResponse {
	resp := &MovementResponse{NewBalance: r.NewBalance}
	if r.Transaction != nil {
		resp.TransactionID = int64(r.Transaction.ID)
	}
	return resp
}

// TransactionResponse represents a ledger entry in API responses.
type TransactionResponse struct {
	TransactionID   int64       `json:"transaction_id"`
	AccountID       int64       `json:"account_id"`
	Value           json.Number `json:"value"`
	Type            string      `json:"type"`
	TransactionDate time.Time   `json:"transaction_date"`
}

// StatementResponse represents a page of an account statement.
type StatementResponse struct {
	Total int64                  `json:"total"`
	Items []*TransactionResponse `json:"items"`
}

// StatementFromDomain converts a domain statement to response.
func StatementFromDomain(s *domain.Statement) *StatementResponse {
	items := make([]*TransactionResponse, len(s.Items))
	for i, t := range s.Items {
		items[i] = &TransactionResponse{
			TransactionID:   int64(t.ID),
			AccountID:       int64(t.AccountID),
			Value:           number(t.Value),
			Type:            string(t.Kind()),
			TransactionDate: t.Date,
		}
	}

	return &StatementResponse{Total: s.Total, Items: items}
}

// ReconciliationResponse is the result of reconciling one account.
type ReconciliationResponse struct {
	AccountID         int64       `json:"account_id"`
	RecordedBalance   json.Number `json:"recorded_balance"`
	CalculatedBalance json.Number `json:"calculated_balance"`
	Difference        json.Number `json:"difference"`
	IsReconciled      bool        `json:"is_reconciled"`
	LastChecked       time.Time   `json:"last_checked"`
}

// ReconciliationFromResult converts a use case result to response.
func ReconciliationFromResult(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		AccountID:         int64(r.AccountID),
		RecordedBalance:   number(r.RecordedBalance),
		CalculatedBalance: number(r.CalculatedBalance),
		Difference:        number(r.Difference),
		IsReconciled:      r.IsReconciled,
		LastChecked:       r.LastChecked,
	}
}

// DiscrepancyResponse describes an account whose balance disagrees with its entries.
type DiscrepancyResponse struct {
	AccountID       int64       `json:"account_id"`
	RecordedBalance json.Number `json:"recorded_balance"`
	EntriesTotal    json.Number `json:"entries_total"`
	Difference      json.Number `json:"difference"`
}

// ConsistencyResponse is the result of a ledger-wide consistency check.
type ConsistencyResponse struct {
	Status        string                 `json:"status"`
	Consistent    bool                   `json:"consistent"`
	Discrepancies []*DiscrepancyResponse `json:"discrepancies"`
}

// ConsistencyFromDomain converts discrepancies to response.
func ConsistencyFromDomain(discrepancies []*domain.BalanceDiscrepancy) *ConsistencyResponse {
	resp := &ConsistencyResponse{
		Status:        "consistent",
		Consistent:    len(discrepancies) == 0,
		Discrepancies: make([]*DiscrepancyResponse, len(discrepancies)),
	}
	if !resp.Consistent {
		resp.Status = "inconsistent"
	}

	for i, d := range discrepancies {
		resp.Discrepancies[i] = &DiscrepancyResponse{
			AccountID:       int64(d.AccountID),
			RecordedBalance: number(d.RecordedBalance),
			EntriesTotal:    number(d.EntriesTotal),
			Difference:      number(d.Difference()),
		}
	}

	return resp
}

// ReconciliationReportResponse is the ledger-wide reconciliation report.
type ReconciliationReportResponse struct {
	LedgerConsistent bool                   `json:"ledger_consistent"`
	Discrepancies    []*DiscrepancyResponse `json:"discrepancies"`
	CheckedAt        time.Time              `json:"checked_at"`
}

// ReconciliationReportFromDomain converts a report to response.
func ReconciliationReportFromDomain(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	return &ReconciliationReportResponse{
		LedgerConsistent: r.LedgerConsistent,
		Discrepancies:    ConsistencyFromDomain(r.Discrepancies).Discrepancies,
		CheckedAt:        r.CheckedAt,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
