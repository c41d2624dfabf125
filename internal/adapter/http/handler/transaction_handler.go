package handler

import (
	"context"
	"net/http"

	"github.com/iho/accountledger/internal/adapter/http/dto"
	"github.com/iho/accountledger/internal/domain"
	"github.com/iho/accountledger/internal/usecase"
)

// TransactionService defines the behavior needed by TransactionHandler.
type TransactionService interface {
	Deposit(ctx context.Context, accountID domain.AccountID, value domain.Money) (*usecase.MovementResult, error)
	Withdraw(ctx context.Context, accountID domain.AccountID, value domain.Money) (*usecase.MovementResult, error)
	GetStatement(ctx context.Context, input usecase.StatementInput) (*domain.Statement, error)
}

// TransactionHandler handles deposits, withdrawals and statements.
type TransactionHandler struct {
	transactionUC TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionUC TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionUC: transactionUC}
}

type movementFunc func(ctx context.Context, accountID domain.AccountID, value domain.Money) (*usecase.MovementResult, error)

// Deposit credits an account.
func (h *TransactionHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.transactionUC.Deposit)
}

// Withdraw debits an account.
func (h *TransactionHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.transactionUC.Withdraw)
}

func (h *TransactionHandler) move(w http.ResponseWriter, r *http.Request, fn movementFunc) {
	id, err := accountIDParam(r)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	var req dto.MovementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, err)
		return
	}

	amount, err := req.Amount()
	if err != nil {
		writeValidationError(w, err)
		return
	}

	result, err := fn(r.Context(), id, amount)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.MovementFromResult(result))
}

// Statement returns a newest-first page of an account's entries.
func (h *TransactionHandler) Statement(w http.ResponseWriter, r *http.Request) {
	id, err := accountIDParam(r)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	query, err := dto.ParseStatementQuery(r.URL.Query())
	if err == nil {
		err = dto.Validate(&query)
	}
	if err != nil {
		writeValidationError(w, err)
		return
	}

	input, err := query.ToUseCaseInput(id)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	statement, err := h.transactionUC.GetStatement(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.StatementFromDomain(statement))
}
