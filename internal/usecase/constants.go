package usecase

import "time"

const (
	// DefaultTransactionTimeout bounds a single deposit or withdrawal attempt.
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// Operation names used for metrics and logs.
	OperationCreateAccount = "create_account"
	OperationDeposit       = "deposit"
	OperationWithdraw      = "withdraw"
	OperationBlockAccount  = "block_account"
)
