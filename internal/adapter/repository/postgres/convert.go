package postgres

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/iho/accountledger/internal/domain"
	"github.com/iho/accountledger/internal/infrastructure/postgres/generated"
	"github.com/iho/accountledger/internal/usecase"
)

// PostgreSQL error codes mapped to domain errors.
const (
	pgErrForeignKeyViolation = "23503"
	pgErrCheckViolation      = "23514"
)

// queriesFor returns queries bound to the pgx transaction behind tx.
func queriesFor(tx usecase.Tx) (*generated.Queries, error) {
	pgTx, ok := tx.(*Tx)
	if !ok {
		return nil, errors.New("postgres: transaction was not started by this store")
	}
	return generated.New(pgTx.PgxTx()), nil
}

func isPgError(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

func rowToAccount(row generated.Account) (*domain.Account, error) {
	balance, err := numericToMoney(row.Balance)
	if err != nil {
		return nil, err
	}
	limit, err := numericToMoney(row.DailyWithdrawalLimit)
	if err != nil {
		return nil, err
	}

	return &domain.Account{
		ID:                   domain.AccountID(row.AccountID),
		PersonID:             domain.PersonID(row.PersonID),
		Balance:              balance,
		DailyWithdrawalLimit: limit,
		AccountType:          domain.AccountType(row.AccountType),
		Active:               row.ActiveFlag,
		CreatedAt:            row.CreateDate.Time,
	}, nil
}

func rowToTransaction(row generated.Transaction) *domain.Transaction {
	return &domain.Transaction{
		ID:        domain.TransactionID(row.TransactionID),
		AccountID: domain.AccountID(row.AccountID),
		Value:     numericToDecimal(row.Value),
		Date:      row.TransactionDate.Time,
	}
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func numericToMoney(n pgtype.Numeric) (domain.Money, error) {
	return domain.NewMoney(numericToDecimal(n))
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func optionalTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return timeToPgTimestamptz(*t)
}
