package dto

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/iho/accountledger/internal/domain"
	"github.com/iho/accountledger/internal/usecase"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate runs the struct tags of a request.
func Validate(req any) error {
	return validate.Struct(req)
}

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	PersonID             int64    `json:"person_id"              validate:"required,gt=0"`
	AccountType          int16    `json:"account_type"           validate:"required,gt=0"`
	DailyWithdrawalLimit *float64 `json:"daily_withdrawal_limit" validate:"required,gte=0"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() (usecase.CreateAccountInput, error) {
	limit, err := domain.MoneyFromFloat(*r.DailyWithdrawalLimit)
	if err != nil {
		return usecase.CreateAccountInput{}, err
	}

	return usecase.CreateAccountInput{
		PersonID:             domain.PersonID(r.PersonID),
		AccountType:          domain.AccountType(r.AccountType),
		DailyWithdrawalLimit: limit,
	}, nil
}

// MovementRequest is the body of deposit and withdraw requests.
type MovementRequest struct {
	Value float64 `json:"value" validate:"gt=0"`
}

// Amount converts the value to Money.
func (r *MovementRequest) Amount() (domain.Money, error) {
	return domain.MoneyFromFloat(r.Value)
}

// PageQuery holds limit/offset query parameters.
type PageQuery struct {
	Limit  *int `validate:"omitempty,min=1,max=100"`
	Offset *int `validate:"omitempty,min=0"`
}

// StatementQuery holds the query parameters of a statement request.
type StatementQuery struct {
	PageQuery
	From string `validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	To   string `validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// ParsePageQuery reads limit and offset from q.
func ParsePageQuery(q url.Values) (PageQuery, error) {
	var page PageQuery

	var err error
	if page.Limit, err = optionalInt(q, "limit"); err != nil {
		return page, err
	}
	if page.Offset, err = optionalInt(q, "offset"); err != nil {
		return page, err
	}

	return page, nil
}

// ParseStatementQuery reads the statement query parameters from q.
func ParseStatementQuery(q url.Values) (StatementQuery, error) {
	page, err := ParsePageQuery(q)
	if err != nil {
		return StatementQuery{}, err
	}

	return StatementQuery{
		PageQuery: page,
		From:      q.Get("from"),
		To:        q.Get("to"),
	}, nil
}

// ToListInput converts to use case input; absent values fall back to the use case defaults.
func (p PageQuery) ToListInput() usecase.ListAccountsInput {
	return usecase.ListAccountsInput{Limit: deref(p.Limit), Offset: deref(p.Offset)}
}

// ToUseCaseInput converts to use case input. Call after Validate.
func (s StatementQuery) ToUseCaseInput(accountID domain.AccountID) (usecase.StatementInput, error) {
	from, err := optionalTime(s.From)
	if err != nil {
		return usecase.StatementInput{}, err
	}
	to, err := optionalTime(s.To)
	if err != nil {
		return usecase.StatementInput{}, err
	}

	return usecase.StatementInput{
		AccountID: accountID,
		Limit:     deref(s.Limit),
		Offset:    deref(s.Offset),
		From:      from,
		To:        to,
	}, nil
}

func optionalInt(q url.Values, key string) (*int, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", key)
	}

	return &v, nil
}

func optionalTime(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
