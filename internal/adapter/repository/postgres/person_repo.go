package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/accountledger/internal/domain"
	"github.com/iho/accountledger/internal/infrastructure/postgres/generated"
)

// PersonRepository implements usecase.PersonRepository.
type PersonRepository struct {
	queries *generated.Queries
}

// NewPersonRepository creates a new PersonRepository.
func NewPersonRepository(pool *pgxpool.Pool) *PersonRepository {
	return newPersonRepository(pool)
}

func newPersonRepository(db generated.DBTX) *PersonRepository {
	return &PersonRepository{queries: generated.New(db)}
}

// Exists reports whether a person with the given id is registered.
func (r *PersonRepository) Exists(ctx context.Context, id domain.PersonID) (bool, error) {
	exists, err := r.queries.PersonExists(ctx, int64(id))
	if err != nil {
		return false, fmt.Errorf("person exists: %w", err)
	}
	return exists, nil
}
