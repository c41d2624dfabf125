package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/accountledger/internal/domain"
	"github.com/iho/accountledger/internal/usecase"
)

const personExistsValue = "1"

// CachedPersonRepository caches positive existence answers of the wrapped repository.
// Persons are never deleted, so a cached "exists" cannot go stale. Misses are not cached.
type CachedPersonRepository struct {
	next   usecase.PersonRepository
	cache  usecase.Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedPersonRepository wraps next with cache.
func NewCachedPersonRepository(next usecase.PersonRepository, cache usecase.Cache, ttl time.Duration, logger zerolog.Logger) *CachedPersonRepository {
	return &CachedPersonRepository{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// Exists implements usecase.PersonRepository.
func (r *CachedPersonRepository) Exists(ctx context.Context, id domain.PersonID) (bool, error) {
	key := personKey(id)

	val, err := r.cache.Get(ctx, key)
	switch {
	case err == nil && string(val) == personExistsValue:
		return true, nil
	case err != nil && !errors.Is(err, ErrCacheMiss):
		// Cache trouble must not fail account creation.
		r.logger.Warn().Err(err).Str("key", key).Msg("person cache read failed")
	}

	exists, err := r.next.Exists(ctx, id)
	if err != nil {
		return false, err
	}

	if exists {
		if err := r.cache.Set(ctx, key, []byte(personExistsValue), r.ttl); err != nil {
			r.logger.Warn().Err(err).Str("key", key).Msg("person cache write failed")
		}
	}

	return exists, nil
}

func personKey(id domain.PersonID) string {
	return fmt.Sprintf("person:%d:exists", int64(id))
}
