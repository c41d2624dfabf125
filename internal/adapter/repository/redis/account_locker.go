package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/accountledger/internal/domain"
)

// ErrLockTimeout is returned when an account lock cannot be taken within the wait budget.
var ErrLockTimeout = errors.New("account lock wait timed out")

var errLockHeld = errors.New("account lock held")

var unlockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// AccountLocker implements usecase.AccountLocker with one Redis key per account.
type AccountLocker struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	wait   time.Duration
	logger zerolog.Logger
}

// AccountLockerOption configures an AccountLocker.
type AccountLockerOption func(*AccountLocker)

// WithLockTTL sets how long a lock survives a crashed holder.
func WithLockTTL(ttl time.Duration) AccountLockerOption {
	return func(l *AccountLocker) {
		l.ttl = ttl
	}
}

// WithLockWait bounds how long Lock waits for a held lock.
func WithLockWait(wait time.Duration) AccountLockerOption {
	return func(l *AccountLocker) {
		l.wait = wait
	}
}

// WithLockLogger sets the logger used for unlock failures.
func WithLockLogger(logger zerolog.Logger) AccountLockerOption {
	return func(l *AccountLocker) {
		l.logger = logger
	}
}

// NewAccountLocker creates a new AccountLocker.
func NewAccountLocker(client *redis.Client, opts ...AccountLockerOption) *AccountLocker {
	l := &AccountLocker{
		client: client,
		prefix: "lock:account:",
		ttl:    15 * time.Second,
		wait:   5 * time.Second,
		logger: zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Lock takes the lock of account id, retrying with backoff while another holder has it.
// The returned unlock releases the lock only if this caller still owns it.
func (l *AccountLocker) Lock(ctx context.Context, id domain.AccountID) (func(), error) {
	key := l.prefix + id.String()
	token := ulid.Make().String()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 10 * time.Millisecond
	b.MaxInterval = 200 * time.Millisecond
	b.MaxElapsedTime = l.wait

	operation := func() error {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return backoff.Permanent(fmt.Errorf("lock account %s: %w", id, err))
		}
		if !ok {
			return errLockHeld
		}
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		if errors.Is(err, errLockHeld) {
			return nil, fmt.Errorf("%w: account %s", ErrLockTimeout, id)
		}
		return nil, err
	}

	unlock := func() {
		// Release even if the caller's context is already done.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()

		res, err := unlockScript.Run(releaseCtx, l.client, []string{key}, token).Int()
		if err != nil {
			l.logger.Warn().Err(err).Str("key", key).Msg("account unlock failed")
			return
		}
		if res == 0 {
			l.logger.Warn().Str("key", key).Msg("account lock expired before unlock")
		}
	}

	return unlock, nil
}
