package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"

	redisrepo "github.com/iho/accountledger/internal/adapter/repository/redis"
	"github.com/iho/accountledger/internal/usecase"
)

type fakeIdempotencyStore struct {
	checkAndSetFn func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	updateFn      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
	deleteFn      func(ctx context.Context, key string) error
}

func (f *fakeIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if f.checkAndSetFn != nil {
		return f.checkAndSetFn(ctx, key, response, ttl)
	}
	return false, nil, nil
}

func (f *fakeIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, key, response, ttl)
	}
	return nil
}

func (f *fakeIdempotencyStore) Delete(ctx context.Context, key string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, key)
	}
	return nil
}

// memoryIdempotencyStore is a map-backed store with the same claim semantics as Redis.
type memoryIdempotencyStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{data: make(map[string][]byte)}
}

func (s *memoryIdempotencyStore) CheckAndSet(_ context.Context, key string, _ []byte, _ time.Duration) (bool, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.data[key]; ok {
		return true, v, nil
	}
	s.data[key] = []byte(usecase.IdempotencyPending)
	return false, nil, nil
}

func (s *memoryIdempotencyStore) Update(_ context.Context, key string, response []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = response
	return nil
}

func (s *memoryIdempotencyStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func postWithKey(path, key string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(`{"value":10}`))
	req.Header.Set(IdempotencyKeyHeader, key)
	return req
}

func TestIdempotencyMiddleware_ReplaysStatusAndBody(t *testing.T) {
	calls := 0
	handler := NewIdempotencyMiddleware(newMemoryIdempotencyStore(), time.Hour, nil).Wrap(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"new_balance":10}`))
		}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, postWithKey("/api/v1/accounts/1/deposit", "k1"))

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, postWithKey("/api/v1/accounts/1/deposit", "k1"))

	if calls != 1 {
		t.Fatalf("expected handler to run once, ran %d times", calls)
	}
	if second.Code != http.StatusCreated || second.Body.String() != `{"new_balance":10}` {
		t.Fatalf("unexpected replay %d %q", second.Code, second.Body.String())
	}
	if second.Header().Get(IdempotencyReplayHeader) != "true" {
		t.Fatalf("expected replay header")
	}
}

func TestIdempotencyMiddleware_ReplaysClientErrors(t *testing.T) {
	calls := 0
	handler := NewIdempotencyMiddleware(newMemoryIdempotencyStore(), time.Hour, nil).Wrap(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"error":"DAILY_LIMIT_EXCEEDED"}`))
		}))

	for range 2 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, postWithKey("/api/v1/accounts/1/withdraw", "k2"))
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
	}

	if calls != 1 {
		t.Fatalf("expected one execution, got %d", calls)
	}
}

func TestIdempotencyMiddleware_ScopesKeysByPath(t *testing.T) {
	calls := 0
	handler := NewIdempotencyMiddleware(newMemoryIdempotencyStore(), time.Hour, nil).Wrap(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusCreated)
		}))

	handler.ServeHTTP(httptest.NewRecorder(), postWithKey("/api/v1/accounts/1/deposit", "same"))
	handler.ServeHTTP(httptest.NewRecorder(), postWithKey("/api/v1/accounts/2/deposit", "same"))

	if calls != 2 {
		t.Fatalf("expected both paths to execute, got %d", calls)
	}
}

func TestIdempotencyMiddleware_InFlightConflict(t *testing.T) {
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			return true, []byte(usecase.IdempotencyPending), nil
		},
	}

	rec := httptest.NewRecorder()
	NewIdempotencyMiddleware(store, time.Hour, nil).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run while the first request is in flight")
	})).ServeHTTP(rec, postWithKey("/api/v1/accounts/1/deposit", "busy"))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestIdempotencyMiddleware_RedisStoreInFlightConflict(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	defer client.Close()

	var (
		handler http.Handler
		nested  *httptest.ResponseRecorder
		calls   int
	)
	handler = NewIdempotencyMiddleware(redisrepo.NewIdempotencyStore(client), time.Hour, nil).Wrap(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			nested = httptest.NewRecorder()
			handler.ServeHTTP(nested, postWithKey("/api/v1/accounts/1/deposit", "redis-key"))
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"new_balance":10}`))
		}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, postWithKey("/api/v1/accounts/1/deposit", "redis-key"))

	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", first.Code)
	}
	if nested == nil || nested.Code != http.StatusConflict {
		t.Fatalf("expected 409 while the first request was running, got %+v", nested)
	}

	replay := httptest.NewRecorder()
	handler.ServeHTTP(replay, postWithKey("/api/v1/accounts/1/deposit", "redis-key"))

	if calls != 1 {
		t.Fatalf("expected handler to run once, ran %d times", calls)
	}
	if replay.Code != http.StatusCreated || replay.Header().Get(IdempotencyReplayHeader) != "true" {
		t.Fatalf("expected stored replay, got %d", replay.Code)
	}
}

func TestIdempotencyMiddleware_StoreErrors(t *testing.T) {
	var called bool
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			return false, nil, context.DeadlineExceeded
		},
	}
	mw := NewIdempotencyMiddleware(store, 0, nil)

	rr := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rr, postWithKey("/api/v1/accounts", "key-err"))

	if called {
		t.Fatalf("handler should not be called when store errors")
	}

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
}

func TestIdempotencyMiddleware_ReleasesKeyOnServerError(t *testing.T) {
	var updated, deleted bool
	store := &fakeIdempotencyStore{
		updateFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) error {
			updated = true
			return nil
		},
		deleteFn: func(ctx context.Context, key string) error {
			deleted = true
			return nil
		},
	}
	mw := NewIdempotencyMiddleware(store, time.Hour, nil)

	rr := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})).ServeHTTP(rr, postWithKey("/api/v1/accounts", "key-fail"))

	if updated {
		t.Fatalf("expected server errors not to be cached")
	}
	if !deleted {
		t.Fatalf("expected key to be released")
	}
}

func TestIdempotencyMiddleware_PassesThroughWithoutKey(t *testing.T) {
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			t.Fatal("store should not be consulted")
			return false, nil, nil
		},
	}
	mw := NewIdempotencyMiddleware(store, time.Hour, nil)

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodPost, "/api/v1/accounts", nil),
		httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil),
	} {
		req.Header.Set("X-Unrelated", "1")
		rr := httptest.NewRecorder()
		mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})).ServeHTTP(rr, req)

		if rr.Code != http.StatusNoContent {
			t.Fatalf("expected pass-through, got %d", rr.Code)
		}
	}
}
