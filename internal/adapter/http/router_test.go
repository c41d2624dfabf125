package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/accountledger/internal/adapter/http/handler"
	apimiddleware "github.com/iho/accountledger/internal/adapter/http/middleware"
	"github.com/iho/accountledger/internal/adapter/repository/memory"
	"github.com/iho/accountledger/internal/infrastructure/metrics"
	"github.com/iho/accountledger/internal/usecase"
)

// newRouterConfig wires the real use cases over the in-memory store.
func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	store := memory.NewStore(memory.SeedPersons()...)

	accountUC := usecase.NewAccountUseCase(store.Persons(), store.Accounts(), nil)
	transactionUC := usecase.NewTransactionUseCase(store.TxManager(), store.Accounts(), store.Transactions(),
		usecase.WithLocation(time.UTC))
	reconciliationUC := usecase.NewReconciliationUseCase(store.Ledger())
	ledgerUC := usecase.NewLedgerUseCase(store.Ledger())

	cfg := RouterConfig{
		AccountHandler:     handler.NewAccountHandler(accountUC),
		TransactionHandler: handler.NewTransactionHandler(transactionUC),
		LedgerHandler:      handler.NewLedgerHandler(ledgerUC, reconciliationUC),
		HealthHandler:      handler.NewHealthHandler(nil),
		Logger:             zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := do(t, router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewRouter_AccountLifecycle(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := do(t, router, http.MethodPost, "/api/v1/accounts/",
		`{"person_id":1,"account_type":1,"daily_withdrawal_limit":500}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	account := decode(t, rec)
	assert.Equal(t, float64(1), account["account_id"])
	assert.Equal(t, true, account["active_flag"])

	rec = do(t, router, http.MethodPost, "/api/v1/accounts/1/deposit", `{"value":1000}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, float64(1000), decode(t, rec)["new_balance"])

	rec = do(t, router, http.MethodPost, "/api/v1/accounts/1/withdraw", `{"value":200}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, float64(800), decode(t, rec)["new_balance"])

	rec = do(t, router, http.MethodPost, "/api/v1/accounts/1/withdraw", `{"value":400}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "DAILY_LIMIT_EXCEEDED", decode(t, rec)["error"])

	rec = do(t, router, http.MethodGet, "/api/v1/accounts/1/balance", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(800), decode(t, rec)["balance"])

	rec = do(t, router, http.MethodGet, "/api/v1/accounts/1/statements?limit=10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	statement := decode(t, rec)
	assert.Equal(t, float64(2), statement["total"])
	items := statement["items"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "withdrawal", items[0].(map[string]any)["type"])

	rec = do(t, router, http.MethodGet, "/api/v1/accounts/1/reconciliation", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["is_reconciled"])

	rec = do(t, router, http.MethodPost, "/api/v1/accounts/1/block", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/v1/accounts/1/deposit", `{"value":1}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "ACCOUNT_BLOCKED", decode(t, rec)["error"])

	rec = do(t, router, http.MethodGet, "/api/v1/ledger/consistency", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/v1/ledger/reconciliation", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["ledger_consistent"])
}

func TestNewRouter_ErrorStatusTable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := do(t, router, http.MethodPost, "/api/v1/accounts/",
		`{"person_id":42,"account_type":1,"daily_withdrawal_limit":500}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "PERSON_NOT_FOUND", decode(t, rec)["error"])

	rec = do(t, router, http.MethodGet, "/api/v1/accounts/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "ACCOUNT_NOT_FOUND", decode(t, rec)["error"])

	rec = do(t, router, http.MethodPost, "/api/v1/accounts/",
		`{"person_id":1,"account_type":1,"daily_withdrawal_limit":100}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/v1/accounts/1/withdraw", `{"value":10}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "INSUFFICIENT_FUNDS", decode(t, rec)["error"])

	rec = do(t, router, http.MethodGet, "/api/v1/accounts/1/statements?from=2024-03-02T00:00:00Z&to=2024-03-01T00:00:00Z", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_DATE_RANGE", decode(t, rec)["error"])

	rec = do(t, router, http.MethodPost, "/api/v1/accounts/1/deposit", `{"value":0.004}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_MONEY", decode(t, rec)["error"])

	rec = do(t, router, http.MethodGet, "/api/v1/accounts/1/balance", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decode(t, rec)["balance"])
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	rl := apimiddleware.NewRateLimiter(1, 1, nil)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = rl
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}
}

func TestNewRouter_IdempotentDepositAppliesOnce(t *testing.T) {
	store := &stubIdempotencyStore{data: map[string][]byte{}}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
	}))

	rec := do(t, router, http.MethodPost, "/api/v1/accounts/",
		`{"person_id":1,"account_type":1,"daily_withdrawal_limit":500}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	for range 3 {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/1/deposit", strings.NewReader(`{"value":50}`))
		req.Header.Set(apimiddleware.IdempotencyKeyHeader, "deposit-1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, float64(50), decode(t, rec)["new_balance"])
	}

	rec = do(t, router, http.MethodGet, "/api/v1/accounts/1/balance", "")
	assert.Equal(t, float64(50), decode(t, rec)["balance"])
}

func TestNewRouter_MetricsEndpoint(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := metrics.NewWithRegisterer(registry)

	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.Metrics = m
		cfg.MetricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}))

	do(t, router, http.MethodGet, "/health", "")

	rec := do(t, router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "accountledger_http_requests_total")
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"POST /api/v1/accounts/",
		"GET /api/v1/accounts/",
		"GET /api/v1/accounts/{id}/",
		"GET /api/v1/accounts/{id}/balance",
		"POST /api/v1/accounts/{id}/block",
		"POST /api/v1/accounts/{id}/deposit",
		"POST /api/v1/accounts/{id}/withdraw",
		"GET /api/v1/accounts/{id}/statements",
		"GET /api/v1/accounts/{id}/reconciliation",
		"GET /api/v1/ledger/consistency",
		"GET /api/v1/ledger/reconciliation",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered, got %v", route, seen)
		}
	}
}

type stubIdempotencyStore struct {
	data map[string][]byte
}

func (s *stubIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if v, ok := s.data[key]; ok {
		return true, v, nil
	}
	s.data[key] = []byte(usecase.IdempotencyPending)
	return false, nil, nil
}

func (s *stubIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	s.data[key] = response
	return nil
}

func (s *stubIdempotencyStore) Delete(ctx context.Context, key string) error {
	delete(s.data, key)
	return nil
}
