package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

func TestLoggingMiddlewareLogsRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	var ctxLogger *zerolog.Logger
	handler := chimiddleware.RequestID(NewLoggingMiddleware(logger).Wrap(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctxLogger = zerolog.Ctx(r.Context())
			w.WriteHeader(http.StatusCreated)
		})))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/accounts", nil))

	out := buf.String()
	for _, want := range []string{`"status":201`, `"method":"POST"`, `"path":"/api/v1/accounts"`, `"request_id":"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in log line %q", want, out)
		}
	}

	if ctxLogger == nil || ctxLogger.GetLevel() == zerolog.Disabled {
		t.Fatal("expected request logger in context")
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "INTERNAL_ERROR") {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}
