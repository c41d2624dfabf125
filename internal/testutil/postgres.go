// Package testutil provides helpers for tests that run against a real PostgreSQL database.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	postgresRepo "github.com/iho/accountledger/internal/adapter/repository/postgres"
	"github.com/iho/accountledger/internal/domain"
	"github.com/iho/accountledger/internal/infrastructure/postgres"
)

// TestDB provides isolated test database connections.
type TestDB struct {
	Pool *pgxpool.Pool
	t    *testing.T
}

// NewTestDB connects to DATABASE_URL and applies migrations.
// The test is skipped in short mode or when DATABASE_URL is unset.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	if err := postgres.RunMigrations(dbURL, migrationsPath(t)); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	pool, err := postgres.NewPoolWithConfig(context.Background(), postgres.PoolConfig{
		DatabaseURL:    dbURL,
		MaxConns:       20,
		MinConns:       1,
		ConnectTimeout: 10 * time.Second,
	})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	db := &TestDB{Pool: pool, t: t}
	t.Cleanup(db.Cleanup)
	return db
}

// migrationsPath walks up from the working directory to the module root.
func migrationsPath(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return filepath.Join(dir, "migrations")
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not locate module root")
		}
		dir = parent
	}
}

// Cleanup closes the database connection.
func (db *TestDB) Cleanup() {
	db.Pool.Close()
}

// TruncateAll removes accounts and transactions. Seeded persons are kept.
func (db *TestDB) TruncateAll(ctx context.Context) {
	db.t.Helper()

	_, err := db.Pool.Exec(ctx, `TRUNCATE TABLE transactions, accounts RESTART IDENTITY CASCADE`)
	if err != nil {
		db.t.Fatalf("failed to truncate tables: %v", err)
	}
}

// CreateTestAccount opens an account for the first seeded person.
func (db *TestDB) CreateTestAccount(ctx context.Context, dailyLimit decimal.Decimal) *domain.Account {
	db.t.Helper()

	limit, err := domain.NewMoney(dailyLimit)
	if err != nil {
		db.t.Fatalf("invalid daily limit: %v", err)
	}

	var personID int64
	if err := db.Pool.QueryRow(ctx, `SELECT person_id FROM persons WHERE document = 'DOC-001'`).Scan(&personID); err != nil {
		db.t.Fatalf("failed to find seeded person: %v", err)
	}

	account := &domain.Account{
		PersonID:             domain.PersonID(personID),
		DailyWithdrawalLimit: limit,
		AccountType:          domain.AccountTypeChecking,
	}
	if err := postgresRepo.NewAccountRepository(db.Pool).Create(ctx, account); err != nil {
		db.t.Fatalf("failed to create test account: %v", err)
	}

	return account
}
