// Package dbtest opens a migrated Postgres pool for integration tests.
// Tests are skipped unless TEST_DATABASE_URL is set.
package dbtest

import (
	"context"
	"os"
	"testing"
	"time"

	"lead_intake_backend/migrations"
	"lead_intake_backend/platform/db"

	"github.com/jackc/pgx/v5/pgxpool"
)

type urlConfig string

func (u urlConfig) GetDatabaseURL() string { return string(u) }

// Open returns a pool on a freshly truncated schema.
func Open(t *testing.T) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.RunMigrations(ctx, urlConfig(url), migrations.FS); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	pool, err := db.NewPool(ctx, urlConfig(url))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := pool.Exec(ctx, `TRUNCATE audit_records, leads, campaigns, workers`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return pool
}
