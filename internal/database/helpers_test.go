package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB returns a migrated SQLite database in a temp dir, or a
// PostgreSQL container when LECTURE_PG_TESTS=1.
func setupTestDB(t *testing.T) (*DB, func()) {
	t.Helper()
	if os.Getenv("LECTURE_PG_TESTS") == "1" {
		return setupPostgresDB(t)
	}

	db, err := NewDB(Config{
		Type:       TypeSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "lectures.db"),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	return db, func() { db.Close() }
}

func setupPostgresDB(t *testing.T) (*DB, func()) {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("lecturepulse_test"),
		postgres.WithUsername("lecturepulse_test"),
		postgres.WithPassword("lecturepulse_test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}

	host, err := pgContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := pgContainer.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	db, err := NewDB(Config{
		Type:     TypePostgres,
		Host:     host,
		Port:     port.Int(),
		User:     "lecturepulse_test",
		Password: "lecturepulse_test_password",
		Name:     "lecturepulse_test",
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	cleanup := func() {
		db.Conn().Exec("TRUNCATE TABLE analysis_results, lectures CASCADE")
		db.Close()

		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}

	return db, cleanup
}
