package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/migrations"
)

// tables in truncation order
var tables = []string{
	"activity_logs",
	"notification_preferences",
	"notifications",
	"batch_run_items",
	"batch_runs",
	"leave_allocations",
	"leave_requests",
	"comp_offs",
	"leave_balances",
	"leave_types",
	"holidays",
	"wfh_requests",
	"regularization_requests",
	"profile_update_requests",
	"attendances",
	"refresh_tokens",
	"users",
	"office_locations",
	"shifts",
}

// openTestDB connects to TEST_DATABASE_URL and applies migrations, skipping the test when unset.
func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.NewPostgreSQLDB(context.Background(), dsn, database.PoolSize{})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	if err := migrations.Up(context.Background(), db.Pool); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	if err := truncateAll(context.Background(), db); err != nil {
		t.Fatalf("failed to truncate: %v", err)
	}
	t.Cleanup(db.Close)
	return db
}

func truncateAll(ctx context.Context, db *database.DB) error {
	_, err := db.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", strings.Join(tables, ", ")))
	return err
}
