package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/timeclock-hq/timeclock-backend-go/internal/pkg/database"
)

var (
	testDB     *database.DB
	testDBOnce sync.Once
	testDBErr  error
)

// testDatabase connects to the database named by TEST_DATABASE_URL and
// applies the schema. Tests are skipped when the variable is unset so the
// suite stays runnable without infrastructure.
func testDatabase(t *testing.T) *database.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database tests")
	}

	testDBOnce.Do(func() {
		testDB, testDBErr = database.NewPostgreSQLDB(dsn)
		if testDBErr != nil {
			testDBErr = fmt.Errorf("connect to test database: %w", testDBErr)
			return
		}
		testDBErr = testDB.Migrate(context.Background())
	})
	if testDBErr != nil {
		t.Fatal(testDBErr)
	}
	return testDB
}

func truncateAll(t *testing.T, db *database.DB) {
	t.Helper()
	ctx := context.Background()
	tables := []string{
		"work_log_entries",
		"devices",
		"employee_tasks",
		"tasks",
		"employees",
		"admin_users",
	}
	for _, table := range tables {
		_, err := db.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			t.Fatalf("truncate %s: %v", table, err)
		}
	}
}
