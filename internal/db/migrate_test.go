package db_test

import (
	"context"
	"testing"

	"github.com/autofeedr/autofeedr/internal/db"
)

func TestMigrate_AppliesSchema(t *testing.T) {
	ctx := context.Background()
	d, err := db.New(ctx, "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	defer d.Close()

	if err := db.Migrate(ctx, d); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	tables := []string{
		"users", "linkedin_accounts", "schedules", "schedule_runs",
		"jobs", "job_logs", "github_accounts", "github_repositories",
		"leetcode_schedules", "leetcode_schedule_runs", "leetcode_jobs",
		"leetcode_job_logs", "leetcode_completed_problems",
	}
	for _, table := range tables {
		var name string
		row := d.QueryRow(ctx, `SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table)
		if err := row.Scan(&name); err != nil {
			t.Fatalf("table %s missing after migrate: %v", table, err)
		}
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	ctx := context.Background()
	d, err := db.New(ctx, "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	defer d.Close()

	if err := db.Migrate(ctx, d); err != nil {
		t.Fatalf("first Migrate: %v", err)
	}
	if err := db.Migrate(ctx, d); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
}
