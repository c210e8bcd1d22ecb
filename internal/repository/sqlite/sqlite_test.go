package sqlite

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/autofeedr/autofeedr/internal/db"
	"github.com/autofeedr/autofeedr/internal/models"
)

func setupRepo(t *testing.T) *SQLiteRepo {
	t.Helper()

	ctx := context.Background()
	conn, err := db.New(ctx, "file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.Migrate(ctx, conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return New(conn, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestInsertScheduleRun_DuplicateMinute(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	minute := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	inserted, err := repo.InsertScheduleRun(ctx, 1, minute)
	if err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if !inserted {
		t.Fatal("first insert should report inserted=true")
	}

	inserted, err = repo.InsertScheduleRun(ctx, 1, minute)
	if err != nil {
		t.Fatalf("duplicate insert should not error: %v", err)
	}
	if inserted {
		t.Fatal("duplicate (schedule, minute) should report inserted=false")
	}

	// A different minute for the same schedule is a fresh row.
	inserted, err = repo.InsertScheduleRun(ctx, 1, minute.Add(time.Minute))
	if err != nil {
		t.Fatalf("next minute insert: %v", err)
	}
	if !inserted {
		t.Fatal("next minute should report inserted=true")
	}
}

func TestClaimDueJobs(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	topic := "observability"
	pendingID, err := repo.CreateJob(ctx, &models.Job{AccountID: 1, Source: "schedule", Topic: &topic, MaxAttempts: 3, ScheduledFor: now.Add(-time.Minute)})
	if err != nil {
		t.Fatalf("create pending job: %v", err)
	}
	retryID, err := repo.CreateJob(ctx, &models.Job{AccountID: 1, Source: "schedule", Status: models.StatusRetry, Topic: &topic, MaxAttempts: 3, ScheduledFor: now.Add(-time.Second)})
	if err != nil {
		t.Fatalf("create retry job: %v", err)
	}
	if _, err := repo.CreateJob(ctx, &models.Job{AccountID: 1, Source: "schedule", Topic: &topic, MaxAttempts: 3, ScheduledFor: now.Add(time.Hour)}); err != nil {
		t.Fatalf("create future job: %v", err)
	}

	claimed, err := repo.ClaimDueJobs(ctx, now, 10)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if len(claimed) != 2 {
		t.Fatalf("expected 2 due jobs, got %d", len(claimed))
	}
	if claimed[0].ID != pendingID || claimed[1].ID != retryID {
		t.Fatalf("claim order should be id ascending, got %d then %d", claimed[0].ID, claimed[1].ID)
	}
	for _, j := range claimed {
		if j.Status != models.StatusRunning {
			t.Fatalf("claimed job %d status = %q, want running", j.ID, j.Status)
		}
	}

	// Already-running jobs are not claimed twice.
	again, err := repo.ClaimDueJobs(ctx, now, 10)
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected no jobs on second claim, got %d", len(again))
	}

	got, err := repo.GetJobByID(ctx, pendingID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if got.Status != models.StatusRunning {
		t.Fatalf("persisted status = %q, want running", got.Status)
	}
}

func TestClaimDueJobs_Limit(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for i := 0; i < 4; i++ {
		if _, err := repo.CreateJob(ctx, &models.Job{AccountID: 1, Source: "manual", MaxAttempts: 3, ScheduledFor: now.Add(-time.Minute)}); err != nil {
			t.Fatalf("create job %d: %v", i, err)
		}
	}

	claimed, err := repo.ClaimDueJobs(ctx, now, 3)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if len(claimed) != 3 {
		t.Fatalf("expected batch of 3, got %d", len(claimed))
	}
}

func TestLeetCodeJobLifecycle(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	id, err := repo.CreateLeetCodeJob(ctx, &models.LeetCodeJob{
		RepositoryID: 1,
		Source:       "schedule",
		MaxAttempts:  5,
		ScheduledFor: now.Add(-time.Minute),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	claimed, err := repo.ClaimDueLeetCodeJobs(ctx, now, 10)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if len(claimed) != 1 || claimed[0].ID != id {
		t.Fatalf("expected to claim job %d, got %+v", id, claimed)
	}

	job := claimed[0]
	frontendID := "1"
	slug := "two-sum"
	title := "Two Sum"
	difficulty := "Easy"
	sha := "abc123"
	retryAt := now.Add(2 * time.Minute).Truncate(time.Second)
	job.Status = models.StatusRetry
	job.Attempts = 1
	job.ProblemFrontendID = &frontendID
	job.ProblemSlug = &slug
	job.ProblemTitle = &title
	job.ProblemDifficulty = &difficulty
	job.CommitSHA = &sha
	job.NextRetryAt = &retryAt

	if err := repo.UpdateLeetCodeJob(ctx, &job); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.GetLeetCodeJobByID(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != models.StatusRetry || got.Attempts != 1 {
		t.Fatalf("unexpected status/attempts: %q/%d", got.Status, got.Attempts)
	}
	if got.ProblemSlug == nil || *got.ProblemSlug != slug {
		t.Fatalf("problem slug not persisted: %+v", got.ProblemSlug)
	}
	if got.NextRetryAt == nil || !got.NextRetryAt.Equal(retryAt) {
		t.Fatalf("next retry at = %v, want %v", got.NextRetryAt, retryAt)
	}

	if err := repo.AppendLeetCodeJobLog(ctx, id, "INFO", "attempt 1 failed tests"); err != nil {
		t.Fatalf("append log: %v", err)
	}
	logs, err := repo.ListLeetCodeJobLogs(ctx, id)
	if err != nil {
		t.Fatalf("list logs: %v", err)
	}
	if len(logs) != 1 || logs[0].Message != "attempt 1 failed tests" {
		t.Fatalf("unexpected logs: %+v", logs)
	}
}

func TestCompletedProblems_UniquePerRepository(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	first := &models.LeetCodeCompletedProblem{
		RepositoryID:      1,
		JobID:             10,
		ProblemFrontendID: "125",
		ProblemSlug:       "valid-palindrome",
		ProblemTitle:      "Valid Palindrome",
		ProblemDifficulty: "Easy",
		CommitSHA:         "deadbeef",
	}
	if _, err := repo.InsertCompletedProblem(ctx, first); err != nil {
		t.Fatalf("insert: %v", err)
	}

	dup := *first
	dup.JobID = 11
	if _, err := repo.InsertCompletedProblem(ctx, &dup); err == nil {
		t.Fatal("duplicate (repository, frontend id) should error")
	}

	// Same problem in a different repository is fine.
	other := *first
	other.RepositoryID = 2
	other.JobID = 12
	if _, err := repo.InsertCompletedProblem(ctx, &other); err != nil {
		t.Fatalf("insert into second repository: %v", err)
	}

	ids, err := repo.ListCompletedFrontendIDs(ctx, 1)
	if err != nil {
		t.Fatalf("list frontend ids: %v", err)
	}
	if _, ok := ids["125"]; !ok || len(ids) != 1 {
		t.Fatalf("unexpected frontend ids: %v", ids)
	}
}

func TestUserRoundTrip(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	id, err := repo.CreateUser(ctx, &models.User{
		Email:        "dev@example.com",
		Name:         "Dev",
		PasswordHash: "x",
		IsActive:     true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	u, err := repo.GetUserByEmail(ctx, "dev@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if u == nil || u.ID != id {
		t.Fatalf("unexpected user: %+v", u)
	}
	if u.OpenAIAPIKeyEncrypted != nil {
		t.Fatal("openai key should be nil when unset")
	}

	key := "enc:abc"
	u.OpenAIAPIKeyEncrypted = &key
	if err := repo.UpdateUser(ctx, u); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := repo.GetUserByID(ctx, id)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got.OpenAIAPIKeyEncrypted == nil || *got.OpenAIAPIKeyEncrypted != key {
		t.Fatal("openai key not persisted")
	}
}
