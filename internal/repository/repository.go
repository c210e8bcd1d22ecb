package repository

import (
	"context"
	"time"

	"github.com/autofeedr/autofeedr/internal/models"
)

// Repository interfaces for domain entities. These are the contracts the API
// and the worker depend on; the concrete implementation lives under
// internal/repository/sqlite.

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) (int64, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
}

type AccountRepo interface {
	CreateAccount(ctx context.Context, a *models.LinkedinAccount) (int64, error)
	GetAccountByID(ctx context.Context, id int64) (*models.LinkedinAccount, error)
	ListAccounts(ctx context.Context) ([]models.LinkedinAccount, error)
	UpdateAccount(ctx context.Context, a *models.LinkedinAccount) error
	DeleteAccount(ctx context.Context, id int64) error
}

type ScheduleRepo interface {
	CreateSchedule(ctx context.Context, s *models.Schedule) (int64, error)
	GetScheduleByID(ctx context.Context, id int64) (*models.Schedule, error)
	ListSchedules(ctx context.Context) ([]models.Schedule, error)
	ListActiveSchedules(ctx context.Context) ([]models.Schedule, error)
	UpdateSchedule(ctx context.Context, s *models.Schedule) error
	// InsertScheduleRun records the (schedule, minute) dedup row. It returns
	// inserted=false when the row already exists, which callers treat as
	// "already enqueued this minute", not as an error.
	InsertScheduleRun(ctx context.Context, scheduleID int64, runMinuteUTC time.Time) (bool, error)
}

type JobRepo interface {
	CreateJob(ctx context.Context, j *models.Job) (int64, error)
	GetJobByID(ctx context.Context, id int64) (*models.Job, error)
	ListJobs(ctx context.Context, limit int) ([]models.Job, error)
	// ClaimDueJobs selects jobs with status pending|retry due at now, ordered
	// by id ascending, bounded by limit, and marks them running in the same
	// call.
	ClaimDueJobs(ctx context.Context, now time.Time, limit int) ([]models.Job, error)
	UpdateJob(ctx context.Context, j *models.Job) error
	AppendJobLog(ctx context.Context, jobID int64, level, message string) error
	ListJobLogs(ctx context.Context, jobID int64) ([]models.JobLog, error)
}

type GitHubRepo interface {
	CreateGitHubAccount(ctx context.Context, a *models.GitHubAccount) (int64, error)
	GetGitHubAccountByID(ctx context.Context, id int64) (*models.GitHubAccount, error)
	ListGitHubAccounts(ctx context.Context) ([]models.GitHubAccount, error)
	UpdateGitHubAccount(ctx context.Context, a *models.GitHubAccount) error
	DeleteGitHubAccount(ctx context.Context, id int64) error

	CreateRepository(ctx context.Context, r *models.GitHubRepository) (int64, error)
	GetRepositoryByID(ctx context.Context, id int64) (*models.GitHubRepository, error)
	ListRepositories(ctx context.Context) ([]models.GitHubRepository, error)
	UpdateRepository(ctx context.Context, r *models.GitHubRepository) error
	DeleteRepository(ctx context.Context, id int64) error
}

type LeetCodeRepo interface {
	CreateLeetCodeSchedule(ctx context.Context, s *models.LeetCodeSchedule) (int64, error)
	GetLeetCodeScheduleByID(ctx context.Context, id int64) (*models.LeetCodeSchedule, error)
	ListLeetCodeSchedules(ctx context.Context) ([]models.LeetCodeSchedule, error)
	ListActiveLeetCodeSchedules(ctx context.Context) ([]models.LeetCodeSchedule, error)
	UpdateLeetCodeSchedule(ctx context.Context, s *models.LeetCodeSchedule) error
	InsertLeetCodeScheduleRun(ctx context.Context, scheduleID int64, runMinuteUTC time.Time) (bool, error)

	CreateLeetCodeJob(ctx context.Context, j *models.LeetCodeJob) (int64, error)
	GetLeetCodeJobByID(ctx context.Context, id int64) (*models.LeetCodeJob, error)
	ListLeetCodeJobs(ctx context.Context, limit int) ([]models.LeetCodeJob, error)
	ClaimDueLeetCodeJobs(ctx context.Context, now time.Time, limit int) ([]models.LeetCodeJob, error)
	UpdateLeetCodeJob(ctx context.Context, j *models.LeetCodeJob) error
	AppendLeetCodeJobLog(ctx context.Context, jobID int64, level, message string) error
	ListLeetCodeJobLogs(ctx context.Context, jobID int64) ([]models.LeetCodeJobLog, error)

	InsertCompletedProblem(ctx context.Context, p *models.LeetCodeCompletedProblem) (int64, error)
	ListCompletedProblems(ctx context.Context, repositoryID int64) ([]models.LeetCodeCompletedProblem, error)
	ListCompletedFrontendIDs(ctx context.Context, repositoryID int64) (map[string]struct{}, error)
}
