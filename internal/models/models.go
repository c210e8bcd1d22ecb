package models

import "time"

// Job and LeetCodeJob status values. Lifecycle:
// pending|retry -> running -> success | retry | failed.
const (
	StatusPending = "pending"
	StatusRunning = "running"
	StatusRetry   = "retry"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Schedule source modes.
const (
	SourceModeArxiv      = "arxiv"
	SourceModePromptOnly = "prompt_only"
)

type User struct {
	ID                    int64   `json:"id" db:"id"`
	Email                 string  `json:"email" db:"email"`
	Name                  string  `json:"name" db:"name"`
	PasswordHash          string  `json:"-" db:"password_hash"`
	OpenAIAPIKeyEncrypted *string `json:"-" db:"openai_api_key_encrypted"`
	LeetCodePrompt        *string `json:"leetcode_solution_prompt,omitempty" db:"leetcode_solution_prompt"`
	IsActive              bool    `json:"is_active" db:"is_active"`
	Created               int64   `json:"created" db:"created"`
	Updated               int64   `json:"updated" db:"updated"`
}

type LinkedinAccount struct {
	ID                int64   `json:"id" db:"id"`
	OwnerUserID       int64   `json:"owner_user_id" db:"owner_user_id"`
	Name              string  `json:"name" db:"name"`
	TokenEncrypted    string  `json:"-" db:"token_encrypted"`
	URN               string  `json:"urn" db:"urn"`
	PromptGeneration  *string `json:"prompt_generation,omitempty" db:"prompt_generation"`
	PromptTranslation *string `json:"prompt_translation,omitempty" db:"prompt_translation"`
	IsActive          bool    `json:"is_active" db:"is_active"`
	Created           int64   `json:"created" db:"created"`
	Updated           int64   `json:"updated" db:"updated"`
}

type Schedule struct {
	ID            int64   `json:"id" db:"id"`
	AccountID     int64   `json:"account_id" db:"account_id"`
	Topic         string  `json:"topic" db:"topic"`
	CronExpr      string  `json:"cron_expr" db:"cron_expr"`
	SourceMode    string  `json:"source_mode" db:"source_mode"`
	Objective     *string `json:"objective,omitempty" db:"objective"`
	Audience      *string `json:"audience,omitempty" db:"audience"`
	CTAType       *string `json:"cta_type,omitempty" db:"cta_type"`
	CampaignTheme *string `json:"campaign_theme,omitempty" db:"campaign_theme"`
	UseDateCtx    bool    `json:"use_date_context" db:"use_date_context"`
	DayOfWeek     *int    `json:"day_of_week,omitempty" db:"day_of_week"`
	TimeLocal     *string `json:"time_local,omitempty" db:"time_local"`
	Timezone      string  `json:"timezone" db:"timezone"`
	IsActive      bool    `json:"is_active" db:"is_active"`
	Created       int64   `json:"created" db:"created"`
	Updated       int64   `json:"updated" db:"updated"`
}

// ScheduleRun is the idempotency ledger for schedule firing: one row per
// (schedule, UTC run minute). A failed unique insert means the minute was
// already enqueued.
type ScheduleRun struct {
	ID            int64     `json:"id" db:"id"`
	ScheduleID    int64     `json:"schedule_id" db:"schedule_id"`
	RunMinuteUTC  time.Time `json:"run_minute_utc" db:"run_minute_utc"`
	Created       int64     `json:"created" db:"created"`
}

type Job struct {
	ID            int64      `json:"id" db:"id"`
	AccountID     int64      `json:"account_id" db:"account_id"`
	Source        string     `json:"source" db:"source"`
	Status        string     `json:"status" db:"status"`
	Topic         *string    `json:"topic,omitempty" db:"topic"`
	PaperURL      *string    `json:"paper_url,omitempty" db:"paper_url"`
	PaperText     *string    `json:"paper_text,omitempty" db:"paper_text"`
	GeneratedPost *string    `json:"generated_post,omitempty" db:"generated_post"`
	ErrorMessage  *string    `json:"error_message,omitempty" db:"error_message"`
	Attempts      int        `json:"attempts" db:"attempts"`
	MaxAttempts   int        `json:"max_attempts" db:"max_attempts"`
	ScheduledFor  time.Time  `json:"scheduled_for" db:"scheduled_for"`
	NextRetryAt   *time.Time `json:"next_retry_at,omitempty" db:"next_retry_at"`
	Created       int64      `json:"created" db:"created"`
	Updated       int64      `json:"updated" db:"updated"`
}

type JobLog struct {
	ID      int64  `json:"id" db:"id"`
	JobID   int64  `json:"job_id" db:"job_id"`
	Level   string `json:"level" db:"level"`
	Message string `json:"message" db:"message"`
	Created int64  `json:"created" db:"created"`
}

type GitHubAccount struct {
	ID                      int64   `json:"id" db:"id"`
	Name                    string  `json:"name" db:"name"`
	SSHKeyEncrypted         string  `json:"-" db:"ssh_key_encrypted"`
	SSHPassphraseEncrypted  *string `json:"-" db:"ssh_passphrase_encrypted"`
	IsActive                bool    `json:"is_active" db:"is_active"`
	Created                 int64   `json:"created" db:"created"`
	Updated                 int64   `json:"updated" db:"updated"`
}

type GitHubRepository struct {
	ID                int64  `json:"id" db:"id"`
	AccountID         int64  `json:"account_id" db:"account_id"`
	OwnerUserID       int64  `json:"owner_user_id" db:"owner_user_id"`
	RepoSSHURL        string `json:"repo_ssh_url" db:"repo_ssh_url"`
	DefaultBranch     string `json:"default_branch" db:"default_branch"`
	SolutionsDir      string `json:"solutions_dir" db:"solutions_dir"`
	CommitAuthorName  string `json:"commit_author_name" db:"commit_author_name"`
	CommitAuthorEmail string `json:"commit_author_email" db:"commit_author_email"`
	SelectionStrategy string `json:"selection_strategy" db:"selection_strategy"`
	DifficultyPolicy  string `json:"difficulty_policy" db:"difficulty_policy"`
	IsActive          bool   `json:"is_active" db:"is_active"`
	Created           int64  `json:"created" db:"created"`
	Updated           int64  `json:"updated" db:"updated"`
}

type LeetCodeSchedule struct {
	ID                int64   `json:"id" db:"id"`
	RepositoryID      int64   `json:"repository_id" db:"repository_id"`
	CronExpr          string  `json:"cron_expr" db:"cron_expr"`
	DayOfWeek         *int    `json:"day_of_week,omitempty" db:"day_of_week"`
	TimeLocal         *string `json:"time_local,omitempty" db:"time_local"`
	Timezone          string  `json:"timezone" db:"timezone"`
	SelectionStrategy *string `json:"selection_strategy,omitempty" db:"selection_strategy"`
	DifficultyPolicy  *string `json:"difficulty_policy,omitempty" db:"difficulty_policy"`
	MaxAttempts       int     `json:"max_attempts" db:"max_attempts"`
	IsActive          bool    `json:"is_active" db:"is_active"`
	Created           int64   `json:"created" db:"created"`
	Updated           int64   `json:"updated" db:"updated"`
}

type LeetCodeScheduleRun struct {
	ID           int64     `json:"id" db:"id"`
	ScheduleID   int64     `json:"schedule_id" db:"schedule_id"`
	RunMinuteUTC time.Time `json:"run_minute_utc" db:"run_minute_utc"`
	Created      int64     `json:"created" db:"created"`
}

type LeetCodeJob struct {
	ID           int64  `json:"id" db:"id"`
	RepositoryID int64  `json:"repository_id" db:"repository_id"`
	ScheduleID   *int64 `json:"schedule_id,omitempty" db:"schedule_id"`
	Source       string `json:"source" db:"source"`
	Status       string `json:"status" db:"status"`
	Attempts     int    `json:"attempts" db:"attempts"`
	MaxAttempts  int    `json:"max_attempts" db:"max_attempts"`

	SelectionStrategy *string `json:"selection_strategy,omitempty" db:"selection_strategy"`
	DifficultyPolicy  *string `json:"difficulty_policy,omitempty" db:"difficulty_policy"`

	ProblemFrontendID *string `json:"problem_frontend_id,omitempty" db:"problem_frontend_id"`
	ProblemSlug       *string `json:"problem_slug,omitempty" db:"problem_slug"`
	ProblemTitle      *string `json:"problem_title,omitempty" db:"problem_title"`
	ProblemDifficulty *string `json:"problem_difficulty,omitempty" db:"problem_difficulty"`

	SolutionPath *string `json:"solution_path,omitempty" db:"solution_path"`
	TestsPath    *string `json:"tests_path,omitempty" db:"tests_path"`
	CommitSHA    *string `json:"commit_sha,omitempty" db:"commit_sha"`
	CommitURL    *string `json:"commit_url,omitempty" db:"commit_url"`

	ErrorMessage *string    `json:"error_message,omitempty" db:"error_message"`
	ScheduledFor time.Time  `json:"scheduled_for" db:"scheduled_for"`
	NextRetryAt  *time.Time `json:"next_retry_at,omitempty" db:"next_retry_at"`
	Created      int64      `json:"created" db:"created"`
	Updated      int64      `json:"updated" db:"updated"`
}

type LeetCodeJobLog struct {
	ID      int64  `json:"id" db:"id"`
	JobID   int64  `json:"job_id" db:"job_id"`
	Level   string `json:"level" db:"level"`
	Message string `json:"message" db:"message"`
	Created int64  `json:"created" db:"created"`
}

// LeetCodeCompletedProblem is append-only, unique on
// (repository_id, problem_frontend_id); it feeds problem selection exclusion.
type LeetCodeCompletedProblem struct {
	ID                int64  `json:"id" db:"id"`
	RepositoryID      int64  `json:"repository_id" db:"repository_id"`
	JobID             int64  `json:"job_id" db:"job_id"`
	ProblemFrontendID string `json:"problem_frontend_id" db:"problem_frontend_id"`
	ProblemSlug       string `json:"problem_slug" db:"problem_slug"`
	ProblemTitle      string `json:"problem_title" db:"problem_title"`
	ProblemDifficulty string `json:"problem_difficulty" db:"problem_difficulty"`
	CommitSHA         string `json:"commit_sha" db:"commit_sha"`
	Created           int64  `json:"created" db:"created"`
}
