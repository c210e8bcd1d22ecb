package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/autofeedr/autofeedr/internal/models"
)

const leetcodeScheduleColumns = `id, repository_id, cron_expr, day_of_week, time_local, timezone, selection_strategy, difficulty_policy, max_attempts, is_active, created, updated`

func (r *SQLiteRepo) CreateLeetCodeSchedule(ctx context.Context, s *models.LeetCodeSchedule) (int64, error) {
	if s == nil {
		return 0, fmt.Errorf("leetcode schedule is nil")
	}

	res, err := r.conn.Exec(ctx,
		`INSERT INTO leetcode_schedules (repository_id, cron_expr, day_of_week, time_local, timezone, selection_strategy, difficulty_policy, max_attempts, is_active, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.RepositoryID, s.CronExpr, s.DayOfWeek, s.TimeLocal, s.Timezone, s.SelectionStrategy, s.DifficultyPolicy, s.MaxAttempts, boolToInt(s.IsActive), now(), now())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *SQLiteRepo) GetLeetCodeScheduleByID(ctx context.Context, id int64) (*models.LeetCodeSchedule, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+leetcodeScheduleColumns+` FROM leetcode_schedules WHERE id = ?`, id)
	s, err := scanLeetCodeSchedule(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

func (r *SQLiteRepo) ListLeetCodeSchedules(ctx context.Context) ([]models.LeetCodeSchedule, error) {
	return r.listLeetCodeSchedules(ctx, `SELECT `+leetcodeScheduleColumns+` FROM leetcode_schedules ORDER BY id`)
}

func (r *SQLiteRepo) ListActiveLeetCodeSchedules(ctx context.Context) ([]models.LeetCodeSchedule, error) {
	return r.listLeetCodeSchedules(ctx, `SELECT `+leetcodeScheduleColumns+` FROM leetcode_schedules WHERE is_active = 1 ORDER BY id`)
}

func (r *SQLiteRepo) listLeetCodeSchedules(ctx context.Context, query string) ([]models.LeetCodeSchedule, error) {
	rows, err := r.conn.QueryRows(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.LeetCodeSchedule
	for rows.Next() {
		s, err := scanLeetCodeSchedule(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) UpdateLeetCodeSchedule(ctx context.Context, s *models.LeetCodeSchedule) error {
	_, err := r.conn.Exec(ctx,
		`UPDATE leetcode_schedules SET cron_expr = ?, day_of_week = ?, time_local = ?, timezone = ?, selection_strategy = ?, difficulty_policy = ?, max_attempts = ?, is_active = ?, updated = ? WHERE id = ?`,
		s.CronExpr, s.DayOfWeek, s.TimeLocal, s.Timezone, s.SelectionStrategy, s.DifficultyPolicy, s.MaxAttempts, boolToInt(s.IsActive), now(), s.ID)
	return err
}

func (r *SQLiteRepo) InsertLeetCodeScheduleRun(ctx context.Context, scheduleID int64, runMinuteUTC time.Time) (bool, error) {
	_, err := r.conn.Exec(ctx,
		`INSERT INTO leetcode_schedule_runs (schedule_id, run_minute_utc, created) VALUES (?, ?, ?)`,
		scheduleID, runMinuteUTC.UTC().Unix(), now())
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

const leetcodeJobColumns = `id, repository_id, schedule_id, source, status, attempts, max_attempts, selection_strategy, difficulty_policy, problem_frontend_id, problem_slug, problem_title, problem_difficulty, solution_path, tests_path, commit_sha, commit_url, error_message, scheduled_for, next_retry_at, created, updated`

func (r *SQLiteRepo) CreateLeetCodeJob(ctx context.Context, j *models.LeetCodeJob) (int64, error) {
	if j == nil {
		return 0, fmt.Errorf("leetcode job is nil")
	}
	if j.Status == "" {
		j.Status = models.StatusPending
	}
	if j.ScheduledFor.IsZero() {
		j.ScheduledFor = time.Now().UTC()
	}

	res, err := r.conn.Exec(ctx,
		`INSERT INTO leetcode_jobs (repository_id, schedule_id, source, status, attempts, max_attempts, selection_strategy, difficulty_policy, problem_slug, scheduled_for, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.RepositoryID, j.ScheduleID, j.Source, j.Status, j.Attempts, j.MaxAttempts, j.SelectionStrategy, j.DifficultyPolicy, j.ProblemSlug, j.ScheduledFor.UTC().Unix(), now(), now())
	if err != nil {
		return 0, fmt.Errorf("create leetcode job: %w", err)
	}
	return res.LastInsertId()
}

func (r *SQLiteRepo) GetLeetCodeJobByID(ctx context.Context, id int64) (*models.LeetCodeJob, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+leetcodeJobColumns+` FROM leetcode_jobs WHERE id = ?`, id)
	j, err := scanLeetCodeJob(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return j, err
}

func (r *SQLiteRepo) ListLeetCodeJobs(ctx context.Context, limit int) ([]models.LeetCodeJob, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.conn.QueryRows(ctx, `SELECT `+leetcodeJobColumns+` FROM leetcode_jobs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.LeetCodeJob
	for rows.Next() {
		j, err := scanLeetCodeJob(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *j)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) ClaimDueLeetCodeJobs(ctx context.Context, nowTime time.Time, limit int) ([]models.LeetCodeJob, error) {
	rows, err := r.conn.QueryRows(ctx,
		`SELECT `+leetcodeJobColumns+` FROM leetcode_jobs WHERE status IN (?, ?) AND scheduled_for <= ? ORDER BY id ASC LIMIT ?`,
		models.StatusPending, models.StatusRetry, nowTime.UTC().Unix(), limit)
	if err != nil {
		return nil, fmt.Errorf("select due leetcode jobs: %w", err)
	}
	defer rows.Close()

	var claimed []models.LeetCodeJob
	for rows.Next() {
		j, err := scanLeetCodeJob(rows.Scan)
		if err != nil {
			return nil, err
		}
		claimed = append(claimed, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range claimed {
		claimed[i].Status = models.StatusRunning
		if _, err := r.conn.Exec(ctx, `UPDATE leetcode_jobs SET status = ?, updated = ? WHERE id = ?`,
			models.StatusRunning, now(), claimed[i].ID); err != nil {
			return nil, fmt.Errorf("claim leetcode job %d: %w", claimed[i].ID, err)
		}
	}
	return claimed, nil
}

func (r *SQLiteRepo) UpdateLeetCodeJob(ctx context.Context, j *models.LeetCodeJob) error {
	var nextRetry any
	if j.NextRetryAt != nil {
		nextRetry = j.NextRetryAt.UTC().Unix()
	}
	_, err := r.conn.Exec(ctx,
		`UPDATE leetcode_jobs SET status = ?, attempts = ?, max_attempts = ?, selection_strategy = ?, difficulty_policy = ?, problem_frontend_id = ?, problem_slug = ?, problem_title = ?, problem_difficulty = ?, solution_path = ?, tests_path = ?, commit_sha = ?, commit_url = ?, error_message = ?, scheduled_for = ?, next_retry_at = ?, updated = ? WHERE id = ?`,
		j.Status, j.Attempts, j.MaxAttempts, j.SelectionStrategy, j.DifficultyPolicy, j.ProblemFrontendID, j.ProblemSlug, j.ProblemTitle, j.ProblemDifficulty, j.SolutionPath, j.TestsPath, j.CommitSHA, j.CommitURL, j.ErrorMessage, j.ScheduledFor.UTC().Unix(), nextRetry, now(), j.ID)
	return err
}

func (r *SQLiteRepo) AppendLeetCodeJobLog(ctx context.Context, jobID int64, level, message string) error {
	_, err := r.conn.Exec(ctx, `INSERT INTO leetcode_job_logs (job_id, level, message, created) VALUES (?, ?, ?, ?)`,
		jobID, level, message, now())
	return err
}

func (r *SQLiteRepo) ListLeetCodeJobLogs(ctx context.Context, jobID int64) ([]models.LeetCodeJobLog, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, job_id, level, message, created FROM leetcode_job_logs WHERE job_id = ? ORDER BY id`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.LeetCodeJobLog
	for rows.Next() {
		var l models.LeetCodeJobLog
		if err := rows.Scan(&l.ID, &l.JobID, &l.Level, &l.Message, &l.Created); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) InsertCompletedProblem(ctx context.Context, p *models.LeetCodeCompletedProblem) (int64, error) {
	if p == nil {
		return 0, fmt.Errorf("completed problem is nil")
	}

	res, err := r.conn.Exec(ctx,
		`INSERT INTO leetcode_completed_problems (repository_id, job_id, problem_frontend_id, problem_slug, problem_title, problem_difficulty, commit_sha, created) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.RepositoryID, p.JobID, p.ProblemFrontendID, p.ProblemSlug, p.ProblemTitle, p.ProblemDifficulty, p.CommitSHA, now())
	if err != nil {
		return 0, fmt.Errorf("insert completed problem: %w", err)
	}
	return res.LastInsertId()
}

func (r *SQLiteRepo) ListCompletedProblems(ctx context.Context, repositoryID int64) ([]models.LeetCodeCompletedProblem, error) {
	rows, err := r.conn.QueryRows(ctx,
		`SELECT id, repository_id, job_id, problem_frontend_id, problem_slug, problem_title, problem_difficulty, commit_sha, created FROM leetcode_completed_problems WHERE repository_id = ? ORDER BY id DESC`,
		repositoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.LeetCodeCompletedProblem
	for rows.Next() {
		var p models.LeetCodeCompletedProblem
		if err := rows.Scan(&p.ID, &p.RepositoryID, &p.JobID, &p.ProblemFrontendID, &p.ProblemSlug, &p.ProblemTitle, &p.ProblemDifficulty, &p.CommitSHA, &p.Created); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) ListCompletedFrontendIDs(ctx context.Context, repositoryID int64) (map[string]struct{}, error) {
	rows, err := r.conn.QueryRows(ctx,
		`SELECT problem_frontend_id FROM leetcode_completed_problems WHERE repository_id = ?`, repositoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = struct{}{}
	}
	return out, rows.Err()
}

func scanLeetCodeSchedule(scan func(dest ...any) error) (*models.LeetCodeSchedule, error) {
	var (
		s         models.LeetCodeSchedule
		dayOfWeek sql.NullInt64
		timeLocal sql.NullString
		strategy  sql.NullString
		policy    sql.NullString
		isActive  int
	)
	if err := scan(&s.ID, &s.RepositoryID, &s.CronExpr, &dayOfWeek, &timeLocal, &s.Timezone, &strategy, &policy, &s.MaxAttempts, &isActive, &s.Created, &s.Updated); err != nil {
		return nil, err
	}
	if dayOfWeek.Valid {
		d := int(dayOfWeek.Int64)
		s.DayOfWeek = &d
	}
	if timeLocal.Valid {
		s.TimeLocal = &timeLocal.String
	}
	if strategy.Valid {
		s.SelectionStrategy = &strategy.String
	}
	if policy.Valid {
		s.DifficultyPolicy = &policy.String
	}
	s.IsActive = isActive != 0
	return &s, nil
}

func scanLeetCodeJob(scan func(dest ...any) error) (*models.LeetCodeJob, error) {
	var (
		j            models.LeetCodeJob
		scheduleID   sql.NullInt64
		strategy     sql.NullString
		policy       sql.NullString
		frontendID   sql.NullString
		slug         sql.NullString
		title        sql.NullString
		difficulty   sql.NullString
		solutionPath sql.NullString
		testsPath    sql.NullString
		commitSHA    sql.NullString
		commitURL    sql.NullString
		errorMessage sql.NullString
		scheduledFor int64
		nextRetry    sql.NullInt64
	)
	if err := scan(&j.ID, &j.RepositoryID, &scheduleID, &j.Source, &j.Status, &j.Attempts, &j.MaxAttempts, &strategy, &policy, &frontendID, &slug, &title, &difficulty, &solutionPath, &testsPath, &commitSHA, &commitURL, &errorMessage, &scheduledFor, &nextRetry, &j.Created, &j.Updated); err != nil {
		return nil, err
	}
	if scheduleID.Valid {
		j.ScheduleID = &scheduleID.Int64
	}
	if strategy.Valid {
		j.SelectionStrategy = &strategy.String
	}
	if policy.Valid {
		j.DifficultyPolicy = &policy.String
	}
	if frontendID.Valid {
		j.ProblemFrontendID = &frontendID.String
	}
	if slug.Valid {
		j.ProblemSlug = &slug.String
	}
	if title.Valid {
		j.ProblemTitle = &title.String
	}
	if difficulty.Valid {
		j.ProblemDifficulty = &difficulty.String
	}
	if solutionPath.Valid {
		j.SolutionPath = &solutionPath.String
	}
	if testsPath.Valid {
		j.TestsPath = &testsPath.String
	}
	if commitSHA.Valid {
		j.CommitSHA = &commitSHA.String
	}
	if commitURL.Valid {
		j.CommitURL = &commitURL.String
	}
	if errorMessage.Valid {
		j.ErrorMessage = &errorMessage.String
	}
	j.ScheduledFor = time.Unix(scheduledFor, 0).UTC()
	if nextRetry.Valid {
		t := time.Unix(nextRetry.Int64, 0).UTC()
		j.NextRetryAt = &t
	}
	return &j, nil
}
