package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/autofeedr/autofeedr/internal/models"
)

const jobColumns = `id, account_id, source, status, topic, paper_url, paper_text, generated_post, error_message, attempts, max_attempts, scheduled_for, next_retry_at, created, updated`

func (r *SQLiteRepo) CreateJob(ctx context.Context, j *models.Job) (int64, error) {
	if j == nil {
		return 0, fmt.Errorf("job is nil")
	}
	if j.Status == "" {
		j.Status = models.StatusPending
	}
	if j.ScheduledFor.IsZero() {
		j.ScheduledFor = time.Now().UTC()
	}

	res, err := r.conn.Exec(ctx,
		`INSERT INTO jobs (account_id, source, status, topic, paper_url, paper_text, attempts, max_attempts, scheduled_for, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.AccountID, j.Source, j.Status, j.Topic, j.PaperURL, j.PaperText, j.Attempts, j.MaxAttempts, j.ScheduledFor.UTC().Unix(), now(), now())
	if err != nil {
		return 0, fmt.Errorf("create job: %w", err)
	}
	return res.LastInsertId()
}

func (r *SQLiteRepo) GetJobByID(ctx context.Context, id int64) (*models.Job, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	j, err := scanJob(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return j, err
}

func (r *SQLiteRepo) ListJobs(ctx context.Context, limit int) ([]models.Job, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.conn.QueryRows(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Job
	for rows.Next() {
		j, err := scanJob(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *j)
	}
	return out, rows.Err()
}

// ClaimDueJobs selects due pending/retry jobs in FIFO id order and flips them
// to running before returning, so a job is never handed out twice within a
// tick. There is no cross-process lock: the design assumes one worker.
func (r *SQLiteRepo) ClaimDueJobs(ctx context.Context, nowTime time.Time, limit int) ([]models.Job, error) {
	rows, err := r.conn.QueryRows(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE status IN (?, ?) AND scheduled_for <= ? ORDER BY id ASC LIMIT ?`,
		models.StatusPending, models.StatusRetry, nowTime.UTC().Unix(), limit)
	if err != nil {
		return nil, fmt.Errorf("select due jobs: %w", err)
	}
	defer rows.Close()

	var claimed []models.Job
	for rows.Next() {
		j, err := scanJob(rows.Scan)
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
		if _, err := r.conn.Exec(ctx, `UPDATE jobs SET status = ?, updated = ? WHERE id = ?`,
			models.StatusRunning, now(), claimed[i].ID); err != nil {
			return nil, fmt.Errorf("claim job %d: %w", claimed[i].ID, err)
		}
	}
	return claimed, nil
}

func (r *SQLiteRepo) UpdateJob(ctx context.Context, j *models.Job) error {
	var nextRetry any
	if j.NextRetryAt != nil {
		nextRetry = j.NextRetryAt.UTC().Unix()
	}
	_, err := r.conn.Exec(ctx,
		`UPDATE jobs SET status = ?, topic = ?, paper_url = ?, paper_text = ?, generated_post = ?, error_message = ?, attempts = ?, max_attempts = ?, scheduled_for = ?, next_retry_at = ?, updated = ? WHERE id = ?`,
		j.Status, j.Topic, j.PaperURL, j.PaperText, j.GeneratedPost, j.ErrorMessage, j.Attempts, j.MaxAttempts, j.ScheduledFor.UTC().Unix(), nextRetry, now(), j.ID)
	return err
}

func (r *SQLiteRepo) AppendJobLog(ctx context.Context, jobID int64, level, message string) error {
	_, err := r.conn.Exec(ctx, `INSERT INTO job_logs (job_id, level, message, created) VALUES (?, ?, ?, ?)`,
		jobID, level, message, now())
	return err
}

func (r *SQLiteRepo) ListJobLogs(ctx context.Context, jobID int64) ([]models.JobLog, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, job_id, level, message, created FROM job_logs WHERE job_id = ? ORDER BY id`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.JobLog
	for rows.Next() {
		var l models.JobLog
		if err := rows.Scan(&l.ID, &l.JobID, &l.Level, &l.Message, &l.Created); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func scanJob(scan func(dest ...any) error) (*models.Job, error) {
	var (
		j            models.Job
		topic        sql.NullString
		paperURL     sql.NullString
		paperText    sql.NullString
		generated    sql.NullString
		errorMessage sql.NullString
		scheduledFor int64
		nextRetry    sql.NullInt64
	)
	if err := scan(&j.ID, &j.AccountID, &j.Source, &j.Status, &topic, &paperURL, &paperText, &generated, &errorMessage, &j.Attempts, &j.MaxAttempts, &scheduledFor, &nextRetry, &j.Created, &j.Updated); err != nil {
		return nil, err
	}
	if topic.Valid {
		j.Topic = &topic.String
	}
	if paperURL.Valid {
		j.PaperURL = &paperURL.String
	}
	if paperText.Valid {
		j.PaperText = &paperText.String
	}
	if generated.Valid {
		j.GeneratedPost = &generated.String
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
