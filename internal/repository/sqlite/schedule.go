package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/autofeedr/autofeedr/internal/models"
)

const scheduleColumns = `id, account_id, topic, cron_expr, source_mode, objective, audience, cta_type, campaign_theme, use_date_context, day_of_week, time_local, timezone, is_active, created, updated`

func (r *SQLiteRepo) CreateSchedule(ctx context.Context, s *models.Schedule) (int64, error) {
	if s == nil {
		return 0, fmt.Errorf("schedule is nil")
	}

	res, err := r.conn.Exec(ctx,
		`INSERT INTO schedules (account_id, topic, cron_expr, source_mode, objective, audience, cta_type, campaign_theme, use_date_context, day_of_week, time_local, timezone, is_active, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.AccountID, s.Topic, s.CronExpr, s.SourceMode, s.Objective, s.Audience, s.CTAType, s.CampaignTheme, boolToInt(s.UseDateCtx), s.DayOfWeek, s.TimeLocal, s.Timezone, boolToInt(s.IsActive), now(), now())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *SQLiteRepo) GetScheduleByID(ctx context.Context, id int64) (*models.Schedule, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+scheduleColumns+` FROM schedules WHERE id = ?`, id)
	s, err := scanSchedule(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

func (r *SQLiteRepo) ListSchedules(ctx context.Context) ([]models.Schedule, error) {
	return r.listSchedules(ctx, `SELECT `+scheduleColumns+` FROM schedules ORDER BY id`)
}

func (r *SQLiteRepo) ListActiveSchedules(ctx context.Context) ([]models.Schedule, error) {
	return r.listSchedules(ctx, `SELECT `+scheduleColumns+` FROM schedules WHERE is_active = 1 ORDER BY id`)
}

func (r *SQLiteRepo) listSchedules(ctx context.Context, query string) ([]models.Schedule, error) {
	rows, err := r.conn.QueryRows(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Schedule
	for rows.Next() {
		s, err := scanSchedule(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) UpdateSchedule(ctx context.Context, s *models.Schedule) error {
	_, err := r.conn.Exec(ctx,
		`UPDATE schedules SET topic = ?, cron_expr = ?, source_mode = ?, objective = ?, audience = ?, cta_type = ?, campaign_theme = ?, use_date_context = ?, day_of_week = ?, time_local = ?, timezone = ?, is_active = ?, updated = ? WHERE id = ?`,
		s.Topic, s.CronExpr, s.SourceMode, s.Objective, s.Audience, s.CTAType, s.CampaignTheme, boolToInt(s.UseDateCtx), s.DayOfWeek, s.TimeLocal, s.Timezone, boolToInt(s.IsActive), now(), s.ID)
	return err
}

// InsertScheduleRun records the per-minute dedup row. A unique violation means
// the minute was already enqueued and is reported as inserted=false.
func (r *SQLiteRepo) InsertScheduleRun(ctx context.Context, scheduleID int64, runMinuteUTC time.Time) (bool, error) {
	_, err := r.conn.Exec(ctx,
		`INSERT INTO schedule_runs (schedule_id, run_minute_utc, created) VALUES (?, ?, ?)`,
		scheduleID, runMinuteUTC.UTC().Unix(), now())
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func scanSchedule(scan func(dest ...any) error) (*models.Schedule, error) {
	var (
		s          models.Schedule
		objective  sql.NullString
		audience   sql.NullString
		ctaType    sql.NullString
		campaign   sql.NullString
		useDateCtx int
		dayOfWeek  sql.NullInt64
		timeLocal  sql.NullString
		isActive   int
	)
	if err := scan(&s.ID, &s.AccountID, &s.Topic, &s.CronExpr, &s.SourceMode, &objective, &audience, &ctaType, &campaign, &useDateCtx, &dayOfWeek, &timeLocal, &s.Timezone, &isActive, &s.Created, &s.Updated); err != nil {
		return nil, err
	}
	if objective.Valid {
		s.Objective = &objective.String
	}
	if audience.Valid {
		s.Audience = &audience.String
	}
	if ctaType.Valid {
		s.CTAType = &ctaType.String
	}
	if campaign.Valid {
		s.CampaignTheme = &campaign.String
	}
	if dayOfWeek.Valid {
		d := int(dayOfWeek.Int64)
		s.DayOfWeek = &d
	}
	if timeLocal.Valid {
		s.TimeLocal = &timeLocal.String
	}
	s.UseDateCtx = useDateCtx != 0
	s.IsActive = isActive != 0
	return &s, nil
}
