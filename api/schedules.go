package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/autofeedr/autofeedr/internal/cronexpr"
	"github.com/autofeedr/autofeedr/internal/models"
	"github.com/autofeedr/autofeedr/internal/repository"
)

type SchedulesHandler struct {
	scheduleRepo    repository.ScheduleRepo
	jobRepo         repository.JobRepo
	defaultTimezone string
	defaultAttempts int
}

func NewSchedulesHandler(sr repository.ScheduleRepo, jr repository.JobRepo, defaultTimezone string, defaultAttempts int) *SchedulesHandler {
	return &SchedulesHandler{
		scheduleRepo:    sr,
		jobRepo:         jr,
		defaultTimezone: defaultTimezone,
		defaultAttempts: defaultAttempts,
	}
}

type createScheduleRequest struct {
	AccountID      int64   `json:"account_id"`
	Topic          string  `json:"topic"`
	CronExpr       string  `json:"cron_expr,omitempty"`
	DayOfWeek      *int    `json:"day_of_week,omitempty"`
	TimeLocal      *string `json:"time_local,omitempty"`
	SourceMode     string  `json:"source_mode,omitempty"`
	Objective      *string `json:"objective,omitempty"`
	Audience       *string `json:"audience,omitempty"`
	CTAType        *string `json:"cta_type,omitempty"`
	CampaignTheme  *string `json:"campaign_theme,omitempty"`
	UseDateContext bool    `json:"use_date_context,omitempty"`
	Timezone       string  `json:"timezone,omitempty"`
}

// resolveCron accepts either a raw cron expression or a (day_of_week,
// time_local) pair, and always validates before anything is persisted.
func resolveCron(raw string, dayOfWeek *int, timeLocal *string) (string, error) {
	expr := strings.TrimSpace(raw)
	if expr == "" && dayOfWeek != nil && timeLocal != nil {
		built, err := cronexpr.BuildWeekly(*dayOfWeek, *timeLocal)
		if err != nil {
			return "", err
		}
		expr = built
	}
	if err := cronexpr.Validate(expr); err != nil {
		return "", err
	}
	return expr, nil
}

func (h *SchedulesHandler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req createScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	req.Topic = strings.TrimSpace(req.Topic)
	if req.AccountID <= 0 || req.Topic == "" {
		http.Error(w, "missing fields", http.StatusBadRequest)
		return
	}

	expr, err := resolveCron(req.CronExpr, req.DayOfWeek, req.TimeLocal)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	mode := req.SourceMode
	if mode == "" {
		mode = models.SourceModeArxiv
	}
	if mode != models.SourceModeArxiv && mode != models.SourceModePromptOnly {
		http.Error(w, "invalid source_mode", http.StatusBadRequest)
		return
	}

	tz := req.Timezone
	if tz == "" {
		tz = h.defaultTimezone
	}
	if _, err := time.LoadLocation(tz); err != nil {
		http.Error(w, "invalid timezone", http.StatusBadRequest)
		return
	}

	schedule := &models.Schedule{
		AccountID:     req.AccountID,
		Topic:         req.Topic,
		CronExpr:      expr,
		SourceMode:    mode,
		Objective:     req.Objective,
		Audience:      req.Audience,
		CTAType:       req.CTAType,
		CampaignTheme: req.CampaignTheme,
		UseDateCtx:    req.UseDateContext,
		DayOfWeek:     req.DayOfWeek,
		TimeLocal:     req.TimeLocal,
		Timezone:      tz,
		IsActive:      true,
	}
	id, err := h.scheduleRepo.CreateSchedule(r.Context(), schedule)
	if err != nil {
		http.Error(w, "failed to store schedule", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"id": id, "cron_expr": expr}, http.StatusCreated)
}

func (h *SchedulesHandler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := h.scheduleRepo.ListSchedules(r.Context())
	if err != nil {
		http.Error(w, "failed to list schedules", http.StatusInternalServerError)
		return
	}
	if schedules == nil {
		schedules = []models.Schedule{}
	}
	writeJSON(w, schedules, http.StatusOK)
}

type updateScheduleRequest struct {
	Topic     *string `json:"topic,omitempty"`
	CronExpr  *string `json:"cron_expr,omitempty"`
	DayOfWeek *int    `json:"day_of_week,omitempty"`
	TimeLocal *string `json:"time_local,omitempty"`
	IsActive  *bool   `json:"is_active,omitempty"`
}

func (h *SchedulesHandler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid schedule id", http.StatusBadRequest)
		return
	}

	schedule, err := h.scheduleRepo.GetScheduleByID(r.Context(), id)
	if err != nil {
		http.Error(w, "failed to load schedule", http.StatusInternalServerError)
		return
	}
	if schedule == nil {
		http.Error(w, "schedule not found", http.StatusNotFound)
		return
	}

	var req updateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if req.Topic != nil {
		schedule.Topic = strings.TrimSpace(*req.Topic)
	}
	if req.CronExpr != nil || (req.DayOfWeek != nil && req.TimeLocal != nil) {
		raw := ""
		if req.CronExpr != nil {
			raw = *req.CronExpr
		}
		expr, err := resolveCron(raw, req.DayOfWeek, req.TimeLocal)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		schedule.CronExpr = expr
		if req.DayOfWeek != nil {
			schedule.DayOfWeek = req.DayOfWeek
		}
		if req.TimeLocal != nil {
			schedule.TimeLocal = req.TimeLocal
		}
	}
	if req.IsActive != nil {
		schedule.IsActive = *req.IsActive
	}

	if err := h.scheduleRepo.UpdateSchedule(r.Context(), schedule); err != nil {
		http.Error(w, "failed to update schedule", http.StatusInternalServerError)
		return
	}
	writeJSON(w, schedule, http.StatusOK)
}

type publishNowRequest struct {
	AccountID int64   `json:"account_id"`
	Topic     *string `json:"topic,omitempty"`
	PaperURL  *string `json:"paper_url,omitempty"`
	PaperText *string `json:"paper_text,omitempty"`
}

// PublishNow inserts a pending content job the worker will pick up on its
// next tick. Manually created jobs go through the same state machine as
// schedule-created ones.
func (h *SchedulesHandler) PublishNow(w http.ResponseWriter, r *http.Request) {
	var req publishNowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.AccountID <= 0 {
		http.Error(w, "account_id is required", http.StatusBadRequest)
		return
	}
	hasSource := (req.Topic != nil && strings.TrimSpace(*req.Topic) != "") ||
		(req.PaperURL != nil && strings.TrimSpace(*req.PaperURL) != "") ||
		(req.PaperText != nil && strings.TrimSpace(*req.PaperText) != "")
	if !hasSource {
		http.Error(w, "one of topic, paper_url, or paper_text is required", http.StatusBadRequest)
		return
	}

	job := &models.Job{
		AccountID:    req.AccountID,
		Source:       "manual",
		Status:       models.StatusPending,
		Topic:        req.Topic,
		PaperURL:     req.PaperURL,
		PaperText:    req.PaperText,
		MaxAttempts:  h.defaultAttempts,
		ScheduledFor: time.Now().UTC(),
	}
	id, err := h.jobRepo.CreateJob(r.Context(), job)
	if err != nil {
		http.Error(w, "failed to enqueue job", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"id": id, "status": models.StatusPending}, http.StatusCreated)
}

func (h *SchedulesHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 500 {
			limit = v
		}
	}
	jobs, err := h.jobRepo.ListJobs(r.Context(), limit)
	if err != nil {
		http.Error(w, "failed to list jobs", http.StatusInternalServerError)
		return
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	writeJSON(w, jobs, http.StatusOK)
}

func (h *SchedulesHandler) GetJobLogs(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid job id", http.StatusBadRequest)
		return
	}
	job, err := h.jobRepo.GetJobByID(r.Context(), id)
	if err != nil {
		http.Error(w, "failed to load job", http.StatusInternalServerError)
		return
	}
	if job == nil {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}
	logs, err := h.jobRepo.ListJobLogs(r.Context(), id)
	if err != nil {
		http.Error(w, "failed to list job logs", http.StatusInternalServerError)
		return
	}
	if logs == nil {
		logs = []models.JobLog{}
	}
	writeJSON(w, map[string]any{"job": job, "logs": logs}, http.StatusOK)
}
