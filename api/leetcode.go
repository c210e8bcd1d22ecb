package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/autofeedr/autofeedr/internal/leetcode"
	"github.com/autofeedr/autofeedr/internal/llm"
	"github.com/autofeedr/autofeedr/internal/models"
	"github.com/autofeedr/autofeedr/internal/repository"
)

type LeetCodeHandler struct {
	leetRepo        repository.LeetCodeRepo
	githubRepo      repository.GitHubRepo
	defaultTimezone string
	defaultAttempts int
}

func NewLeetCodeHandler(lr repository.LeetCodeRepo, gr repository.GitHubRepo, defaultTimezone string, defaultAttempts int) *LeetCodeHandler {
	return &LeetCodeHandler{
		leetRepo:        lr,
		githubRepo:      gr,
		defaultTimezone: defaultTimezone,
		defaultAttempts: defaultAttempts,
	}
}

type createLeetCodeScheduleRequest struct {
	RepositoryID      int64   `json:"repository_id"`
	CronExpr          string  `json:"cron_expr,omitempty"`
	DayOfWeek         *int    `json:"day_of_week,omitempty"`
	TimeLocal         *string `json:"time_local,omitempty"`
	Timezone          string  `json:"timezone,omitempty"`
	SelectionStrategy *string `json:"selection_strategy,omitempty"`
	DifficultyPolicy  *string `json:"difficulty_policy,omitempty"`
	MaxAttempts       int     `json:"max_attempts,omitempty"`
}

func (h *LeetCodeHandler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req createLeetCodeScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.RepositoryID <= 0 {
		http.Error(w, "repository_id is required", http.StatusBadRequest)
		return
	}

	repo, err := h.githubRepo.GetRepositoryByID(r.Context(), req.RepositoryID)
	if err != nil {
		http.Error(w, "failed to load repository", http.StatusInternalServerError)
		return
	}
	if repo == nil {
		http.Error(w, "repository not found", http.StatusNotFound)
		return
	}

	expr, err := resolveCron(req.CronExpr, req.DayOfWeek, req.TimeLocal)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
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

	if req.SelectionStrategy != nil && !leetcode.KnownStrategy(*req.SelectionStrategy) {
		http.Error(w, "invalid selection_strategy", http.StatusBadRequest)
		return
	}
	if req.DifficultyPolicy != nil && !leetcode.KnownPolicy(*req.DifficultyPolicy) {
		http.Error(w, "invalid difficulty_policy", http.StatusBadRequest)
		return
	}

	maxAttempts := req.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = h.defaultAttempts
	}

	schedule := &models.LeetCodeSchedule{
		RepositoryID:      req.RepositoryID,
		CronExpr:          expr,
		DayOfWeek:         req.DayOfWeek,
		TimeLocal:         req.TimeLocal,
		Timezone:          tz,
		SelectionStrategy: req.SelectionStrategy,
		DifficultyPolicy:  req.DifficultyPolicy,
		MaxAttempts:       maxAttempts,
		IsActive:          true,
	}
	id, err := h.leetRepo.CreateLeetCodeSchedule(r.Context(), schedule)
	if err != nil {
		http.Error(w, "failed to store schedule", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"id": id, "cron_expr": expr}, http.StatusCreated)
}

func (h *LeetCodeHandler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := h.leetRepo.ListLeetCodeSchedules(r.Context())
	if err != nil {
		http.Error(w, "failed to list schedules", http.StatusInternalServerError)
		return
	}
	if schedules == nil {
		schedules = []models.LeetCodeSchedule{}
	}
	writeJSON(w, schedules, http.StatusOK)
}

func (h *LeetCodeHandler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid schedule id", http.StatusBadRequest)
		return
	}
	schedule, err := h.leetRepo.GetLeetCodeScheduleByID(r.Context(), id)
	if err != nil {
		http.Error(w, "failed to load schedule", http.StatusInternalServerError)
		return
	}
	if schedule == nil {
		http.Error(w, "schedule not found", http.StatusNotFound)
		return
	}

	var req createLeetCodeScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if req.CronExpr != "" || (req.DayOfWeek != nil && req.TimeLocal != nil) {
		expr, err := resolveCron(req.CronExpr, req.DayOfWeek, req.TimeLocal)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		schedule.CronExpr = expr
		schedule.DayOfWeek = req.DayOfWeek
		schedule.TimeLocal = req.TimeLocal
	}
	if req.SelectionStrategy != nil {
		if !leetcode.KnownStrategy(*req.SelectionStrategy) {
			http.Error(w, "invalid selection_strategy", http.StatusBadRequest)
			return
		}
		schedule.SelectionStrategy = req.SelectionStrategy
	}
	if req.DifficultyPolicy != nil {
		if !leetcode.KnownPolicy(*req.DifficultyPolicy) {
			http.Error(w, "invalid difficulty_policy", http.StatusBadRequest)
			return
		}
		schedule.DifficultyPolicy = req.DifficultyPolicy
	}
	if req.MaxAttempts > 0 {
		schedule.MaxAttempts = req.MaxAttempts
	}

	if err := h.leetRepo.UpdateLeetCodeSchedule(r.Context(), schedule); err != nil {
		http.Error(w, "failed to update schedule", http.StatusInternalServerError)
		return
	}
	writeJSON(w, schedule, http.StatusOK)
}

type runNowRequest struct {
	RepositoryID      int64   `json:"repository_id"`
	ProblemSlug       *string `json:"problem_slug,omitempty"`
	SelectionStrategy *string `json:"selection_strategy,omitempty"`
	DifficultyPolicy  *string `json:"difficulty_policy,omitempty"`
	MaxAttempts       int     `json:"max_attempts,omitempty"`
}

// RunNow inserts a pending LeetCode job. An optional problem_slug forces the
// problem instead of running selection.
func (h *LeetCodeHandler) RunNow(w http.ResponseWriter, r *http.Request) {
	var req runNowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.RepositoryID <= 0 {
		http.Error(w, "repository_id is required", http.StatusBadRequest)
		return
	}

	repo, err := h.githubRepo.GetRepositoryByID(r.Context(), req.RepositoryID)
	if err != nil {
		http.Error(w, "failed to load repository", http.StatusInternalServerError)
		return
	}
	if repo == nil {
		http.Error(w, "repository not found", http.StatusNotFound)
		return
	}

	if req.SelectionStrategy != nil && !leetcode.KnownStrategy(*req.SelectionStrategy) {
		http.Error(w, "invalid selection_strategy", http.StatusBadRequest)
		return
	}
	if req.DifficultyPolicy != nil && !leetcode.KnownPolicy(*req.DifficultyPolicy) {
		http.Error(w, "invalid difficulty_policy", http.StatusBadRequest)
		return
	}

	maxAttempts := req.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = h.defaultAttempts
	}
	var slug *string
	if req.ProblemSlug != nil && strings.TrimSpace(*req.ProblemSlug) != "" {
		trimmed := strings.TrimSpace(*req.ProblemSlug)
		slug = &trimmed
	}

	job := &models.LeetCodeJob{
		RepositoryID:      req.RepositoryID,
		Source:            "manual",
		Status:            models.StatusPending,
		MaxAttempts:       maxAttempts,
		SelectionStrategy: req.SelectionStrategy,
		DifficultyPolicy:  req.DifficultyPolicy,
		ProblemSlug:       slug,
		ScheduledFor:      time.Now().UTC(),
	}
	id, err := h.leetRepo.CreateLeetCodeJob(r.Context(), job)
	if err != nil {
		http.Error(w, "failed to enqueue job", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"id": id, "status": models.StatusPending}, http.StatusCreated)
}

func (h *LeetCodeHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 500 {
			limit = v
		}
	}
	jobs, err := h.leetRepo.ListLeetCodeJobs(r.Context(), limit)
	if err != nil {
		http.Error(w, "failed to list jobs", http.StatusInternalServerError)
		return
	}
	if jobs == nil {
		jobs = []models.LeetCodeJob{}
	}
	writeJSON(w, jobs, http.StatusOK)
}

func (h *LeetCodeHandler) GetJobLogs(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid job id", http.StatusBadRequest)
		return
	}
	job, err := h.leetRepo.GetLeetCodeJobByID(r.Context(), id)
	if err != nil {
		http.Error(w, "failed to load job", http.StatusInternalServerError)
		return
	}
	if job == nil {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}
	logs, err := h.leetRepo.ListLeetCodeJobLogs(r.Context(), id)
	if err != nil {
		http.Error(w, "failed to list job logs", http.StatusInternalServerError)
		return
	}
	if logs == nil {
		logs = []models.LeetCodeJobLog{}
	}
	writeJSON(w, map[string]any{"job": job, "logs": logs}, http.StatusOK)
}

func (h *LeetCodeHandler) ListCompletedProblems(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid repository id", http.StatusBadRequest)
		return
	}
	problems, err := h.leetRepo.ListCompletedProblems(r.Context(), id)
	if err != nil {
		http.Error(w, "failed to list completed problems", http.StatusInternalServerError)
		return
	}
	if problems == nil {
		problems = []models.LeetCodeCompletedProblem{}
	}
	writeJSON(w, problems, http.StatusOK)
}

// DefaultPrompts exposes the built-in prompt templates so operators can use
// them as a starting point for per-account and per-user overrides.
func (h *LeetCodeHandler) DefaultPrompts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"post_generation":   llm.PromptPostGeneration,
		"post_translation":  llm.PromptTranslation,
		"leetcode_solution": llm.PromptGenerateSolution,
		"leetcode_tests":    llm.PromptGenerateTests,
		"leetcode_fix":      llm.PromptFixSolution,
	}, http.StatusOK)
}
