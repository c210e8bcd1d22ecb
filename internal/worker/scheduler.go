package worker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/autofeedr/autofeedr/internal/cronexpr"
	"github.com/autofeedr/autofeedr/internal/models"
)

// EnqueueDueSchedules evaluates every active content schedule against the
// current minute in the schedule's own timezone and creates one pending Job
// per firing. The (schedule, run-minute) unique insert makes enqueueing
// at-most-once even when a tick is evaluated twice.
func (w *Worker) EnqueueDueSchedules(ctx context.Context) (int, error) {
	nowUTC := w.now().UTC()
	schedules, err := w.store.ListActiveSchedules(ctx)
	if err != nil {
		return 0, fmt.Errorf("list schedules: %w", err)
	}

	created := 0
	for i := range schedules {
		schedule := &schedules[i]

		loc, err := time.LoadLocation(schedule.Timezone)
		if err != nil {
			logger.Error("invalid schedule timezone",
				"schedule_id", schedule.ID, "timezone", schedule.Timezone, "error", err)
			continue
		}
		localMinute := nowUTC.In(loc).Truncate(time.Minute)

		match, err := cronexpr.MatchesMinute(schedule.CronExpr, localMinute)
		if err != nil {
			logger.Error("invalid schedule cron",
				"schedule_id", schedule.ID, "cron", schedule.CronExpr, "error", err)
			continue
		}
		if !match {
			continue
		}

		runMinuteUTC := localMinute.UTC()
		inserted, err := w.store.InsertScheduleRun(ctx, schedule.ID, runMinuteUTC)
		if err != nil {
			return created, fmt.Errorf("record schedule run: %w", err)
		}
		if !inserted {
			continue
		}

		mode := schedule.SourceMode
		if mode == "" {
			mode = models.SourceModeArxiv
		}
		topic := schedule.Topic
		job := &models.Job{
			AccountID:    schedule.AccountID,
			Source:       "schedule:" + mode,
			Status:       models.StatusPending,
			Topic:        &topic,
			MaxAttempts:  w.cfg.Worker.MaxAttempts,
			ScheduledFor: runMinuteUTC,
		}
		if mode == models.SourceModePromptOnly {
			brief := buildPromptOnlyBrief(schedule, localMinute)
			job.PaperText = &brief
		}

		if _, err := w.store.CreateJob(ctx, job); err != nil {
			return created, fmt.Errorf("create job for schedule %d: %w", schedule.ID, err)
		}
		created++
	}
	return created, nil
}

// EnqueueDueLeetCodeSchedules is the LeetCode counterpart of
// EnqueueDueSchedules.
func (w *Worker) EnqueueDueLeetCodeSchedules(ctx context.Context) (int, error) {
	nowUTC := w.now().UTC()
	schedules, err := w.store.ListActiveLeetCodeSchedules(ctx)
	if err != nil {
		return 0, fmt.Errorf("list leetcode schedules: %w", err)
	}

	created := 0
	for i := range schedules {
		schedule := &schedules[i]

		loc, err := time.LoadLocation(schedule.Timezone)
		if err != nil {
			logger.Error("invalid leetcode schedule timezone",
				"schedule_id", schedule.ID, "timezone", schedule.Timezone, "error", err)
			continue
		}
		localMinute := nowUTC.In(loc).Truncate(time.Minute)

		match, err := cronexpr.MatchesMinute(schedule.CronExpr, localMinute)
		if err != nil {
			logger.Error("invalid leetcode schedule cron",
				"schedule_id", schedule.ID, "cron", schedule.CronExpr, "error", err)
			continue
		}
		if !match {
			continue
		}

		runMinuteUTC := localMinute.UTC()
		inserted, err := w.store.InsertLeetCodeScheduleRun(ctx, schedule.ID, runMinuteUTC)
		if err != nil {
			return created, fmt.Errorf("record leetcode schedule run: %w", err)
		}
		if !inserted {
			continue
		}

		maxAttempts := schedule.MaxAttempts
		if maxAttempts <= 0 {
			maxAttempts = w.cfg.LeetCode.DefaultMaxAttempts
		}
		scheduleID := schedule.ID
		job := &models.LeetCodeJob{
			RepositoryID:      schedule.RepositoryID,
			ScheduleID:        &scheduleID,
			Source:            "schedule",
			Status:            models.StatusPending,
			MaxAttempts:       maxAttempts,
			SelectionStrategy: schedule.SelectionStrategy,
			DifficultyPolicy:  schedule.DifficultyPolicy,
			ScheduledFor:      runMinuteUTC,
		}

		if _, err := w.store.CreateLeetCodeJob(ctx, job); err != nil {
			return created, fmt.Errorf("create leetcode job for schedule %d: %w", schedule.ID, err)
		}
		created++
	}
	return created, nil
}

// easterSunday computes Gregorian Easter via the anonymous algorithm.
func easterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// seasonalContext returns a short editorial hint for dates near Brazilian
// holidays. The text feeds the generation prompt, so it stays in Portuguese.
func seasonalContext(localNow time.Time) string {
	day := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), 0, 0, 0, 0, time.UTC)
	easter := easterSunday(localNow.Year())
	carnaval := easter.AddDate(0, 0, -47)

	within := func(target time.Time, days int) bool {
		diff := day.Sub(target) / (24 * time.Hour)
		return diff >= -time.Duration(days) && diff <= time.Duration(days)
	}

	switch {
	case within(carnaval, 3):
		return "Carnaval: conecte com planejamento, foco e produtividade profissional no periodo."
	case within(easter, 3):
		return "Pascoa: conecte com renovacao, estrategia e crescimento profissional."
	case localNow.Month() == time.May && localNow.Day() == 1:
		return "Dia do Trabalhador: valorize carreira, eficiencia e impacto do trabalho."
	case localNow.Month() == time.December && localNow.Day() >= 20:
		return "Natal e fim de ano: conecte com retrospectiva, metas e planejamento do proximo ciclo."
	}
	return "Sem data comemorativa forte hoje: mantenha foco em valor pratico para o publico profissional."
}

// buildPromptOnlyBrief synthesizes the content input for prompt_only
// schedules: a structured editorial brief instead of an external article.
func buildPromptOnlyBrief(schedule *models.Schedule, localNow time.Time) string {
	objective := stringOr(schedule.Objective, "educacional")
	audience := stringOr(schedule.Audience, "profissionais da area")
	ctaType := stringOr(schedule.CTAType, "comentario")
	campaignTheme := stringOr(schedule.CampaignTheme, schedule.Topic)

	parts := []string{
		"Modo: postagem editorial sem busca externa.",
		"Data atual: " + localNow.Format("2006-01-02"),
		"Tema central: " + schedule.Topic,
		"Tema de campanha: " + campaignTheme,
		"Publico alvo: " + audience,
		"Objetivo editorial: " + objective,
		"CTA desejada: " + ctaType,
	}
	if schedule.UseDateCtx {
		parts = append(parts, "Contexto sazonal/profissional: "+seasonalContext(localNow))
	}
	parts = append(parts,
		"Instrucoes de escrita:",
		"- Escreva em tom profissional e claro.",
		"- Traga valor pratico e aplicavel.",
		"- Evite generalidades vagas.",
		"- Nao repita texto identico de posts anteriores.",
	)
	return strings.Join(parts, "\n")
}

func stringOr(v *string, def string) string {
	if v != nil && strings.TrimSpace(*v) != "" {
		return *v
	}
	return def
}
