package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/autofeedr/autofeedr/internal/arxiv"
	"github.com/autofeedr/autofeedr/internal/linkedin"
	"github.com/autofeedr/autofeedr/internal/models"
	"github.com/autofeedr/autofeedr/internal/pipeline"
	"github.com/autofeedr/autofeedr/internal/writer"
)

// ProcessPendingJobs claims a batch of due content jobs and runs each to a
// terminal or retry state. The claim marks jobs running before execution so a
// repeated tick cannot pick them up again.
func (w *Worker) ProcessPendingJobs(ctx context.Context) (int, error) {
	jobs, err := w.store.ClaimDueJobs(ctx, w.now().UTC(), w.cfg.Worker.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("claim jobs: %w", err)
	}

	for i := range jobs {
		job := &jobs[i]
		post, execErr := w.executeJob(ctx, job)
		if execErr == nil {
			job.GeneratedPost = &post
		}
		if err := w.settleJob(ctx, job, execErr); err != nil {
			return i, fmt.Errorf("settle job %d: %w", job.ID, err)
		}
	}
	return len(jobs), nil
}

func (w *Worker) executeJob(ctx context.Context, job *models.Job) (string, error) {
	account, err := w.store.GetAccountByID(ctx, job.AccountID)
	if err != nil {
		return "", fmt.Errorf("load account: %w", err)
	}
	if account == nil || !account.IsActive {
		return "", &pipeline.ConfigError{Reason: "linkedin account missing or inactive"}
	}
	if account.OwnerUserID == 0 {
		return "", &pipeline.ConfigError{Reason: "linkedin account has no owner user"}
	}

	owner, err := w.store.GetUserByID(ctx, account.OwnerUserID)
	if err != nil {
		return "", fmt.Errorf("load owner user: %w", err)
	}
	if owner == nil || !owner.IsActive {
		return "", &pipeline.ConfigError{Reason: "owner user missing or inactive"}
	}
	if owner.OpenAIAPIKeyEncrypted == nil {
		return "", &pipeline.ConfigError{Reason: "owner user has no model API key configured"}
	}

	apiKey, err := w.box.Decrypt(*owner.OpenAIAPIKeyEncrypted)
	if err != nil {
		return "", &pipeline.ConfigError{Reason: "decrypt model API key: " + err.Error()}
	}
	token, err := w.box.Decrypt(account.TokenEncrypted)
	if err != nil {
		return "", &pipeline.ConfigError{Reason: "decrypt linkedin token: " + err.Error()}
	}

	content, err := w.buildContentInput(ctx, job)
	if err != nil {
		return "", err
	}

	gen, err := w.newGenerator(apiKey)
	if err != nil {
		return "", &pipeline.ConfigError{Reason: "build model session: " + err.Error()}
	}
	post, err := writer.GeneratePost(ctx, gen, content, writer.Overrides{
		Generation:  account.PromptGeneration,
		Translation: account.PromptTranslation,
	})
	if err != nil {
		return "", err
	}

	if err := w.posts.Publish(ctx, token, linkedin.NormalizeURN(account.URN), post); err != nil {
		return "", err
	}
	return post, nil
}

// buildContentInput resolves the source material in priority order: explicit
// text, then an explicit paper URL, then topic search.
func (w *Worker) buildContentInput(ctx context.Context, job *models.Job) (string, error) {
	if job.PaperText != nil && strings.TrimSpace(*job.PaperText) != "" {
		return *job.PaperText, nil
	}

	if job.PaperURL != nil && strings.TrimSpace(*job.PaperURL) != "" {
		return w.paperInfoFromURL(ctx, strings.TrimSpace(*job.PaperURL))
	}

	if job.Topic != nil && strings.TrimSpace(*job.Topic) != "" {
		topic := strings.TrimSpace(*job.Topic)
		start, end := arxiv.DefaultWindow(w.now())
		articles, err := w.articles.SearchTopic(ctx, topic, start, end, 1)
		if err != nil {
			return "", fmt.Errorf("search articles: %w", err)
		}
		if len(articles) == 0 {
			return "", fmt.Errorf("no article found for topic %q", topic)
		}
		return articles[0].InfoBlock(), nil
	}

	return "", &pipeline.ConfigError{Reason: "job has no content source (topic, paper_url, or paper_text)"}
}

func (w *Worker) paperInfoFromURL(ctx context.Context, url string) (string, error) {
	id := arxiv.ExtractID(url)
	if id == "" {
		return "Paper URL fornecida: " + url, nil
	}

	article, err := w.articles.FetchByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("fetch paper %s: %w", id, err)
	}
	if article == nil {
		return "Paper URL fornecida: " + url, nil
	}
	return article.InfoBlock(), nil
}

// settleJob applies the state machine transition for one execution outcome
// and records the matching job-log row.
func (w *Worker) settleJob(ctx context.Context, job *models.Job, execErr error) error {
	if execErr == nil {
		job.Status = models.StatusSuccess
		job.ErrorMessage = nil
		job.NextRetryAt = nil
		if err := w.store.UpdateJob(ctx, job); err != nil {
			return err
		}
		logger.Info("job succeeded", "job_id", job.ID, "account_id", job.AccountID)
		return w.store.AppendJobLog(ctx, job.ID, "INFO", "post published")
	}

	msg := execErr.Error()
	job.ErrorMessage = &msg

	var exhausted *pipeline.QualityExhaustedError
	var confErr *pipeline.ConfigError
	switch {
	case errors.As(execErr, &exhausted):
		// the pipeline already spent its own attempt budget
		job.Attempts = job.MaxAttempts
		job.Status = models.StatusFailed
		job.NextRetryAt = nil
	case errors.As(execErr, &confErr):
		// a configuration problem will not self-resolve
		job.Attempts++
		job.Status = models.StatusFailed
		job.NextRetryAt = nil
	default:
		job.Attempts++
		if job.Attempts >= job.MaxAttempts {
			job.Status = models.StatusFailed
			job.NextRetryAt = nil
		} else {
			retryAt := w.now().UTC().Add(time.Duration(w.cfg.Worker.RetryBaseMinutes*job.Attempts) * time.Minute)
			job.Status = models.StatusRetry
			job.ScheduledFor = retryAt
			job.NextRetryAt = &retryAt
		}
	}

	if err := w.store.UpdateJob(ctx, job); err != nil {
		return err
	}

	if job.Status == models.StatusFailed {
		logger.Error("job failed",
			"job_id", job.ID, "account_id", job.AccountID,
			"attempts", job.Attempts, "error", msg)
		return w.store.AppendJobLog(ctx, job.ID, "ERROR", "final failure: "+msg)
	}
	logger.Warn("job retry scheduled",
		"job_id", job.ID, "account_id", job.AccountID,
		"attempts", job.Attempts, "retry_at", job.ScheduledFor.Format(time.RFC3339), "error", msg)
	return w.store.AppendJobLog(ctx, job.ID, "WARNING",
		fmt.Sprintf("attempt %d failed: %s", job.Attempts, msg))
}
