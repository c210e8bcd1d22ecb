package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/autofeedr/autofeedr/internal/models"
	"github.com/autofeedr/autofeedr/internal/pipeline"
)

// ProcessPendingLeetCodeJobs claims a batch of due LeetCode jobs and runs the
// solving pipeline for each.
func (w *Worker) ProcessPendingLeetCodeJobs(ctx context.Context) (int, error) {
	jobs, err := w.store.ClaimDueLeetCodeJobs(ctx, w.now().UTC(), w.cfg.Worker.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("claim leetcode jobs: %w", err)
	}

	for i := range jobs {
		job := &jobs[i]
		if err := w.store.AppendLeetCodeJobLog(ctx, job.ID, "INFO", "starting leetcode pipeline"); err != nil {
			return i, err
		}
		execErr := w.executeLeetCodeJob(ctx, job)
		if err := w.settleLeetCodeJob(ctx, job, execErr); err != nil {
			return i, fmt.Errorf("settle leetcode job %d: %w", job.ID, err)
		}
	}
	return len(jobs), nil
}

func (w *Worker) executeLeetCodeJob(ctx context.Context, job *models.LeetCodeJob) error {
	repo, err := w.store.GetRepositoryByID(ctx, job.RepositoryID)
	if err != nil {
		return fmt.Errorf("load repository: %w", err)
	}
	if repo == nil || !repo.IsActive {
		return &pipeline.ConfigError{Reason: "github repository missing or inactive"}
	}

	account, err := w.store.GetGitHubAccountByID(ctx, repo.AccountID)
	if err != nil {
		return fmt.Errorf("load github account: %w", err)
	}
	if account == nil || !account.IsActive {
		return &pipeline.ConfigError{Reason: "github account missing or inactive"}
	}
	if account.SSHKeyEncrypted == "" {
		return &pipeline.ConfigError{Reason: "github account has no SSH key configured"}
	}

	var solutionPrompt, apiKey string
	if repo.OwnerUserID != 0 {
		owner, err := w.store.GetUserByID(ctx, repo.OwnerUserID)
		if err != nil {
			return fmt.Errorf("load owner user: %w", err)
		}
		if owner != nil && owner.IsActive {
			if owner.LeetCodePrompt != nil {
				solutionPrompt = *owner.LeetCodePrompt
			}
			if owner.OpenAIAPIKeyEncrypted != nil {
				apiKey, err = w.box.Decrypt(*owner.OpenAIAPIKeyEncrypted)
				if err != nil {
					return &pipeline.ConfigError{Reason: "decrypt model API key: " + err.Error()}
				}
			}
		}
	}
	if apiKey == "" {
		return &pipeline.ConfigError{Reason: "owner user has no model API key configured"}
	}

	sshKey, err := w.box.Decrypt(account.SSHKeyEncrypted)
	if err != nil {
		return &pipeline.ConfigError{Reason: "decrypt SSH key: " + err.Error()}
	}
	var passphrase string
	if account.SSHPassphraseEncrypted != nil {
		passphrase, err = w.box.Decrypt(*account.SSHPassphraseEncrypted)
		if err != nil {
			return &pipeline.ConfigError{Reason: "decrypt SSH passphrase: " + err.Error()}
		}
	}

	completed, err := w.store.ListCompletedFrontendIDs(ctx, repo.ID)
	if err != nil {
		return fmt.Errorf("load completed problems: %w", err)
	}

	in := pipeline.Input{
		RepoSSHURL:        repo.RepoSSHURL,
		DefaultBranch:     repo.DefaultBranch,
		SolutionsDir:      repo.SolutionsDir,
		AuthorName:        repo.CommitAuthorName,
		AuthorEmail:       repo.CommitAuthorEmail,
		PrivateKeyPEM:     sshKey,
		Passphrase:        passphrase,
		SelectionStrategy: firstNonEmpty(stringOr(job.SelectionStrategy, ""), repo.SelectionStrategy, "random"),
		DifficultyPolicy:  firstNonEmpty(stringOr(job.DifficultyPolicy, ""), repo.DifficultyPolicy, "free_any"),
		Completed:         completed,
		ForcedSlug:        stringOr(job.ProblemSlug, ""),
		MaxAttempts:       job.MaxAttempts,
		SolutionPrompt:    solutionPrompt,
	}

	result, err := w.solver.Run(ctx, apiKey, in)
	if err != nil {
		return err
	}

	job.ProblemFrontendID = &result.FrontendID
	job.ProblemSlug = &result.TitleSlug
	job.ProblemTitle = &result.Title
	job.ProblemDifficulty = &result.Difficulty
	job.SolutionPath = &result.SolutionPath
	job.TestsPath = &result.TestsPath
	job.CommitSHA = &result.CommitSHA
	job.CommitURL = &result.CommitURL

	_, err = w.store.InsertCompletedProblem(ctx, &models.LeetCodeCompletedProblem{
		RepositoryID:      repo.ID,
		JobID:             job.ID,
		ProblemFrontendID: result.FrontendID,
		ProblemSlug:       result.TitleSlug,
		ProblemTitle:      result.Title,
		ProblemDifficulty: result.Difficulty,
		CommitSHA:         result.CommitSHA,
	})
	if err != nil {
		return fmt.Errorf("record completed problem: %w", err)
	}
	return nil
}

func (w *Worker) settleLeetCodeJob(ctx context.Context, job *models.LeetCodeJob, execErr error) error {
	if execErr == nil {
		job.Status = models.StatusSuccess
		job.ErrorMessage = nil
		job.NextRetryAt = nil
		if err := w.store.UpdateLeetCodeJob(ctx, job); err != nil {
			return err
		}
		logger.Info("leetcode job succeeded",
			"job_id", job.ID, "repository_id", job.RepositoryID,
			"problem_id", stringOr(job.ProblemFrontendID, ""),
			"commit_sha", stringOr(job.CommitSHA, ""))
		return w.store.AppendLeetCodeJobLog(ctx, job.ID, "INFO", "pipeline completed")
	}

	msg := execErr.Error()
	job.ErrorMessage = &msg

	var exhausted *pipeline.QualityExhaustedError
	var confErr *pipeline.ConfigError
	switch {
	case errors.As(execErr, &exhausted):
		job.Attempts = job.MaxAttempts
		job.Status = models.StatusFailed
		job.NextRetryAt = nil
	case errors.As(execErr, &confErr):
		job.Attempts++
		job.Status = models.StatusFailed
		job.NextRetryAt = nil
	default:
		job.Attempts++
		if job.Attempts >= job.MaxAttempts {
			job.Status = models.StatusFailed
			job.NextRetryAt = nil
		} else {
			retryAt := w.now().UTC().Add(time.Duration(w.cfg.LeetCode.RetryBaseMinutes*job.Attempts) * time.Minute)
			job.Status = models.StatusRetry
			job.ScheduledFor = retryAt
			job.NextRetryAt = &retryAt
		}
	}

	if err := w.store.UpdateLeetCodeJob(ctx, job); err != nil {
		return err
	}

	if job.Status == models.StatusFailed {
		level := "quality"
		if exhausted == nil {
			level = "final"
		}
		logger.Error("leetcode job failed",
			"job_id", job.ID, "repository_id", job.RepositoryID,
			"attempts", job.Attempts, "failure", level, "error", msg)
		return w.store.AppendLeetCodeJobLog(ctx, job.ID, "ERROR", "final failure: "+msg)
	}
	logger.Warn("leetcode job retry scheduled",
		"job_id", job.ID, "repository_id", job.RepositoryID,
		"attempts", job.Attempts, "retry_at", job.ScheduledFor.Format(time.RFC3339), "error", msg)
	return w.store.AppendLeetCodeJobLog(ctx, job.ID, "WARNING",
		fmt.Sprintf("attempt %d failed: %s", job.Attempts, msg))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
