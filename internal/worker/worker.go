// Package worker runs the polling loop that turns schedules into jobs and
// jobs into published content: LinkedIn posts on one side, LeetCode solution
// commits on the other.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/autofeedr/autofeedr/internal/arxiv"
	"github.com/autofeedr/autofeedr/internal/config"
	"github.com/autofeedr/autofeedr/internal/gitops"
	"github.com/autofeedr/autofeedr/internal/leetcode"
	"github.com/autofeedr/autofeedr/internal/linkedin"
	"github.com/autofeedr/autofeedr/internal/llm"
	"github.com/autofeedr/autofeedr/internal/pipeline"
	"github.com/autofeedr/autofeedr/internal/repository"
	"github.com/autofeedr/autofeedr/internal/secrets"
	"github.com/autofeedr/autofeedr/internal/writer"
)

var logger = slog.Default()

// SetLogger sets the logger for this package.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// Store is the slice of persistence the worker needs. sqlite.SQLiteRepo
// satisfies it.
type Store interface {
	repository.UserRepo
	repository.AccountRepo
	repository.ScheduleRepo
	repository.JobRepo
	repository.GitHubRepo
	repository.LeetCodeRepo
}

// ArticleSource finds source material for content jobs.
type ArticleSource interface {
	SearchTopic(ctx context.Context, topic string, start, end time.Time, maxResults int) ([]arxiv.Article, error)
	FetchByID(ctx context.Context, id string) (*arxiv.Article, error)
}

// PostPublisher pushes a finished post to the social network.
type PostPublisher interface {
	Publish(ctx context.Context, token, authorURN, text string) error
}

// SolutionRunner executes one LeetCode solving pipeline with the owning
// user's model credentials.
type SolutionRunner interface {
	Run(ctx context.Context, apiKey string, in pipeline.Input) (*pipeline.Result, error)
}

// Worker bundles configuration, storage, and the external clients. It is
// built once at process start and threaded through every operation; nothing
// in this package reads ambient globals besides the logger.
type Worker struct {
	cfg   *config.Config
	store Store
	box   *secrets.Box

	articles ArticleSource
	posts    PostPublisher
	solver   SolutionRunner

	// test seams
	newGenerator func(apiKey string) (writer.Generator, error)
	now          func() time.Time
}

func New(cfg *config.Config, store Store, box *secrets.Box) *Worker {
	w := &Worker{
		cfg:      cfg,
		store:    store,
		box:      box,
		articles: arxiv.NewClient(cfg.Arxiv),
		posts:    linkedin.NewClient(cfg.LinkedIn),
		solver:   &pipelineRunner{cfg: cfg},
		now:      time.Now,
	}
	w.newGenerator = func(apiKey string) (writer.Generator, error) {
		return llm.NewSession(cfg.LLM, apiKey, logUsage)
	}
	return w
}

// Run polls until ctx is cancelled. A failing cycle is logged and the loop
// keeps going; only cancellation stops it.
func (w *Worker) Run(ctx context.Context) error {
	logger.Info("worker started",
		"poll_interval", w.cfg.Worker.PollInterval.String(),
		"batch_size", w.cfg.Worker.BatchSize)

	ticker := time.NewTicker(w.cfg.Worker.PollInterval)
	defer ticker.Stop()

	w.runCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Info("worker stopping")
			return ctx.Err()
		case <-ticker.C:
			w.runCycle(ctx)
		}
	}
}

func (w *Worker) runCycle(ctx context.Context) {
	if n, err := w.EnqueueDueSchedules(ctx); err != nil {
		logger.Error("enqueue schedules failed", "error", err)
	} else if n > 0 {
		logger.Info("schedules enqueued", "count", n)
	}

	if n, err := w.EnqueueDueLeetCodeSchedules(ctx); err != nil {
		logger.Error("enqueue leetcode schedules failed", "error", err)
	} else if n > 0 {
		logger.Info("leetcode schedules enqueued", "count", n)
	}

	if n, err := w.ProcessPendingJobs(ctx); err != nil {
		logger.Error("process jobs failed", "error", err)
	} else if n > 0 {
		logger.Info("jobs processed", "count", n)
	}

	if n, err := w.ProcessPendingLeetCodeJobs(ctx); err != nil {
		logger.Error("process leetcode jobs failed", "error", err)
	} else if n > 0 {
		logger.Info("leetcode jobs processed", "count", n)
	}
}

func logUsage(operation string, promptChars, outputChars int) {
	logger.Debug("llm usage",
		"operation", operation,
		"prompt_chars", promptChars,
		"output_chars", outputChars)
}

// pipelineRunner is the production SolutionRunner: it builds the full
// select-generate-test-publish pipeline with a per-job model session.
type pipelineRunner struct {
	cfg *config.Config
}

func (r *pipelineRunner) Run(ctx context.Context, apiKey string, in pipeline.Input) (*pipeline.Result, error) {
	session, err := llm.NewSession(r.cfg.LLM, apiKey, logUsage)
	if err != nil {
		return nil, &pipeline.ConfigError{Reason: err.Error()}
	}

	p := &pipeline.Pipeline{
		Selector:  leetcode.NewClient(r.cfg.LeetCode),
		Generator: session,
		Tests: pipeline.NewOracle(
			r.cfg.LeetCode.TestCommand,
			r.cfg.LeetCode.TestTimeout,
			r.cfg.Worker.TmpDir),
		Publisher: gitops.NewPublisher(r.cfg.Worker.TmpDir),
	}
	return p.Execute(ctx, in)
}
