// Package pipeline drives one LeetCode solving run end to end: pick a
// problem, generate a Python solution plus a test script, repair the
// solution until the tests pass, then commit the artifacts to the
// configured GitHub repository.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/autofeedr/autofeedr/internal/gitops"
	"github.com/autofeedr/autofeedr/internal/leetcode"
	"github.com/autofeedr/autofeedr/internal/llm"
)

var logger = slog.Default()

// SetLogger sets the logger for this package.
func SetLogger(l *slog.Logger) {
	logger = l
}

// Selector picks the problem to solve.
type Selector interface {
	SelectProblem(ctx context.Context, strategy, policy string, completed map[string]struct{}, forcedSlug string) (*leetcode.ProblemDetail, error)
}

// Generator produces text from a prompt. Implemented by llm.Session.
type Generator interface {
	Generate(ctx context.Context, prompt, operation string) (string, error)
}

// TestRunner executes a generated test script against a generated solution.
type TestRunner interface {
	Run(ctx context.Context, solutionCode, testsCode string) (TestRunResult, error)
}

// Publisher commits the solution, tests, and progress ledger to the target
// repository.
type Publisher interface {
	Publish(ctx context.Context, req gitops.Request) (*gitops.Result, error)
}

type Pipeline struct {
	Selector  Selector
	Generator Generator
	Tests     TestRunner
	Publisher Publisher
}

// Input carries everything one run needs. Secrets arrive already decrypted.
type Input struct {
	RepoSSHURL    string
	DefaultBranch string
	SolutionsDir  string
	AuthorName    string
	AuthorEmail   string
	PrivateKeyPEM string
	Passphrase    string

	SelectionStrategy string
	DifficultyPolicy  string
	Completed         map[string]struct{}
	ForcedSlug        string

	MaxAttempts    int
	SolutionPrompt string
}

type Result struct {
	FrontendID   string
	TitleSlug    string
	Title        string
	Difficulty   string
	AttemptsUsed int
	SolutionPath string
	TestsPath    string
	CommitSHA    string
	CommitURL    string
}

// promptData is the render context shared by all three prompt templates.
type promptData struct {
	FrontendID     string
	Title          string
	Difficulty     string
	TitleSlug      string
	StarterCode    string
	Content        string
	SampleTestCase string
	MetadataJSON   string
	SolutionCode   string
	TestsCode      string
	FailureOutput  string
}

func (p *Pipeline) Execute(ctx context.Context, in Input) (*Result, error) {
	maxAttempts := in.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	problem, err := p.Selector.SelectProblem(ctx, in.SelectionStrategy, in.DifficultyPolicy, in.Completed, in.ForcedSlug)
	if err != nil {
		return nil, fmt.Errorf("select problem: %w", err)
	}
	logger.Info("problem selected",
		"frontend_id", problem.FrontendID,
		"slug", problem.TitleSlug,
		"difficulty", problem.Difficulty)

	data := promptDataFor(problem)

	solution, err := p.generateSolution(ctx, data, in.SolutionPrompt)
	if err != nil {
		return nil, err
	}
	tests, err := p.generateTests(ctx, data, solution)
	if err != nil {
		return nil, err
	}

	attemptsUsed := 0
	lastFailure := ""
	passed := false
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		attemptsUsed = attempt

		run, err := p.Tests.Run(ctx, solution, tests)
		if err != nil {
			return nil, fmt.Errorf("run tests: %w", err)
		}
		if run.Success {
			passed = true
			break
		}

		lastFailure = fmt.Sprintf("Attempt %d failed.\nReturn code: %d\nSTDOUT:\n%s\nSTDERR:\n%s",
			attempt, run.ExitCode, run.Stdout, run.Stderr)
		logger.Warn("solution attempt failed",
			"slug", problem.TitleSlug,
			"attempt", attempt,
			"exit_code", run.ExitCode)

		if attempt == maxAttempts {
			break
		}
		solution, err = p.fixSolution(ctx, data, solution, tests, lastFailure)
		if err != nil {
			return nil, err
		}
	}
	if !passed {
		return nil, &QualityExhaustedError{Attempts: attemptsUsed, LastFailure: lastFailure}
	}

	filename := buildSolutionFilename(problem.FrontendID, problem.TitleSlug)
	published, err := p.Publisher.Publish(ctx, gitops.Request{
		RepoSSHURL:    in.RepoSSHURL,
		DefaultBranch: in.DefaultBranch,
		SolutionsDir:  in.SolutionsDir,
		AuthorName:    in.AuthorName,
		AuthorEmail:   in.AuthorEmail,
		PrivateKeyPEM: in.PrivateKeyPEM,
		Passphrase:    in.Passphrase,
		Filename:      filename,
		SolutionCode:  solution,
		TestsCode:     tests,
		FrontendID:    problem.FrontendID,
		Slug:          problem.TitleSlug,
		Title:         problem.Title,
		Difficulty:    problem.Difficulty,
	})
	if err != nil {
		return nil, fmt.Errorf("publish solution: %w", err)
	}

	return &Result{
		FrontendID:   problem.FrontendID,
		TitleSlug:    problem.TitleSlug,
		Title:        problem.Title,
		Difficulty:   problem.Difficulty,
		AttemptsUsed: attemptsUsed,
		SolutionPath: published.SolutionPath,
		TestsPath:    published.TestsPath,
		CommitSHA:    published.CommitSHA,
		CommitURL:    published.CommitURL,
	}, nil
}

func promptDataFor(problem *leetcode.ProblemDetail) promptData {
	starter := problem.StarterCodePython
	if strings.TrimSpace(starter) == "" {
		starter = "(empty)"
	}
	return promptData{
		FrontendID:     problem.FrontendID,
		Title:          problem.Title,
		Difficulty:     problem.Difficulty,
		TitleSlug:      problem.TitleSlug,
		StarterCode:    starter,
		Content:        problem.Content,
		SampleTestCase: problem.SampleTestCase,
		MetadataJSON:   problem.MetadataJSON,
	}
}

func (p *Pipeline) generateSolution(ctx context.Context, data promptData, promptOverride string) (string, error) {
	tmpl := llm.PromptGenerateSolution
	if strings.TrimSpace(promptOverride) != "" {
		tmpl = promptOverride
	}
	prompt, err := llm.RenderTemplate(tmpl, data)
	if err != nil {
		return "", fmt.Errorf("render solution prompt: %w", err)
	}

	raw, genErr := p.Generator.Generate(ctx, prompt, "leetcode_solution")
	if genErr == nil {
		if code, err := ExtractPythonCode(raw); err == nil {
			return code, nil
		}
	}
	if fb := fallbackSolution(data.TitleSlug); fb != "" {
		logger.Warn("using built-in fallback solution", "slug", data.TitleSlug)
		return fb, nil
	}
	if genErr != nil {
		return "", fmt.Errorf("generate solution: %w", genErr)
	}
	return "", fmt.Errorf("generate solution: model output is not usable python code")
}

func (p *Pipeline) generateTests(ctx context.Context, data promptData, solution string) (string, error) {
	data.SolutionCode = solution
	prompt, err := llm.RenderTemplate(llm.PromptGenerateTests, data)
	if err != nil {
		return "", fmt.Errorf("render tests prompt: %w", err)
	}

	raw, genErr := p.Generator.Generate(ctx, prompt, "leetcode_tests")
	if genErr == nil {
		if code, err := ExtractPythonCode(raw); err == nil {
			return code, nil
		}
	}
	if fb := fallbackTests(data.TitleSlug); fb != "" {
		logger.Warn("using built-in fallback tests", "slug", data.TitleSlug)
		return fb, nil
	}
	if genErr != nil {
		return "", fmt.Errorf("generate tests: %w", genErr)
	}
	return "", fmt.Errorf("generate tests: model output is not usable python code")
}

func (p *Pipeline) fixSolution(ctx context.Context, data promptData, solution, tests, failure string) (string, error) {
	data.SolutionCode = solution
	data.TestsCode = tests
	data.FailureOutput = failure
	prompt, err := llm.RenderTemplate(llm.PromptFixSolution, data)
	if err != nil {
		return "", fmt.Errorf("render fix prompt: %w", err)
	}

	raw, err := p.Generator.Generate(ctx, prompt, "leetcode_fix")
	if err != nil {
		return "", fmt.Errorf("fix solution: %w", err)
	}
	code, err := ExtractPythonCode(raw)
	if err != nil {
		return "", fmt.Errorf("fix solution: %w", err)
	}
	return code, nil
}

var (
	unsafeSlugChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)
	digitsOnly      = regexp.MustCompile(`[^0-9]`)
)

// buildSolutionFilename yields "<id>_<slug>.py" with both parts sanitized
// for use as a repository path segment.
func buildSolutionFilename(frontendID, titleSlug string) string {
	slug := unsafeSlugChars.ReplaceAllString(strings.TrimSpace(titleSlug), "_")
	slug = strings.Trim(slug, "_")
	if slug == "" {
		slug = "problem"
	}
	id := digitsOnly.ReplaceAllString(strings.TrimSpace(frontendID), "")
	if id == "" {
		id = "unknown"
	}
	return id + "_" + slug + ".py"
}
