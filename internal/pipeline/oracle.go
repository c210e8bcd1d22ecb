package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// TestRunResult captures one oracle run. A timeout is reported as exit code
// 124 with a stderr suffix, never as an escaping error: the repair loop feeds
// it back into the model like any other failure.
type TestRunResult struct {
	Success  bool
	Stdout   string
	Stderr   string
	ExitCode int
}

// Oracle runs a generated test script against a generated solution in a
// fresh temp directory.
type Oracle struct {
	Command string
	Timeout time.Duration
	TmpDir  string
}

func NewOracle(command string, timeout time.Duration, tmpDir string) *Oracle {
	if command == "" {
		command = "python3"
	}
	return &Oracle{Command: command, Timeout: timeout, TmpDir: tmpDir}
}

func (o *Oracle) Run(ctx context.Context, solutionCode, testsCode string) (TestRunResult, error) {
	var empty TestRunResult

	dir, err := os.MkdirTemp(o.TmpDir, "autofeedr-leetcode-test-")
	if err != nil {
		return empty, fmt.Errorf("create test dir: %w", err)
	}
	defer os.RemoveAll(dir)

	if err := os.WriteFile(filepath.Join(dir, "solution.py"), []byte(solutionCode), 0o644); err != nil {
		return empty, fmt.Errorf("write solution: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "tests.py"), []byte(testsCode), 0o644); err != nil {
		return empty, fmt.Errorf("write tests: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, o.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, o.Command, "tests.py")
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	if runCtx.Err() == context.DeadlineExceeded {
		return TestRunResult{
			Success:  false,
			Stdout:   stdout.String(),
			Stderr:   stderr.String() + fmt.Sprintf("\nTimeout apos %ds.", int(o.Timeout.Seconds())),
			ExitCode: 124,
		}, nil
	}

	result := TestRunResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if runErr == nil {
		result.Success = true
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	// interpreter missing, permissions, and similar infrastructure failures
	return empty, fmt.Errorf("run tests: %w", runErr)
}
