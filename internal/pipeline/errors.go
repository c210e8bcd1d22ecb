package pipeline

import "fmt"

// QualityExhaustedError means the repair loop ran out of attempts without a
// passing test run. It is terminal: the job processor must not layer its own
// retry backoff on top of the pipeline's internal budget.
type QualityExhaustedError struct {
	Attempts    int
	LastFailure string
}

func (e *QualityExhaustedError) Error() string {
	return fmt.Sprintf("solution attempts exhausted after %d runs:\n%s", e.Attempts, e.LastFailure)
}

// ConfigError marks a condition that will not self-resolve (missing
// credentials, inactive account, bad encryption key). Jobs failing with it go
// terminal on the first attempt.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "configuration error: " + e.Reason
}
