// Package cronexpr wraps cron expression parsing for schedule evaluation.
// Expressions use the standard 5-field form (minute hour dom month dow).
package cronexpr

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Validate reports whether expr is a parseable cron expression. The API layer
// calls this before persisting a schedule.
func Validate(expr string) error {
	if _, err := parser.Parse(expr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return nil
}

// BuildWeekly builds a weekly cron expression from a day of week (0=Sunday)
// and a local HH:MM time.
func BuildWeekly(dayOfWeek int, timeLocal string) (string, error) {
	if dayOfWeek < 0 || dayOfWeek > 6 {
		return "", fmt.Errorf("day of week out of range: %d", dayOfWeek)
	}

	var hour, minute int
	if _, err := fmt.Sscanf(timeLocal, "%d:%d", &hour, &minute); err != nil {
		return "", fmt.Errorf("invalid time %q: use HH:MM", timeLocal)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid time %q: use HH:MM between 00:00 and 23:59", timeLocal)
	}

	return fmt.Sprintf("%d %d * * %d", minute, hour, dayOfWeek), nil
}

// MatchesMinute reports whether expr fires at t truncated to the minute, in
// t's own location.
func MatchesMinute(expr string, t time.Time) (bool, error) {
	sched, err := parser.Parse(expr)
	if err != nil {
		return false, fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}

	minute := t.Truncate(time.Minute)
	// Next is strictly-after, so backing off one second gives us the first
	// activation at or after the minute under test.
	return sched.Next(minute.Add(-time.Second)).Equal(minute), nil
}
