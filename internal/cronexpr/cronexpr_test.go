package cronexpr_test

import (
	"testing"
	"time"

	"github.com/autofeedr/autofeedr/internal/cronexpr"
)

func TestValidate(t *testing.T) {
	if err := cronexpr.Validate("0 9 * * 1"); err != nil {
		t.Fatalf("valid expression rejected: %v", err)
	}
	if err := cronexpr.Validate("not a cron"); err == nil {
		t.Fatalf("invalid expression accepted")
	}
	if err := cronexpr.Validate("60 9 * * 1"); err == nil {
		t.Fatalf("out-of-range minute accepted")
	}
}

func TestBuildWeekly(t *testing.T) {
	expr, err := cronexpr.BuildWeekly(1, "09:30")
	if err != nil {
		t.Fatalf("BuildWeekly: %v", err)
	}
	if expr != "30 9 * * 1" {
		t.Fatalf("unexpected expression: %q", expr)
	}

	if _, err := cronexpr.BuildWeekly(7, "09:30"); err == nil {
		t.Fatalf("day of week 7 accepted")
	}
	if _, err := cronexpr.BuildWeekly(1, "24:00"); err == nil {
		t.Fatalf("hour 24 accepted")
	}
	if _, err := cronexpr.BuildWeekly(1, "0930"); err == nil {
		t.Fatalf("missing colon accepted")
	}
}

func TestMatchesMinute(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// Monday 2025-03-10 09:00 local.
	monday := time.Date(2025, 3, 10, 9, 0, 42, 0, loc)
	ok, err := cronexpr.MatchesMinute("0 9 * * 1", monday)
	if err != nil {
		t.Fatalf("MatchesMinute: %v", err)
	}
	if !ok {
		t.Fatalf("expected Monday 09:00 to match")
	}

	ok, err = cronexpr.MatchesMinute("0 9 * * 1", monday.Add(time.Minute))
	if err != nil {
		t.Fatalf("MatchesMinute: %v", err)
	}
	if ok {
		t.Fatalf("09:01 should not match")
	}

	tuesday := monday.AddDate(0, 0, 1)
	ok, err = cronexpr.MatchesMinute("0 9 * * 1", tuesday)
	if err != nil {
		t.Fatalf("MatchesMinute: %v", err)
	}
	if ok {
		t.Fatalf("Tuesday should not match Monday-only expression")
	}
}

func TestMatchesMinute_EveryMinute(t *testing.T) {
	now := time.Now()
	ok, err := cronexpr.MatchesMinute("* * * * *", now)
	if err != nil {
		t.Fatalf("MatchesMinute: %v", err)
	}
	if !ok {
		t.Fatalf("wildcard expression should match any minute")
	}
}
