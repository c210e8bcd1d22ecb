package leetcode

import (
	"context"
	"fmt"
	"strings"
	"unicode"
)

// Selection strategies.
const (
	StrategyRandom     = "random"
	StrategyEasyFirst  = "easy_first"
	StrategySequential = "sequential"
)

// Difficulty policies. The free_* names are legacy aliases kept for rows
// created by older releases.
var legacyPolicyMap = map[string]string{
	"free_any":         "random",
	"free_easy":        "easy",
	"free_easy_medium": "medium",
}

var knownStrategies = map[string]struct{}{
	StrategyRandom:     {},
	StrategyEasyFirst:  {},
	StrategySequential: {},
}

var knownPolicies = map[string]struct{}{
	"random": {}, "easy": {}, "medium": {}, "hard": {},
	"free_any": {}, "free_easy": {}, "free_easy_medium": {},
}

const (
	maxPages = 10
	pageSize = 50
)

// KnownStrategy reports whether value is an accepted selection strategy.
func KnownStrategy(value string) bool {
	_, ok := knownStrategies[value]
	return ok
}

// KnownPolicy reports whether value is an accepted difficulty policy,
// legacy aliases included.
func KnownPolicy(value string) bool {
	_, ok := knownPolicies[value]
	return ok
}

// SelectProblem picks the next problem to solve. A forced slug bypasses
// selection entirely but still refuses already-completed problems. Unknown
// strategies and policies degrade to random.
func (c *Client) SelectProblem(ctx context.Context, strategy, policy string, completed map[string]struct{}, forcedSlug string) (*ProblemDetail, error) {
	if forcedSlug != "" {
		detail, err := c.GetQuestion(ctx, forcedSlug)
		if err != nil {
			return nil, err
		}
		if _, done := completed[detail.FrontendID]; done {
			return nil, fmt.Errorf("problem %q already solved for this repository", forcedSlug)
		}
		return detail, nil
	}

	if _, ok := knownStrategies[strategy]; !ok {
		strategy = StrategyRandom
	}
	if _, ok := knownPolicies[policy]; !ok {
		policy = "random"
	}
	if mapped, ok := legacyPolicyMap[policy]; ok {
		policy = mapped
	}

	candidates, err := c.collectCandidates(ctx, policy, completed)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no eligible problem found (free and unsolved)")
	}

	picked := c.pickCandidate(strategy, candidates)
	return c.GetQuestion(ctx, picked.TitleSlug)
}

// collectCandidates pages through the problem set for each difficulty the
// policy asks for, dropping paid-only and completed problems, then dedups by
// frontend id.
func (c *Client) collectCandidates(ctx context.Context, policy string, completed map[string]struct{}) ([]ProblemSummary, error) {
	difficulties := difficultyOrder(policy)

	var all []ProblemSummary
	collect := func(difficulty string) error {
		for page := 0; page < maxPages; page++ {
			items, err := c.ListQuestions(ctx, difficulty, page*pageSize, pageSize)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				return nil
			}
			for _, item := range items {
				if item.PaidOnly {
					continue
				}
				if _, done := completed[item.FrontendID]; done {
					continue
				}
				all = append(all, item)
			}
		}
		return nil
	}

	for _, difficulty := range difficulties {
		if err := collect(difficulty); err != nil {
			return nil, err
		}
	}
	if policy == "random" {
		if err := collect(""); err != nil {
			return nil, err
		}
	}

	seen := make(map[string]struct{}, len(all))
	dedup := all[:0]
	for _, item := range all {
		if _, ok := seen[item.FrontendID]; ok {
			continue
		}
		seen[item.FrontendID] = struct{}{}
		dedup = append(dedup, item)
	}
	return dedup, nil
}

func (c *Client) pickCandidate(strategy string, candidates []ProblemSummary) ProblemSummary {
	switch strategy {
	case StrategySequential:
		lowest := candidates[0]
		for _, item := range candidates[1:] {
			if safeQuestionNumber(item.FrontendID) < safeQuestionNumber(lowest.FrontendID) {
				lowest = item
			}
		}
		return lowest
	case StrategyEasyFirst:
		for _, want := range []string{"easy", "medium"} {
			var pool []ProblemSummary
			for _, item := range candidates {
				if strings.EqualFold(item.Difficulty, want) {
					pool = append(pool, item)
				}
			}
			if len(pool) > 0 {
				return pool[c.randN(len(pool))]
			}
		}
		return candidates[c.randN(len(candidates))]
	default:
		return candidates[c.randN(len(candidates))]
	}
}

func difficultyOrder(policy string) []string {
	switch policy {
	case "easy":
		return []string{"EASY"}
	case "medium":
		return []string{"MEDIUM"}
	case "hard":
		return []string{"HARD"}
	}
	return nil
}

// safeQuestionNumber extracts the numeric part of a frontend id; non-numeric
// ids sort last.
func safeQuestionNumber(frontendID string) int {
	var digits strings.Builder
	for _, r := range frontendID {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 1_000_000_000
	}
	n := 0
	for _, r := range digits.String() {
		n = n*10 + int(r-'0')
	}
	return n
}
