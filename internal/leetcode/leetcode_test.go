package leetcode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autofeedr/autofeedr/internal/config"
)

func newTestClient(baseURL string) *Client {
	c := NewClient(config.LeetCodeConfig{GraphQLURL: baseURL, HTTPTimeout: 2 * time.Second})
	c.sleep = func(time.Duration) {}
	c.randN = func(n int) int { return 0 }
	return c
}

func listPayload(questions ...map[string]any) map[string]any {
	return map[string]any{
		"data": map[string]any{
			"problemsetQuestionList": map[string]any{
				"total":     len(questions),
				"questions": questions,
			},
		},
	}
}

func question(id, title, slug, difficulty string, paid bool) map[string]any {
	return map[string]any{
		"frontendQuestionId": id,
		"title":              title,
		"titleSlug":          slug,
		"difficulty":         difficulty,
		"paidOnly":           paid,
		"topicTags":          []map[string]any{{"slug": "array"}},
	}
}

func detailPayload(id, title, slug, difficulty, metaData string) map[string]any {
	return map[string]any{
		"data": map[string]any{
			"question": map[string]any{
				"questionId":         "q" + id,
				"questionFrontendId": id,
				"title":              title,
				"titleSlug":          slug,
				"content":            "<p>statement</p>",
				"difficulty":         difficulty,
				"sampleTestCase":     "[1,2]",
				"metaData":           metaData,
				"codeSnippets": []map[string]any{
					{"lang": "C++", "langSlug": "cpp", "code": "// cpp"},
					{"lang": "Python3", "langSlug": "python3", "code": "class Solution: ..."},
				},
			},
		},
	}
}

func TestListQuestions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req graphqlRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.Query, "problemsetQuestionList")
		assert.Equal(t, "EASY", req.Variables["filters"].(map[string]any)["difficulty"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(listPayload(
			question("1", "Two Sum", "two-sum", "Easy", false),
			question("", "broken", "", "Easy", false),
		))
	}))
	defer srv.Close()

	items, err := newTestClient(srv.URL).ListQuestions(context.Background(), "EASY", 0, 50)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "two-sum", items[0].TitleSlug)
	assert.Equal(t, []string{"array"}, items[0].TopicTags)
}

func TestGetQuestion(t *testing.T) {
	meta := `{"name":"twoSum","params":[{"name":"nums","type":"integer[]"},{"name":"target","type":"integer"}],"return":{"type":"integer[]"}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(detailPayload("1", "Two Sum", "two-sum", "Easy", meta))
	}))
	defer srv.Close()

	detail, err := newTestClient(srv.URL).GetQuestion(context.Background(), "two-sum")
	require.NoError(t, err)

	assert.Equal(t, "1", detail.FrontendID)
	assert.Equal(t, "class Solution: ...", detail.StarterCodePython)
	assert.Equal(t, "twoSum", detail.Metadata.Name)
	require.Len(t, detail.Metadata.Params, 2)
	assert.Equal(t, "integer[]", detail.Metadata.Params[0].Type)
	assert.Equal(t, meta, detail.MetadataJSON)
}

func TestGetQuestion_InvalidMetadataIsTolerated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(detailPayload("146", "LRU Cache", "lru-cache", "Medium", "not json at all"))
	}))
	defer srv.Close()

	detail, err := newTestClient(srv.URL).GetQuestion(context.Background(), "lru-cache")
	require.NoError(t, err)
	assert.Empty(t, detail.Metadata.Name)
	assert.Equal(t, "not json at all", detail.MetadataJSON)
}

func TestGetQuestion_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"question": nil}})
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GetQuestion(context.Background(), "no-such-slug")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestPost_RetriesTransientFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "upstream hiccup", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(listPayload(question("1", "Two Sum", "two-sum", "Easy", false)))
	}))
	defer srv.Close()

	items, err := newTestClient(srv.URL).ListQuestions(context.Background(), "", 0, 50)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestPost_GraphQLErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"errors": []map[string]any{{"message": "rate limited"}},
		})
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).ListQuestions(context.Background(), "", 0, 50)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

// selectServer serves list pages keyed by difficulty filter, plus details.
func selectServer(t *testing.T, pages map[string][]map[string]any) *httptest.Server {
	t.Helper()
	served := map[string]int{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req graphqlRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")

		if slug, ok := req.Variables["titleSlug"].(string); ok {
			json.NewEncoder(w).Encode(detailPayload("0", "Detail", slug, "Easy", ""))
			return
		}

		difficulty := ""
		if f, ok := req.Variables["filters"].(map[string]any); ok {
			if d, ok := f["difficulty"].(string); ok {
				difficulty = d
			}
		}
		// one page per difficulty, then empty pages
		if served[difficulty] > 0 {
			json.NewEncoder(w).Encode(listPayload())
			return
		}
		served[difficulty]++
		json.NewEncoder(w).Encode(listPayload(pages[difficulty]...))
	}))
}

func TestSelectProblem_SequentialPicksLowestNumber(t *testing.T) {
	srv := selectServer(t, map[string][]map[string]any{
		"": {
			question("20", "Valid Parentheses", "valid-parentheses", "Easy", false),
			question("3", "Longest Substring", "longest-substring", "Medium", false),
			question("300", "LIS", "lis", "Medium", false),
		},
	})
	defer srv.Close()

	detail, err := newTestClient(srv.URL).SelectProblem(context.Background(), StrategySequential, "random", nil, "")
	require.NoError(t, err)
	assert.Equal(t, "longest-substring", detail.TitleSlug)
}

func TestSelectProblem_ExcludesPaidAndCompleted(t *testing.T) {
	srv := selectServer(t, map[string][]map[string]any{
		"": {
			question("1", "Two Sum", "two-sum", "Easy", false),
			question("2", "Add Two Numbers", "add-two-numbers", "Medium", true),
			question("3", "Longest Substring", "longest-substring", "Medium", false),
		},
	})
	defer srv.Close()

	completed := map[string]struct{}{"1": {}}
	detail, err := newTestClient(srv.URL).SelectProblem(context.Background(), StrategySequential, "random", completed, "")
	require.NoError(t, err)
	assert.Equal(t, "longest-substring", detail.TitleSlug)
}

func TestSelectProblem_EasyFirstPrefersEasy(t *testing.T) {
	srv := selectServer(t, map[string][]map[string]any{
		"": {
			question("10", "Regex Matching", "regex-matching", "Hard", false),
			question("20", "Valid Parentheses", "valid-parentheses", "Easy", false),
		},
	})
	defer srv.Close()

	detail, err := newTestClient(srv.URL).SelectProblem(context.Background(), StrategyEasyFirst, "random", nil, "")
	require.NoError(t, err)
	assert.Equal(t, "valid-parentheses", detail.TitleSlug)
}

func TestSelectProblem_LegacyPolicyAlias(t *testing.T) {
	srv := selectServer(t, map[string][]map[string]any{
		"EASY": {question("20", "Valid Parentheses", "valid-parentheses", "Easy", false)},
	})
	defer srv.Close()

	// free_easy maps to the easy policy, which only pages the EASY filter
	detail, err := newTestClient(srv.URL).SelectProblem(context.Background(), StrategySequential, "free_easy", nil, "")
	require.NoError(t, err)
	assert.Equal(t, "valid-parentheses", detail.TitleSlug)
}

func TestSelectProblem_ForcedSlug(t *testing.T) {
	srv := selectServer(t, nil)
	defer srv.Close()

	detail, err := newTestClient(srv.URL).SelectProblem(context.Background(), StrategyRandom, "random", nil, "two-sum")
	require.NoError(t, err)
	assert.Equal(t, "two-sum", detail.TitleSlug)

	// forced slug already completed for this repository
	completed := map[string]struct{}{"0": {}}
	_, err = newTestClient(srv.URL).SelectProblem(context.Background(), StrategyRandom, "random", completed, "two-sum")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already solved")
}

func TestSelectProblem_NoCandidates(t *testing.T) {
	srv := selectServer(t, map[string][]map[string]any{
		"": {question("2", "Add Two Numbers", "add-two-numbers", "Medium", true)},
	})
	defer srv.Close()

	_, err := newTestClient(srv.URL).SelectProblem(context.Background(), StrategyRandom, "random", nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no eligible problem")
}

func TestSafeQuestionNumber(t *testing.T) {
	for input, want := range map[string]int{
		"1":    1,
		"3050": 3050,
		"LCP1": 1,
		"abc":  1_000_000_000,
	} {
		assert.Equal(t, want, safeQuestionNumber(input), fmt.Sprintf("input %q", input))
	}
}
