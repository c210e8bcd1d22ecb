// Package leetcode talks to the LeetCode GraphQL API and selects the next
// problem to solve.
package leetcode

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/autofeedr/autofeedr/internal/config"
)

const questionListQuery = `
query problemsetQuestionList($categorySlug: String, $limit: Int, $skip: Int, $filters: QuestionListFilterInput) {
  problemsetQuestionList: questionList(categorySlug: $categorySlug, limit: $limit, skip: $skip, filters: $filters) {
    total: totalNum
    questions: data {
      frontendQuestionId: questionFrontendId
      title
      titleSlug
      difficulty
      paidOnly: isPaidOnly
      topicTags {
        slug
      }
    }
  }
}`

const questionDetailQuery = `
query questionContent($titleSlug: String!) {
  question(titleSlug: $titleSlug) {
    questionId
    questionFrontendId
    title
    titleSlug
    content
    difficulty
    sampleTestCase
    metaData
    codeSnippets {
      lang
      langSlug
      code
    }
  }
}`

type Client struct {
	rest       *resty.Client
	url        string
	maxRetries int

	// test seams
	sleep func(time.Duration)
	randN func(int) int
}

func NewClient(cfg config.LeetCodeConfig) *Client {
	client := resty.New()
	client.SetTimeout(cfg.HTTPTimeout)
	client.SetHeader("Content-Type", "application/json")
	client.SetHeader("User-Agent", "AutoFeedr/leetcode-automation")
	return &Client{
		rest:       client,
		url:        strings.TrimSpace(cfg.GraphQLURL),
		maxRetries: 3,
		sleep:      time.Sleep,
		randN:      rand.IntN,
	}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// post runs one GraphQL query, retrying transient failures with exponential
// backoff (0.4s, 0.8s, ...).
func (c *Client) post(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		data, err := c.postOnce(ctx, query, variables)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if attempt < c.maxRetries {
			c.sleep(400 * time.Millisecond * time.Duration(1<<(attempt-1)))
		}
	}
	return nil, fmt.Errorf("query leetcode graphql: %w", lastErr)
}

func (c *Client) postOnce(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	var resp graphqlResponse
	httpResp, err := c.rest.R().
		SetContext(ctx).
		SetBody(graphqlRequest{Query: query, Variables: variables}).
		SetResult(&resp).
		Post(c.url)
	if err != nil {
		return nil, err
	}
	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		return nil, fmt.Errorf("HTTP %d: %s", httpResp.StatusCode(), string(httpResp.Body()))
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("graphql errors: %s", resp.Errors[0].Message)
	}
	return resp.Data, nil
}

type questionListData struct {
	ProblemsetQuestionList struct {
		Total     int `json:"total"`
		Questions []struct {
			FrontendQuestionID string `json:"frontendQuestionId"`
			Title              string `json:"title"`
			TitleSlug          string `json:"titleSlug"`
			Difficulty         string `json:"difficulty"`
			PaidOnly           bool   `json:"paidOnly"`
			TopicTags          []struct {
				Slug string `json:"slug"`
			} `json:"topicTags"`
		} `json:"questions"`
	} `json:"problemsetQuestionList"`
}

// ListQuestions returns one page of the problem set, optionally filtered by
// difficulty ("EASY"|"MEDIUM"|"HARD"). Entries without an id or slug are
// dropped.
func (c *Client) ListQuestions(ctx context.Context, difficulty string, skip, limit int) ([]ProblemSummary, error) {
	filters := map[string]any{}
	if difficulty != "" {
		filters["difficulty"] = difficulty
	}

	raw, err := c.post(ctx, questionListQuery, map[string]any{
		"categorySlug": "",
		"skip":         skip,
		"limit":        limit,
		"filters":      filters,
	})
	if err != nil {
		return nil, err
	}

	var data questionListData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode question list: %w", err)
	}

	var out []ProblemSummary
	for _, q := range data.ProblemsetQuestionList.Questions {
		s := ProblemSummary{
			FrontendID: strings.TrimSpace(q.FrontendQuestionID),
			Title:      strings.TrimSpace(q.Title),
			TitleSlug:  strings.TrimSpace(q.TitleSlug),
			Difficulty: strings.TrimSpace(q.Difficulty),
			PaidOnly:   q.PaidOnly,
		}
		if s.FrontendID == "" || s.TitleSlug == "" {
			continue
		}
		for _, tag := range q.TopicTags {
			if slug := strings.TrimSpace(tag.Slug); slug != "" {
				s.TopicTags = append(s.TopicTags, slug)
			}
		}
		out = append(out, s)
	}
	return out, nil
}

type questionDetailData struct {
	Question *struct {
		QuestionID         string `json:"questionId"`
		QuestionFrontendID string `json:"questionFrontendId"`
		Title              string `json:"title"`
		TitleSlug          string `json:"titleSlug"`
		Content            string `json:"content"`
		Difficulty         string `json:"difficulty"`
		SampleTestCase     string `json:"sampleTestCase"`
		MetaData           string `json:"metaData"`
		CodeSnippets       []struct {
			Lang     string `json:"lang"`
			LangSlug string `json:"langSlug"`
			Code     string `json:"code"`
		} `json:"codeSnippets"`
	} `json:"question"`
}

// GetQuestion fetches the full problem detail for a slug.
func (c *Client) GetQuestion(ctx context.Context, titleSlug string) (*ProblemDetail, error) {
	raw, err := c.post(ctx, questionDetailQuery, map[string]any{"titleSlug": titleSlug})
	if err != nil {
		return nil, err
	}

	var data questionDetailData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode question detail: %w", err)
	}
	if data.Question == nil {
		return nil, fmt.Errorf("problem %q not found on leetcode", titleSlug)
	}

	q := data.Question
	detail := &ProblemDetail{
		FrontendID:     strings.TrimSpace(q.QuestionFrontendID),
		QuestionID:     strings.TrimSpace(q.QuestionID),
		Title:          strings.TrimSpace(q.Title),
		TitleSlug:      strings.TrimSpace(q.TitleSlug),
		Difficulty:     strings.TrimSpace(q.Difficulty),
		Content:        strings.TrimSpace(q.Content),
		SampleTestCase: strings.TrimSpace(q.SampleTestCase),
		MetadataJSON:   strings.TrimSpace(q.MetaData),
	}
	for _, snippet := range q.CodeSnippets {
		if strings.EqualFold(strings.TrimSpace(snippet.LangSlug), "python3") {
			detail.StarterCodePython = snippet.Code
			break
		}
	}
	detail.Metadata = parseMetadata(ctx, detail.MetadataJSON)
	return detail, nil
}
