// Package linkedin publishes text posts through the ugcPosts API.
package linkedin

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"

	"github.com/autofeedr/autofeedr/internal/config"
)

// MaxPostChars is LinkedIn's hard post size limit. It is enforced before any
// network call so oversized posts never consume the API quota.
const MaxPostChars = 3000

type Client struct {
	rest    *resty.Client
	baseURL string
	now     func() time.Time
}

func NewClient(cfg config.LinkedInConfig) *Client {
	client := resty.New()
	client.SetTimeout(cfg.Timeout)
	return &Client{
		rest:    client,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		now:     time.Now,
	}
}

// NormalizeURN accepts either a full URN or a bare member id.
func NormalizeURN(urn string) string {
	if strings.HasPrefix(urn, "urn:") {
		return urn
	}
	return "urn:li:person:" + urn
}

type ugcPost struct {
	Author          string         `json:"author"`
	LifecycleState  string         `json:"lifecycleState"`
	SpecificContent map[string]any `json:"specificContent"`
	Visibility      map[string]any `json:"visibility"`
}

// Publish posts text as the given author. The token and URN come from the
// account record; the URN may be a bare member id.
func (c *Client) Publish(ctx context.Context, token, authorURN, text string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("linkedin token not set")
	}
	if strings.TrimSpace(authorURN) == "" {
		return fmt.Errorf("author urn not set")
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("post text is empty")
	}
	if n := utf8.RuneCountInString(text); n > MaxPostChars {
		return fmt.Errorf("post text exceeds %d characters: %d", MaxPostChars, n)
	}

	body := ugcPost{
		Author:         NormalizeURN(authorURN),
		LifecycleState: "PUBLISHED",
		SpecificContent: map[string]any{
			"com.linkedin.ugc.ShareContent": map[string]any{
				"shareCommentary":    map[string]any{"text": text},
				"shareMediaCategory": "NONE",
			},
		},
		Visibility: map[string]any{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}

	resp, err := c.rest.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token).
		SetHeader("LinkedIn-Version", c.apiVersion()).
		SetHeader("X-Restli-Protocol-Version", "2.0.0").
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(c.baseURL + "/v2/ugcPosts")
	if err != nil {
		return fmt.Errorf("post to linkedin: %w", err)
	}
	if resp.StatusCode() != 200 && resp.StatusCode() != 201 {
		return fmt.Errorf("linkedin HTTP %d: %s", resp.StatusCode(), string(resp.Body()))
	}
	return nil
}

// apiVersion is the previous month as YYYYMM. LinkedIn rejects versions newer
// than its current release, so the previous month is always safe.
func (c *Client) apiVersion() string {
	return c.now().AddDate(0, 0, -30).Format("200601")
}
