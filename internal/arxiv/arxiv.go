// Package arxiv queries the arXiv Atom API by topic and date window.
package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/autofeedr/autofeedr/internal/config"
)

// urlPattern recognizes abs/pdf paper URLs and captures the paper id.
var urlPattern = regexp.MustCompile(`arxiv\.org/(abs|pdf)/([0-9]{4}\.[0-9]{4,5})(v[0-9]+)?`)

// Article is one arXiv result.
type Article struct {
	Title     string
	Summary   string
	Authors   []string
	Published time.Time
	Updated   time.Time
	URL       string
}

// InfoBlock renders the article as the plain-text block fed into post
// generation.
func (a Article) InfoBlock() string {
	return fmt.Sprintf("Title: %s\nAuthors: %s\nSummary: %s\nURL: %s\n",
		a.Title, strings.Join(a.Authors, ", "), a.Summary, a.URL)
}

type Client struct {
	rest    *resty.Client
	baseURL string
}

func NewClient(cfg config.ArxivConfig) *Client {
	client := resty.New()
	client.SetTimeout(cfg.Timeout)
	return &Client{rest: client, baseURL: cfg.BaseURL}
}

// DefaultWindow returns the previous UTC day as [start, end].
func DefaultWindow(now time.Time) (time.Time, time.Time) {
	day := now.UTC().AddDate(0, 0, -1)
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 0, time.UTC)
	return start, end
}

// ExtractID returns the paper id from an abs/pdf URL, or "" when the URL is
// not an arXiv paper link.
func ExtractID(url string) string {
	m := urlPattern.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return m[2]
}

// SearchTopic returns up to maxResults articles matching the topic submitted
// inside [start, end], newest first.
func (c *Client) SearchTopic(ctx context.Context, topic string, start, end time.Time, maxResults int) ([]Article, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("topic is empty")
	}
	if start.After(end) {
		return nil, fmt.Errorf("start date %s is after end date %s", start, end)
	}

	query := fmt.Sprintf("all:%s AND submittedDate:[%s TO %s]",
		topic, formatQueryDate(start), formatQueryDate(end))
	feed, err := c.query(ctx, map[string]string{
		"search_query": query,
		"max_results":  strconv.Itoa(maxResults),
		"sortBy":       "submittedDate",
		"sortOrder":    "descending",
	})
	if err != nil {
		return nil, err
	}
	return feed.articles(), nil
}

// FetchByID returns the single article with the given paper id, or nil when
// arXiv does not know it.
func (c *Client) FetchByID(ctx context.Context, id string) (*Article, error) {
	feed, err := c.query(ctx, map[string]string{
		"id_list":     id,
		"max_results": "1",
	})
	if err != nil {
		return nil, err
	}
	articles := feed.articles()
	if len(articles) == 0 {
		return nil, nil
	}
	return &articles[0], nil
}

func (c *Client) query(ctx context.Context, params map[string]string) (*atomFeed, error) {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("query arxiv: %w", err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, fmt.Errorf("arxiv HTTP %d", resp.StatusCode())
	}

	var feed atomFeed
	if err := xml.Unmarshal(resp.Body(), &feed); err != nil {
		return nil, fmt.Errorf("parse arxiv feed: %w", err)
	}
	return &feed, nil
}

// The arXiv API expects YYYYMMDDHHMMSS in submittedDate constraints.
func formatQueryDate(t time.Time) string {
	return t.UTC().Format("20060102150405")
}

type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID        string    `xml:"id"`
	Title     string    `xml:"title"`
	Summary   string    `xml:"summary"`
	Published time.Time `xml:"published"`
	Updated   time.Time `xml:"updated"`
	Authors   []struct {
		Name string `xml:"name"`
	} `xml:"author"`
}

func (f *atomFeed) articles() []Article {
	out := make([]Article, 0, len(f.Entries))
	for _, e := range f.Entries {
		a := Article{
			Title:     strings.TrimSpace(e.Title),
			Summary:   strings.TrimSpace(e.Summary),
			Published: e.Published,
			Updated:   e.Updated,
			URL:       e.ID,
		}
		for _, author := range e.Authors {
			a.Authors = append(a.Authors, author.Name)
		}
		out = append(out, a)
	}
	return out
}
