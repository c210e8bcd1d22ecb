// Package ledger maintains the human-readable PROGRESS.md file kept in the
// target solutions repository.
package ledger

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"
)

// Entry is one solved problem.
type Entry struct {
	FrontendID string    `json:"frontend_id"`
	Slug       string    `json:"slug"`
	Title      string    `json:"title"`
	Difficulty string    `json:"difficulty"`
	Path       string    `json:"path"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// entryLine matches one rendered ledger line:
//
//	- [#1 Two Sum](leetcode/python/easy/1_two_sum.py) | slug: two-sum | resolved: 2025-03-10T12:00:00Z
var entryLine = regexp.MustCompile(`^- \[#([^ ]+) (.+)\]\(([^)]+)\) \| slug: ([^ ]+) \| resolved: (\S+)$`)

var sectionLine = regexp.MustCompile(`^## (Easy|Medium|Hard)`)

// ParseMarkdown reads entries back out of a rendered PROGRESS.md. Lines that
// do not match the entry shape are skipped, so hand edits to the file do not
// break the pipeline.
func ParseMarkdown(data []byte) []Entry {
	var (
		entries    []Entry
		difficulty string
	)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, " \t\r")
		if m := sectionLine.FindStringSubmatch(line); m != nil {
			difficulty = strings.ToLower(m[1])
			continue
		}
		m := entryLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		resolvedAt, err := time.Parse(time.RFC3339, m[5])
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			FrontendID: m[1],
			Title:      m[2],
			Path:       m[3],
			Slug:       m[4],
			Difficulty: difficulty,
			ResolvedAt: resolvedAt,
		})
	}
	return entries
}

type legacyEntry struct {
	FrontendID string `json:"frontend_id"`
	Slug       string `json:"slug"`
	TitleSlug  string `json:"title_slug"`
	Title      string `json:"title"`
	Difficulty string `json:"difficulty"`
	Path       string `json:"path"`
	ResolvedAt string `json:"resolved_at"`
}

// ParseLegacyJSON reads the pre-markdown leetcode_progress.json format.
func ParseLegacyJSON(data []byte) ([]Entry, error) {
	var raw []legacyEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse legacy progress json: %w", err)
	}

	entries := make([]Entry, 0, len(raw))
	for _, l := range raw {
		slug := l.Slug
		if slug == "" {
			slug = l.TitleSlug
		}
		e := Entry{
			FrontendID: l.FrontendID,
			Slug:       slug,
			Title:      l.Title,
			Difficulty: strings.ToLower(l.Difficulty),
			Path:       l.Path,
		}
		if l.ResolvedAt != "" {
			t, err := time.Parse(time.RFC3339, l.ResolvedAt)
			if err != nil {
				return nil, fmt.Errorf("parse legacy resolved_at %q: %w", l.ResolvedAt, err)
			}
			e.ResolvedAt = t
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Merge combines two ordered entry lists, deduplicating by frontend id. On
// conflict the entry with the latest ResolvedAt wins; ties keep the earlier
// list's entry. Order of first appearance is preserved.
func Merge(a, b []Entry) []Entry {
	index := make(map[string]int)
	var out []Entry
	for _, e := range append(append([]Entry{}, a...), b...) {
		if i, ok := index[e.FrontendID]; ok {
			if e.ResolvedAt.After(out[i].ResolvedAt) {
				out[i] = e
			}
			continue
		}
		index[e.FrontendID] = len(out)
		out = append(out, e)
	}
	return out
}

// Render produces the PROGRESS.md body: one section per difficulty bucket,
// entries deduplicated by frontend id and sorted by recency then numeric id
// descending. The displayed total always equals the sum of the buckets.
func Render(entries []Entry, now time.Time) string {
	entries = Merge(entries, nil)

	buckets := map[string][]Entry{}
	for _, e := range entries {
		buckets[bucketOf(e.Difficulty)] = append(buckets[bucketOf(e.Difficulty)], e)
	}
	for _, bucket := range buckets {
		sort.SliceStable(bucket, func(i, j int) bool {
			if !bucket[i].ResolvedAt.Equal(bucket[j].ResolvedAt) {
				return bucket[i].ResolvedAt.After(bucket[j].ResolvedAt)
			}
			return numericID(bucket[i].FrontendID) > numericID(bucket[j].FrontendID)
		})
	}

	var sb strings.Builder
	sb.WriteString("# LeetCode Progress\n\n")
	fmt.Fprintf(&sb, "Total solved: %d\n", len(entries))
	fmt.Fprintf(&sb, "Updated: %s\n", now.UTC().Format(time.RFC3339))

	for _, name := range []string{"Easy", "Medium", "Hard"} {
		bucket := buckets[strings.ToLower(name)]
		if len(bucket) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n## %s (%d)\n\n", name, len(bucket))
		for _, e := range bucket {
			fmt.Fprintf(&sb, "- [#%s %s](%s) | slug: %s | resolved: %s\n",
				e.FrontendID, e.Title, e.Path, e.Slug, e.ResolvedAt.UTC().Format(time.RFC3339))
		}
	}
	return sb.String()
}

// bucketOf maps a difficulty string onto exactly one rendered bucket.
// Unrecognized difficulties land in medium so the total stays the sum of the
// buckets.
func bucketOf(difficulty string) string {
	switch strings.ToLower(strings.TrimSpace(difficulty)) {
	case "easy":
		return "easy"
	case "hard":
		return "hard"
	default:
		return "medium"
	}
}

func numericID(frontendID string) int {
	n, seen := 0, false
	for _, r := range frontendID {
		if unicode.IsDigit(r) {
			n = n*10 + int(r-'0')
			seen = true
		}
	}
	if !seen {
		return -1
	}
	return n
}
