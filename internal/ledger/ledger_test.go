package ledger

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(id, slug, title, difficulty string, resolved time.Time) Entry {
	return Entry{
		FrontendID: id,
		Slug:       slug,
		Title:      title,
		Difficulty: difficulty,
		Path:       "leetcode/python/" + difficulty + "/" + id + "_" + slug + ".py",
		ResolvedAt: resolved,
	}
}

func TestRenderParseRoundTrip(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	entries := []Entry{
		entry("1", "two-sum", "Two Sum", "easy", now.Add(-48*time.Hour)),
		entry("146", "lru-cache", "LRU Cache", "medium", now.Add(-24*time.Hour)),
		entry("23", "merge-k-sorted-lists", "Merge k Sorted Lists", "hard", now.Add(-time.Hour)),
	}

	body := Render(entries, now)
	parsed := ParseMarkdown([]byte(body))
	require.Len(t, parsed, 3)

	byID := map[string]Entry{}
	for _, e := range parsed {
		byID[e.FrontendID] = e
	}
	assert.Equal(t, "two-sum", byID["1"].Slug)
	assert.Equal(t, "easy", byID["1"].Difficulty)
	assert.Equal(t, "LRU Cache", byID["146"].Title)
	assert.True(t, byID["23"].ResolvedAt.Equal(now.Add(-time.Hour)))
}

func TestRender_BucketsAndTotal(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	entries := []Entry{
		entry("1", "a", "A", "easy", now),
		entry("2", "b", "B", "Easy", now),
		entry("3", "c", "C", "HARD", now),
		entry("4", "d", "D", "unknown-difficulty", now),
	}

	body := Render(entries, now)
	assert.Contains(t, body, "Total solved: 4")
	assert.Contains(t, body, "## Easy (2)")
	// unknown difficulties land in medium so the total stays consistent
	assert.Contains(t, body, "## Medium (1)")
	assert.Contains(t, body, "## Hard (1)")
}

func TestRender_SortsByRecencyThenNumericIDDesc(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	entries := []Entry{
		entry("9", "old", "Old", "easy", now.Add(-time.Hour)),
		entry("20", "tie-low", "Tie Low", "easy", now),
		entry("100", "tie-high", "Tie High", "easy", now),
	}

	body := Render(entries, now)
	posHigh := strings.Index(body, "#100")
	posLow := strings.Index(body, "#20 ")
	posOld := strings.Index(body, "#9 ")
	assert.True(t, posHigh < posLow, "same timestamp orders by numeric id descending")
	assert.True(t, posLow < posOld, "newer entries come first")
}

func TestMerge_LatestResolvedAtWins(t *testing.T) {
	older := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(24 * time.Hour)

	a := []Entry{entry("1", "two-sum", "Two Sum", "easy", older), entry("2", "b", "B", "easy", older)}
	b := []Entry{entry("1", "two-sum", "Two Sum", "easy", newer), entry("3", "c", "C", "medium", newer)}

	merged := Merge(a, b)
	require.Len(t, merged, 3)
	assert.Equal(t, "1", merged[0].FrontendID)
	assert.True(t, merged[0].ResolvedAt.Equal(newer), "conflict resolved to latest resolved_at")
	assert.Equal(t, "2", merged[1].FrontendID)
	assert.Equal(t, "3", merged[2].FrontendID)

	// ties keep the first list's entry
	tie := Merge([]Entry{entry("5", "first", "First", "easy", older)}, []Entry{entry("5", "second", "Second", "easy", older)})
	require.Len(t, tie, 1)
	assert.Equal(t, "first", tie[0].Slug)
}

func TestParseMarkdown_SkipsForeignLines(t *testing.T) {
	body := strings.Join([]string{
		"# LeetCode Progress",
		"",
		"some free-form note a human added",
		"## Easy (1)",
		"",
		"- [#1 Two Sum](leetcode/python/easy/1_two_sum.py) | slug: two-sum | resolved: 2025-03-10T12:00:00Z",
		"- broken line that is not an entry",
	}, "\n")

	entries := ParseMarkdown([]byte(body))
	require.Len(t, entries, 1)
	assert.Equal(t, "1", entries[0].FrontendID)
	assert.Equal(t, "Two Sum", entries[0].Title)
}

func TestParseLegacyJSON(t *testing.T) {
	data := []byte(`[
		{"frontend_id":"1","title_slug":"two-sum","title":"Two Sum","difficulty":"Easy","path":"easy/1_two_sum.py","resolved_at":"2025-03-01T10:00:00Z"},
		{"frontend_id":"146","slug":"lru-cache","title":"LRU Cache","difficulty":"MEDIUM","path":"medium/146_lru_cache.py"}
	]`)

	entries, err := ParseLegacyJSON(data)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "two-sum", entries[0].Slug)
	assert.Equal(t, "easy", entries[0].Difficulty)
	assert.Equal(t, "lru-cache", entries[1].Slug)
	assert.True(t, entries[1].ResolvedAt.IsZero())

	_, err = ParseLegacyJSON([]byte("{not json"))
	require.Error(t, err)
}
